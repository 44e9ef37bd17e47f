package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/meridianhq/meridian/config"
	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/domain/model"
	"github.com/meridianhq/meridian/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Sessions ports.SessionStore
	Users    ports.UserReader
	Config   config.SessionConfig
}

// AuthService validates and silently rotates session tokens. It never
// creates sessions for anonymous visitors; credential-based login lives
// elsewhere and only hands tokens to clients.
type AuthService struct {
	sessions ports.SessionStore
	users    ports.UserReader
	cfg      config.SessionConfig
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	return &AuthService{
		sessions: opts.Sessions,
		users:    opts.Users,
		cfg:      opts.Config,
	}
}

// ValidateSession resolves an opaque token to its session and owning user.
// Unknown, invalid, or expired tokens resolve to (nil, nil, nil): the
// request proceeds anonymously, it is not an error.
//
// When the session has entered its renewal window the token is rotated:
// the session keeps its identity, gets a new token and a full lifetime,
// and comes back with Fresh set so the pipeline re-issues the cookie.
// At most one rotation happens per validation event.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domainauth.Session, *model.User, error) {
	if token == "" {
		return nil, nil, nil
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	now := time.Now()
	if sess.Expired(now) {
		// The store reaps expired records itself; a lingering one still
		// resolves to an anonymous request.
		return nil, nil, nil
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			// Session points at a deleted user; drop it.
			if deleteErr := s.sessions.Delete(ctx, token); deleteErr != nil {
				return nil, nil, fmt.Errorf("delete orphaned session: %w", deleteErr)
			}
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("get session user: %w", err)
	}

	if time.Until(sess.ExpiresAt) < s.cfg.RenewWithin {
		rotated := sess
		rotated.Token = newSessionToken()
		rotated.IssuedAt = now
		rotated.ExpiresAt = now.Add(s.cfg.Lifetime)
		rotated.Fresh = true
		if rotateErr := s.sessions.Rotate(ctx, token, rotated); rotateErr != nil {
			return nil, nil, fmt.Errorf("rotate session: %w", rotateErr)
		}
		sess = rotated
	}

	return &sess, user, nil
}

// SessionCookie builds the cookie instructing the client to store the
// session's (possibly rotated) token.
func (s *AuthService) SessionCookie(sess domainauth.Session) domainauth.SessionCookie {
	return domainauth.SessionCookie{
		Name:     s.cfg.CookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		Secure:   s.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// BlankCookie builds a cookie that clears any stale session token cached on
// the client.
func (s *AuthService) BlankCookie() domainauth.SessionCookie {
	return domainauth.SessionCookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   s.cfg.CookieSecure,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// newSessionToken creates a cryptographically secure random session token.
func newSessionToken() string {
	// UUIDs are URL-safe and carry enough entropy for an opaque token.
	return uuid.New().String()
}
