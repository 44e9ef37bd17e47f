package auth

// Package auth contains domain-level types for sessions and the cookies
// that carry them. It is pure and free of adapter concerns.

import (
	"net/http"
	"time"
)

// Session is the server-side record persisted for a logged-in user.
// Token is the opaque value the client holds in its cookie; rotation
// replaces the token while preserving the session's identity.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Fresh marks a session whose token was just rotated and not yet
	// acknowledged by the client. The pipeline issues a replacement
	// cookie exactly once while Fresh is set.
	Fresh bool `json:"-"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionCookie describes a Set-Cookie the pipeline should issue. The
// attributes are opaque pass-through data for the HTTP layer; Path stays "/"
// so the cookie is visible on every route the application serves.
type SessionCookie struct {
	Name     string
	Value    string
	Path     string
	MaxAge   int
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// Apply writes the cookie to the response.
func (c SessionCookie) Apply(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		MaxAge:   c.MaxAge,
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	})
}
