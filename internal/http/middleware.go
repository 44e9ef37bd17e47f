package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"

	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/domain/model"
	"github.com/meridianhq/meridian/internal/ports"
)

// ModerationPath is where sanctioned users are sent to review and appeal
// their sanction.
const ModerationPath = "/moderation"

// SessionValidator is the slice of the auth service the pipeline needs.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*domainauth.Session, *model.User, error)
	SessionCookie(sess domainauth.Session) domainauth.SessionCookie
	BlankCookie() domainauth.SessionCookie
}

// PipelineDeps groups dependencies for SessionPipeline.
type PipelineDeps struct {
	Auth       SessionValidator
	Moderation ports.ModerationGate
	Stipend    ports.StipendCrediter
	CookieName string
	Logger     *slog.Logger

	// ReqLog, when set, receives failures the pipeline turns into error
	// responses, so they show on the console like any other unhandled
	// error.
	ReqLog *RequestLogger
}

// requestState is the outcome of the pre-resolution pipeline steps,
// threaded explicitly so the short-circuit decision stays testable.
type requestState int

const (
	stateAnonymous requestState = iota
	stateAuthenticated
	stateSanctionedRedirect
)

// SessionPipeline returns the per-request middleware that authenticates the
// session, runs the moderation gate, and triggers the stipend credit, in
// that order, before handing the request downstream. Moderation's
// touch+check commits before the redirect decision, and the redirect
// decision is made before the stipend or the downstream handler run.
func SessionPipeline(deps PipelineDeps) func(http.Handler) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, r := authenticate(w, r, deps, logger)
			if state == stateAnonymous {
				next.ServeHTTP(w, r)
				return
			}

			user := UserFromContext(r.Context())
			sanctioned, err := deps.Moderation.TouchAndCheck(r.Context(), user.ID)
			if err != nil {
				// The combined touch+check is the one operation the
				// pipeline cannot reason without; let the hosting layer
				// produce its default failure response.
				if deps.ReqLog != nil {
					deps.ReqLog.LogError(user, err)
				}
				logger.ErrorContext(r.Context(), "moderation touch+check failed",
					"user_id", user.ID, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			if moderationOutcome(sanctioned, r.URL.Path) == stateSanctionedRedirect {
				http.Redirect(w, r, ModerationPath, http.StatusFound)
				return
			}

			if creditErr := deps.Stipend.Credit(r.Context(), user.ID); creditErr != nil {
				// Fire-and-continue: a failed credit never aborts the
				// response.
				logger.WarnContext(r.Context(), "stipend credit failed",
					"user_id", user.ID, "error", creditErr)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authenticate performs steps 2-4 of the pipeline: token extraction,
// validation, locals, and cookie issuance. It returns the (possibly
// identity-carrying) request and whether the request is authenticated.
func authenticate(w http.ResponseWriter, r *http.Request, deps PipelineDeps, logger *slog.Logger) (requestState, *http.Request) {
	cookie, err := r.Cookie(deps.CookieName)
	if err != nil {
		// No cookie at all: actively clear any stale credential the
		// client may still cache under our name.
		deps.Auth.BlankCookie().Apply(w)
		return stateAnonymous, r
	}

	sess, user, err := deps.Auth.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		// Infrastructure failure during validation degrades to an
		// anonymous request rather than blocking the page.
		logger.ErrorContext(r.Context(), "session validation failed", "error", err)
		return stateAnonymous, r
	}
	if sess == nil {
		// Invalid or expired token: anonymous, and deliberately no
		// cookie rewrite. This policy is uniform across every
		// invalid-token case.
		return stateAnonymous, r
	}

	r = r.WithContext(WithIdentity(r.Context(), sess, user))
	if sess.Fresh {
		deps.Auth.SessionCookie(*sess).Apply(w)
	}
	return stateAuthenticated, r
}

// moderationOutcome applies the post-authentication state machine: a
// sanctioned user may still reach the moderation review path and any API
// path (avatars included), everything else redirects.
func moderationOutcome(sanctioned bool, path string) requestState {
	if !sanctioned {
		return stateAuthenticated
	}
	if sanctionReachablePath(path) {
		return stateAuthenticated
	}
	return stateSanctionedRedirect
}

func sanctionReachablePath(path string) bool {
	return path == ModerationPath ||
		path == "/api" ||
		strings.HasPrefix(path, "/api/")
}

// requestIDKey is an unexported context key type for request IDs.
type requestIDKey struct{}

const requestIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RequestID tags every request with a short random identifier, echoed in
// the X-Request-Id header, so client reports can be correlated with the
// structured diagnostics.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := gonanoid.Generate(requestIDAlphabet, 15)
			if err == nil {
				w.Header().Set("X-Request-Id", id)
				r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDFromContext returns the request's identifier, or "" when the
// RequestID middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Recover returns a middleware that catches panics from anywhere in the
// pipeline, logs them through the error hook, and lets the default 500
// stand in for the response. The hook itself never throws.
func Recover(reqlog *RequestLogger, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(WithIdentityHolder(r.Context()))
			defer func() {
				if err := recover(); err != nil {
					if reqlog != nil {
						reqlog.LogError(UserFromContext(r.Context()), err)
					}
					logger.ErrorContext(r.Context(), "panic",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"request_id", RequestIDFromContext(r.Context()))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
