package httpx

import (
	"context"

	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/domain/model"
)

// identityKey is an unexported context key type to avoid collisions across
// packages. Centralized in this file so all handlers/middleware use the
// same key.
type identityKey struct{}

// Identity is the per-request locals set by the session pipeline: the
// current session and its owning user, or nil/nil for anonymous requests.
type Identity struct {
	Session *domainauth.Session
	User    *model.User
}

// WithIdentityHolder installs an empty identity holder on the context. The
// outer middleware (request log, recover) installs it before the session
// pipeline runs, so the identity the pipeline resolves on a derived request
// is still visible to the wrapping layers afterwards. Requests are handled
// by a single goroutine, so the holder needs no locking.
func WithIdentityHolder(ctx context.Context) context.Context {
	if _, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, &Identity{})
}

// WithIdentity records the request identity, filling the installed holder
// when one exists. A nil session leaves the original ctx unchanged.
func WithIdentity(ctx context.Context, sess *domainauth.Session, user *model.User) context.Context {
	if sess == nil {
		return ctx
	}
	if holder, ok := ctx.Value(identityKey{}).(*Identity); ok {
		holder.Session = sess
		holder.User = user
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, &Identity{Session: sess, User: user})
}

// IdentityFromContext returns the request identity and whether one is set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if holder, ok := ctx.Value(identityKey{}).(*Identity); ok && holder.Session != nil {
		return *holder, true
	}
	return Identity{}, false
}

// UserFromContext returns the authenticated user, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *model.User {
	if id, ok := IdentityFromContext(ctx); ok {
		return id.User
	}
	return nil
}
