package ports

// Package ports defines interfaces (hexagonal ports) for the request
// pipeline. Implementations live in internal/data and internal/adapters;
// orchestration in internal/service and internal/http.

import (
	"context"
	"errors"

	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/domain/model"
)

// Sentinel errors shared across port implementations. Absence of a session
// or user is an expected outcome for the pipeline (an anonymous request),
// so callers need to tell it apart from infrastructure failures.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUserNotFound    = errors.New("user not found")
)

// SessionStore persists sessions keyed by their opaque token.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, token string) (domainauth.Session, error)
	Delete(ctx context.Context, token string) error

	// Rotate persists sess under its new token and invalidates oldToken
	// in the same operation, preserving the session's identity.
	Rotate(ctx context.Context, oldToken string, sess domainauth.Session) error
}

// UserReader loads the users referenced by validated sessions.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// ModerationGate atomically marks a user as recently active and reports
// whether an active sanction exists against them. Implementations must
// apply both effects as a single unit of work so concurrent requests from
// the same user never observe the touch without the matching check.
type ModerationGate interface {
	TouchAndCheck(ctx context.Context, userID string) (sanctioned bool, err error)
}

// StipendCrediter applies the periodic stipend credit for a user. The
// collaborator behind it owns interval gating and double-credit
// protection; callers simply invoke it once per authenticated request.
type StipendCrediter interface {
	Credit(ctx context.Context, userID string) error
}
