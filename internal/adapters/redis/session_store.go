package redis

// Package redis provides Redis-based adapters for the meridian pipeline.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/ports"
)

// SessionStore is a Redis-based session store. Records expire with the
// session: the key TTL is derived from ExpiresAt, so Redis reaps stale
// sessions without a sweeper.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "session:",
	}
}

// NewSessionStoreWithPrefix creates a Redis session store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	data, ttl, err := encodeSession(sess)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, s.prefix+sess.Token, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (domainauth.Session, error) {
	if token == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", unmarshalErr)
	}

	// Redis TTL should have reaped this already; treat a lingering
	// expired record as absent either way.
	if sess.Expired(time.Now()) {
		if deleteErr := s.Delete(ctx, token); deleteErr != nil {
			return domainauth.Session{}, fmt.Errorf("cleanup expired session: %w", deleteErr)
		}
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil // Nothing to delete
	}

	return s.client.Del(ctx, s.prefix+token).Err()
}

// Rotate stores sess under its new token and removes the old token in a
// single MULTI/EXEC round trip, so no interleaved request can observe both
// tokens valid with different payloads or issue a second rotation for the
// same validation event.
func (s *SessionStore) Rotate(ctx context.Context, oldToken string, sess domainauth.Session) error {
	if oldToken == "" {
		return errors.New("old session token cannot be empty")
	}
	if sess.Token == "" {
		return errors.New("rotated session token cannot be empty")
	}
	if sess.Token == oldToken {
		return errors.New("rotated session token must differ from the old token")
	}

	data, ttl, err := encodeSession(sess)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.prefix+sess.Token, data, ttl)
		pipe.Del(ctx, s.prefix+oldToken)
		return nil
	})
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	return nil
}

func encodeSession(sess domainauth.Session) ([]byte, time.Duration, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		// Session is already expired, don't save it
		return nil, 0, errors.New("session is expired")
	}
	return data, ttl, nil
}

// ErrNotFound is returned when a session is not found.
var ErrNotFound = ports.ErrSessionNotFound
