package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/meridianhq/meridian/internal/domain/auth"
	"github.com/meridianhq/meridian/internal/ports"
	"github.com/meridianhq/meridian/internal/testutil"
)

func liveSession(token string) domainauth.Session {
	now := time.Now()
	return domainauth.Session{
		Token:     token,
		UserID:    "u-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	sess := liveSession("tok-1")
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)
	assert.False(t, got.Fresh, "the fresh flag never persists")
}

func TestSessionStore_GetUnknownToken(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_SaveRejectsExpired(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)

	sess := liveSession("tok-exp")
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	assert.Error(t, store.Save(context.Background(), sess))
}

func TestSessionStore_Delete(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, liveSession("tok-del")))
	require.NoError(t, store.Delete(ctx, "tok-del"))

	_, err := store.Get(ctx, "tok-del")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_Rotate(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, liveSession("tok-old")))

	rotated := liveSession("tok-new")
	require.NoError(t, store.Rotate(ctx, "tok-old", rotated))

	_, err := store.Get(ctx, "tok-old")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound, "the old token dies with the rotation")

	got, err := store.Get(ctx, "tok-new")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
}

func TestSessionStore_RotateRejectsSameToken(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStore(client)

	assert.Error(t, store.Rotate(context.Background(), "tok", liveSession("tok")))
}

func TestSessionStore_KeyTTLTracksExpiry(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	store := NewSessionStoreWithPrefix(client, "sess-test:")
	ctx := context.Background()

	sess := liveSession("tok-ttl")
	require.NoError(t, store.Save(ctx, sess))

	ttl, err := client.TTL(ctx, "sess-test:tok-ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 55*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestStipendMarker_MarkAndClear(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	marker := NewStipendMarker(client)
	ctx := context.Background()

	claimed, err := marker.Mark(ctx, "u-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "first claim wins the slot")

	claimed, err = marker.Mark(ctx, "u-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "the slot stays held for the interval")

	require.NoError(t, marker.Clear(ctx, "u-1"))

	claimed, err = marker.Mark(ctx, "u-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "clearing frees the slot")
}
