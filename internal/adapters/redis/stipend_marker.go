package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// StipendMarker throttles stipend dispatches with a per-user SETNX marker.
// The economy service remains the authority on interval gating; the marker
// only spares it a request per authenticated page load.
type StipendMarker struct {
	client redis.UniversalClient
	prefix string
}

// NewStipendMarker creates a new StipendMarker.
func NewStipendMarker(client redis.UniversalClient) *StipendMarker {
	return &StipendMarker{
		client: client,
		prefix: "stipend:dispatched:",
	}
}

// Mark attempts to claim the dispatch slot for a user. It returns true when
// the slot was free, in which case the marker holds for interval.
func (m *StipendMarker) Mark(ctx context.Context, userID string, interval time.Duration) (bool, error) {
	return m.client.SetNX(ctx, m.prefix+userID, 1, interval).Result()
}

// Clear releases a user's dispatch marker, allowing the next request to
// dispatch again. Used when the credit call fails before reaching the
// economy service.
func (m *StipendMarker) Clear(ctx context.Context, userID string) error {
	return m.client.Del(ctx, m.prefix+userID).Err()
}
