package service

import (
	"context"
	"fmt"
	"time"

	"github.com/meridianhq/meridian/internal/ports"
)

// DispatchMarker throttles how often the stipend credit is dispatched per
// user. Implementations must be safe for concurrent use.
type DispatchMarker interface {
	// Mark claims the dispatch slot for a user; true means it was free.
	Mark(ctx context.Context, userID string, interval time.Duration) (bool, error)
	// Clear releases the slot so the next request may dispatch again.
	Clear(ctx context.Context, userID string) error
}

// StipendServiceOptions groups dependencies for StipendService.
type StipendServiceOptions struct {
	Crediter ports.StipendCrediter
	Marker   DispatchMarker // optional; nil dispatches on every request
	Interval time.Duration
}

// StipendService invokes the economy collaborator's stipend credit once per
// authenticated request, throttled by the dispatch marker. The collaborator
// owns the real interval gating; the marker only amortizes round trips.
type StipendService struct {
	crediter ports.StipendCrediter
	marker   DispatchMarker
	interval time.Duration
}

// NewStipendService constructs a new StipendService.
func NewStipendService(opts StipendServiceOptions) *StipendService {
	return &StipendService{
		crediter: opts.Crediter,
		marker:   opts.Marker,
		interval: opts.Interval,
	}
}

// Credit triggers the stipend credit for a user. Callers must treat a
// returned error as observational: it is logged, never surfaced to the
// client, and never aborts the response.
func (s *StipendService) Credit(ctx context.Context, userID string) error {
	if s.marker != nil {
		claimed, err := s.marker.Mark(ctx, userID, s.interval)
		if err != nil {
			// A broken marker must not block the credit; the economy
			// service tolerates early dispatches.
			return s.dispatch(ctx, userID)
		}
		if !claimed {
			return nil
		}
		if dispatchErr := s.dispatch(ctx, userID); dispatchErr != nil {
			// Release the slot so the next request retries.
			if clearErr := s.marker.Clear(ctx, userID); clearErr != nil {
				return fmt.Errorf("%w (and clearing dispatch marker: %w)", dispatchErr, clearErr)
			}
			return dispatchErr
		}
		return nil
	}
	return s.dispatch(ctx, userID)
}

func (s *StipendService) dispatch(ctx context.Context, userID string) error {
	if err := s.crediter.Credit(ctx, userID); err != nil {
		return fmt.Errorf("stipend credit: %w", err)
	}
	return nil
}
