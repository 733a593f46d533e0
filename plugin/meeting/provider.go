// Package meeting defines the uniform meeting lifecycle contract shared by the
// video-conferencing provider adapters.
package meeting

import (
	"context"
	"time"

	"github.com/hrygo/helpgpt/store"
)

// Status selects which meetings List returns.
type Status string

const (
	// StatusUpcoming lists meetings that have not started yet.
	StatusUpcoming Status = "upcoming"
	// StatusAll lists every known meeting.
	StatusAll Status = "all"
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 10

// Provider is a meeting provider adapter.
type Provider interface {
	// Name returns the provider name ("zoom", "telemost").
	Name() string

	// Create schedules a meeting. start is an absolute instant.
	Create(ctx context.Context, topic string, start time.Time, durationMinutes int) (*store.MeetingRecord, error)

	// List returns at most limit meetings sorted by start time.
	List(ctx context.Context, status Status, limit int) ([]*store.MeetingRecord, error)

	// Delete removes a meeting. Returns *NotFoundError when the provider does not know the id.
	Delete(ctx context.Context, id string) error

	// Get returns one meeting. Returns *NotFoundError when the id is unknown.
	Get(ctx context.Context, id string) (*store.MeetingRecord, error)
}

// TokenSource supplies access tokens for provider calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// invalidator is implemented by token sources that can drop a rejected token.
type invalidator interface {
	Invalidate()
}

// InvalidateOnUnauthorized drops the cached token when err is an HTTP 401,
// so the next call performs a fresh exchange.
func InvalidateOnUnauthorized(tokens TokenSource, err error) {
	if !IsStatus(err, 401) {
		return
	}
	if inv, ok := tokens.(invalidator); ok {
		inv.Invalidate()
	}
}
