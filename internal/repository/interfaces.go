package repository

import (
	"context"
	"time"
)

// SessionRepository defines access to the live posture sessions. Sessions
// are in-memory only; persisting historical sessions is out of scope.
type SessionRepository interface {
	// Create builds a new session with a fresh evaluator
	Create(ctx context.Context) (*Session, error)

	// Get returns the session with the given id, or ErrSessionNotFound
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes the session with the given id
	Delete(ctx context.Context, id string) error

	// PruneExpired removes sessions idle longer than ttl and returns how
	// many were removed
	PruneExpired(ctx context.Context, ttl time.Duration) int

	// Count returns the number of live sessions
	Count() int
}
