package repository

import (
	"context"
	"sync"
	"time"

	"go-posture-guard/internal/pose"

	"github.com/google/uuid"
)

// Session is one user's posture-tracking session: an id plus the evaluator
// that owns the calibration baseline and smoothing buffer. The evaluator's
// mutable state is not safe for concurrent writers, so every evaluation and
// reset goes through the session's mutex - at most one in-flight evaluation
// per session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	evaluator  *pose.Evaluator
	lastActive time.Time
}

// Evaluate runs one frame through the session's evaluator, serialized
// against concurrent frames and resets for the same session.
func (s *Session) Evaluate(f pose.Feature) (pose.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	return s.evaluator.Evaluate(f)
}

// Reset returns the session to the calibrating state. Idempotent; safe to
// call from any state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	s.evaluator.Reset()
}

// State returns the evaluator's current phase.
func (s *Session) State() pose.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluator.State()
}

// LastActive returns when the session last evaluated or reset.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// EvaluatorFactory builds a fresh evaluator for a new session.
type EvaluatorFactory func() (*pose.Evaluator, error)

// MemorySessionRepository implements SessionRepository with an in-process
// map guarded by a read-write mutex.
type MemorySessionRepository struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	newEvaluator EvaluatorFactory
}

// NewMemorySessionRepository creates an in-memory session repository. The
// factory is invoked once per created session.
func NewMemorySessionRepository(factory EvaluatorFactory) *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions:     make(map[string]*Session),
		newEvaluator: factory,
	}
}

// Create builds a new session with a fresh evaluator
func (r *MemorySessionRepository) Create(ctx context.Context) (*Session, error) {
	evaluator, err := r.newEvaluator()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &Session{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		evaluator:  evaluator,
		lastActive: now,
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return session, nil
}

// Get returns the session with the given id, or ErrSessionNotFound
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session with the given id
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// PruneExpired removes sessions idle longer than ttl
func (r *MemorySessionRepository) PruneExpired(ctx context.Context, ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	pruned := 0
	for id, session := range r.sessions {
		if session.LastActive().Before(cutoff) {
			delete(r.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Count returns the number of live sessions
func (r *MemorySessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
