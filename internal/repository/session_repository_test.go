package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-posture-guard/internal/pose"
)

func testFactory(t *testing.T) EvaluatorFactory {
	t.Helper()
	return func() (*pose.Evaluator, error) {
		return pose.NewEvaluator(pose.DefaultOptions(), nil, nil)
	}
}

func TestMemorySessionRepository_CreateAndGet(t *testing.T) {
	repo := NewMemorySessionRepository(testFactory(t))
	ctx := context.Background()

	session, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.ID == "" {
		t.Error("Expected a non-empty session id")
	}
	if session.State() != pose.StateCalibrating {
		t.Errorf("Expected new session to start calibrating, got %s", session.State())
	}

	got, err := repo.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != session {
		t.Error("Expected Get to return the same session instance")
	}
	if repo.Count() != 1 {
		t.Errorf("Expected count 1, got %d", repo.Count())
	}
}

func TestMemorySessionRepository_GetUnknown(t *testing.T) {
	repo := NewMemorySessionRepository(testFactory(t))

	_, err := repo.Get(context.Background(), "no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestMemorySessionRepository_FactoryFailure(t *testing.T) {
	factoryErr := errors.New("bad evaluator options")
	repo := NewMemorySessionRepository(func() (*pose.Evaluator, error) {
		return nil, factoryErr
	})

	_, err := repo.Create(context.Background())
	if !errors.Is(err, factoryErr) {
		t.Errorf("Expected factory error to propagate, got %v", err)
	}
	if repo.Count() != 0 {
		t.Errorf("Expected no sessions after failed create, got %d", repo.Count())
	}
}

func TestMemorySessionRepository_Delete(t *testing.T) {
	repo := NewMemorySessionRepository(testFactory(t))
	ctx := context.Background()

	session, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := repo.Delete(ctx, session.ID); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, err := repo.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
	if err := repo.Delete(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected second delete to report not found, got %v", err)
	}
}

func TestMemorySessionRepository_PruneExpired(t *testing.T) {
	repo := NewMemorySessionRepository(testFactory(t))
	ctx := context.Background()

	stale, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	fresh, err := repo.Create(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stale.mu.Lock()
	stale.lastActive = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	pruned := repo.PruneExpired(ctx, 30*time.Minute)
	if pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := repo.Get(ctx, stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected stale session to be pruned")
	}
	if _, err := repo.Get(ctx, fresh.ID); err != nil {
		t.Errorf("Expected fresh session to survive, got %v", err)
	}
}

func TestSession_EvaluateUpdatesActivity(t *testing.T) {
	repo := NewMemorySessionRepository(testFactory(t))

	session, err := repo.Create(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	before := session.LastActive()

	time.Sleep(5 * time.Millisecond)
	if _, err := session.Evaluate(pose.Feature{Value: 0.4, Detected: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !session.LastActive().After(before) {
		t.Error("Expected Evaluate to advance the activity timestamp")
	}
}

func TestSession_Reset(t *testing.T) {
	repo := NewMemorySessionRepository(testFactory(t))

	session, err := repo.Create(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	session.Reset()
	if session.State() != pose.StateCalibrating {
		t.Errorf("Expected calibrating after reset, got %s", session.State())
	}
}
