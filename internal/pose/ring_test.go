package pose

import (
	"math"
	"testing"
)

func TestRingBuffer_FillAndMean(t *testing.T) {
	r := newRingBuffer(3)

	if r.len() != 0 {
		t.Errorf("Expected empty buffer, got len %d", r.len())
	}
	if r.mean() != 0 {
		t.Errorf("Expected mean 0 for empty buffer, got %f", r.mean())
	}

	r.push(1.0)
	if math.Abs(r.mean()-1.0) > 1e-9 {
		t.Errorf("Expected mean 1.0, got %f", r.mean())
	}

	r.push(2.0)
	r.push(3.0)
	if r.len() != 3 {
		t.Errorf("Expected len 3, got %d", r.len())
	}
	if math.Abs(r.mean()-2.0) > 1e-9 {
		t.Errorf("Expected mean 2.0, got %f", r.mean())
	}
}

func TestRingBuffer_EvictsOldest(t *testing.T) {
	r := newRingBuffer(3)
	for _, v := range []float64{1, 2, 3, 4} {
		r.push(v)
	}

	// 1 was evicted; buffer holds 2, 3, 4
	if r.len() != 3 {
		t.Errorf("Expected len capped at 3, got %d", r.len())
	}
	if math.Abs(r.mean()-3.0) > 1e-9 {
		t.Errorf("Expected mean 3.0 after eviction, got %f", r.mean())
	}
}

func TestRingBuffer_NeverExceedsCapacity(t *testing.T) {
	r := newRingBuffer(5)
	for i := 0; i < 100; i++ {
		r.push(float64(i))
		if r.len() > 5 {
			t.Fatalf("Buffer exceeded capacity: len %d", r.len())
		}
	}

	// Last five values are 95..99
	if math.Abs(r.mean()-97.0) > 1e-9 {
		t.Errorf("Expected mean 97.0, got %f", r.mean())
	}
}

func TestRingBuffer_Reset(t *testing.T) {
	r := newRingBuffer(3)
	r.push(1.0)
	r.push(2.0)
	r.reset()

	if r.len() != 0 {
		t.Errorf("Expected empty buffer after reset, got len %d", r.len())
	}

	r.push(5.0)
	if math.Abs(r.mean()-5.0) > 1e-9 {
		t.Errorf("Expected mean 5.0 after reset and push, got %f", r.mean())
	}
}
