package pose

// ringBuffer holds the most recent N feature values for smoothing. Oldest
// value is evicted on insert once full; never exceeds its capacity.
type ringBuffer struct {
	values []float64
	head   int
	size   int
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{values: make([]float64, capacity)}
}

func (r *ringBuffer) push(v float64) {
	r.values[r.head] = v
	r.head = (r.head + 1) % len(r.values)
	if r.size < len(r.values) {
		r.size++
	}
}

// mean returns the arithmetic mean of the buffered values, 0 when empty.
func (r *ringBuffer) mean() float64 {
	if r.size == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < r.size; i++ {
		sum += r.values[i]
	}
	return sum / float64(r.size)
}

func (r *ringBuffer) len() int {
	return r.size
}

func (r *ringBuffer) reset() {
	r.head = 0
	r.size = 0
}
