package synthesis

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate bounds how many syntheses run at once across all rows.
type Gate struct {
	inner    Synthesizer
	sem      *semaphore.Weighted
	capacity int
}

func NewGate(inner Synthesizer, capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{
		inner:    inner,
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Synthesize waits for a slot, or for ctx to end, before calling the backend.
func (g *Gate) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)
	return g.inner.Synthesize(ctx, req)
}

func (g *Gate) Capacity() int {
	return g.capacity
}

func (g *Gate) Exclusive() bool {
	return g.capacity == 1
}
