package execqueue

import (
	"context"
	"sync"
)

// Gate is a FIFO admission gate with a fixed capacity.
type Gate struct {
	name     string
	mu       sync.Mutex
	capacity int
	ongoing  int
	waiters  []chan struct{}
}

// NewGate returns a gate admitting at most capacity holders. Capacities below
// one are raised to one.
func NewGate(name string, capacity int) *Gate {
	if capacity < 1 {
		capacity = 1
	}
	return &Gate{name: name, capacity: capacity}
}

// Name identifies the gate in logs and status output.
func (g *Gate) Name() string { return g.name }

// Capacity returns the configured limit.
func (g *Gate) Capacity() int { return g.capacity }

// Ongoing returns the number of current holders.
func (g *Gate) Ongoing() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ongoing
}

// Waiting returns the number of callers suspended in Acquire.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters)
}

// Acquire blocks until a slot is free and every earlier caller has been
// admitted. A cancelled context withdraws the caller without taking a slot.
func (g *Gate) Acquire(ctx context.Context) error {
	g.mu.Lock()
	if g.ongoing < g.capacity && len(g.waiters) == 0 {
		g.ongoing++
		g.mu.Unlock()
		return nil
	}
	ready := make(chan struct{})
	g.waiters = append(g.waiters, ready)
	g.mu.Unlock()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		for i, w := range g.waiters {
			if w == ready {
				g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
				g.mu.Unlock()
				return ctx.Err()
			}
		}
		g.mu.Unlock()
		// Admitted between cancellation and re-locking; hand the slot on.
		g.Release()
		return ctx.Err()
	}
}

// Release frees a slot, passing it straight to the oldest waiter if any.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.ongoing == 0 {
		panic("execqueue: release without acquire on " + g.name)
	}
	if len(g.waiters) > 0 {
		next := g.waiters[0]
		g.waiters[0] = nil
		g.waiters = g.waiters[1:]
		close(next)
		return
	}
	g.ongoing--
}

// Do runs fn while holding a slot.
func (g *Gate) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(ctx)
}
