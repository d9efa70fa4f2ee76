// Package admission serializes admission decisions per offering.
package admission

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Gate is a keyed mutex. Holders of different keys never block each other.
// Each key's slot is a 1-buffered channel so waiting can be abandoned
// through the context.
type Gate struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{slots: make(map[uuid.UUID]*slot)}
}

// Acquire blocks until the caller holds key or ctx is done.
// The returned release func must be called exactly once; extra calls are ignored.
func (g *Gate) Acquire(ctx context.Context, key uuid.UUID) (func(), error) {
	s := g.ref(key)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		g.unref(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			g.unref(key, s)
		})
	}, nil
}

// Do runs fn while holding key.
func (g *Gate) Do(ctx context.Context, key uuid.UUID, fn func(ctx context.Context) error) error {
	release, err := g.Acquire(ctx, key)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// Len returns the number of keys currently held or waited on.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.slots)
}

func (g *Gate) ref(key uuid.UUID) *slot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s, ok := g.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		g.slots[key] = s
	}
	s.refs++
	return s
}

func (g *Gate) unref(key uuid.UUID, s *slot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(g.slots, key)
	}
}
