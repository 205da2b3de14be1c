package viewport

import (
	"context"
	"fmt"
	"sync"

	"mandelzoom/fractal/fixed"
)

const (
	ZoomInFactor  = 0.95
	ZoomOutFactor = 1.05
)

// Snapshot is one consistent read of the store.
type Snapshot struct {
	Viewport
	// Gen increases by one on every accepted write. The initial viewport is Gen 1.
	Gen uint64
}

// Store is the shared viewport. Writes replace the whole value under one lock;
// readers get all fields from the same write.
type Store struct {
	limits  Limits
	initial Viewport

	mu      sync.RWMutex
	cur     Viewport
	gen     uint64
	changed chan struct{}
}

func NewStore(v Viewport, l Limits) (*Store, error) {
	if err := v.Validate(l); err != nil {
		return nil, err
	}
	return &Store{
		limits:  l,
		initial: v,
		cur:     v,
		gen:     1,
		changed: make(chan struct{}),
	}, nil
}

func (s *Store) Limits() Limits { return s.limits }

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Viewport: s.cur, Gen: s.gen}
}

// Changed returns a channel that is closed by the next accepted write.
func (s *Store) Changed() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changed
}

// Wait blocks until the store generation differs from gen and returns the new snapshot.
func (s *Store) Wait(ctx context.Context, gen uint64) (Snapshot, error) {
	for {
		s.mu.RLock()
		snap := Snapshot{Viewport: s.cur, Gen: s.gen}
		ch := s.changed
		s.mu.RUnlock()
		if snap.Gen != gen {
			return snap, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

// Update replaces the viewport with fn's result. fn runs under the write lock and must
// not call back into the store. A rejected result leaves the store unchanged.
func (s *Store) Update(fn func(Viewport) (Viewport, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.cur)
	if err != nil {
		return err
	}
	if err := next.Validate(s.limits); err != nil {
		return err
	}
	s.cur = next
	s.gen++
	close(s.changed)
	s.changed = make(chan struct{})
	return nil
}

func (s *Store) Set(v Viewport) error {
	return s.Update(func(Viewport) (Viewport, error) { return v, nil })
}

// ZoomBy multiplies the pixel step by factor. Factors below 1 zoom in.
func (s *Store) ZoomBy(factor float64) error {
	f, err := fixed.FromFloat64Checked(factor)
	if err != nil || f.Sign() <= 0 {
		return fmt.Errorf("%w: zoom factor %v", ErrInvalid, factor)
	}
	return s.Update(func(v Viewport) (Viewport, error) {
		v.Zoom = v.Zoom.Mul(f)
		return v, nil
	})
}

func (s *Store) ZoomIn() error  { return s.ZoomBy(ZoomInFactor) }
func (s *Store) ZoomOut() error { return s.ZoomBy(ZoomOutFactor) }

// Pan moves the center by dx, dy pixels.
func (s *Store) Pan(dx, dy int) error {
	return s.Update(func(v Viewport) (Viewport, error) {
		v.CenterX = v.CenterX.Add(v.Zoom.MulInt(dx))
		v.CenterY = v.CenterY.Add(v.Zoom.MulInt(dy))
		return v, nil
	})
}

func (s *Store) AdjustIterations(delta int) error {
	return s.Update(func(v Viewport) (Viewport, error) {
		v.MaxIterations += delta
		return v, nil
	})
}

// Reset restores the viewport the store was created with.
func (s *Store) Reset() error { return s.Set(s.initial) }
