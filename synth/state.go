package synth

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go-tabsynth/debug"
)

var (
	// ErrBusy means another context holds the engine right now
	ErrBusy = errors.New("synth state busy")
	// ErrPoisoned means an earlier holder panicked; the engine is not touched again
	ErrPoisoned = errors.New("synth state poisoned")
)

// State owns the single engine shared by the dispatcher and the render
// callback. Both mutate the engine (rendering advances oscillator phase), so
// they take the write side; only diagnostics use the read side.
type State struct {
	mu       sync.RWMutex
	engine   Engine
	variant  Variant
	poisoned atomic.Bool
}

// NewState takes ownership of engine
func NewState(engine Engine) *State {
	return &State{engine: engine, variant: engine.Variant()}
}

// Variant returns the active engine variant. It never changes after
// construction, so no lock is taken.
func (s *State) Variant() Variant {
	return s.variant
}

// Update runs fn with exclusive access, waiting for the lock if needed.
func (s *State) Update(fn func(Engine)) error {
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	return s.guard("update", func() { fn(s.engine) })
}

// TryRender produces the next sample without waiting. It returns ErrBusy if
// the lock is held and ErrPoisoned after a panic; the caller substitutes
// silence in both cases.
func (s *State) TryRender() (float32, error) {
	if s.poisoned.Load() {
		return 0, ErrPoisoned
	}
	if !s.mu.TryLock() {
		return 0, ErrBusy
	}
	defer s.mu.Unlock()
	if s.poisoned.Load() {
		return 0, ErrPoisoned
	}

	var sample float32
	err := s.guard("render", func() { sample = s.engine.GetSample() })
	return sample, err
}

// Inspect runs fn with shared access if the lock is free right now.
// fn must not mutate the engine.
func (s *State) Inspect(fn func(Engine)) error {
	if s.poisoned.Load() {
		return ErrPoisoned
	}
	if !s.mu.TryRLock() {
		return ErrBusy
	}
	defer s.mu.RUnlock()
	return s.guard("inspect", func() { fn(s.engine) })
}

// Poisoned reports whether a holder has panicked
func (s *State) Poisoned() bool {
	return s.poisoned.Load()
}

// ClearPoison re-enables access after an operator reset
func (s *State) ClearPoison() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned.Swap(false) {
		debug.Log("synth", "poison cleared")
	}
}

// guard converts a panic in fn into poison. Called with the lock held.
func (s *State) guard(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.poisoned.Store(true)
			debug.Error("synth", "%s panicked, state poisoned: %v", op, r)
			err = fmt.Errorf("%s: %w", op, ErrPoisoned)
		}
	}()
	fn()
	return nil
}
