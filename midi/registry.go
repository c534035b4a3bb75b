package midi

import (
	"sync"

	"go-tabsynth/debug"
)

// Registry is the ordered list of MIDI input device names seen so far.
// Names are appended in discovery order; duplicates are kept.
type Registry struct {
	mu    sync.RWMutex
	names []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends name and logs the registry contents
func (r *Registry) Register(name string) {
	r.mu.Lock()
	r.names = append(r.names, name)
	var known []string
	if debug.Enabled() {
		known = r.copyLocked()
	}
	r.mu.Unlock()

	debug.Log("devices", "registered %q, known devices: %q", name, known)
}

// Clear forgets every registered name
func (r *Registry) Clear() {
	r.mu.Lock()
	r.names = nil
	r.mu.Unlock()

	debug.Log("devices", "cleared known devices")
}

// Snapshot returns a copy of the names in registration order
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyLocked()
}

// TrySnapshot is Snapshot without waiting: it reports false if a writer
// holds the lock.
func (r *Registry) TrySnapshot() ([]string, bool) {
	if !r.mu.TryRLock() {
		return nil, false
	}
	defer r.mu.RUnlock()
	return r.copyLocked(), true
}

// Len returns the number of registered names
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

func (r *Registry) copyLocked() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}
