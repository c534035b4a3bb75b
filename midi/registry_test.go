package midi

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-tabsynth/debug"
)

func TestRegistry_ClearThenRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("a")
	r.Register("b")
	r.Clear()
	r.Register("c")

	assert.Equal(t, []string{"c"}, r.Snapshot())
}

func TestRegistry_OrderAndDuplicates(t *testing.T) {
	r := NewRegistry()
	r.Register("Keystation 49")
	r.Register("nanoKONTROL2")
	r.Register("Keystation 49")

	assert.Equal(t, []string{"Keystation 49", "nanoKONTROL2", "Keystation 49"}, r.Snapshot())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_SnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("a")
	snap := r.Snapshot()
	snap[0] = "changed"
	r.Register("b")

	assert.Equal(t, []string{"a", "b"}, r.Snapshot())
	assert.Equal(t, []string{"changed"}, snap)
}

func TestRegistry_TrySnapshotSkipsWhileWriting(t *testing.T) {
	r := NewRegistry()
	r.Register("a")

	r.mu.Lock()
	names, ok := r.TrySnapshot()
	r.mu.Unlock()
	assert.False(t, ok)
	assert.Nil(t, names)

	names, ok = r.TrySnapshot()
	assert.True(t, ok)
	assert.Equal(t, []string{"a"}, names)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Register(fmt.Sprintf("dev-%d-%d", w, i))
			}
		}(w)
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, name := range r.Snapshot() {
					assert.NotEmpty(t, name)
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, r.Len())
}

func TestRegistry_RegisterLogsContents(t *testing.T) {
	var buf bytes.Buffer
	debug.EnableTo(&buf, slog.LevelInfo)
	defer debug.Disable()

	r := NewRegistry()
	r.Register("Keystation 49")
	r.Register("nanoKEY2")

	assert.Contains(t, buf.String(), `known devices: [\"Keystation 49\" \"nanoKEY2\"]`)
}
