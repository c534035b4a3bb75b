package debug

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelsAndCategory(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf, slog.LevelInfo)
	defer Disable()
	assert.True(t, Enabled())

	Log("devices", "connected %q", "Keystation 49")
	Debugf("dispatch", "playing note: %d", 60)
	Error("render", "boom")

	out := buf.String()
	assert.Contains(t, out, `connected \"Keystation 49\"`)
	assert.Contains(t, out, "cat=devices")
	assert.Contains(t, out, "level=ERROR")
	assert.NotContains(t, out, "playing note", "debug records are below the handler level")
}

func TestDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf, slog.LevelDebug)
	Disable()
	assert.False(t, Enabled())

	Log("x", "hidden")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestEvery(t *testing.T) {
	var buf bytes.Buffer
	EnableTo(&buf, slog.LevelInfo)
	defer Disable()

	e := NewEvery(4)
	for i := 0; i < 10; i++ {
		if e.Tick() {
			Log("every-test", "tick %d", e.Count())
		}
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "tick "))
	assert.Equal(t, int64(10), e.Count())
}

func TestEvery_DisabledCountsNothing(t *testing.T) {
	Disable()
	e := NewEvery(1)
	assert.False(t, e.Tick())
	assert.Zero(t, e.Count())
}

func TestEvery_TickDoesNotAllocate(t *testing.T) {
	EnableTo(io.Discard, slog.LevelInfo)
	defer Disable()

	e := NewEvery(1 << 30)
	allocs := testing.AllocsPerRun(1000, func() { e.Tick() })
	assert.Zero(t, allocs)
}
