package audio

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tabsynth/debug"
	"go-tabsynth/internal/synthtest"
	"go-tabsynth/synth"
)

func newTestRenderer(sample float32, channels int) (*Renderer, *synth.State, *synthtest.Recorder) {
	rec := synthtest.NewRecorder(synth.VariantSubSynth)
	rec.Sample = sample
	state := synth.NewState(rec)
	return NewRenderer(state, channels), state, rec
}

func TestRender_FansOutToChannels(t *testing.T) {
	r, _, rec := newTestRenderer(0.5, 2)
	buf := make([]float32, 8)
	r.Render(buf)

	for _, s := range buf {
		assert.Equal(t, float32(0.5), s)
	}
	assert.Equal(t, 4, rec.Samples(), "one engine sample per frame")
	assert.Equal(t, RenderStats{Frames: 4}, r.Stats())
}

func TestRender_PartialFrameUntouched(t *testing.T) {
	r, _, _ := newTestRenderer(0.5, 2)
	buf := []float32{9, 9, 9}
	r.Render(buf)
	assert.Equal(t, []float32{0.5, 0.5, 9}, buf)
}

func TestNewRenderer_ClampsChannels(t *testing.T) {
	r, _, _ := newTestRenderer(0, 0)
	assert.Equal(t, 1, r.Channels())
}

// TestRender_SilenceWhileLocked holds the engine lock for far longer than a
// chunk period and checks that Render completes with silence anyway.
func TestRender_SilenceWhileLocked(t *testing.T) {
	const chunk = 512
	r, state, rec := newTestRenderer(0.75, 1)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = state.Update(func(synth.Engine) {
			close(held)
			<-release
		})
	}()
	<-held
	defer close(release)

	buf := make([]float32, chunk)
	for i := range buf {
		buf[i] = 1
	}

	start := time.Now()
	r.Render(buf)
	elapsed := time.Since(start)

	period := time.Duration(chunk) * time.Second / 48000
	assert.Less(t, elapsed, 5*period)
	for _, s := range buf {
		require.Zero(t, s)
	}
	assert.Zero(t, rec.Samples())
	assert.Equal(t, RenderStats{Frames: chunk, Silence: chunk}, r.Stats())
}

func TestRender_SilenceDoesNotAllocate(t *testing.T) {
	var logBuf bytes.Buffer
	debug.EnableTo(&logBuf, slog.LevelInfo)
	defer debug.Disable()

	r, state, _ := newTestRenderer(0.75, 1)
	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = state.Update(func(synth.Engine) {
			close(held)
			<-release
		})
	}()
	<-held
	defer close(release)

	// stays below the 4096-frame log interval
	buf := make([]float32, 256)
	allocs := testing.AllocsPerRun(5, func() { r.Render(buf) })
	assert.Zero(t, allocs)
	assert.Equal(t, uint64(6*256), r.Stats().Silence)
}

func TestRender_PoisonedIsSilent(t *testing.T) {
	r, _, rec := newTestRenderer(0.75, 1)
	rec.PanicOn = "GetSample"

	buf := make([]float32, 16)
	r.Render(buf)
	for _, s := range buf {
		assert.Zero(t, s)
	}
	assert.Equal(t, uint64(16), r.Stats().Silence)
	assert.Equal(t, 1, rec.Samples(), "engine is not touched after the panic")
}

func TestRead_Float32LE(t *testing.T) {
	r, _, _ := newTestRenderer(-0.25, 2)
	p := make([]byte, 4*2*3+3) // three frames plus a stray byte

	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 24, n)
	for i := 0; i < 6; i++ {
		s := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		assert.Equal(t, float32(-0.25), s)
	}
}
