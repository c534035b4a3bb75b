// Package audio drives the shared synth state from an output device (or an
// offline writer) one chunk at a time.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"go-tabsynth/debug"
	"go-tabsynth/synth"
)

// Renderer is the render callback. It never waits on the synth lock: a
// frame whose sample cannot be produced right now is written as silence.
type Renderer struct {
	state    *synth.State
	channels int

	frames  atomic.Uint64
	silence atomic.Uint64
	dropLog *debug.Every

	// scratch for Read; only the audio goroutine touches it
	buf []float32
}

// RenderStats counts rendered frames and frames replaced by silence
type RenderStats struct {
	Frames  uint64
	Silence uint64
}

// NewRenderer renders state into interleaved buffers of channels channels
func NewRenderer(state *synth.State, channels int) *Renderer {
	if channels < 1 {
		channels = 1
	}
	return &Renderer{state: state, channels: channels, dropLog: debug.NewEvery(4096)}
}

// Channels returns the physical channel count
func (r *Renderer) Channels() int {
	return r.channels
}

// Render fills buf, an interleaved buffer of r.Channels() channels. Each
// frame gets one engine sample copied into every channel.
func (r *Renderer) Render(buf []float32) {
	for frame := 0; frame+r.channels <= len(buf); frame += r.channels {
		value, err := r.state.TryRender()
		if err != nil {
			value = 0
			r.silence.Add(1)
			if r.dropLog.Tick() {
				debug.Log("render", "silence substituted: %v (%d frames)", err, r.dropLog.Count())
			}
		}
		for ch := 0; ch < r.channels; ch++ {
			buf[frame+ch] = value
		}
		r.frames.Add(1)
	}
}

// Read implements io.Reader over float32 little-endian frames so a Renderer
// can feed oto directly. It always fills whole samples of p.
func (r *Renderer) Read(p []byte) (int, error) {
	n := len(p) / 4
	n -= n % r.channels
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	samples := r.buf[:n]
	r.Render(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	return n * 4, nil
}

// Stats returns current counters
func (r *Renderer) Stats() RenderStats {
	return RenderStats{
		Frames:  r.frames.Load(),
		Silence: r.silence.Load(),
	}
}
