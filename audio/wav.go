package audio

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth  = 16
	wavPCMFormat = 1
)

// WAVWriter renders chunks offline into a 16-bit PCM WAV stream
type WAVWriter struct {
	renderer  *Renderer
	enc       *wav.Encoder
	chunkSize int
	floatBuf  []float32
	intBuf    *goaudio.IntBuffer
}

// NewWAVWriter writes renderer output to w in chunks of chunkSize frames
func NewWAVWriter(w io.WriteSeeker, renderer *Renderer, sampleRate, chunkSize int) *WAVWriter {
	channels := renderer.Channels()
	return &WAVWriter{
		renderer:  renderer,
		enc:       wav.NewEncoder(w, sampleRate, wavBitDepth, channels, wavPCMFormat),
		chunkSize: chunkSize,
		floatBuf:  make([]float32, chunkSize*channels),
		intBuf: &goaudio.IntBuffer{
			Data:           make([]int, chunkSize*channels),
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: wavBitDepth,
		},
	}
}

// RenderChunk runs the render callback once and appends the chunk
func (w *WAVWriter) RenderChunk() error {
	w.renderer.Render(w.floatBuf)
	for i, s := range w.floatBuf {
		w.intBuf.Data[i] = int(math.Round(float64(s) * math.MaxInt16))
	}
	if err := w.enc.Write(w.intBuf); err != nil {
		return fmt.Errorf("write wav chunk: %w", err)
	}
	return nil
}

// ChunkSize returns frames per chunk
func (w *WAVWriter) ChunkSize() int {
	return w.chunkSize
}

// Close finalises the WAV header. It does not close the underlying writer.
func (w *WAVWriter) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalise wav: %w", err)
	}
	return nil
}
