package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	r, _, _ := newTestRenderer(0.5, 2)
	w := NewWAVWriter(f, r, 48000, 64)
	assert.Equal(t, 64, w.ChunkSize())

	for i := 0; i < 3; i++ {
		require.NoError(t, w.RenderChunk())
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()

	dec := wav.NewDecoder(in)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, uint32(48000), dec.SampleRate)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint16(16), dec.BitDepth)
	require.Len(t, buf.Data, 3*64*2)

	want := int(math.Round(0.5 * math.MaxInt16))
	for _, s := range buf.Data {
		assert.Equal(t, want, s)
	}
}
