package synth_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-tabsynth/internal/synthtest"
	"go-tabsynth/synth"
)

func TestState_UpdateAndRender(t *testing.T) {
	rec := synthtest.NewRecorder(synth.VariantSubSynth)
	rec.Sample = 0.25
	s := synth.NewState(rec)

	require.NoError(t, s.Update(func(e synth.Engine) { e.Play(60, 100) }))
	assert.Equal(t, []string{"Play(60,100)"}, rec.Strings())

	sample, err := s.TryRender()
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), sample)
	assert.Equal(t, synth.VariantSubSynth, s.Variant())
}

func TestState_TryRenderBusy(t *testing.T) {
	rec := synthtest.NewRecorder(synth.VariantSubSynth)
	rec.Sample = 1
	s := synth.NewState(rec)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Update(func(synth.Engine) {
			close(held)
			<-release
		})
	}()
	<-held

	start := time.Now()
	for i := 0; i < 1000; i++ {
		sample, err := s.TryRender()
		assert.ErrorIs(t, err, synth.ErrBusy)
		assert.Zero(t, sample)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "render must not wait for the lock")
	assert.Zero(t, rec.Samples())

	close(release)
	<-done

	_, err := s.TryRender()
	assert.NoError(t, err)
}

func TestState_PanicPoisons(t *testing.T) {
	rec := synthtest.NewRecorder(synth.VariantWaveTable)
	rec.PanicOn = "Play"
	s := synth.NewState(rec)

	err := s.Update(func(e synth.Engine) { e.Play(60, 100) })
	require.ErrorIs(t, err, synth.ErrPoisoned)
	assert.True(t, s.Poisoned())

	// every later access is refused and the engine is not touched
	calls := len(rec.Calls())
	assert.ErrorIs(t, s.Update(func(e synth.Engine) { e.Stop(60) }), synth.ErrPoisoned)
	_, err = s.TryRender()
	assert.ErrorIs(t, err, synth.ErrPoisoned)
	assert.ErrorIs(t, s.Inspect(func(synth.Engine) {}), synth.ErrPoisoned)
	assert.Len(t, rec.Calls(), calls)
	assert.Zero(t, rec.Samples())

	s.ClearPoison()
	assert.False(t, s.Poisoned())
	rec.PanicOn = ""
	assert.NoError(t, s.Update(func(e synth.Engine) { e.Stop(60) }))
}

func TestState_RenderPanicPoisons(t *testing.T) {
	rec := synthtest.NewRecorder(synth.VariantSubSynth)
	rec.PanicOn = "GetSample"
	s := synth.NewState(rec)

	_, err := s.TryRender()
	assert.ErrorIs(t, err, synth.ErrPoisoned)
	assert.True(t, s.Poisoned())
}

func TestState_Inspect(t *testing.T) {
	rec := synthtest.NewRecorder(synth.VariantSubSynth)
	s := synth.NewState(rec)

	var vol float32
	require.NoError(t, s.Inspect(func(e synth.Engine) { vol = e.Params().Volume }))
	assert.Equal(t, float32(1), vol)

	held := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Update(func(synth.Engine) {
			close(held)
			<-release
		})
	}()
	<-held
	assert.ErrorIs(t, s.Inspect(func(synth.Engine) {}), synth.ErrBusy)
	close(release)
	wg.Wait()
}

func TestState_ConcurrentUpdates(t *testing.T) {
	rec := synthtest.NewRecorder(synth.VariantSubSynth)
	s := synth.NewState(rec)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, s.Update(func(e synth.Engine) { e.Knob1(0.5) }))
				_, _ = s.TryRender()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, rec.Calls(), 800)
}
