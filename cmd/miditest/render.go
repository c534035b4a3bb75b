package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"go-tabsynth/audio"
	"go-tabsynth/core"
	"go-tabsynth/synth"
)

// cue is a message scheduled at a time offset into the phrase
type cue struct {
	at  float64 // seconds
	msg midi.Message
}

// testPhrase exercises notes, knobs, volume and pitch bend
func testPhrase() []cue {
	return []cue{
		{0.00, midi.NoteOn(0, 60, 100)},
		{0.25, midi.ControlChange(0, 74, 100)},
		{0.50, midi.NoteOn(0, 64, 90)},
		{0.75, midi.Pitchbend(0, 4096)},
		{1.00, midi.NoteOn(0, 67, 80)},
		{1.25, midi.Pitchbend(0, 0)},
		{1.50, midi.ControlChange(0, 1, 64)},
		{2.00, midi.NoteOff(0, 60)},
		{2.00, midi.NoteOff(0, 64)},
		{2.00, midi.NoteOff(0, 67)},
	}
}

// RenderPhrase plays testPhrase through the full ingest/dispatch/render path
// and writes seconds of audio as WAV to w. Each cue is fully dispatched
// before the chunk containing it is rendered, so output is repeatable.
func RenderPhrase(w io.WriteSeeker, engineName string, sampleRate, chunkSize int, seconds float64) (audio.RenderStats, error) {
	v, err := synth.ParseVariant(engineName)
	if err != nil {
		return audio.RenderStats{}, err
	}
	engine, err := synth.New(v, float64(sampleRate))
	if err != nil {
		return audio.RenderStats{}, err
	}

	rt := core.NewRuntime(engine, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.StartRuntime(ctx)
	defer rt.Stop()

	out := audio.NewWAVWriter(w, rt.Renderer, sampleRate, chunkSize)

	cues := testPhrase()
	next := 0
	var sent uint64
	chunks := int(seconds * float64(sampleRate) / float64(chunkSize))

	for c := 0; c < chunks; c++ {
		chunkEnd := float64((c+1)*chunkSize) / float64(sampleRate)
		for next < len(cues) && cues[next].at < chunkEnd {
			rt.Ingest(cues[next].msg)
			sent++
			next++
		}
		if err := waitHandled(rt, sent, time.Second); err != nil {
			return rt.Renderer.Stats(), err
		}
		if err := out.RenderChunk(); err != nil {
			return rt.Renderer.Stats(), err
		}
	}

	if err := out.Close(); err != nil {
		return rt.Renderer.Stats(), err
	}
	return rt.Renderer.Stats(), nil
}

func waitHandled(rt *core.Runtime, n uint64, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for rt.Dispatcher.Stats().Handled < n {
		if time.Now().After(deadline) {
			return fmt.Errorf("dispatcher handled %d of %d messages", rt.Dispatcher.Stats().Handled, n)
		}
		time.Sleep(100 * time.Microsecond)
	}
	return nil
}
