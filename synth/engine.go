// Package synth holds the synthesis engines and the state shared between the
// MIDI dispatcher and the audio render callback.
package synth

import (
	"fmt"
	"strings"

	"go-tabsynth/midi"
)

// Variant identifies an engine implementation. The set is closed.
type Variant int

const (
	VariantSubSynth Variant = iota
	VariantWaveTable
)

func (v Variant) String() string {
	switch v {
	case VariantSubSynth:
		return "subsynth"
	case VariantWaveTable:
		return "wavetable"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant maps a config name to a Variant
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "subsynth", "sub":
		return VariantSubSynth, nil
	case "wavetable", "wave-table", "wt":
		return VariantWaveTable, nil
	}
	return 0, fmt.Errorf("unknown engine %q", name)
}

// Engine is the capability surface every synthesis engine exposes.
// The knob methods take values in [0,1] and report whether the engine
// used the value.
type Engine interface {
	Variant() Variant

	Play(note, velocity uint8)
	Stop(note uint8)
	Bend(amount float32)
	Unbend()

	Knob1(value float32) bool
	Knob2(value float32) bool
	Knob3(value float32) bool
	Knob4(value float32) bool
	Knob5(value float32) bool
	Knob6(value float32) bool
	Knob7(value float32) bool
	Knob8(value float32) bool
	VolumeSwell(value float32) bool

	// GetSample advances the engine by one sample
	GetSample() float32

	// Params is a read-only view for diagnostics
	Params() Params
}

// MidiReceiver is implemented by engines that route MIDI themselves
type MidiReceiver interface {
	MidiInput(msg midi.Message)
}

// Params describes engine state for display
type Params struct {
	Knobs  [8]float32
	Labels [8]string
	Volume float32
	Bend   float32
	Voices int
}

// New builds the engine for v
func New(v Variant, sampleRate float64) (Engine, error) {
	switch v {
	case VariantSubSynth:
		return NewSubSynth(sampleRate), nil
	case VariantWaveTable:
		return NewWaveTable(sampleRate), nil
	}
	return nil, fmt.Errorf("no engine for %s", v)
}
