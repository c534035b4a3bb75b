package synth

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"go-tabsynth/midi"
)

const (
	tableSize  = 2048
	tableCount = 8
)

// WaveTable morphs between band-limited tables of increasing brightness.
// It carries its own CC map and takes raw messages through MidiInput.
type WaveTable struct {
	sampleRate float64
	tables     [tableCount][]float64
	voices     voices
	env        adsr

	knobs  [8]float32
	volume float32
	bend   float32

	vibPhase float64
}

var waveTableLabels = [8]string{"position", "attack", "decay", "sustain", "release", "vib rate", "vib depth", "level"}

// waveTableCC is the engine's own controller map: CC number -> knob index.
// CC 1 (mod wheel) drives vibrato depth here, not volume.
var waveTableCC = map[uint8]int{
	74: 0, // brightness
	73: 1, // attack
	75: 2, // decay
	70: 3, // sound variation
	72: 4, // release
	76: 5, // vibrato rate
	77: 6, // vibrato depth
	1:  6,
	7:  7, // channel volume
}

// NewWaveTable builds the tables and sets default knobs
func NewWaveTable(sampleRate float64) *WaveTable {
	w := &WaveTable{sampleRate: sampleRate, volume: 1}
	for i := range w.tables {
		w.tables[i] = buildSawTable(1 << i)
	}
	defaults := [8]float32{0.4, 0.02, 0.3, 0.8, 0.25, 0.3, 0, 0.8}
	for i, v := range defaults {
		w.setKnob(i, v)
	}
	return w
}

// buildSawTable sums the first n harmonics of a sawtooth and normalises the
// result to a peak of 1.
func buildSawTable(n int) []float64 {
	table := make([]float64, tableSize)
	partial := make([]float64, tableSize)
	for h := 1; h <= n; h++ {
		for i := range partial {
			partial[i] = math.Sin(2 * math.Pi * float64(h*i) / tableSize)
		}
		floats.AddScaled(table, 1/float64(h), partial)
	}
	if peak := floats.Norm(table, math.Inf(1)); peak > 0 {
		floats.Scale(1/peak, table)
	}
	return table
}

func (w *WaveTable) Variant() Variant { return VariantWaveTable }

func (w *WaveTable) Play(note, velocity uint8) { w.voices.start(note, velocity) }
func (w *WaveTable) Stop(note uint8)           { w.voices.release(note) }
func (w *WaveTable) Bend(amount float32)       { w.bend = amount }
func (w *WaveTable) Unbend()                   { w.bend = 0 }

func (w *WaveTable) setKnob(i int, v float32) bool {
	v = clamp01(v)
	w.knobs[i] = v
	switch i {
	case 1:
		w.env.attack = envTime(v)
	case 2:
		w.env.decay = envTime(v)
	case 3:
		w.env.sustain = float64(v)
	case 4:
		w.env.release = envTime(v)
	}
	return true
}

func (w *WaveTable) Knob1(v float32) bool { return w.setKnob(0, v) }
func (w *WaveTable) Knob2(v float32) bool { return w.setKnob(1, v) }
func (w *WaveTable) Knob3(v float32) bool { return w.setKnob(2, v) }
func (w *WaveTable) Knob4(v float32) bool { return w.setKnob(3, v) }
func (w *WaveTable) Knob5(v float32) bool { return w.setKnob(4, v) }
func (w *WaveTable) Knob6(v float32) bool { return w.setKnob(5, v) }
func (w *WaveTable) Knob7(v float32) bool { return w.setKnob(6, v) }
func (w *WaveTable) Knob8(v float32) bool { return w.setKnob(7, v) }

func (w *WaveTable) VolumeSwell(v float32) bool {
	w.volume = clamp01(v)
	return true
}

// MidiInput applies a raw message using the engine's own mapping
func (w *WaveTable) MidiInput(msg midi.Message) {
	switch msg.Kind {
	case midi.NoteOn:
		w.Play(msg.Key, msg.Velocity)
	case midi.NoteOff:
		w.Stop(msg.Key)
	case midi.PitchBend:
		// standard 14-bit centre at 8192
		v := int(msg.LSB) | int(msg.MSB)<<7
		w.Bend(float32(v-8192) / 8192)
	case midi.ControlChange:
		if i, ok := waveTableCC[msg.Control]; ok {
			w.setKnob(i, float32(msg.Value)/127)
		}
	}
}

func (w *WaveTable) GetSample() float32 {
	pos := float64(w.knobs[0]) * (tableCount - 1)
	lo := int(pos)
	hi := min(lo+1, tableCount-1)
	frac := pos - float64(lo)

	vibRate := 0.5 + float64(w.knobs[5])*8
	vibDepth := float64(w.knobs[6]) * 0.5 // semitones
	w.vibPhase = wrap(w.vibPhase + vibRate/w.sampleRate)
	ratio := bendRatio(w.bend) * math.Pow(2, vibDepth*math.Sin(2*math.Pi*w.vibPhase)/12)

	var mix float64
	for i := range w.voices {
		v := &w.voices[i]
		if !v.active() {
			continue
		}
		level := v.step(w.env, w.sampleRate)

		idx := int(v.phase*tableSize) & (tableSize - 1)
		s := w.tables[lo][idx]*(1-frac) + w.tables[hi][idx]*frac
		mix += s * level * v.velocity * 0.25

		v.phase = wrap(v.phase + v.freq*ratio/w.sampleRate)
	}

	out := mix * float64(w.knobs[7]) * float64(w.volume)
	return float32(math.Max(-1, math.Min(1, out)))
}

func (w *WaveTable) Params() Params {
	return Params{
		Knobs:  w.knobs,
		Labels: waveTableLabels,
		Volume: w.volume,
		Bend:   w.bend,
		Voices: w.voices.count(),
	}
}
