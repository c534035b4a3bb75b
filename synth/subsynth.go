package synth

import "math"

// SubSynth is a small subtractive engine: saw/square oscillator plus a
// sub-oscillator one octave down, through a one-pole lowpass.
type SubSynth struct {
	sampleRate float64
	voices     voices
	env        adsr

	knobs  [8]float32
	volume float32
	bend   float32

	cutoff float64 // lowpass coefficient in (0,1]
	lp     float64
}

var subSynthLabels = [8]string{"attack", "decay", "sustain", "release", "cutoff", "detune", "shape", "sub"}

// NewSubSynth creates a SubSynth with mid-range defaults
func NewSubSynth(sampleRate float64) *SubSynth {
	s := &SubSynth{sampleRate: sampleRate, volume: 1}
	defaults := [8]float32{0.05, 0.3, 0.7, 0.2, 0.8, 0, 0, 0.3}
	setters := s.knobSetters()
	for i, v := range defaults {
		setters[i](v)
	}
	return s
}

func (s *SubSynth) Variant() Variant { return VariantSubSynth }

func (s *SubSynth) Play(note, velocity uint8) { s.voices.start(note, velocity) }
func (s *SubSynth) Stop(note uint8)           { s.voices.release(note) }
func (s *SubSynth) Bend(amount float32)       { s.bend = amount }
func (s *SubSynth) Unbend()                   { s.bend = 0 }

func (s *SubSynth) knobSetters() [8]func(float32) bool {
	return [8]func(float32) bool{
		s.Knob1, s.Knob2, s.Knob3, s.Knob4, s.Knob5, s.Knob6, s.Knob7, s.Knob8,
	}
}

func (s *SubSynth) Knob1(v float32) bool {
	s.knobs[0] = clamp01(v)
	s.env.attack = envTime(v)
	return true
}

func (s *SubSynth) Knob2(v float32) bool {
	s.knobs[1] = clamp01(v)
	s.env.decay = envTime(v)
	return true
}

func (s *SubSynth) Knob3(v float32) bool {
	s.knobs[2] = clamp01(v)
	s.env.sustain = float64(clamp01(v))
	return true
}

func (s *SubSynth) Knob4(v float32) bool {
	s.knobs[3] = clamp01(v)
	s.env.release = envTime(v)
	return true
}

func (s *SubSynth) Knob5(v float32) bool {
	s.knobs[4] = clamp01(v)
	// 20 Hz .. ~20 kHz, exponential
	hz := 20 * math.Pow(1000, float64(s.knobs[4]))
	s.cutoff = 1 - math.Exp(-2*math.Pi*hz/s.sampleRate)
	return true
}

func (s *SubSynth) Knob6(v float32) bool { s.knobs[5] = clamp01(v); return true }
func (s *SubSynth) Knob7(v float32) bool { s.knobs[6] = clamp01(v); return true }
func (s *SubSynth) Knob8(v float32) bool { s.knobs[7] = clamp01(v); return true }

func (s *SubSynth) VolumeSwell(v float32) bool {
	s.volume = clamp01(v)
	return true
}

func (s *SubSynth) GetSample() float32 {
	ratio := bendRatio(s.bend)
	detune := 1 + float64(s.knobs[5])*0.02
	shape := float64(s.knobs[6])
	subLevel := float64(s.knobs[7])

	var mix float64
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active() {
			continue
		}
		level := v.step(s.env, s.sampleRate)

		saw := 2*v.phase - 1
		square := 1.0
		if v.phase >= 0.5 {
			square = -1
		}
		sub := 1.0
		if v.subPhase >= 0.5 {
			sub = -1
		}
		osc := (1-shape)*saw + shape*square + subLevel*sub
		mix += osc * level * v.velocity * 0.2

		inc := v.freq * ratio / s.sampleRate
		v.phase = wrap(v.phase + inc*detune)
		v.subPhase = wrap(v.subPhase + inc/2)
	}

	s.lp += s.cutoff * (mix - s.lp)
	out := s.lp * float64(s.volume)
	return float32(math.Max(-1, math.Min(1, out)))
}

func (s *SubSynth) Params() Params {
	return Params{
		Knobs:  s.knobs,
		Labels: subSynthLabels,
		Volume: s.volume,
		Bend:   s.bend,
		Voices: s.voices.count(),
	}
}
