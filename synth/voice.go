package synth

import "math"

const (
	maxVoices    = 16
	bendRange    = 2.0 // semitones at full bend
	minEnvSecs   = 0.001
	maxEnvSecs   = 4.0
	silenceLevel = 1e-4
)

type envStage int

const (
	envIdle envStage = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// adsr holds envelope times in seconds and a sustain level
type adsr struct {
	attack, decay, sustain, release float64
}

type voice struct {
	note     uint8
	velocity float64
	freq     float64
	phase    float64
	subPhase float64
	level    float64
	stage    envStage
}

func (v *voice) active() bool { return v.stage != envIdle }

// step advances the envelope by one sample and returns the current level
func (v *voice) step(env adsr, sampleRate float64) float64 {
	switch v.stage {
	case envAttack:
		v.level += 1 / (env.attack * sampleRate)
		if v.level >= 1 {
			v.level = 1
			v.stage = envDecay
		}
	case envDecay:
		v.level -= (1 - env.sustain) / (env.decay * sampleRate)
		if v.level <= env.sustain {
			v.level = env.sustain
			v.stage = envSustain
		}
	case envRelease:
		v.level -= 1 / (env.release * sampleRate)
		if v.level <= silenceLevel {
			v.level = 0
			v.stage = envIdle
		}
	}
	return v.level
}

// voices is a fixed pool; a note that finds no free slot is ignored
type voices [maxVoices]voice

// start retriggers note if it is sounding, else takes a free slot.
// Velocity 0 is a key release, as many keyboards send it in place of NoteOff.
func (vs *voices) start(note, velocity uint8) {
	if velocity == 0 {
		vs.release(note)
		return
	}
	free := -1
	for i := range vs {
		if vs[i].active() && vs[i].note == note {
			free = i
			break
		}
	}
	for i := 0; free < 0 && i < len(vs); i++ {
		if !vs[i].active() {
			free = i
		}
	}
	if free < 0 {
		return
	}
	v := &vs[free]
	if !v.active() {
		v.phase, v.subPhase, v.level = 0, 0, 0
	}
	v.note = note
	v.velocity = float64(velocity) / 127
	v.freq = noteFreq(note)
	v.stage = envAttack
}

func (vs *voices) release(note uint8) {
	for i := range vs {
		if vs[i].active() && vs[i].note == note {
			vs[i].stage = envRelease
		}
	}
}

func (vs *voices) count() int {
	n := 0
	for i := range vs {
		if vs[i].active() {
			n++
		}
	}
	return n
}

func noteFreq(note uint8) float64 {
	return 440 * math.Pow(2, (float64(note)-69)/12)
}

// bendRatio converts a bend amount in [-1,1] to a frequency multiplier
func bendRatio(amount float32) float64 {
	return math.Pow(2, float64(amount)*bendRange/12)
}

// envTime maps a knob value to an envelope time on a squared curve
func envTime(value float32) float64 {
	v := float64(clamp01(value))
	return minEnvSecs + v*v*(maxEnvSecs-minEnvSecs)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func wrap(phase float64) float64 {
	return phase - math.Floor(phase)
}
