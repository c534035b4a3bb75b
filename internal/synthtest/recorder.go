// Package synthtest provides a recording engine for tests.
package synthtest

import (
	"fmt"
	"sync"

	"go-tabsynth/midi"
	"go-tabsynth/synth"
)

// Call is one capability invocation
type Call struct {
	Name  string
	Note  uint8
	Vel   uint8
	Value float32
	Msg   midi.Message
}

func (c Call) String() string {
	switch c.Name {
	case "Play":
		return fmt.Sprintf("Play(%d,%d)", c.Note, c.Vel)
	case "Stop":
		return fmt.Sprintf("Stop(%d)", c.Note)
	case "Unbend":
		return "Unbend()"
	case "MidiInput":
		return fmt.Sprintf("MidiInput(%s)", c.Msg)
	default:
		return fmt.Sprintf("%s(%g)", c.Name, c.Value)
	}
}

// Recorder implements synth.Engine and synth.MidiReceiver, recording every
// call. GetSample returns Sample and counts calls.
type Recorder struct {
	Kind   synth.Variant
	Sample float32

	// PanicOn makes the named capability panic (for poison tests)
	PanicOn string

	mu      sync.Mutex
	calls   []Call
	samples int
}

// NewRecorder creates a recorder reporting variant v
func NewRecorder(v synth.Variant) *Recorder {
	return &Recorder{Kind: v}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.PanicOn == c.Name {
		panic("synthtest: " + c.Name)
	}
}

// Calls returns a copy of the recorded calls
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Strings returns the recorded calls formatted, handy for assert.Equal
func (r *Recorder) Strings() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Samples returns how many times GetSample ran
func (r *Recorder) Samples() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.samples
}

func (r *Recorder) Variant() synth.Variant { return r.Kind }

func (r *Recorder) Play(note, velocity uint8) { r.record(Call{Name: "Play", Note: note, Vel: velocity}) }
func (r *Recorder) Stop(note uint8)           { r.record(Call{Name: "Stop", Note: note}) }
func (r *Recorder) Bend(amount float32)       { r.record(Call{Name: "Bend", Value: amount}) }
func (r *Recorder) Unbend()                   { r.record(Call{Name: "Unbend"}) }

func (r *Recorder) knob(name string, v float32) bool {
	r.record(Call{Name: name, Value: v})
	return true
}

func (r *Recorder) Knob1(v float32) bool       { return r.knob("Knob1", v) }
func (r *Recorder) Knob2(v float32) bool       { return r.knob("Knob2", v) }
func (r *Recorder) Knob3(v float32) bool       { return r.knob("Knob3", v) }
func (r *Recorder) Knob4(v float32) bool       { return r.knob("Knob4", v) }
func (r *Recorder) Knob5(v float32) bool       { return r.knob("Knob5", v) }
func (r *Recorder) Knob6(v float32) bool       { return r.knob("Knob6", v) }
func (r *Recorder) Knob7(v float32) bool       { return r.knob("Knob7", v) }
func (r *Recorder) Knob8(v float32) bool       { return r.knob("Knob8", v) }
func (r *Recorder) VolumeSwell(v float32) bool { return r.knob("VolumeSwell", v) }

func (r *Recorder) MidiInput(msg midi.Message) {
	r.record(Call{Name: "MidiInput", Msg: msg})
}

func (r *Recorder) GetSample() float32 {
	r.mu.Lock()
	r.samples++
	r.mu.Unlock()
	if r.PanicOn == "GetSample" {
		panic("synthtest: GetSample")
	}
	return r.Sample
}

func (r *Recorder) Params() synth.Params {
	return synth.Params{Volume: 1}
}
