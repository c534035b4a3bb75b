// Package router consumes decoded MIDI messages and applies them to the
// shared synth state.
package router

import (
	"context"
	"errors"
	"sync/atomic"

	"go-tabsynth/debug"
	"go-tabsynth/midi"
	"go-tabsynth/synth"
)

// Stats counts what the dispatcher has done
type Stats struct {
	Handled uint64 // messages taken off the queue
	Invalid uint64 // dropped as undecodable
	Skipped uint64 // not applied because the state was poisoned
}

// Dispatcher is the single consumer of the ingest queue
type Dispatcher struct {
	queue *midi.Queue
	state *synth.State

	handled atomic.Uint64
	invalid atomic.Uint64
	skipped atomic.Uint64
	last    atomic.Pointer[midi.Message]
	skipLog *debug.Every
}

// NewDispatcher wires a dispatcher between queue and state
func NewDispatcher(queue *midi.Queue, state *synth.State) *Dispatcher {
	return &Dispatcher{queue: queue, state: state, skipLog: debug.NewEvery(100)}
}

// Run handles messages one at a time until ctx is done or the queue is
// closed and drained (blocking - run in goroutine)
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		msg, err := d.queue.Recv(ctx)
		if err != nil {
			if errors.Is(err, midi.ErrQueueClosed) {
				debug.Log("dispatch", "queue closed, dispatcher exiting")
				return nil
			}
			return err
		}
		d.Handle(msg)
	}
}

// Handle applies one message. Errors never escape: undecodable messages are
// logged and dropped, and a poisoned state is skipped.
func (d *Dispatcher) Handle(msg midi.Message) {
	d.last.Store(&msg)
	// counted once applied, so Handled == n means n messages took effect
	defer d.handled.Add(1)

	if msg.Kind == midi.Invalid {
		d.invalid.Add(1)
		debug.Error("dispatch", "received an invalid MIDI message")
		return
	}

	if !routed(msg.Kind) {
		return
	}

	err := d.state.Update(func(e synth.Engine) {
		d.apply(e, msg)
	})
	if err != nil {
		d.skipped.Add(1)
		if d.skipLog.Tick() {
			debug.Log("dispatch", "dropping %s: %v (%d dropped)", msg, err, d.skipLog.Count())
		}
	}
}

func routed(k midi.Kind) bool {
	switch k {
	case midi.NoteOn, midi.NoteOff, midi.PitchBend, midi.ControlChange:
		return true
	}
	return false
}

// apply runs with the state lock held
func (d *Dispatcher) apply(e synth.Engine, msg midi.Message) {
	switch msg.Kind {
	case midi.NoteOn:
		debug.Debugf("dispatch", "playing note: %d", msg.Key)
		e.Play(msg.Key, msg.Velocity)

	case midi.NoteOff:
		e.Stop(msg.Key)

	case midi.PitchBend:
		bend := BendAmount(msg.LSB, msg.MSB)
		if InDeadZone(bend) {
			e.Unbend()
		} else {
			e.Bend(bend)
		}

	case midi.ControlChange:
		if e.Variant() == synth.VariantWaveTable {
			if r, ok := e.(synth.MidiReceiver); ok {
				r.MidiInput(msg)
			}
			return
		}
		if knob, ok := KnobTable[msg.Control]; ok {
			knob(e, NormalizeCC(msg.Value))
		}
	}
}

// Last returns the most recently handled message
func (d *Dispatcher) Last() (midi.Message, bool) {
	if p := d.last.Load(); p != nil {
		return *p, true
	}
	return midi.Message{}, false
}

// Stats returns current counters
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Handled: d.handled.Load(),
		Invalid: d.invalid.Load(),
		Skipped: d.skipped.Load(),
	}
}
