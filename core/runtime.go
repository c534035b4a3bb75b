// Package core wires the ingest queue, dispatcher, shared synth state and
// device registry into one explicitly constructed runtime.
package core

import (
	"context"
	"sync"

	"go-tabsynth/audio"
	"go-tabsynth/debug"
	"go-tabsynth/midi"
	"go-tabsynth/router"
	"go-tabsynth/synth"
)

// Runtime is handed to every execution context at startup: producers call
// Ingest, the dispatcher goroutine drains the queue, and the audio backend
// pulls from Renderer.
type Runtime struct {
	Queue      *midi.Queue
	State      *synth.State
	Registry   *midi.Registry
	Dispatcher *router.Dispatcher
	Renderer   *audio.Renderer

	dropLog *debug.Every

	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// NewRuntime takes ownership of engine
func NewRuntime(engine synth.Engine, channels int) *Runtime {
	queue := midi.NewQueue()
	state := synth.NewState(engine)
	return &Runtime{
		Queue:      queue,
		State:      state,
		Registry:   midi.NewRegistry(),
		Dispatcher: router.NewDispatcher(queue, state),
		Renderer:   audio.NewRenderer(state, channels),
		dropLog:    debug.NewEvery(100),
	}
}

// StartRuntime starts the dispatcher goroutine (called once at startup)
func (rt *Runtime) StartRuntime(ctx context.Context) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.started {
		return
	}
	rt.started = true

	rt.wg.Add(1)
	go func() {
		defer rt.wg.Done()
		if err := rt.Dispatcher.Run(ctx); err != nil && ctx.Err() == nil {
			debug.Error("runtime", "dispatcher stopped: %v", err)
		}
	}()
}

// Stop closes the queue and waits for the dispatcher to drain it
func (rt *Runtime) Stop() {
	rt.Queue.Close()
	rt.wg.Wait()
}

// Ingest decodes raw and queues the result. It never blocks. Invalid
// messages are queued too so the dispatcher accounts for them.
func (rt *Runtime) Ingest(raw []byte) midi.Message {
	msg := midi.Decode(raw)
	if msg.Kind == midi.Invalid {
		debug.Log("ingest", "undecodable bytes % x", raw)
	}
	rt.enqueue(msg)
	return msg
}

// IngestFrom acquires bytes with acquire and queues the decoded message.
// An acquisition failure is returned and nothing is queued.
func (rt *Runtime) IngestFrom(acquire func() ([]byte, error)) error {
	msg, err := midi.DecodeFrom(acquire)
	if err != nil {
		debug.Error("ingest", "%v", err)
		return err
	}
	rt.enqueue(msg)
	return nil
}

func (rt *Runtime) enqueue(msg midi.Message) {
	if !rt.Queue.Send(msg) {
		if rt.dropLog.Tick() {
			debug.Log("ingest", "queue closed, dropped %s (%d dropped)", msg, rt.dropLog.Count())
		}
	}
}
