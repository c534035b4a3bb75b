package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController forwards everything a MIDI keyboard sends to a Sink
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()
	received atomic.Uint64
	once     sync.Once
}

// NewKeyboardController opens inPort and starts forwarding to sink
func NewKeyboardController(id string, inPort drivers.In, sink Sink) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:     id,
		inPort: inPort,
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			kb.received.Add(1)
			// the driver may reuse its buffer after we return
			raw := make([]byte, len(msg))
			copy(raw, msg)
			sink(raw)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) Type() ControllerType {
	return ControllerKeyboard
}

func (kb *KeyboardController) Received() uint64 {
	return kb.received.Load()
}

func (kb *KeyboardController) Close() error {
	var err error
	kb.once.Do(func() {
		if kb.stopFunc != nil {
			kb.stopFunc()
		}
		if kb.inPort != nil && kb.inPort.IsOpen() {
			err = kb.inPort.Close()
		}
	})
	return err
}
