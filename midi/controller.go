package midi

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerKeyboard
)

func (t ControllerType) String() string {
	if t == ControllerKeyboard {
		return "keyboard"
	}
	return "unknown"
}

// Sink receives the raw bytes of each incoming MIDI message. It is called
// from the driver's callback goroutine and must not block.
type Sink func(raw []byte)

// Controller is an open MIDI input device
type Controller interface {
	ID() string
	Type() ControllerType

	// Received counts messages forwarded to the sink
	Received() uint64

	Close() error
}
