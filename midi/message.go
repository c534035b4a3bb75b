package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Status nibbles for channel voice messages
const (
	StatusNoteOff       uint8 = 0x80
	StatusNoteOn        uint8 = 0x90
	StatusPolyPressure  uint8 = 0xA0
	StatusControlChange uint8 = 0xB0
	StatusProgramChange uint8 = 0xC0
	StatusChanPressure  uint8 = 0xD0
	StatusPitchBend     uint8 = 0xE0
	StatusSystem        uint8 = 0xF0
)

// Kind identifies which variant a Message holds
type Kind int

const (
	Invalid Kind = iota
	NoteOn
	NoteOff
	PitchBend
	ControlChange
	ProgramChange
	Other // well-formed but not routed (aftertouch, system)
)

func (k Kind) String() string {
	switch k {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case PitchBend:
		return "PitchBend"
	case ControlChange:
		return "ControlChange"
	case ProgramChange:
		return "ProgramChange"
	case Other:
		return "Other"
	default:
		return "Invalid"
	}
}

// Message is a decoded MIDI message. Only the fields belonging to Kind are
// meaningful:
//
//	NoteOn/NoteOff: Channel, Key, Velocity
//	PitchBend:      Channel, LSB, MSB
//	ControlChange:  Channel, Control, Value
//	ProgramChange:  Channel, Program
type Message struct {
	Kind    Kind
	Channel uint8

	Key      uint8
	Velocity uint8

	LSB uint8
	MSB uint8

	Control uint8
	Value   uint8

	Program uint8

	raw [3]byte
	n   uint8
}

// Raw returns a copy of the bytes the message was decoded from (trailing
// bytes beyond the message length are not kept).
func (m Message) Raw() []byte {
	out := make([]byte, m.n)
	copy(out, m.raw[:m.n])
	return out
}

func (m Message) String() string {
	switch m.Kind {
	case NoteOn, NoteOff:
		return fmt.Sprintf("%s ch=%d key=%d vel=%d", m.Kind, m.Channel, m.Key, m.Velocity)
	case PitchBend:
		return fmt.Sprintf("PitchBend ch=%d lsb=%d msb=%d", m.Channel, m.LSB, m.MSB)
	case ControlChange:
		return fmt.Sprintf("ControlChange ch=%d cc=%d val=%d", m.Channel, m.Control, m.Value)
	case ProgramChange:
		return fmt.Sprintf("ProgramChange ch=%d prog=%d", m.Channel, m.Program)
	case Other:
		return "Other " + gomidi.Message(m.Raw()).String()
	default:
		return "Invalid"
	}
}

// Decode turns raw bytes into exactly one Message. It never panics:
// empty, truncated, or otherwise malformed input decodes to Invalid.
func Decode(raw []byte) Message {
	if len(raw) == 0 || raw[0]&0x80 == 0 {
		return Message{}
	}

	status := raw[0]
	size := messageSize(status)
	if size == 0 || len(raw) < size {
		return Message{}
	}
	for _, b := range raw[1:size] {
		if b&0x80 != 0 {
			return Message{}
		}
	}

	m := Message{Channel: status & 0x0F, n: uint8(size)}
	copy(m.raw[:], raw[:size])

	switch status & 0xF0 {
	case StatusNoteOn:
		m.Kind, m.Key, m.Velocity = NoteOn, raw[1], raw[2]
	case StatusNoteOff:
		m.Kind, m.Key, m.Velocity = NoteOff, raw[1], raw[2]
	case StatusPitchBend:
		m.Kind, m.LSB, m.MSB = PitchBend, raw[1], raw[2]
	case StatusControlChange:
		m.Kind, m.Control, m.Value = ControlChange, raw[1], raw[2]
	case StatusProgramChange:
		m.Kind, m.Program = ProgramChange, raw[1]
	default:
		m.Kind = Other
		if status >= StatusSystem {
			m.Channel = 0
		}
	}
	return m
}

// DecodeFrom acquires the bytes with acquire and decodes them. An acquisition
// error is returned as-is and no message is produced.
func DecodeFrom(acquire func() ([]byte, error)) (Message, error) {
	raw, err := acquire()
	if err != nil {
		return Message{}, fmt.Errorf("acquire midi bytes: %w", err)
	}
	return Decode(raw), nil
}

// messageSize is the full length of a message with the given status byte,
// or 0 for statuses this decoder does not accept (sysex and undefined).
func messageSize(status uint8) int {
	switch status & 0xF0 {
	case StatusNoteOff, StatusNoteOn, StatusPolyPressure, StatusControlChange, StatusPitchBend:
		return 3
	case StatusProgramChange, StatusChanPressure:
		return 2
	}
	switch status {
	case 0xF1, 0xF3: // MTC quarter frame, song select
		return 2
	case 0xF2: // song position
		return 3
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return 1
	}
	return 0
}
