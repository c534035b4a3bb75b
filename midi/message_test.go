package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want Message
	}{
		{"note on", []byte{0x90, 60, 100}, Message{Kind: NoteOn, Key: 60, Velocity: 100}},
		{"note on ch 5", []byte{0x95, 61, 1}, Message{Kind: NoteOn, Channel: 5, Key: 61, Velocity: 1}},
		{"note on zero velocity stays note on", []byte{0x90, 60, 0}, Message{Kind: NoteOn, Key: 60}},
		{"note off", []byte{0x80, 60, 64}, Message{Kind: NoteOff, Key: 60, Velocity: 64}},
		{"pitch bend", []byte{0xE3, 0x12, 0x40}, Message{Kind: PitchBend, Channel: 3, LSB: 0x12, MSB: 0x40}},
		{"control change", []byte{0xB0, 74, 127}, Message{Kind: ControlChange, Control: 74, Value: 127}},
		{"program change", []byte{0xC2, 7}, Message{Kind: ProgramChange, Channel: 2, Program: 7}},
		{"aftertouch", []byte{0xD0, 10}, Message{Kind: Other}},
		{"clock", []byte{0xF8}, Message{Kind: Other}},
		{"trailing bytes ignored", []byte{0x90, 60, 100, 0x80}, Message{Kind: NoteOn, Key: 60, Velocity: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Channel, got.Channel)
			assert.Equal(t, tt.want.Key, got.Key)
			assert.Equal(t, tt.want.Velocity, got.Velocity)
			assert.Equal(t, tt.want.LSB, got.LSB)
			assert.Equal(t, tt.want.MSB, got.MSB)
			assert.Equal(t, tt.want.Control, got.Control)
			assert.Equal(t, tt.want.Value, got.Value)
			assert.Equal(t, tt.want.Program, got.Program)
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string][]byte{
		"nil":               nil,
		"empty":             {},
		"data byte first":   {0x3C, 0x64},
		"truncated note on": {0x90, 60},
		"status only":       {0xB0},
		"data with top bit": {0x90, 0x80, 0x10},
		"sysex":             {0xF0, 0x7E, 0xF7},
		"undefined system":  {0xF4},
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			require.NotPanics(t, func() {
				assert.Equal(t, Invalid, Decode(raw).Kind)
			})
		})
	}
}

func TestDecode_Deterministic(t *testing.T) {
	inputs := [][]byte{
		{0x90, 60, 100}, {0x80, 60, 0}, {0xE0, 0, 0x40}, {0xB1, 70, 12}, {0x12}, {},
	}
	for _, raw := range inputs {
		first := Decode(raw)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Decode(raw))
		}
	}
}

func TestDecode_GomidiMessages(t *testing.T) {
	m := Decode(gomidi.NoteOn(2, 64, 90))
	assert.Equal(t, NoteOn, m.Kind)
	assert.Equal(t, uint8(2), m.Channel)
	assert.Equal(t, uint8(64), m.Key)
	assert.Equal(t, uint8(90), m.Velocity)

	m = Decode(gomidi.NoteOff(0, 64))
	assert.Equal(t, NoteOff, m.Kind)

	m = Decode(gomidi.ControlChange(0, 71, 33))
	assert.Equal(t, ControlChange, m.Kind)
	assert.Equal(t, uint8(71), m.Control)
	assert.Equal(t, uint8(33), m.Value)

	m = Decode(gomidi.Pitchbend(0, 0))
	assert.Equal(t, PitchBend, m.Kind)
	assert.Equal(t, uint8(0x00), m.LSB)
	assert.Equal(t, uint8(0x40), m.MSB)
}

func TestMessage_Raw(t *testing.T) {
	raw := []byte{0xB0, 74, 99, 0xFF}
	m := Decode(raw)
	assert.Equal(t, []byte{0xB0, 74, 99}, m.Raw())

	// Raw is a copy
	r := m.Raw()
	r[1] = 0
	assert.Equal(t, byte(74), m.Raw()[1])

	assert.Empty(t, Decode(nil).Raw())
}

func TestDecodeFrom(t *testing.T) {
	m, err := DecodeFrom(func() ([]byte, error) { return []byte{0x90, 1, 2}, nil })
	require.NoError(t, err)
	assert.Equal(t, NoteOn, m.Kind)

	boom := errors.New("array elements unavailable")
	m, err = DecodeFrom(func() ([]byte, error) { return []byte{0x90, 1, 2}, boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, Invalid, m.Kind, "no message is produced on acquisition failure")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "NoteOn", NoteOn.String())
	assert.Equal(t, "Invalid", Kind(99).String())
	assert.Contains(t, Decode([]byte{0x90, 60, 100}).String(), "key=60")
}
