package router

import "go-tabsynth/synth"

// KnobFunc applies a normalised controller value to an engine
type KnobFunc func(e synth.Engine, value float32) bool

// KnobTable maps a CC number to the engine capability it drives. It is used
// for every engine variant that does not route CC itself.
var KnobTable = map[uint8]KnobFunc{
	70: synth.Engine.Knob1,
	71: synth.Engine.Knob2,
	72: synth.Engine.Knob3,
	73: synth.Engine.Knob4,
	74: synth.Engine.Knob5,
	75: synth.Engine.Knob6,
	76: synth.Engine.Knob7,
	77: synth.Engine.Knob8,
	1:  synth.Engine.VolumeSwell,
}

// NormalizeCC maps a 7-bit controller value onto [0,1]
func NormalizeCC(value uint8) float32 {
	return float32(value) / 127.0
}
