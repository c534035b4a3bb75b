package router

// bendDeadZone suppresses controller jitter around the wheel's rest position
const bendDeadZone float32 = 0.02

// BendAmount converts pitch-bend data bytes to a bend value. The bytes are
// read as a little-endian int16 and scaled by 1/16000 around 1.0.
// The 1/16000 scale is intentional; it is not the 14-bit wheel mapping.
func BendAmount(lsb, msb uint8) float32 {
	raw := int16(uint16(lsb) | uint16(msb)<<8)
	return float32(raw)/16000.0 - 1.0
}

// InDeadZone reports whether bend should be treated as centred
func InDeadZone(bend float32) bool {
	return !(bend > bendDeadZone || bend < -bendDeadZone)
}
