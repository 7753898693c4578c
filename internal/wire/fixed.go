package wire

// Fixed is the Wayland wire protocol's 24.8 signed fixed-point type, used
// for fractional pointer and output-scale values.
type Fixed int32

// FixedFromFloat64 converts a float64 to wire Fixed representation.
func FixedFromFloat64(f float64) Fixed {
	return Fixed(int32(f * 256))
}

// ToFloat64 converts a wire Fixed value back to float64.
func (f Fixed) ToFloat64() float64 {
	return float64(f) / 256
}
