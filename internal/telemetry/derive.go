package telemetry

// DefaultDerivedOffset is added to the raw reading to form the calculated value.
const DefaultDerivedOffset = 1.5

// Deriver computes the secondary "calculated" value from a raw reading.
// Implementations must be pure: same input, same output.
type Deriver interface {
	Derive(raw float64) float64
}

// OffsetDeriver adds a constant to the raw value.
type OffsetDeriver struct {
	Offset float64
}

// Derive returns raw + Offset.
func (d OffsetDeriver) Derive(raw float64) float64 {
	return raw + d.Offset
}

// DeriverFunc adapts a function to the Deriver interface.
type DeriverFunc func(raw float64) float64

// Derive calls f(raw).
func (f DeriverFunc) Derive(raw float64) float64 {
	return f(raw)
}
