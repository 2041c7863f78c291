package telemetry

import "time"

// Default field names written by the two cadences.
const (
	DefaultMeasuredField   = "measured"
	DefaultCalculatedField = "calculated"
	DefaultFastField       = "fast measured"
)

// PointBuilder turns one cached entry into the points a flusher writes.
// now is the flush tick's own time.
type PointBuilder interface {
	Build(e Entry, now time.Time) []Point
}

// SlowBuilder emits the raw value and its derived value, both stamped with
// the time the reading arrived.
type SlowBuilder struct {
	Deriver         Deriver
	MeasuredField   string
	CalculatedField string
}

// Build returns exactly two points: measured first, then calculated.
func (b SlowBuilder) Build(e Entry, _ time.Time) []Point {
	deriver := b.Deriver
	if deriver == nil {
		deriver = OffsetDeriver{Offset: DefaultDerivedOffset}
	}

	return []Point{
		newPoint(e, orDefault(b.MeasuredField, DefaultMeasuredField), e.Value, e.Timestamp),
		newPoint(e, orDefault(b.CalculatedField, DefaultCalculatedField), deriver.Derive(e.Value), e.Timestamp),
	}
}

// FastBuilder emits the raw value stamped with the flush time, so a stale
// reading shows up as a repeated value at each tick.
type FastBuilder struct {
	Field string
}

// Build returns exactly one point.
func (b FastBuilder) Build(e Entry, now time.Time) []Point {
	return []Point{
		newPoint(e, orDefault(b.Field, DefaultFastField), e.Value, now),
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
