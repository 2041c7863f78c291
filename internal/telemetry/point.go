package telemetry

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
)

// Reading is one decoded inbound message.
type Reading struct {
	Topic     string
	Value     float64
	ArrivedAt time.Time
}

// Entry is the cached latest reading for a topic together with the
// configuration resolved when it was stored.
type Entry struct {
	Topic     string       `json:"topic"`
	Value     float64      `json:"value"`
	Config    topic.Config `json:"config"`
	Timestamp time.Time    `json:"timestamp"`
}

// Point is a single time-series record.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]float64
	Time        time.Time
}

// newPoint builds a single-field point tagged with the entry's sensor.
func newPoint(e Entry, field string, value float64, ts time.Time) Point {
	return Point{
		Measurement: e.Config.Measurement,
		Tags:        map[string]string{e.Config.TagKey: e.Config.SensorName},
		Fields:      map[string]float64{field: value},
		Time:        ts,
	}
}

// fieldNames returns the point's field keys, sorted and comma-joined.
func (p Point) fieldNames() string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// Sink writes points to a time-series store.
//
// Implementations must be safe for concurrent use: both flushers share one.
// WritePoint blocks until the store accepts or rejects the point.
type Sink interface {
	WritePoint(ctx context.Context, bucket, org string, p Point) error
}
