package telemetry

import (
	"reflect"
	"testing"
	"time"
)

func TestSlowBuilder(t *testing.T) {
	stored := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := Entry{Topic: "sensors/t1", Value: 10.0, Config: t1Config, Timestamp: stored}

	points := SlowBuilder{}.Build(entry, stored.Add(time.Hour))

	want := []Point{
		{
			Measurement: "temp",
			Tags:        map[string]string{"sensor": "s1"},
			Fields:      map[string]float64{"measured": 10.0},
			Time:        stored,
		},
		{
			Measurement: "temp",
			Tags:        map[string]string{"sensor": "s1"},
			Fields:      map[string]float64{"calculated": 11.5},
			Time:        stored,
		},
	}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("Build() = %+v, want %+v", points, want)
	}
}

func TestSlowBuilder_CustomFieldsAndDeriver(t *testing.T) {
	entry := Entry{Topic: "sensors/t1", Value: 3, Config: t1Config, Timestamp: time.Unix(100, 0)}

	b := SlowBuilder{
		Deriver:         DeriverFunc(func(raw float64) float64 { return raw * 10 }),
		MeasuredField:   "raw",
		CalculatedField: "scaled",
	}
	points := b.Build(entry, time.Now())

	if len(points) != 2 {
		t.Fatalf("Build() returned %d points, want 2", len(points))
	}
	if points[0].Fields["raw"] != 3 || points[1].Fields["scaled"] != 30 {
		t.Errorf("fields = %v, %v", points[0].Fields, points[1].Fields)
	}
}

func TestFastBuilder(t *testing.T) {
	stored := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	flushAt := stored.Add(5 * time.Second)
	entry := Entry{Topic: "sensors/t1", Value: 10.0, Config: t1Config, Timestamp: stored}

	points := FastBuilder{}.Build(entry, flushAt)

	want := []Point{{
		Measurement: "temp",
		Tags:        map[string]string{"sensor": "s1"},
		Fields:      map[string]float64{"fast measured": 10.0},
		Time:        flushAt,
	}}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("Build() = %+v, want %+v", points, want)
	}
}

func TestPoint_FieldNames(t *testing.T) {
	p := Point{Fields: map[string]float64{"b": 1, "a": 2}}
	if got := p.fieldNames(); got != "a,b" {
		t.Errorf("fieldNames() = %q, want %q", got, "a,b")
	}
}
