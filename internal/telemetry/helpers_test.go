package telemetry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
)

// t1Config mirrors the sensors/t1 entry of the sample topics file.
var t1Config = topic.Config{Measurement: "temp", TagKey: "sensor", SensorName: "s1", ValueField: "valor"}

func testRegistry(t *testing.T, names ...string) *topic.Registry {
	t.Helper()

	configs := make(map[string]topic.Config, len(names))
	for i, name := range names {
		cfg := t1Config
		cfg.SensorName = fmt.Sprintf("s%d", i+1)
		configs[name] = cfg
	}

	r, err := topic.NewRegistry(configs)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

type writeCall struct {
	Bucket string
	Org    string
	Point  Point
}

// fakeSink records writes. fail, when set, decides per point whether the
// write is rejected.
type fakeSink struct {
	mu     sync.Mutex
	writes []writeCall
	fail   func(p Point) error

	// written is signalled after every successful write when non-nil.
	written chan struct{}
}

func (s *fakeSink) WritePoint(ctx context.Context, bucket, org string, p Point) error {
	if s.fail != nil {
		if err := s.fail(p); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.writes = append(s.writes, writeCall{Bucket: bucket, Org: org, Point: p})
	s.mu.Unlock()

	if s.written != nil {
		select {
		case s.written <- struct{}{}:
		default:
		}
	}
	return nil
}

func (s *fakeSink) calls() []writeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]writeCall, len(s.writes))
	copy(out, s.writes)
	return out
}

// recordingLogger keeps the error values passed to Error and Warn.
type recordingLogger struct {
	mu     sync.Mutex
	errors []error
	warns  []string
}

func (l *recordingLogger) Debug(string, ...any) {}
func (l *recordingLogger) Info(string, ...any)  {}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *recordingLogger) Error(_ string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := 0; i+1 < len(args); i += 2 {
		if err, ok := args[i+1].(error); ok && args[i] == "error" {
			l.errors = append(l.errors, err)
		}
	}
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// metricValue returns the value of a counter or gauge sample matching the
// given label pair, or -1 if absent. An empty label matches unlabelled series.
func metricValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && !hasLabel(m.GetLabel(), label, value) {
				continue
			}
			if c := m.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := m.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	return -1
}

type labelPair interface {
	GetName() string
	GetValue() string
}

func hasLabel[L labelPair](labels []L, name, value string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == value {
			return true
		}
	}
	return false
}
