package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
)

// Flusher names used in logs and metric labels.
const (
	SlowFlusherName = "slow"
	FastFlusherName = "fast"
)

// ServiceConfig holds the dependencies of a Service.
type ServiceConfig struct {
	Registry *topic.Registry
	Sink     Sink

	// Bucket and Org address the time-series store.
	Bucket string
	Org    string

	Flush config.FlushConfig

	// Deriver overrides the slow cadence's derived metric.
	// Nil uses OffsetDeriver with Flush.Slow.DerivedOffset.
	Deriver Deriver

	// Registerer receives the Prometheus collectors. Nil disables metrics.
	Registerer prometheus.Registerer

	Logger Logger

	// Clock overrides time.Now for both arrival and flush times.
	Clock func() time.Time
}

// Service owns the latest-value cache and the flushers that drain it.
type Service struct {
	registry *topic.Registry
	cache    *Cache
	listener *Listener
	flushers []*Flusher
	logger   Logger
}

// NewService wires a cache, a listener and one flusher per enabled cadence.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Registry == nil {
		return nil, errors.New("telemetry: topic registry is required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("telemetry: sink is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	var metrics *Metrics
	if cfg.Registerer != nil {
		metrics = NewMetrics(cfg.Registerer)
	}

	cache := NewCache(cfg.Registry)
	metrics.observeCache(cache)

	listener := NewListener(cache, metrics)
	listener.SetLogger(logger)
	listener.SetClock(cfg.Clock)

	s := &Service{
		registry: cfg.Registry,
		cache:    cache,
		listener: listener,
		logger:   logger,
	}

	deriver := cfg.Deriver
	if deriver == nil {
		deriver = OffsetDeriver{Offset: cfg.Flush.Slow.DerivedOffset}
	}

	base := FlusherConfig{
		Bucket:       cfg.Bucket,
		Org:          cfg.Org,
		WriteTimeout: cfg.Flush.WriteTimeoutDuration(),
		Clock:        cfg.Clock,
		Metrics:      metrics,
	}

	if cfg.Flush.Slow.Enabled {
		fc := base
		fc.Name = SlowFlusherName
		fc.Interval = cfg.Flush.SlowInterval()
		fc.ResendUnchanged = cfg.Flush.Slow.ResendUnchanged
		fc.Builder = SlowBuilder{
			Deriver:         deriver,
			MeasuredField:   cfg.Flush.Slow.MeasuredField,
			CalculatedField: cfg.Flush.Slow.CalculatedField,
		}
		if err := s.addFlusher(cache, cfg.Sink, fc); err != nil {
			return nil, err
		}
	}

	if cfg.Flush.Fast.Enabled {
		fc := base
		fc.Name = FastFlusherName
		fc.Interval = cfg.Flush.FastInterval()
		fc.ResendUnchanged = cfg.Flush.Fast.ResendUnchanged
		fc.Builder = FastBuilder{Field: cfg.Flush.Fast.Field}
		if err := s.addFlusher(cache, cfg.Sink, fc); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Service) addFlusher(cache *Cache, sink Sink, fc FlusherConfig) error {
	f, err := NewFlusher(cache, sink, fc)
	if err != nil {
		return err
	}
	f.SetLogger(s.logger)
	s.flushers = append(s.flushers, f)
	return nil
}

// Start launches every flusher.
func (s *Service) Start(ctx context.Context) {
	for _, f := range s.flushers {
		f.Start(ctx)
	}
	s.logger.Info("telemetry service started",
		"topics", s.registry.Len(),
		"flushers", len(s.flushers),
	)
}

// Stop stops every flusher and waits for in-flight ticks.
func (s *Service) Stop() {
	for _, f := range s.flushers {
		f.Stop()
	}
	s.logger.Info("telemetry service stopped")
}

// Listener returns the ingestion handler to attach to the bus.
func (s *Service) Listener() *Listener {
	return s.listener
}

// Cache returns the latest-value cache.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Registry returns the topic configuration.
func (s *Service) Registry() *topic.Registry {
	return s.registry
}

// Flushers returns the configured flushers in slow, fast order.
func (s *Service) Flushers() []*Flusher {
	out := make([]*Flusher, len(s.flushers))
	copy(out, s.flushers)
	return out
}

// Subscriptions returns the topics to subscribe to, sorted.
func (s *Service) Subscriptions() []string {
	return s.registry.Topics()
}
