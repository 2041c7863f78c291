// Sensor bridge: MQTT sensor readings to a time-series store.
//
// Every numeric reading published on a configured topic updates an in-memory
// latest-value cache. Two independent flushers drain that cache on their own
// cadences:
//   - slow (hourly): raw and derived values stamped with the arrival time
//   - fast (5s): the raw value stamped with the flush time
//
// Points go to InfluxDB v2 or VictoriaMetrics, selected by sink.kind.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/gray-logic-sensorbridge/migrations"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/api"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/tsdb"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/telemetry"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// healthInterval is how often bus and sink reachability is logged.
const healthInterval = time.Minute

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// sink is a telemetry.Sink with a lifecycle.
type sink interface {
	telemetry.Sink
	HealthCheck(ctx context.Context) error
	Close() error
}

// run is the application logic, separated from main for testability.
// It returns nil on clean shutdown; only startup failures are errors.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting sensor bridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version).With("instance", cfg.Service.Name)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	registry, err := loadTopics(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("loading topics: %w", err)
	}
	log.Info("topic registry loaded", "source", cfg.Topics.Source, "topics", registry.Len())

	out, err := connectSink(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Sink.Kind, err)
	}
	defer func() {
		log.Info("closing sink", "kind", cfg.Sink.Kind)
		if closeErr := out.Close(); closeErr != nil {
			log.Error("error closing sink", "error", closeErr)
		}
	}()
	log.Info("sink connected", "kind", cfg.Sink.Kind)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc, err := telemetry.NewService(telemetry.ServiceConfig{
		Registry:   registry,
		Sink:       out,
		Bucket:     cfg.InfluxDB.Bucket,
		Org:        cfg.InfluxDB.Org,
		Flush:      cfg.Flush,
		Registerer: promReg,
		Logger:     log.With("component", "telemetry"),
	})
	if err != nil {
		return fmt.Errorf("creating telemetry service: %w", err)
	}

	mqttClient, err := mqtt.Connect(ctx, cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", mqttClient.ClientID(),
	)

	qos := byte(cfg.MQTT.QoS) //nolint:gosec // Validate restricts qos to 0..2
	for _, name := range svc.Subscriptions() {
		if subErr := mqttClient.Subscribe(name, qos, svc.Listener().Handle); subErr != nil {
			return fmt.Errorf("subscribing to %s: %w", name, subErr)
		}
		log.Info("subscribed", "topic", name, "qos", qos)
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer, err = api.New(api.Deps{
			Config:      cfg.API,
			Logger:      log.With("component", "api"),
			Readings:    svc.Cache(),
			Topics:      registry,
			Bus:         mqttClient,
			Sink:        out,
			Gatherer:    promReg,
			ServiceName: cfg.Service.Name,
			Version:     version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := apiServer.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	flushersStopped := make(chan struct{})

	svc.Start(gctx)
	log.Info("sensor bridge started",
		"flushers", len(svc.Flushers()),
		"subscriptions", mqttClient.SubscriptionCount(),
	)

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, stopping flushers")
		svc.Stop()
		close(flushersStopped)
		return nil
	})

	g.Go(func() error {
		<-flushersStopped
		if apiServer == nil {
			return nil
		}
		return apiServer.Close()
	})

	g.Go(func() error {
		monitorHealth(gctx, log, mqttClient, out)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
	}

	log.Info("sensor bridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Checks SENSORBRIDGE_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("SENSORBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadTopics builds the topic registry from the configured source.
//
// In database mode an empty topic_configs table is seeded from topics.file
// when one is configured.
func loadTopics(ctx context.Context, cfg *config.Config, log *logging.Logger) (*topic.Registry, error) {
	if cfg.Topics.Source != config.TopicSourceDatabase {
		return topic.LoadFile(cfg.Topics.File)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Registry is fully loaded before close

	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	store := topic.NewSQLiteStore(db.DB)
	registry, err := store.Load(ctx)
	if err == nil || !errors.Is(err, topic.ErrNoTopics) || cfg.Topics.File == "" {
		return registry, err
	}

	seed, err := topic.LoadFile(cfg.Topics.File)
	if err != nil {
		return nil, fmt.Errorf("seeding topic_configs: %w", err)
	}
	if err := store.Import(ctx, seed); err != nil {
		return nil, err
	}
	log.Info("topic_configs seeded from file", "file", cfg.Topics.File, "topics", seed.Len())

	return store.Load(ctx)
}

// connectSink connects the backend named by sink.kind.
func connectSink(ctx context.Context, cfg *config.Config) (sink, error) {
	if cfg.Sink.Kind == config.SinkVictoriaMetrics {
		client, err := tsdb.Connect(ctx, cfg.VictoriaMetrics)
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// monitorHealth logs bus and sink reachability until ctx is cancelled.
func monitorHealth(ctx context.Context, log *logging.Logger, checks ...interface {
	HealthCheck(context.Context) error
}) {
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := healthCheck(ctx, checks...); err != nil {
				log.Warn("health check failed", "error", err)
			}
		}
	}
}

// healthCheck runs every check and joins the failures.
func healthCheck(ctx context.Context, checks ...interface {
	HealthCheck(context.Context) error
}) error {
	var errs []error
	for _, c := range checks {
		if err := c.HealthCheck(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
