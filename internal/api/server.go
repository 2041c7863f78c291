package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/telemetry"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
	"github.com/prometheus/client_golang/prometheus"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// healthCheckTimeout bounds each dependency check made by /api/v1/health.
const healthCheckTimeout = 3 * time.Second

// HealthChecker is implemented by the MQTT client and both sinks.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ReadingSource is the read side of the latest-value cache.
type ReadingSource interface {
	Snapshot() []telemetry.Entry
	Get(topic string) (telemetry.Entry, bool)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	Logger   *logging.Logger
	Readings ReadingSource
	Topics   *topic.Registry
	Bus      HealthChecker       // optional; health reports "unknown" when nil
	Sink     HealthChecker       // optional; health reports "unknown" when nil
	Gatherer prometheus.Gatherer // optional; /metrics is not mounted when nil

	// ServiceName identifies this bridge instance in health responses.
	ServiceName string
	Version     string
}

// Server is the HTTP status server.
//
// It is created with New, started with Start, and stopped with Close.
type Server struct {
	cfg       config.APIConfig
	logger    *logging.Logger
	readings  ReadingSource
	topics    *topic.Registry
	bus       HealthChecker
	sink      HealthChecker
	gatherer  prometheus.Gatherer
	service   string
	version   string
	startTime time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Readings == nil {
		return nil, fmt.Errorf("reading source is required")
	}
	if deps.Topics == nil {
		return nil, fmt.Errorf("topic registry is required")
	}

	return &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		readings:  deps.Readings,
		topics:    deps.Topics,
		bus:       deps.Bus,
		sink:      deps.Sink,
		gatherer:  deps.Gatherer,
		service:   deps.ServiceName,
		version:   deps.Version,
		startTime: time.Now(),
	}, nil
}

// Handler returns the routed handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start binds the listen address and serves in a background goroutine.
//
// A bind failure (port in use) is returned; errors after that are logged.
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
