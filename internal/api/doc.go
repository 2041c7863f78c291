// Package api implements the read-only HTTP status surface of the sensor bridge.
//
// This package provides:
//   - GET /api/v1/health: bus and sink reachability
//   - GET /api/v1/readings: the latest value of every topic seen so far
//   - GET /api/v1/readings/{topic}: one cached entry
//   - GET /api/v1/topics: the configured topic registry
//   - GET /metrics: Prometheus exposition
//
// # Graceful Degradation
//
// Health reports 503 when the MQTT bus is disconnected or the sink fails its
// health check; every other endpoint keeps answering from the in-memory cache.
package api
