package api

import (
	"context"
	"net/http"
	"time"
)

// Health check states reported per dependency.
const (
	checkOK      = "ok"
	checkUnknown = "unknown"
)

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Readings      int               `json:"readings"`
	Checks        map[string]string `json:"checks"`
}

// handleHealth reports 200 when the bus is connected and the sink healthy,
// 503 otherwise. A dependency that was not supplied is reported as unknown
// and does not fail the check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Service:       s.service,
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Readings:      len(s.readings.Snapshot()),
		Checks: map[string]string{
			"mqtt": s.check(r.Context(), s.bus),
			"sink": s.check(r.Context(), s.sink),
		},
	}

	status := http.StatusOK
	for _, result := range resp.Checks {
		if result != checkOK && result != checkUnknown {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, resp)
}

func (s *Server) check(ctx context.Context, hc HealthChecker) string {
	if hc == nil {
		return checkUnknown
	}
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := hc.HealthCheck(checkCtx); err != nil {
		return err.Error()
	}
	return checkOK
}
