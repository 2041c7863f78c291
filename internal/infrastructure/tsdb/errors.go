package tsdb

import "errors"

// Sentinel errors for VictoriaMetrics operations.
//
//	if errors.Is(err, tsdb.ErrWriteFailed) {
//	    // count and move on
//	}
var (
	// ErrNotConnected indicates the client has been closed.
	ErrNotConnected = errors.New("tsdb: not connected")

	// ErrConnectionFailed indicates the initial health check failed.
	ErrConnectionFailed = errors.New("tsdb: connection failed")

	// ErrWriteFailed indicates a write was rejected or could not be sent.
	ErrWriteFailed = errors.New("tsdb: write failed")
)
