package influxdb

import "errors"

// Sentinel errors for InfluxDB operations.
//
//	if errors.Is(err, influxdb.ErrNotConnected) {
//	    // Handle closed client
//	}
var (
	// ErrNotConnected indicates the client has been closed.
	ErrNotConnected = errors.New("influxdb: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrWriteFailed indicates the server rejected a point or could not be reached.
	ErrWriteFailed = errors.New("influxdb: write failed")
)
