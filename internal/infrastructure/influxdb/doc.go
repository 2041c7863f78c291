// Package influxdb writes sensor points to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library and implements the
// telemetry sink. Writes go through the blocking write API so each point's
// outcome is known to the flusher that sent it:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.WritePoint(ctx, "iot-device", "iot", point)
//
// Connect pings the server and fails with ErrConnectionFailed if it is not
// reachable or reports itself unhealthy.
package influxdb
