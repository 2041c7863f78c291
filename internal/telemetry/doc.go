// Package telemetry decouples MQTT ingestion from time-series writes.
//
// The Listener records the latest numeric reading per configured topic in a
// Cache. Independently, each Flusher wakes on its own cadence, snapshots the
// cache and writes points to a Sink:
//
//   - the slow cadence (hourly by default) writes the raw value as "measured"
//     and a derived value as "calculated", both at the reading's timestamp
//   - the fast cadence (5s by default) writes the raw value as
//     "fast measured" stamped with the flush time
//
// A failed write is logged and counted; the remaining entries of the tick
// are still written. Flushers never modify the cache.
//
// Service owns the cache, the sink reference and both flushers so that the
// process entry point wires a single object into the bus and the HTTP API.
package telemetry
