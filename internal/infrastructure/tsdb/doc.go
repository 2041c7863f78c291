// Package tsdb writes sensor points to VictoriaMetrics.
//
// VictoriaMetrics accepts InfluxDB line protocol on its /write endpoint, so
// this client is a drop-in alternative sink (sink.kind: victoriametrics).
// Each WritePoint is one HTTP POST carrying one line; the response decides
// the outcome of that point alone.
//
// The bucket argument maps to the db query parameter, which VictoriaMetrics
// records as the "db" label. The org argument has no VictoriaMetrics
// equivalent and is ignored.
package tsdb
