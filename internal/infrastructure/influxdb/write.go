package influxdb

import (
	"context"
	"fmt"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/telemetry"
)

var _ telemetry.Sink = (*Client)(nil)

// WritePoint writes one point and waits for the server's response.
// An empty bucket or org falls back to the configured value.
func (c *Client) WritePoint(ctx context.Context, bucket, org string, p telemetry.Point) error {
	if bucket == "" {
		bucket = c.cfg.Bucket
	}
	if org == "" {
		org = c.cfg.Org
	}

	w, err := c.writer(org, bucket)
	if err != nil {
		return err
	}

	if err := w.WritePoint(ctx, toWritePoint(p)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, p.Measurement, err)
	}
	return nil
}

// toWritePoint converts a telemetry point to the client library's type.
func toWritePoint(p telemetry.Point) *write.Point {
	fields := make(map[string]interface{}, len(p.Fields))
	for name, value := range p.Fields {
		fields[name] = value
	}
	return write.NewPoint(p.Measurement, p.Tags, fields, p.Time)
}
