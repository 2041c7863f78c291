package tsdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-sensorbridge/internal/telemetry"
)

var _ telemetry.Sink = (*Client)(nil)

// maxErrorBody caps how much of an error response is kept in the error.
const maxErrorBody = 512

// WritePoint sends one point and waits for VictoriaMetrics to accept it.
// bucket becomes the db query parameter; org is ignored.
func (c *Client) WritePoint(ctx context.Context, bucket, _ string, p telemetry.Point) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	endpoint := c.url + "/write"
	if bucket != "" {
		endpoint += "?" + url.Values{"db": {bucket}}.Encode()
	}

	line := formatLineProtocol(p.Measurement, p.Tags, p.Fields, p.Time)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(line+"\n"))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // Best effort detail
		return fmt.Errorf("%w: HTTP %d: %s", ErrWriteFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // Drain for connection reuse
	return nil
}

// formatLineProtocol formats a point as one InfluxDB line protocol record.
//
// Format: measurement,tag1=val1,tag2=val2 field1=val1,field2=val2 timestamp_ns
//
// Tags and fields are sorted so output is deterministic.
func formatLineProtocol(measurement string, tags map[string]string, fields map[string]float64, t time.Time) string {
	var b strings.Builder

	b.WriteString(escapeMeasurement(measurement))

	for _, k := range sortedKeys(tags) {
		b.WriteByte(',')
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(escapeTag(tags[k]))
	}

	b.WriteByte(' ')
	for i, k := range sortedKeys(fields) {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(fields[k], 'g', -1, 64))
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(t.UnixNano(), 10))

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeTag escapes tag keys, tag values and field keys.
// Backslashes are doubled first so a trailing one cannot escape the next
// separator; commas, equals signs, and spaces are then backslash-escaped.
// Newlines are stripped to prevent line protocol injection.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// escapeMeasurement escapes measurement names. Newlines are stripped.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
