package tsdb

import (
	"testing"
	"time"
)

func TestFormatLineProtocol(t *testing.T) {
	ts := time.Unix(0, 1500)

	tests := []struct {
		name        string
		measurement string
		tags        map[string]string
		fields      map[string]float64
		want        string
	}{
		{
			name:        "single field",
			measurement: "temp",
			tags:        map[string]string{"sensor": "s1"},
			fields:      map[string]float64{"measured": 21.5},
			want:        "temp,sensor=s1 measured=21.5 1500",
		},
		{
			name:        "sorted tags and fields",
			measurement: "temp",
			tags:        map[string]string{"zone": "b", "sensor": "s1"},
			fields:      map[string]float64{"measured": 1, "calculated": 2.5},
			want:        "temp,sensor=s1,zone=b calculated=2.5,measured=1 1500",
		},
		{
			name:        "escaped names",
			measurement: "room temp",
			tags:        map[string]string{"sensor": "a,b=c"},
			fields:      map[string]float64{"fast measured": -3},
			want:        `room\ temp,sensor=a\,b\=c fast\ measured=-3 1500`,
		},
		{
			name:        "trailing backslash",
			measurement: `temp\`,
			tags:        map[string]string{"sensor": `s1\`, "zone": "a"},
			fields:      map[string]float64{"measured": 1},
			want:        `temp\\,sensor=s1\\,zone=a measured=1 1500`,
		},
		{
			name:        "no tags",
			measurement: "temp",
			fields:      map[string]float64{"measured": 0},
			want:        "temp measured=0 1500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatLineProtocol(tt.measurement, tt.tags, tt.fields, ts)
			if got != tt.want {
				t.Errorf("formatLineProtocol() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscape_StripsNewlines(t *testing.T) {
	if got := escapeTag("s1\nevil=1"); got != `s1evil\=1` {
		t.Errorf("escapeTag() = %q", got)
	}
	if got := escapeMeasurement("temp\r\nx"); got != "tempx" {
		t.Errorf("escapeMeasurement() = %q", got)
	}
}
