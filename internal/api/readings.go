package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/telemetry"
	"github.com/nerrad567/gray-logic-sensorbridge/internal/topic"
)

// ReadingsResponse is the body of GET /api/v1/readings.
type ReadingsResponse struct {
	Count    int               `json:"count"`
	Readings []telemetry.Entry `json:"readings"`
}

// TopicInfo is one configured topic as listed by GET /api/v1/topics.
type TopicInfo struct {
	Topic string `json:"topic"`
	topic.Config
}

// TopicsResponse is the body of GET /api/v1/topics.
type TopicsResponse struct {
	Count  int         `json:"count"`
	Topics []TopicInfo `json:"topics"`
}

// handleListReadings returns the cache snapshot sorted by topic.
func (s *Server) handleListReadings(w http.ResponseWriter, _ *http.Request) {
	entries := s.readings.Snapshot()
	if entries == nil {
		entries = []telemetry.Entry{}
	}
	writeJSON(w, http.StatusOK, ReadingsResponse{
		Count:    len(entries),
		Readings: entries,
	})
}

// handleGetReading returns the cached entry for one topic.
// The topic may be given with literal slashes or URL-escaped.
func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || name == "" {
		writeNotFound(w, "reading not found")
		return
	}

	entry, ok := s.readings.Get(name)
	if !ok {
		writeNotFound(w, "no reading for topic "+name)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleListTopics returns the configured topics in sorted order.
func (s *Server) handleListTopics(w http.ResponseWriter, _ *http.Request) {
	names := s.topics.Topics()
	resp := TopicsResponse{
		Count:  len(names),
		Topics: make([]TopicInfo, 0, len(names)),
	}
	for _, name := range names {
		cfg, _ := s.topics.Lookup(name)
		resp.Topics = append(resp.Topics, TopicInfo{Topic: name, Config: cfg})
	}
	writeJSON(w, http.StatusOK, resp)
}
