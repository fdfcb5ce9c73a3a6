package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
	"burrowwatch/internal/service/relay"
	"burrowwatch/internal/service/websocket"
)

const (
	defaultSightingLimit = 50
	maxSightingLimit     = 500
)

// SightingSource is the read side of the sightings archive.
type SightingSource interface {
	Recent(filter *dto.SightingFilter) ([]model.Sighting, []string, error)
}

// DetectionsHandler returns the detections of the last processed frame.
func DetectionsHandler(r *relay.Relay) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, dto.DetectionsResponse{
			Detections: r.LastDetections(),
			Timestamp:  time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		})
	}
}

// StatusHandler reports the relay state. modelLoaded is always true since a
// detector backend is always installed; detector names which one.
func StatusHandler(r *relay.Relay, hub *websocket.HubService, detector string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		status := dto.StatusResponse{
			ModelLoaded:     true,
			StreamActive:    r.Streaming(),
			TotalDetections: len(r.LastDetections()),
			Detector:        detector,
			Clients:         hub.GetClientCount(),
		}
		if status.StreamActive {
			status.SessionID = r.Session().ID()
		}
		writeJSON(w, status)
	}
}

// SightingsHandler lists archived sightings, optionally filtered by label.
// With no archive configured it returns empty lists.
func SightingsHandler(source SightingSource, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		resp := dto.SightingsResponse{
			Sightings: []model.Sighting{},
			Labels:    []string{},
		}

		if source != nil {
			q := req.URL.Query()
			filter := &dto.SightingFilter{
				Label:     q.Get("label"),
				SessionID: q.Get("session"),
				Limit:     min(atoiDefault(q.Get("limit"), defaultSightingLimit), maxSightingLimit),
			}

			sightings, labels, err := source.Recent(filter)
			if err != nil {
				logger.Error("Error querying sightings from database: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			resp.Sightings = sightings
			resp.Labels = labels
		}

		writeJSON(w, resp)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// atoiDefault returns s as a positive int, or def.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}
