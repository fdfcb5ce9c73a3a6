package dto

import "burrowwatch/internal/model"

// DetectionsResponse is served by GET /api/detections.
type DetectionsResponse struct {
	Detections []model.Detection `json:"detections"`
	Timestamp  string            `json:"timestamp"`
}

// StatusResponse is served by GET /api/status.
// ModelLoaded is true whenever a detector backend is installed, mock included;
// Detector says which one.
type StatusResponse struct {
	ModelLoaded     bool   `json:"modelLoaded"`
	StreamActive    bool   `json:"streamActive"`
	TotalDetections int    `json:"totalDetections"`
	Detector        string `json:"detector"`
	Clients         int    `json:"clients"`
	SessionID       string `json:"sessionId"`
}

// SightingsResponse is served by GET /api/sightings.
type SightingsResponse struct {
	Sightings []model.Sighting `json:"sightings"`
	Labels    []string         `json:"labels"`
}
