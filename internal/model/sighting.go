package model

import "time"

// Sighting is an archived detection, kept at most once per label per dedup window.
type Sighting struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	SeenAt     time.Time `json:"seen_at"`
}

// NewSighting builds an archive record from a detection.
func NewSighting(sessionID string, d Detection, seenAt time.Time) Sighting {
	return Sighting{
		SessionID:  sessionID,
		Label:      d.Label,
		Confidence: d.Confidence,
		X:          d.Box.X,
		Y:          d.Box.Y,
		Width:      d.Box.Width,
		Height:     d.Box.Height,
		SeenAt:     seenAt,
	}
}
