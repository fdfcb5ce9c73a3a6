package model

import "time"

// Frame is one encoded still image captured from a live video source.
// Payload is a data URL or a bare base64 string, relayed back to consumers as-is.
type Frame struct {
	Payload    string
	CapturedAt time.Time
}
