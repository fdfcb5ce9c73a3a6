package dto

import (
	"time"

	"burrowwatch/internal/model"
)

// Frame source tags.
const (
	FrameTypeWebcam = "webcam"
	SourceWebcam    = "webcam"
)

// WebcamFrame is the producer's webcam-frame payload.
type WebcamFrame struct {
	Frame     string `json:"frame"`
	Timestamp int64  `json:"timestamp"` // epoch ms
}

// ToFrame converts the payload into a model.Frame. A missing timestamp means now.
func (w WebcamFrame) ToFrame(now time.Time) model.Frame {
	captured := now
	if w.Timestamp > 0 {
		captured = time.UnixMilli(w.Timestamp)
	}
	return model.Frame{Payload: w.Frame, CapturedAt: captured}
}

// FrameResult is broadcast to every consumer once a frame has been through detection.
type FrameResult struct {
	Frame      string            `json:"frame"`
	Detections []model.Detection `json:"detections"`
	Timestamp  string            `json:"timestamp"` // ISO-8601
	FrameType  string            `json:"frameType"`
	Source     string            `json:"source"`
}

// NewFrameResult builds a webcam frame result; detections is never encoded as null.
func NewFrameResult(frame model.Frame, detections []model.Detection, processedAt time.Time) FrameResult {
	if detections == nil {
		detections = []model.Detection{}
	}
	return FrameResult{
		Frame:      frame.Payload,
		Detections: detections,
		Timestamp:  processedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		FrameType:  FrameTypeWebcam,
		Source:     SourceWebcam,
	}
}
