package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Fixed descriptive stats fields.
const (
	StreamSourceWebcam = "Live Webcam"
	FrameRateRealtime  = "Real-time"
)

// Stats is broadcast after every processed frame.
type Stats struct {
	TotalDetections   int               `json:"totalDetections"`
	AnimalTypes       []string          `json:"animalTypes"`
	AverageConfidence AverageConfidence `json:"averageConfidence"`
	StreamSource      string            `json:"streamSource"`
	FrameRate         string            `json:"frameRate"`
}

// AverageConfidence is encoded as a two-decimal string ("0.85"),
// or as the number 0 when the frame had no detections.
type AverageConfidence struct {
	Mean  float64
	Valid bool
}

// String returns the two-decimal rendering, "0" when not valid.
func (a AverageConfidence) String() string {
	if !a.Valid {
		return "0"
	}
	return strconv.FormatFloat(a.Mean, 'f', 2, 64)
}

func (a AverageConfidence) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("0"), nil
	}
	return json.Marshal(a.String())
}

func (a *AverageConfidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		mean, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid averageConfidence %q: %w", s, err)
		}
		*a = AverageConfidence{Mean: mean, Valid: true}
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid averageConfidence: %w", err)
	}
	*a = AverageConfidence{Mean: n, Valid: n != 0}
	return nil
}
