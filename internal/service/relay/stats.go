package relay

import (
	"math"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/model"
)

// ComputeStats summarises one frame's detections.
func ComputeStats(detections []model.Detection) dto.Stats {
	stats := dto.Stats{
		TotalDetections: len(detections),
		AnimalTypes:     distinctLabels(detections),
		StreamSource:    dto.StreamSourceWebcam,
		FrameRate:       dto.FrameRateRealtime,
	}

	if len(detections) > 0 {
		sum := 0.0
		for _, d := range detections {
			sum += d.Confidence
		}
		stats.AverageConfidence = dto.AverageConfidence{
			Mean:  math.Round(sum/float64(len(detections))*100) / 100,
			Valid: true,
		}
	}

	return stats
}

// distinctLabels returns labels in first-seen order.
func distinctLabels(detections []model.Detection) []string {
	seen := make(map[string]bool, len(detections))
	labels := make([]string, 0, len(detections))
	for _, d := range detections {
		if seen[d.Label] {
			continue
		}
		seen[d.Label] = true
		labels = append(labels, d.Label)
	}
	return labels
}
