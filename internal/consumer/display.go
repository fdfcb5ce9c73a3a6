package consumer

import (
	"fmt"
	"math"
	"sync"
	"time"

	"burrowwatch/internal/dto"
)

// Snapshot is what a consumer shows at one instant.
type Snapshot struct {
	TotalDetections int
	AnimalCount     int
	Confidence      int // percent
	FPS             int
	Uptime          string
	Streaming       bool
}

// Display tracks the counters shown next to the video.
type Display struct {
	mu          sync.Mutex
	streaming   bool
	startedAt   time.Time
	frames      int
	lastTick    time.Time
	fps         int
	animalCount int
	confidence  float64
}

func NewDisplay() *Display {
	return &Display{}
}

// Start resets every counter and starts the uptime clock.
func (d *Display) Start(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streaming = true
	d.startedAt = now
	d.lastTick = now
	d.frames = 0
	d.fps = 0
	d.animalCount = 0
	d.confidence = 0
}

// Stop freezes uptime at zero until the next Start.
func (d *Display) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streaming = false
	d.startedAt = time.Time{}
}

// ObserveFrame counts one received frame toward the frame rate.
func (d *Display) ObserveFrame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
}

// ObserveStats records the latest per-frame stats.
func (d *Display) ObserveStats(stats dto.Stats) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.animalCount = len(stats.AnimalTypes)
	d.confidence = 0
	if stats.AverageConfidence.Valid {
		d.confidence = stats.AverageConfidence.Mean
	}
}

// Tick samples the frame rate. Call it once per second.
func (d *Display) Tick(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := now.Sub(d.lastTick).Seconds()
	d.fps = 0
	if elapsed > 0 {
		d.fps = int(math.Round(float64(d.frames) / elapsed))
	}
	d.frames = 0
	d.lastTick = now
}

// Snapshot returns the current counters; totalDetections comes from the history.
func (d *Display) Snapshot(now time.Time, history *History) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return Snapshot{
		TotalDetections: history.Len(),
		AnimalCount:     d.animalCount,
		Confidence:      int(math.Round(d.confidence * 100)),
		FPS:             d.fps,
		Uptime:          formatUptime(d.startedAt, now),
		Streaming:       d.streaming,
	}
}

func formatUptime(startedAt, now time.Time) string {
	if startedAt.IsZero() {
		return "00:00"
	}
	elapsed := now.Sub(startedAt)
	minutes := int(elapsed / time.Minute)
	seconds := int((elapsed % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
