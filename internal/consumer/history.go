package consumer

import (
	"sync"
	"time"

	"burrowwatch/internal/model"
)

// History defaults.
const (
	HistorySize   = 20
	HistoryWindow = 2000 * time.Millisecond
)

// Entry is one remembered detection.
type Entry struct {
	model.Detection
	SeenAt time.Time
}

// History is a bounded, newest-first record of detections. A detection is
// skipped while an entry with the same label is younger than the window.
type History struct {
	entries []Entry
	size    int
	window  time.Duration
	mu      sync.Mutex
}

func NewHistory(size int, window time.Duration) *History {
	if size <= 0 {
		size = HistorySize
	}
	return &History{
		entries: make([]Entry, 0, size),
		size:    size,
		window:  window,
	}
}

// Add records d at now and reports whether it was new.
func (h *History) Add(d model.Detection, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.entries {
		if e.Label != d.Label {
			continue
		}
		age := now.Sub(e.SeenAt)
		if age < 0 {
			age = -age
		}
		if age < h.window {
			return false
		}
	}

	h.entries = append([]Entry{{Detection: d, SeenAt: now}}, h.entries...)
	if len(h.entries) > h.size {
		h.entries = h.entries[:h.size]
	}
	return true
}

// Entries returns a copy, newest first. A non-empty label filters by class.
func (h *History) Entries(label string) []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, 0, len(h.entries))
	for _, e := range h.entries {
		if label == "" || e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reset empties the history.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = h.entries[:0]
}
