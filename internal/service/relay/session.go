package relay

import (
	"sync"
	"time"

	"burrowwatch/internal/model"

	"github.com/google/uuid"
)

// Session is the streaming/idle state owned by one Relay.
//
// The epoch increases on every Stop so that a detection dispatched before a
// stop can be recognised when it completes afterwards.
type Session struct {
	mu             sync.RWMutex
	id             string
	streaming      bool
	epoch          uint64
	startedAt      time.Time
	lastDetections []model.Detection
}

// NewSession returns an idle session.
func NewSession() *Session {
	return &Session{
		id:             uuid.NewString(),
		lastDetections: []model.Detection{},
	}
}

// Start switches to streaming. It reports false when already streaming.
// Each idle-to-streaming transition gets a fresh session ID.
func (s *Session) Start(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.streaming {
		return false
	}
	s.streaming = true
	s.id = uuid.NewString()
	s.startedAt = now
	return true
}

// Stop switches to idle and clears the last detections.
// It reports false when already idle.
func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.streaming {
		return false
	}
	s.streaming = false
	s.epoch++
	s.lastDetections = []model.Detection{}
	return true
}

// Admit returns the current epoch if frames are being accepted.
func (s *Session) Admit() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch, s.streaming
}

// Complete stores the detections of a finished frame dispatched at epoch.
// It reports false, leaving state untouched, when the session has been
// stopped since.
func (s *Session) Complete(epoch uint64, detections []model.Detection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.streaming || s.epoch != epoch {
		return false
	}
	s.lastDetections = detections
	return true
}

func (s *Session) Streaming() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streaming
}

func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// StartedAt is the time of the last Start; zero before the first one.
func (s *Session) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// LastDetections returns a copy of the most recent frame's detections.
func (s *Session) LastDetections() []model.Detection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Detection, len(s.lastDetections))
	copy(out, s.lastDetections)
	return out
}
