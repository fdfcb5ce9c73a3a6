package storage

import (
	"context"
	"sync"
	"time"

	"burrowwatch/internal/config"
	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
	"burrowwatch/internal/repository"
)

// SightingBuffer buffers sightings in memory and periodically flushes them
// to the archive. A label seen again within the window of its last
// buffered sighting is not buffered twice.
type SightingBuffer struct {
	sightings     []model.Sighting
	lastSeen      map[string]time.Time
	limit         int
	window        time.Duration
	flushInterval time.Duration
	mu            sync.Mutex
	logger        *logger.Logger
	repo          repository.SightingRepository
}

// NewSightingBuffer creates a buffer that flushes to repo.
func NewSightingBuffer(config *config.Config, logger *logger.Logger, repo repository.SightingRepository) *SightingBuffer {
	interval := config.SightingFlushInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SightingBuffer{
		sightings:     make([]model.Sighting, 0),
		lastSeen:      make(map[string]time.Time),
		limit:         config.SightingBufferLimit,
		window:        config.SightingWindow,
		flushInterval: interval,
		logger:        logger,
		repo:          repo,
	}
}

// Run flushes on a ticker until ctx is done, then flushes once more.
func (s *SightingBuffer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.FlushSightings()
		case <-ctx.Done():
			s.FlushSightings()
			return
		}
	}
}

// Observe buffers the detections of one broadcast frame.
func (s *SightingBuffer) Observe(sessionID string, detections []model.Detection, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range detections {
		key := sessionID + "/" + d.Label
		if last, ok := s.lastSeen[key]; ok && at.Sub(last) < s.window {
			continue
		}
		if s.limit > 0 && len(s.sightings) >= s.limit {
			s.logger.Warning("Sighting buffer full (%d), dropping %s", s.limit, d.Label)
			continue
		}
		s.lastSeen[key] = at
		s.sightings = append(s.sightings, model.NewSighting(sessionID, d, at))
	}
}

// Pending returns the number of buffered, unflushed sightings.
func (s *SightingBuffer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sightings)
}

// FlushSightings writes buffered sightings to the archive and clears the buffer.
// On failure the buffer is kept for the next attempt.
func (s *SightingBuffer) FlushSightings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sightings) == 0 {
		return
	}

	if err := s.repo.InsertBatch(s.sightings); err != nil {
		s.logger.Error("Error saving sightings to database: %v", err)
		return
	}

	s.logger.Info("Flushed %d sightings to database", len(s.sightings))
	s.sightings = s.sightings[:0]

	now := time.Now()
	for key, last := range s.lastSeen {
		if now.Sub(last) >= s.window {
			delete(s.lastSeen, key)
		}
	}
}

// Recent flushes pending sightings and returns archived ones matching filter,
// along with every archived label.
func (s *SightingBuffer) Recent(filter *dto.SightingFilter) ([]model.Sighting, []string, error) {
	s.FlushSightings()

	sightings, err := s.repo.GetRecent(filter)
	if err != nil {
		return nil, nil, err
	}
	labels, err := s.repo.GetAllLabels()
	if err != nil {
		return nil, nil, err
	}
	return sightings, labels, nil
}
