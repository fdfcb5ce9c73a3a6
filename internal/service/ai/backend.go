package ai

import (
	"context"
	"errors"

	"burrowwatch/internal/config"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
)

// Backend kinds reported by Kind.
const (
	KindModel = "model"
	KindMock  = "mock"
)

// ErrNoModel is returned when the network files are missing or unreadable.
var ErrNoModel = errors.New("detection model unavailable")

// Backend turns one encoded image into detections.
type Backend interface {
	Detect(ctx context.Context, img []byte) ([]model.Detection, error)
	Kind() string
	Close() error
}

// NewBackend loads the network described by cfg and falls back to the mock
// backend when it cannot be loaded. The choice is made once.
func NewBackend(cfg *config.Config, logger *logger.Logger) Backend {
	net, err := NewNetBackend(cfg, logger)
	if err != nil {
		logger.Warning("Could not initialize detection network: %v", err)
		logger.Warning("Falling back to mock detection (p=%.2f)", cfg.MockProbability)
		return NewMockBackend(cfg.MockProbability, nil, logger)
	}
	return net
}
