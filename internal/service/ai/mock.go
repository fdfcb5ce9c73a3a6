package ai

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
)

// MockBackend synthesizes at most one random detection per call.
type MockBackend struct {
	probability float64
	labels      []string
	rng         *rand.Rand
	mu          sync.Mutex
	logger      *logger.Logger
}

// NewMockBackend creates a mock that detects with the given probability.
// A nil rng is seeded from the clock.
func NewMockBackend(probability float64, rng *rand.Rand, logger *logger.Logger) *MockBackend {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6275727277))
	}
	return &MockBackend{
		probability: probability,
		labels:      MockLabels,
		rng:         rng,
		logger:      logger,
	}
}

// Detect ignores the image content.
func (m *MockBackend) Detect(ctx context.Context, img []byte) ([]model.Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rng.Float64() >= m.probability {
		return []model.Detection{}, nil
	}

	d := model.Detection{
		Label:      m.labels[m.rng.IntN(len(m.labels))],
		Confidence: 0.7 + m.rng.Float64()*0.3,
		Box: model.Box{
			X:      m.rng.Float64()*400 + 100,
			Y:      m.rng.Float64()*300 + 100,
			Width:  m.rng.Float64()*150 + 50,
			Height: m.rng.Float64()*150 + 50,
		},
	}
	return []model.Detection{d}, nil
}

func (m *MockBackend) Kind() string { return KindMock }

func (m *MockBackend) Close() error { return nil }
