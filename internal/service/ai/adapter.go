package ai

import (
	"context"
	"strings"
	"time"

	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
)

// Adapter is the relay's view of detection: it never returns an error.
// Backend failures and timeouts degrade to an empty list and are logged.
type Adapter struct {
	backend Backend
	timeout time.Duration
	logger  *logger.Logger
}

type detectResult struct {
	detections []model.Detection
	err        error
}

// NewAdapter wraps backend. A zero timeout waits for the backend indefinitely.
func NewAdapter(backend Backend, timeout time.Duration, logger *logger.Logger) *Adapter {
	return &Adapter{
		backend: backend,
		timeout: timeout,
		logger:  logger,
	}
}

// Detect runs the backend on img.
func (a *Adapter) Detect(ctx context.Context, img []byte) []model.Detection {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	done := make(chan detectResult, 1)
	go func() {
		dets, err := a.backend.Detect(ctx, img)
		done <- detectResult{detections: dets, err: err}
	}()

	select {
	case <-ctx.Done():
		a.logger.Warning("Detection abandoned (%s backend): %v", a.backend.Kind(), ctx.Err())
		return []model.Detection{}
	case res := <-done:
		if res.err != nil {
			a.logger.Error("Detection error (%s backend): %v", a.backend.Kind(), res.err)
			return []model.Detection{}
		}
		if res.detections == nil {
			return []model.Detection{}
		}
		if len(res.detections) > 0 {
			a.logger.Info("🔍 %s detected %d objects: %s", a.backend.Kind(), len(res.detections), describe(res.detections))
		}
		return res.detections
	}
}

// Kind reports which backend is installed.
func (a *Adapter) Kind() string {
	return a.backend.Kind()
}

// Close releases the backend.
func (a *Adapter) Close() error {
	return a.backend.Close()
}

func describe(dets []model.Detection) string {
	parts := make([]string, len(dets))
	for i, d := range dets {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}
