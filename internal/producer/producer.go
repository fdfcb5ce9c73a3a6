package producer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"burrowwatch/internal/logger"
)

// Producer defaults.
const (
	DefaultInterval = 100 * time.Millisecond
	DefaultMaxWidth = 640
	DefaultQuality  = 70
)

// Producer samples a source on a fixed interval and publishes each frame.
type Producer struct {
	source    Source
	publisher Publisher
	interval  time.Duration
	logger    *logger.Logger

	sent    int
	skipped int
}

func New(source Source, publisher Publisher, interval time.Duration, logger *logger.Logger) *Producer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Producer{
		source:    source,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
}

// Run starts the stream, publishes until ctx is done and then stops the stream.
// Per-tick failures are logged and skipped; only a failed start is returned.
func (p *Producer) Run(ctx context.Context) error {
	if err := p.publisher.Start(); err != nil {
		return fmt.Errorf("failed to start stream: %w", err)
	}
	p.logger.Info("📹 Streaming frames every %v", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := p.publisher.Stop(); err != nil {
				p.logger.Warning("Error stopping stream: %v", err)
			}
			p.logger.Info("⏹️ Stream stopped after %d frames (%d skipped)", p.sent, p.skipped)
			return nil
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Producer) tick() {
	frame, err := p.source.Capture()
	if err != nil {
		p.skipped++
		if !errors.Is(err, ErrNotReady) {
			p.logger.Warning("Error capturing frame: %v", err)
		}
		return
	}

	if err := p.publisher.Publish(frame, time.Now()); err != nil {
		p.skipped++
		p.logger.Warning("Error sending frame: %v", err)
		return
	}
	p.sent++
}

// Sent returns the number of frames published so far. Not safe during Run.
func (p *Producer) Sent() int {
	return p.sent
}
