package relay

import (
	"context"
	"sync"
	"time"

	"burrowwatch/internal/config"
	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/metrics"
	"burrowwatch/internal/model"
)

// Detector is the detection adapter as seen by the relay. It never fails.
type Detector interface {
	Detect(ctx context.Context, img []byte) []model.Detection
}

// Broadcaster delivers an encoded message to every connected consumer.
type Broadcaster interface {
	Broadcast(message []byte)
}

// SightingRecorder receives the detections of every broadcast frame.
type SightingRecorder interface {
	Observe(sessionID string, detections []model.Detection, at time.Time)
}

type job struct {
	frame model.Frame
	epoch uint64
}

// Relay gates incoming frames on its session, runs them through the
// detector and fans results out to all consumers.
//
// In serial mode at most one detection is in flight; the newest frame that
// arrives meanwhile waits in a single pending slot, replacing any older one,
// so broadcasts follow arrival order. In concurrent mode every frame is
// detected on its own goroutine and broadcast in completion order.
type Relay struct {
	session   *Session
	detector  Detector
	out       Broadcaster
	sightings SightingRecorder
	mode      string
	metrics   *metrics.Metrics
	logger    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	slotMu  sync.Mutex
	busy    bool
	pending *job
}

// New creates a relay around session. mode is config.DispatchSerial or config.DispatchConcurrent.
func New(session *Session, detector Detector, out Broadcaster, mode string, m *metrics.Metrics, logger *logger.Logger) *Relay {
	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		session:  session,
		detector: detector,
		out:      out,
		mode:     mode,
		metrics:  m,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// SetSightings installs an archive for processed detections.
func (r *Relay) SetSightings(rec SightingRecorder) {
	r.sightings = rec
}

// Start begins accepting frames. Idempotent.
func (r *Relay) Start() {
	if r.session.Start(time.Now()) {
		r.metrics.SetStreaming(true)
		r.logger.Info("📹 Stream processing started (session %s) - waiting for frames...", r.session.ID())
	}
}

// Stop stops accepting frames and resets session state. Idempotent.
// Detections already in flight finish but their results are discarded.
func (r *Relay) Stop() {
	if r.session.Stop() {
		r.metrics.SetStreaming(false)
		r.clearPending()
		r.logger.Info("⏹️ Stream processing stopped")
	}
}

// SubmitFrame hands a frame to detection. It reports false when the frame
// was dropped because the session is idle.
func (r *Relay) SubmitFrame(frame model.Frame) bool {
	r.metrics.FramesReceived.Inc()

	epoch, ok := r.session.Admit()
	if !ok {
		r.metrics.Drop(metrics.DropIdle)
		return false
	}

	j := job{frame: frame, epoch: epoch}

	if r.mode == config.DispatchConcurrent {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.process(j)
		}()
		return true
	}

	r.slotMu.Lock()
	if r.busy {
		if r.pending != nil {
			r.metrics.Drop(metrics.DropSuperseded)
		}
		r.pending = &j
		r.slotMu.Unlock()
		return true
	}
	r.busy = true
	r.slotMu.Unlock()

	r.wg.Add(1)
	go r.drain(j)
	return true
}

// drain processes j, then whatever frame is waiting in the pending slot,
// until the slot is empty.
func (r *Relay) drain(j job) {
	defer r.wg.Done()

	for {
		r.process(j)

		r.slotMu.Lock()
		if r.pending == nil {
			r.busy = false
			r.slotMu.Unlock()
			return
		}
		j = *r.pending
		r.pending = nil
		r.slotMu.Unlock()
	}
}

func (r *Relay) clearPending() {
	r.slotMu.Lock()
	defer r.slotMu.Unlock()
	if r.pending != nil {
		r.pending = nil
		r.metrics.Drop(metrics.DropIdle)
	}
}

func (r *Relay) process(j job) {
	img, err := dto.DecodeDataURL(j.frame.Payload)
	if err != nil {
		r.logger.Warning("Frame payload is not a decodable image: %v", err)
	}

	started := time.Now()
	detections := r.detector.Detect(r.ctx, img)
	elapsed := time.Since(started)

	if !r.session.Complete(j.epoch, detections) {
		r.metrics.ResultsDiscarded.Inc()
		r.logger.Info("Discarding detection result that completed after stop")
		return
	}

	labels := make([]string, len(detections))
	for i, d := range detections {
		labels[i] = d.Label
	}
	r.metrics.ObserveDetect(elapsed, labels)

	now := time.Now()
	r.metrics.FramesProcessed.Inc()
	if r.sightings != nil && len(detections) > 0 {
		r.sightings.Observe(r.session.ID(), detections, now)
	}

	r.broadcast(dto.EventFrame, dto.NewFrameResult(j.frame, detections, now))
	r.broadcast(dto.EventStats, ComputeStats(detections))
}

func (r *Relay) broadcast(event string, payload interface{}) {
	msg, err := dto.NewEnvelope(event, payload)
	if err != nil {
		r.logger.Error("Error encoding %s message: %v", event, err)
		return
	}
	r.out.Broadcast(msg)
}

// Streaming reports whether frames are being accepted.
func (r *Relay) Streaming() bool {
	return r.session.Streaming()
}

// LastDetections returns the detections of the most recent processed frame.
func (r *Relay) LastDetections() []model.Detection {
	return r.session.LastDetections()
}

// Session returns the relay's session.
func (r *Relay) Session() *Session {
	return r.session
}

// Close cancels outstanding detections and waits for dispatch goroutines to exit.
func (r *Relay) Close() {
	r.cancel()
	r.wg.Wait()
}
