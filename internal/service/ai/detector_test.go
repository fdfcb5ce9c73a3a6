package ai

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"burrowwatch/internal/config"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
)

func TestFilterPredictions_AllowListAndThreshold(t *testing.T) {
	preds := []prediction{
		{classID: 17, confidence: 0.91, left: 0.1, top: 0.2, right: 0.5, bottom: 0.6}, // cat
		{classID: 3, confidence: 0.99, left: 0, top: 0, right: 1, bottom: 1},         // car, not allowed
		{classID: 18, confidence: 0.5, left: 0, top: 0, right: 1, bottom: 1},         // dog at threshold
		{classID: 18, confidence: 0.49, left: 0, top: 0, right: 1, bottom: 1},        // dog below
		{classID: 99, confidence: 0.97, left: 0, top: 0, right: 1, bottom: 1},        // unknown
		{classID: 1, confidence: 0.75, left: -0.1, top: 0.1, right: 0.2, bottom: 0.3}, // person off-edge
	}

	got := filterPredictions(preds, allowSet(AnimalClasses), 0.5, 640, 480)

	if len(got) != 2 {
		t.Fatalf("Expected 2 detections, got %d: %+v", len(got), got)
	}

	for _, d := range got {
		if !slices.Contains(AnimalClasses, d.Label) {
			t.Errorf("Label %q not in allow-list", d.Label)
		}
		if d.Confidence < 0.5 {
			t.Errorf("Confidence %v below threshold", d.Confidence)
		}
		if d.Box.X < 0 || d.Box.Y < 0 || d.Box.Width < 0 || d.Box.Height < 0 {
			t.Errorf("Negative box component: %+v", d.Box)
		}
	}

	cat := got[0]
	if cat.Label != "cat" {
		t.Fatalf("Expected cat first, got %s", cat.Label)
	}
	if int(cat.Box.X) != 64 || int(cat.Box.Y) != 96 || int(cat.Box.Width+0.5) != 256 || int(cat.Box.Height+0.5) != 192 {
		t.Errorf("Unexpected pixel box: %+v", cat.Box)
	}
}

func TestMockBackend_AlwaysDetect(t *testing.T) {
	m := NewMockBackend(1, rand.New(rand.NewPCG(1, 2)), logger.Discard())

	for i := 0; i < 200; i++ {
		dets, err := m.Detect(context.Background(), nil)
		if err != nil {
			t.Fatalf("Detect failed: %v", err)
		}
		if len(dets) != 1 {
			t.Fatalf("Expected exactly one detection, got %d", len(dets))
		}
		d := dets[0]
		if !slices.Contains(MockLabels, d.Label) {
			t.Errorf("Unexpected mock label %q", d.Label)
		}
		if d.Confidence < 0.7 || d.Confidence > 1.0 {
			t.Errorf("Confidence %v outside [0.7, 1.0]", d.Confidence)
		}
		if d.Box.X < 100 || d.Box.X >= 500 || d.Box.Y < 100 || d.Box.Y >= 400 {
			t.Errorf("Position outside mock range: %+v", d.Box)
		}
		if d.Box.Width < 50 || d.Box.Width >= 200 || d.Box.Height < 50 || d.Box.Height >= 200 {
			t.Errorf("Size outside mock range: %+v", d.Box)
		}
	}
}

func TestMockBackend_LengthZeroOrOne(t *testing.T) {
	m := NewMockBackend(0.3, rand.New(rand.NewPCG(7, 11)), logger.Discard())

	hits := 0
	for i := 0; i < 1000; i++ {
		dets, _ := m.Detect(context.Background(), []byte("ignored"))
		if len(dets) > 1 {
			t.Fatalf("Mock returned %d detections", len(dets))
		}
		hits += len(dets)
	}

	if hits < 200 || hits > 400 {
		t.Errorf("Expected roughly 30%% hit rate, got %d/1000", hits)
	}
}

func TestMockBackend_NeverDetect(t *testing.T) {
	m := NewMockBackend(0, nil, logger.Discard())
	dets, err := m.Detect(context.Background(), nil)
	if err != nil || len(dets) != 0 {
		t.Errorf("Expected no detections, got %v (%v)", dets, err)
	}
}

func TestNewBackend_FallsBackToMock(t *testing.T) {
	cfg := &config.Config{
		ModelPath:       "/nonexistent/frozen_inference_graph.pb",
		ConfigPath:      "/nonexistent/ssd.pbtxt",
		MockProbability: 0.3,
	}

	_, err := NewNetBackend(cfg, logger.Discard())
	if !errors.Is(err, ErrNoModel) {
		t.Errorf("Expected ErrNoModel, got %v", err)
	}

	b := NewBackend(cfg, logger.Discard())
	if b.Kind() != KindMock {
		t.Errorf("Expected mock backend, got %s", b.Kind())
	}
}

type stubBackend struct {
	delay time.Duration
	dets  []model.Detection
	err   error
}

func (s *stubBackend) Detect(ctx context.Context, img []byte) ([]model.Detection, error) {
	time.Sleep(s.delay)
	return s.dets, s.err
}

func (s *stubBackend) Kind() string { return "stub" }
func (s *stubBackend) Close() error { return nil }

func TestAdapter_AbsorbsBackendError(t *testing.T) {
	a := NewAdapter(&stubBackend{err: errors.New("inference exploded")}, 0, logger.Discard())

	dets := a.Detect(context.Background(), []byte{1})
	if dets == nil || len(dets) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", dets)
	}
}

func TestAdapter_TimeoutDegradesToEmpty(t *testing.T) {
	slow := &stubBackend{delay: 200 * time.Millisecond, dets: []model.Detection{{Label: "cat", Confidence: 0.9}}}
	a := NewAdapter(slow, 20*time.Millisecond, logger.Discard())

	start := time.Now()
	dets := a.Detect(context.Background(), nil)
	if len(dets) != 0 {
		t.Errorf("Expected empty result on timeout, got %v", dets)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Errorf("Adapter waited for the slow backend")
	}
}

func TestAdapter_PassesDetectionsThrough(t *testing.T) {
	want := []model.Detection{{Label: "bird", Confidence: 0.8}}
	a := NewAdapter(&stubBackend{dets: want}, time.Second, logger.Discard())

	got := a.Detect(context.Background(), nil)
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if a.Kind() != "stub" {
		t.Errorf("Unexpected kind %s", a.Kind())
	}
}
