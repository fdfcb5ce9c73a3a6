package producer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"

	"github.com/gorilla/websocket"
)

type scriptedSource struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (s *scriptedSource) Capture() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.results) && s.results[i] != nil {
		return nil, s.results[i]
	}
	return []byte{0xff, 0xd8, byte(i)}, nil
}

func (s *scriptedSource) Close() error { return nil }

type memoryPublisher struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	frames   [][]byte
	failNext bool
	startErr error
}

func (m *memoryPublisher) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *memoryPublisher) Publish(jpeg []byte, capturedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("connection reset")
	}
	m.frames = append(m.frames, jpeg)
	return nil
}

func (m *memoryPublisher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *memoryPublisher) frameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func TestProducer_SkipsFailedTicks(t *testing.T) {
	src := &scriptedSource{results: []error{ErrNotReady, errors.New("encode failed"), nil, nil}}
	pub := &memoryPublisher{failNext: false}
	p := New(src, pub, 5*time.Millisecond, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for pub.frameCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("Producer never published after failed ticks")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !pub.started || !pub.stopped {
		t.Errorf("Expected start and stop, got started=%v stopped=%v", pub.started, pub.stopped)
	}
	if pub.frames[0][2] != 2 {
		t.Errorf("First published frame should come from the third capture, got %d", pub.frames[0][2])
	}
}

func TestProducer_PublishErrorDoesNotStopStream(t *testing.T) {
	pub := &memoryPublisher{failNext: true}
	p := New(&scriptedSource{}, pub, 5*time.Millisecond, logger.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go p.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for pub.frameCount() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("Producer stopped after a publish error")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestProducer_StartFailureIsReturned(t *testing.T) {
	pub := &memoryPublisher{startErr: errors.New("connection refused")}
	p := New(&scriptedSource{}, pub, time.Millisecond, logger.Discard())

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("Expected Run to fail when the stream cannot start")
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
}

func TestDirectorySource_ScalesAndCycles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), 1280, 720)
	writePNG(t, filepath.Join(dir, "b.png"), 320, 240)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644)

	src, err := OpenDirectory(dir, 640, 70)
	if err != nil {
		t.Fatalf("OpenDirectory failed: %v", err)
	}
	defer src.Close()
	if src.Len() != 2 {
		t.Fatalf("Expected 2 images, got %d", src.Len())
	}

	wantSizes := []image.Point{{640, 360}, {320, 240}, {640, 360}}
	for i, want := range wantSizes {
		data, err := src.Capture()
		if err != nil {
			t.Fatalf("Capture %d failed: %v", i, err)
		}
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Capture %d is not a JPEG: %v", i, err)
		}
		if cfg.Width != want.X || cfg.Height != want.Y {
			t.Errorf("Capture %d: expected %v, got %dx%d", i, want, cfg.Width, cfg.Height)
		}
	}
}

func TestDirectorySource_EmptyDirectory(t *testing.T) {
	if _, err := OpenDirectory(t.TempDir(), 640, 70); err == nil {
		t.Error("Expected an error for a directory without images")
	}
}

func TestScaleFor(t *testing.T) {
	if got := scaleFor(1280, 720, 640); got != 0.5 {
		t.Errorf("Expected 0.5, got %v", got)
	}
	if got := scaleFor(480, 960, 640); got != 640.0/960.0 {
		t.Errorf("Portrait frames should scale on height, got %v", got)
	}
	if got := scaleFor(320, 240, 640); got != 1 {
		t.Errorf("Small frames should not scale, got %v", got)
	}
}

func TestWSPublisher_SendsEnvelopes(t *testing.T) {
	received := make(chan *dto.Envelope, 8)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			env, err := dto.ParseEnvelope(msg)
			if err == nil {
				received <- env
			}
		}
	}))
	defer srv.Close()

	pub, err := NewWSPublisher("ws" + strings.TrimPrefix(srv.URL, "http") + "/ws")
	if err != nil {
		t.Fatalf("NewWSPublisher failed: %v", err)
	}
	if err := pub.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	captured := time.UnixMilli(1700000000000)
	if err := pub.Publish([]byte("jpeg"), captured); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := pub.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	want := []string{dto.EventStartStream, dto.EventWebcamFrame, dto.EventStopStream}
	for i, event := range want {
		select {
		case env := <-received:
			if env.Type != event {
				t.Fatalf("Message %d: expected %s, got %s", i, event, env.Type)
			}
			if event == dto.EventWebcamFrame {
				var frame dto.WebcamFrame
				if err := env.Decode(&frame); err != nil {
					t.Fatalf("Decode failed: %v", err)
				}
				if frame.Timestamp != captured.UnixMilli() {
					t.Errorf("Unexpected timestamp %d", frame.Timestamp)
				}
				img, _ := dto.DecodeDataURL(frame.Frame)
				if string(img) != "jpeg" {
					t.Errorf("Unexpected payload %q", img)
				}
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for %s", event)
		}
	}
}

func TestNewWSPublisher_RejectsHTTP(t *testing.T) {
	if _, err := NewWSPublisher("http://localhost:3000/ws"); err == nil {
		t.Error("Expected http scheme to be rejected")
	}
}
