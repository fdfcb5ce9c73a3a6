package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"burrowwatch/internal/config"
	"burrowwatch/internal/dto"
	"burrowwatch/internal/logger"
	"burrowwatch/internal/model"
	"burrowwatch/internal/repository/sqlite"
)

type fakeRepo struct {
	mu       sync.Mutex
	inserted []model.Sighting
	fail     bool
}

func (f *fakeRepo) Insert(s *model.Sighting) (int64, error) {
	return 0, f.InsertBatch([]model.Sighting{*s})
}

func (f *fakeRepo) InsertBatch(sightings []model.Sighting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("disk full")
	}
	f.inserted = append(f.inserted, sightings...)
	return nil
}

func (f *fakeRepo) GetRecent(filter *dto.SightingFilter) ([]model.Sighting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Sighting(nil), f.inserted...), nil
}

func (f *fakeRepo) GetAllLabels() ([]string, error)        { return nil, nil }
func (f *fakeRepo) CountByLabel() (map[string]int, error)  { return nil, nil }
func (f *fakeRepo) DeleteBySession(sessionID string) error { return nil }

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func testConfig() *config.Config {
	return &config.Config{
		SightingBufferLimit:   3,
		SightingFlushInterval: 20 * time.Millisecond,
		SightingWindow:        2 * time.Second,
	}
}

func TestSightingBuffer_DedupWithinWindow(t *testing.T) {
	repo := &fakeRepo{}
	buf := NewSightingBuffer(testConfig(), logger.Discard(), repo)
	base := time.Now()
	cat := []model.Detection{{Label: "cat", Confidence: 0.9}}

	buf.Observe("s1", cat, base)
	buf.Observe("s1", cat, base.Add(1999*time.Millisecond))
	if got := buf.Pending(); got != 1 {
		t.Fatalf("Expected repeat within window to be skipped, pending %d", got)
	}

	buf.Observe("s1", cat, base.Add(2001*time.Millisecond))
	if got := buf.Pending(); got != 2 {
		t.Errorf("Expected sighting after window to be buffered, pending %d", got)
	}

	buf.Observe("s2", cat, base.Add(100*time.Millisecond))
	if got := buf.Pending(); got != 3 {
		t.Errorf("Sessions should dedup independently, pending %d", got)
	}
}

func TestSightingBuffer_RespectsLimit(t *testing.T) {
	buf := NewSightingBuffer(testConfig(), logger.Discard(), &fakeRepo{})
	buf.Observe("s1", []model.Detection{
		{Label: "cat"}, {Label: "dog"}, {Label: "bird"}, {Label: "horse"},
	}, time.Now())

	if got := buf.Pending(); got != 3 {
		t.Errorf("Expected buffer capped at 3, got %d", got)
	}
}

func TestSightingBuffer_FailedFlushKeepsBuffer(t *testing.T) {
	repo := &fakeRepo{fail: true}
	buf := NewSightingBuffer(testConfig(), logger.Discard(), repo)
	buf.Observe("s1", []model.Detection{{Label: "dog"}}, time.Now())

	buf.FlushSightings()
	if buf.Pending() != 1 {
		t.Fatal("Buffer should survive a failed flush")
	}

	repo.mu.Lock()
	repo.fail = false
	repo.mu.Unlock()
	buf.FlushSightings()
	if buf.Pending() != 0 || repo.count() != 1 {
		t.Errorf("Expected retry to flush, pending %d stored %d", buf.Pending(), repo.count())
	}
}

func TestSightingBuffer_RunFlushesOnTickAndExit(t *testing.T) {
	repo := &fakeRepo{}
	buf := NewSightingBuffer(testConfig(), logger.Discard(), repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		buf.Run(ctx)
		close(done)
	}()

	buf.Observe("s1", []model.Detection{{Label: "bird"}}, time.Now())
	deadline := time.Now().Add(time.Second)
	for repo.count() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Ticker never flushed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	buf.Observe("s1", []model.Detection{{Label: "cow"}}, time.Now())
	cancel()
	<-done
	if repo.count() != 2 {
		t.Errorf("Expected final flush on exit, stored %d", repo.count())
	}
}

func TestSightingBuffer_RecentAgainstSQLite(t *testing.T) {
	db, err := sqlite.New(filepath.Join(t.TempDir(), "sightings.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	buf := NewSightingBuffer(testConfig(), logger.Discard(), sqlite.NewSightingRepository(db))
	buf.Observe("s1", []model.Detection{
		{Label: "cat", Confidence: 0.8, Box: model.Box{X: 10, Y: 20, Width: 30, Height: 40}},
		{Label: "dog", Confidence: 0.9},
	}, time.Now())

	sightings, labels, err := buf.Recent(&dto.SightingFilter{Label: "cat"})
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(sightings) != 1 || sightings[0].Width != 30 || sightings[0].SessionID != "s1" {
		t.Errorf("Unexpected sightings %+v", sightings)
	}
	if len(labels) != 2 {
		t.Errorf("Expected both labels archived, got %v", labels)
	}
}
