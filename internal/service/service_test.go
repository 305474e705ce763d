// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package service

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moneta-app/moneta/internal/model"
)

// fakeStore implements securestore.Store with instrumented cleanup so tests
// can observe call counts and concurrency.
type fakeStore struct {
	cleanupCalls  atomic.Int32
	inFlight      atomic.Int32
	maxInFlight   atomic.Int32
	cleanupErr    error
	cleanupDelay  time.Duration
	removedReturn int
}

func (f *fakeStore) StoreRecord(ownerID, dataType string, payload, nonce []byte, algorithm, keyID string, expiresAt *time.Time) (*model.SecureRecord, error) {
	return nil, nil
}
func (f *fakeStore) RetrieveRecord(ownerID, dataType string) (*model.SecureRecord, error) {
	return nil, nil
}
func (f *fakeStore) DeleteRecord(ownerID, dataType string) (bool, error) { return false, nil }

func (f *fakeStore) CleanupExpired() (int, error) {
	cur := f.inFlight.Add(1)
	for {
		max := f.maxInFlight.Load()
		if cur <= max || f.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}
	if f.cleanupDelay > 0 {
		time.Sleep(f.cleanupDelay)
	}
	f.inFlight.Add(-1)
	f.cleanupCalls.Add(1)
	if f.cleanupErr != nil {
		return 0, f.cleanupErr
	}
	return f.removedReturn, nil
}

func (f *fakeStore) GetStorageStats(ownerID string) ([]model.StorageStat, error) {
	return []model.StorageStat{{OwnerID: ownerID, DataType: "t", RecordCount: 1}}, nil
}
func (f *fakeStore) ExportDataForBackup() (*model.BackupData, error)      { return &model.BackupData{}, nil }
func (f *fakeStore) ImportDataFromBackup(backup *model.BackupData) error  { return nil }
func (f *fakeStore) IntegrateDataFromBackup(b *model.BackupData) error    { return nil }

// resetInstance clears the process-wide singleton between tests.
func resetInstance() {
	instanceMu.Lock()
	instance = nil
	instanceMu.Unlock()
}

func TestGet_SingletonUnderConcurrency(t *testing.T) {
	resetInstance()
	defer resetInstance()

	fs := &fakeStore{}
	cfg := Config{Store: fs, SweepInterval: time.Hour}

	const n = 16
	results := make([]*Service, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Get(cfg)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	first := results[0]
	if first == nil {
		t.Fatalf("expected a service instance")
	}
	for i, s := range results {
		if s != first {
			t.Fatalf("caller %d received a different instance", i)
		}
	}
	first.Shutdown()
}

func TestGet_FailedInitNotCached(t *testing.T) {
	resetInstance()
	defer resetInstance()

	// No store configured and no package default: init must fail.
	if _, err := Get(Config{}); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got: %v", err)
	}

	// A later call with a working backend must succeed; the failure above
	// must not have poisoned the singleton.
	s, err := Get(Config{Store: &fakeStore{}, SweepInterval: time.Hour})
	if err != nil {
		t.Fatalf("retry after failed init must succeed, got: %v", err)
	}
	s.Shutdown()
}

func TestManualCleanup_ReportsOutcome(t *testing.T) {
	fs := &fakeStore{removedReturn: 3}
	s, err := New(Config{Store: fs, SweepInterval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Shutdown()

	report, err := s.ManualCleanup()
	if err != nil {
		t.Fatalf("ManualCleanup failed: %v", err)
	}
	if report.RemovedCount != 3 {
		t.Fatalf("expected removed count 3, got %d", report.RemovedCount)
	}
	if !report.Manual {
		t.Fatalf("expected manual flag on report")
	}
	if report.ID == "" {
		t.Fatalf("expected a report id")
	}

	last := s.LastReport()
	if last == nil || last.ID != report.ID {
		t.Fatalf("LastReport must reflect the latest sweep")
	}
}

func TestManualCleanup_SerializedAndAlwaysFresh(t *testing.T) {
	fs := &fakeStore{cleanupDelay: 50 * time.Millisecond}
	s, err := New(Config{Store: fs, SweepInterval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Shutdown()

	const n = 4
	var wg sync.WaitGroup
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			report, err := s.ManualCleanup()
			if err != nil {
				t.Errorf("ManualCleanup failed: %v", err)
				return
			}
			ids[i] = report.ID
		}(i)
	}
	wg.Wait()

	if max := fs.maxInFlight.Load(); max > 1 {
		t.Fatalf("cleanup ran concurrently (max in flight %d)", max)
	}
	// Each caller gets a sweep of its own, not a stale report.
	if calls := fs.cleanupCalls.Load(); calls != n {
		t.Fatalf("expected %d distinct sweeps, got %d", n, calls)
	}
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("two callers shared a sweep report: %s", id)
		}
		seen[id] = true
	}
}

func TestManualCleanup_PropagatesStoreError(t *testing.T) {
	storeErr := errors.New("backend down")
	fs := &fakeStore{cleanupErr: storeErr}
	s, err := New(Config{Store: fs, SweepInterval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Shutdown()

	if _, err := s.ManualCleanup(); !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store error, got: %v", err)
	}
	if s.LastReport() != nil {
		t.Fatalf("failed sweep must not record a report")
	}
}

func TestScheduledSweep_Runs(t *testing.T) {
	fs := &fakeStore{}
	s, err := New(Config{Store: fs, SweepInterval: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for fs.cleanupCalls.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("scheduler never ran a sweep")
		}
		time.Sleep(5 * time.Millisecond)
	}
	report := s.LastReport()
	if report == nil {
		t.Fatalf("expected a report from the scheduled sweep")
	}
	if report.Manual {
		t.Fatalf("scheduled sweep must not be flagged manual")
	}
}

func TestShutdown_StateAndIdempotence(t *testing.T) {
	fs := &fakeStore{}
	s, err := New(Config{Store: fs, SweepInterval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if s.State() != StateRunning {
		t.Fatalf("expected Running after New, got %v", s.State())
	}

	s.Shutdown()
	if s.State() != StateStopped {
		t.Fatalf("expected Stopped after Shutdown, got %v", s.State())
	}
	// Idempotent.
	s.Shutdown()

	if _, err := s.ManualCleanup(); !errors.Is(err, ErrServiceStopped) {
		t.Fatalf("expected ErrServiceStopped after shutdown, got: %v", err)
	}
	if _, err := s.Statistics(""); !errors.Is(err, ErrServiceStopped) {
		t.Fatalf("expected ErrServiceStopped after shutdown, got: %v", err)
	}
}

func TestLastReport_ReturnsCopy(t *testing.T) {
	fs := &fakeStore{removedReturn: 1}
	s, err := New(Config{Store: fs, SweepInterval: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Shutdown()

	if s.LastReport() != nil {
		t.Fatalf("expected nil report before any sweep")
	}
	if _, err := s.ManualCleanup(); err != nil {
		t.Fatalf("ManualCleanup failed: %v", err)
	}

	r1 := s.LastReport()
	r1.RemovedCount = 999
	r2 := s.LastReport()
	if r2.RemovedCount == 999 {
		t.Fatalf("LastReport must return a copy, not shared state")
	}
}
