// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// package service provides the long-lived coordinator over the secure
// storage repository. It owns the recurring expiry sweep, serializes cleanup
// operations, and serves aggregated statistics. Callers obtain the
// process-wide instance via Get and must be prepared to fall back to direct
// repository access when initialization fails.
package service

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/moneta-app/moneta/internal/logging"
	"github.com/moneta-app/moneta/internal/model"
	"github.com/moneta-app/moneta/internal/securestore"
)

var (
	// ErrServiceUnavailable is returned when the coordinator could not be
	// initialized (e.g. the storage backend is unreachable). Callers should
	// take the repository-direct path instead of failing the operation.
	ErrServiceUnavailable = errors.New("secure storage service unavailable")

	// ErrServiceStopped is returned for operations invoked after Shutdown.
	ErrServiceStopped = errors.New("secure storage service stopped")
)

// State describes the service lifecycle. Transitions are one-way:
// Uninitialized -> Running -> ShuttingDown -> Stopped.
type State int32

const (
	StateUninitialized State = iota
	StateRunning
	StateShuttingDown
	StateStopped
)

// DefaultSweepInterval is used when the config does not specify one.
const DefaultSweepInterval = 15 * time.Minute

// Config carries the dependencies and tuning for a Service.
type Config struct {
	// Store is the repository the service coordinates. When nil, the
	// package-level securestore default is used.
	Store securestore.Store
	// SweepInterval is the fixed period between scheduled cleanup sweeps.
	SweepInterval time.Duration
}

// Service is the coordinating facade over one repository instance. At most
// one cleanup operation executes at a time system-wide; the scheduled sweep
// and ManualCleanup serialize on an internal lock.
type Service struct {
	store    securestore.Store
	interval time.Duration

	// cleanupMu guards the cleanup critical section.
	cleanupMu sync.Mutex

	mu         sync.Mutex
	state      State
	lastReport *model.CleanupReport

	stop chan struct{}
	done chan struct{}
}

var (
	instanceMu sync.Mutex
	instance   *Service
)

// Get returns the process-wide service, lazily constructing and starting it
// on first access. Concurrent first access creates exactly one instance;
// losers of the race receive the winner's. A failed initialization is
// returned to the caller and not cached, so a later access can retry once
// the backend is reachable.
func Get(cfg Config) (*Service, error) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if instance != nil {
		return instance, nil
	}
	s, err := New(cfg)
	if err != nil {
		return nil, err
	}
	instance = s
	return instance, nil
}

// New constructs a Service and starts its sweep scheduler. Most callers
// should use Get; New exists for tests and embedded setups that manage the
// lifecycle themselves.
func New(cfg Config) (*Service, error) {
	st := cfg.Store
	if st == nil {
		st = securestore.Default()
	}
	if st == nil {
		return nil, fmt.Errorf("%w: storage backend not initialized", ErrServiceUnavailable)
	}
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := &Service{
		store:    st,
		interval: interval,
		state:    StateRunning,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.runScheduler()
	return s, nil
}

// State returns the current lifecycle state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the report of the most recent sweep, or nil when no
// sweep has completed yet.
func (s *Service) LastReport() *model.CleanupReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReport == nil {
		return nil
	}
	r := *s.lastReport
	return &r
}

// ManualCleanup triggers an out-of-band sweep immediately. If a sweep is
// already running the call blocks until it completes and then performs a
// fresh sweep of its own, so the caller's request is always honored with
// current data rather than a stale report.
func (s *Service) ManualCleanup() (*model.CleanupReport, error) {
	if err := s.ensureRunning(); err != nil {
		return nil, err
	}
	return s.sweep(true)
}

// Statistics delegates to the repository. The service layer exists so future
// caching or aggregation can be added without changing the repository
// contract.
func (s *Service) Statistics(ownerID string) ([]model.StorageStat, error) {
	if err := s.ensureRunning(); err != nil {
		return nil, err
	}
	return s.store.GetStorageStats(ownerID)
}

// Shutdown stops the scheduler and transitions the service to Stopped. It is
// idempotent and waits for an in-flight scheduled sweep to finish. No
// operations are accepted afterwards.
func (s *Service) Shutdown() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateShuttingDown
	s.mu.Unlock()

	close(s.stop)
	<-s.done

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()

	instanceMu.Lock()
	if instance == s {
		instance = nil
	}
	instanceMu.Unlock()
}

func (s *Service) ensureRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateRunning:
		return nil
	case StateUninitialized:
		return ErrServiceUnavailable
	default:
		return ErrServiceStopped
	}
}

// runScheduler drives the recurring sweep until Shutdown.
func (s *Service) runScheduler() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := s.sweep(false); err != nil {
				logging.Errorf("service: scheduled cleanup sweep failed: %v", err)
			}
		case <-s.stop:
			return
		}
	}
}

// sweep runs one cleanup pass under the exclusive cleanup lock and records
// the outcome.
func (s *Service) sweep(manual bool) (*model.CleanupReport, error) {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()

	started := time.Now()
	removed, err := s.store.CleanupExpired()
	if err != nil {
		return nil, fmt.Errorf("cleanup sweep: %w", err)
	}
	report := &model.CleanupReport{
		ID:           uuid.NewString(),
		RemovedCount: removed,
		Duration:     time.Since(started),
		StartedAt:    started,
		Manual:       manual,
	}

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	logging.Debugf("service: cleanup sweep %s removed %d records in %s (manual=%t)",
		report.ID, report.RemovedCount, report.Duration, manual)
	r := *report
	return &r, nil
}
