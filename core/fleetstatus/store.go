// Package fleetstatus holds the current state of every trainset together
// with the latest fleet metrics rollup.
package fleetstatus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/railfleet/core/fleetmetrics"
	"github.com/kilianp07/railfleet/core/model"
)

// ErrNotFound is returned for an unknown trainset id.
var ErrNotFound = errors.New("trainset not found")

// Store keeps trainsets and the metrics derived from them. Every mutation
// recomputes the rollup before the write becomes visible.
type Store interface {
	Snapshot(ctx context.Context) ([]model.Trainset, error)
	Get(ctx context.Context, id string) (model.Trainset, error)
	Upsert(ctx context.Context, t model.Trainset) (model.FleetMetrics, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (StatusUpdate, error)
	LatestMetrics(ctx context.Context) (model.FleetMetrics, error)
	RecordSchedule(ctx context.Context, averageConfidence float64) (model.FleetMetrics, error)
	Close() error
}

// StatusUpdate is the outcome of one status change. Previous is read in the
// same critical section as the write, so concurrent updates of one trainset
// report each transition once.
type StatusUpdate struct {
	Trainset model.Trainset
	Previous model.Status
	Metrics  model.FleetMetrics
}

// Changed reports whether the update moved the trainset to a new status.
func (u StatusUpdate) Changed() bool { return u.Previous != u.Trainset.Status }

// SortTrainsets orders trainsets by number, then id.
func SortTrainsets(ts []model.Trainset) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Number != ts[j].Number {
			return ts[i].Number < ts[j].Number
		}
		return ts[i].ID < ts[j].ID
	})
}

type MemoryStore struct {
	mu      sync.RWMutex
	data    map[string]model.Trainset
	metrics model.FleetMetrics
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]model.Trainset{}, now: time.Now}
}

// WithClock replaces the time source used to stamp metrics.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) snapshotLocked() []model.Trainset {
	res := make([]model.Trainset, 0, len(s.data))
	for _, t := range s.data {
		res = append(res, t.Clone())
	}
	SortTrainsets(res)
	return res
}

func (s *MemoryStore) Snapshot(ctx context.Context) ([]model.Trainset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.Trainset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.data[id]
	if !ok {
		return model.Trainset{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) Upsert(ctx context.Context, t model.Trainset) (model.FleetMetrics, error) {
	if err := t.Validate(); err != nil {
		return model.FleetMetrics{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[t.ID] = t.Clone()
	s.metrics = fleetmetrics.Refresh(s.metrics, s.snapshotLocked(), s.now())
	return s.metrics, nil
}

// UpdateStatus sets the status of one trainset and recomputes the rollup in
// the same critical section.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status model.Status) (StatusUpdate, error) {
	if !status.Valid() {
		return StatusUpdate{}, fmt.Errorf("%q: %w", status, model.ErrInvalidStatus)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data[id]
	if !ok {
		return StatusUpdate{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	prev := t.Status
	t.Status = status
	s.data[id] = t
	s.metrics = fleetmetrics.Refresh(s.metrics, s.snapshotLocked(), s.now())
	return StatusUpdate{Trainset: t.Clone(), Previous: prev, Metrics: s.metrics}, nil
}

func (s *MemoryStore) LatestMetrics(ctx context.Context) (model.FleetMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics, nil
}

func (s *MemoryStore) RecordSchedule(ctx context.Context, averageConfidence float64) (model.FleetMetrics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = fleetmetrics.RecordSchedule(s.metrics, averageConfidence, s.now())
	return s.metrics, nil
}

func (s *MemoryStore) Close() error { return nil }
