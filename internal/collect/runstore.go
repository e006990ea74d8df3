package collect

import (
	"errors"
	"sync"
)

// ErrNoRuns is returned before the first completed capture run.
var ErrNoRuns = errors.New("no completed capture runs")

// RunStore is a concurrency-safe holder for the most recent run's report and
// rows, read by the operational API while the scheduler keeps writing.
type RunStore struct {
	mu     sync.RWMutex
	report RunReport
	rows   []Snapshot
	loaded bool
}

func NewRunStore() *RunStore {
	return &RunStore{}
}

// Save replaces the stored run.
func (s *RunStore) Save(report RunReport, rows []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = report
	s.rows = rows
	s.loaded = true
}

// LastReport returns the most recent run report.
func (s *RunStore) LastReport() (RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return RunReport{}, ErrNoRuns
	}
	return s.report, nil
}

// LastRun returns the most recent run's report and the rows it wrote, read
// under one lock so the two always describe the same run.
func (s *RunStore) LastRun() (RunReport, []Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return RunReport{}, nil, ErrNoRuns
	}
	rows := make([]Snapshot, len(s.rows))
	copy(rows, s.rows)
	return s.report, rows, nil
}
