package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvandessel/ezdiff/internal/simulation"
)

// InMemoryRunStore implements RunStore with an in-process slice.
// Useful for tests and for servers that should not touch disk.
type InMemoryRunStore struct {
	mu     sync.RWMutex
	runs   []Run
	nextID int64
}

// NewInMemoryRunStore creates an empty in-memory store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{nextID: 1}
}

// SaveRun stores a copy of the report.
func (s *InMemoryRunStore) SaveRun(ctx context.Context, report simulation.Report) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.runs = append(s.runs, Run{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Seed:      report.Seed,
		Params:    report.Params,
		Results:   append([]simulation.Result(nil), report.Results...),
	})
	return id, nil
}

// GetRun returns a copy of the run with the given ID.
func (s *InMemoryRunStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.runs {
		if r.ID == id {
			run := copyRun(r)
			return &run, nil
		}
	}
	return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
}

// ListRuns returns up to limit runs, newest first.
func (s *InMemoryRunStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Run
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, copyRun(s.runs[i]))
	}
	return out, nil
}

// Close is a no-op.
func (s *InMemoryRunStore) Close() error {
	return nil
}

func copyRun(r Run) Run {
	r.Results = append([]simulation.Result(nil), r.Results...)
	return r
}

var _ RunStore = (*InMemoryRunStore)(nil)
