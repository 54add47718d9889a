package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/cognicore/hizala/pkg/hizala/emit"
	"github.com/cognicore/hizala/pkg/hizala/internalerr"
	"github.com/cognicore/hizala/pkg/hizala/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu    sync.RWMutex
	runs  map[string]store.Run
	pages map[string]map[int][]emit.Row
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:  make(map[string]store.Run),
		pages: make(map[string]map[int][]emit.Row),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateRun registers a new run.
func (s *Store) CreateRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("run %s: %w", r.ID, internalerr.ErrDuplicate)
	}
	s.runs[r.ID] = r
	s.pages[r.ID] = make(map[int][]emit.Row)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	return r, ok, nil
}

// DeleteRun removes a run and its pages.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.runs, id)
	delete(s.pages, id)
	return nil
}

// SavePage stores the rows of one completed pairing, replacing earlier rows.
func (s *Store) SavePage(ctx context.Context, runID string, index int, rows []emit.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pages, ok := s.pages[runID]
	if !ok {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	pages[index] = append([]emit.Row(nil), rows...)
	return nil
}

// LoadPages returns copies of all completed pages of a run.
func (s *Store) LoadPages(ctx context.Context, runID string) (map[int][]emit.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pages, ok := s.pages[runID]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}
	out := make(map[int][]emit.Row, len(pages))
	for idx, rows := range pages {
		out[idx] = append([]emit.Row(nil), rows...)
	}
	return out, nil
}
