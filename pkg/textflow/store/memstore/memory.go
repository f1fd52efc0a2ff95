package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/store"
)

// Store is an in-memory implementation of store.Store for tests and
// single-process runs.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]dataset.Dataset
	order []string
	now   func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		byID: make(map[string]dataset.Dataset),
		now:  time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// Create implements store.Store.
func (s *Store) Create(ctx context.Context, parent *dataset.Dataset, typ dataset.Type, name string, records []dataset.Record, metadata map[string]string) (dataset.Dataset, error) {
	d, err := store.NewSnapshot(parent, typ, name, records, metadata, s.now())
	if err != nil {
		return dataset.Dataset{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ParentID != "" {
		if _, ok := s.byID[d.ParentID]; !ok {
			return dataset.Dataset{}, fmt.Errorf("parent %s: %w", d.ParentID, internalerr.ErrNotFound)
		}
	}
	s.byID[d.ID] = d
	s.order = append(s.order, d.ID)
	return d.Clone(), nil
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, id string) (dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.byID[id]
	if !ok {
		return dataset.Dataset{}, fmt.Errorf("dataset %s: %w", id, internalerr.ErrNotFound)
	}
	return d.Clone(), nil
}

// ListByType returns datasets of one type in creation order.
func (s *Store) ListByType(ctx context.Context, typ dataset.Type) ([]dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []dataset.Dataset
	for _, id := range s.order {
		if d := s.byID[id]; d.Type == typ {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

// List returns every dataset in creation order.
func (s *Store) List(ctx context.Context) ([]dataset.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]dataset.Dataset, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

// Lineage implements store.Store.
func (s *Store) Lineage(ctx context.Context, id string) ([]dataset.Dataset, error) {
	return store.Lineage(ctx, s, id)
}

// Len returns the number of stored datasets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
