// Package store persists dataset snapshots and the parent links between
// them. Snapshots are immutable once created.
package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// Metadata keys stamped on every snapshot.
const (
	MetaCreatedAt = "created_at"
	MetaSize      = "size"
)

// Reader is the read side of a Store.
type Reader interface {
	Get(ctx context.Context, id string) (dataset.Dataset, error)
	ListByType(ctx context.Context, typ dataset.Type) ([]dataset.Dataset, error)
	List(ctx context.Context) ([]dataset.Dataset, error)
}

// Store is an append-only dataset lineage store. It does not enforce stage
// ordering; callers decide which transitions are legal.
type Store interface {
	Reader

	// Create stores a new snapshot derived from parent (nil for a root).
	Create(ctx context.Context, parent *dataset.Dataset, typ dataset.Type, name string, records []dataset.Record, metadata map[string]string) (dataset.Dataset, error)

	// Lineage returns the chain from id back to its root, id first.
	Lineage(ctx context.Context, id string) ([]dataset.Dataset, error)

	Close() error
}

// NewSnapshot builds the dataset a Create call stores: fresh id, parent
// link, copied records and metadata with created_at and size stamped.
func NewSnapshot(parent *dataset.Dataset, typ dataset.Type, name string, records []dataset.Record, metadata map[string]string, now time.Time) (dataset.Dataset, error) {
	if !typ.Valid() {
		return dataset.Dataset{}, fmt.Errorf("dataset type %d: %w", int(typ), internalerr.ErrInvalidInput)
	}
	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	now = now.UTC()
	meta[MetaCreatedAt] = now.Format(time.RFC3339Nano)
	meta[MetaSize] = strconv.Itoa(len(records))

	d := dataset.Dataset{
		ID:        dataset.NewID(),
		Name:      name,
		Type:      typ,
		Records:   dataset.CloneRecords(records),
		Metadata:  meta,
		CreatedAt: now,
	}
	if parent != nil {
		d.ParentID = parent.ID
	}
	return d, nil
}

// Lineage walks parent links through r starting at id.
func Lineage(ctx context.Context, r Reader, id string) ([]dataset.Dataset, error) {
	var chain []dataset.Dataset
	seen := make(map[string]bool)
	for id != "" {
		if seen[id] {
			return nil, fmt.Errorf("lineage cycle at %s: %w", id, internalerr.ErrInvalidInput)
		}
		seen[id] = true
		d, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, d)
		id = d.ParentID
	}
	return chain, nil
}
