package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textflow/pkg/textflow/dataset"
	"github.com/cognicore/textflow/pkg/textflow/internalerr"
	"github.com/cognicore/textflow/pkg/textflow/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// lineage schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, internalerr.ErrStoreUnavailable)
	}
	// One writer at a time; list queries release rows before loading records.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	parent_id TEXT REFERENCES datasets(id),
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS datasets_type ON datasets(type);

CREATE TABLE IF NOT EXISTS records (
	dataset_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	text TEXT NOT NULL,
	label TEXT,
	vector BLOB,
	PRIMARY KEY(dataset_id, idx),
	FOREIGN KEY(dataset_id) REFERENCES datasets(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Create inserts the snapshot and its records in one transaction.
func (s *sqliteStore) Create(ctx context.Context, parent *dataset.Dataset, typ dataset.Type, name string, records []dataset.Record, metadata map[string]string) (dataset.Dataset, error) {
	d, err := store.NewSnapshot(parent, typ, name, records, metadata, s.now())
	if err != nil {
		return dataset.Dataset{}, err
	}
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return dataset.Dataset{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dataset.Dataset{}, err
	}
	defer tx.Rollback()

	var parentID any
	if d.ParentID != "" {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM datasets WHERE id = ?`, d.ParentID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return dataset.Dataset{}, fmt.Errorf("parent %s: %w", d.ParentID, internalerr.ErrNotFound)
		}
		if err != nil {
			return dataset.Dataset{}, err
		}
		parentID = d.ParentID
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO datasets (id, name, type, parent_id, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Name, d.Type.String(), parentID, string(meta), d.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return dataset.Dataset{}, err
	}

	if len(d.Records) > 0 {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (dataset_id, idx, text, label, vector) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return dataset.Dataset{}, err
		}
		defer stmt.Close()
		for i, r := range d.Records {
			var label any
			if r.Label != nil {
				label = *r.Label
			}
			if _, err := stmt.ExecContext(ctx, d.ID, i, r.Text, label, encodeVector(r.Vector)); err != nil {
				return dataset.Dataset{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return dataset.Dataset{}, err
	}
	return d.Clone(), nil
}

// Get loads a dataset with its records.
func (s *sqliteStore) Get(ctx context.Context, id string) (dataset.Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, type, parent_id, metadata, created_at
FROM datasets WHERE id = ?`, id)
	d, err := scanDataset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dataset.Dataset{}, fmt.Errorf("dataset %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return dataset.Dataset{}, err
	}
	if d.Records, err = s.loadRecords(ctx, d.ID); err != nil {
		return dataset.Dataset{}, err
	}
	return d, nil
}

// ListByType returns datasets of one type in creation order.
func (s *sqliteStore) ListByType(ctx context.Context, typ dataset.Type) ([]dataset.Dataset, error) {
	return s.list(ctx, `
SELECT id, name, type, parent_id, metadata, created_at
FROM datasets WHERE type = ? ORDER BY seq`, typ.String())
}

// List returns every dataset in creation order.
func (s *sqliteStore) List(ctx context.Context) ([]dataset.Dataset, error) {
	return s.list(ctx, `
SELECT id, name, type, parent_id, metadata, created_at
FROM datasets ORDER BY seq`)
}

// Lineage implements store.Store.
func (s *sqliteStore) Lineage(ctx context.Context, id string) ([]dataset.Dataset, error) {
	return store.Lineage(ctx, s, id)
}

func (s *sqliteStore) list(ctx context.Context, query string, args ...any) ([]dataset.Dataset, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var out []dataset.Dataset
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].Records, err = s.loadRecords(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDataset(row scanner) (dataset.Dataset, error) {
	var (
		d        dataset.Dataset
		typ      string
		parentID sql.NullString
		meta     string
		created  string
	)
	if err := row.Scan(&d.ID, &d.Name, &typ, &parentID, &meta, &created); err != nil {
		return dataset.Dataset{}, err
	}
	t, err := dataset.ParseType(typ)
	if err != nil {
		return dataset.Dataset{}, err
	}
	d.Type = t
	d.ParentID = parentID.String
	if err := json.Unmarshal([]byte(meta), &d.Metadata); err != nil {
		return dataset.Dataset{}, fmt.Errorf("dataset %s metadata: %w", d.ID, err)
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return dataset.Dataset{}, fmt.Errorf("dataset %s created_at: %w", d.ID, err)
	}
	return d, nil
}

func (s *sqliteStore) loadRecords(ctx context.Context, id string) ([]dataset.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT text, label, vector FROM records WHERE dataset_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dataset.Record
	for rows.Next() {
		var (
			r     dataset.Record
			label sql.NullString
			blob  []byte
		)
		if err := rows.Scan(&r.Text, &label, &blob); err != nil {
			return nil, err
		}
		if label.Valid {
			l := label.String
			r.Label = &l
		}
		if r.Vector, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("dataset %s: %w", id, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
