package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/hizala/pkg/hizala/emit"
	"github.com/cognicore/hizala/pkg/hizala/internalerr"
	"github.com/cognicore/hizala/pkg/hizala/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	// Page workers save concurrently; a single connection serializes writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	master_name TEXT,
	slave_name TEXT,
	master_digest TEXT NOT NULL,
	slave_digest TEXT NOT NULL,
	pairings INTEGER NOT NULL DEFAULT 0,
	created_at TEXT
);

CREATE TABLE IF NOT EXISTS pages (
	run_id TEXT NOT NULL,
	page_idx INTEGER NOT NULL,
	row_count INTEGER NOT NULL,
	completed_at TEXT,
	PRIMARY KEY(run_id, page_idx),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS page_rows (
	run_id TEXT NOT NULL,
	page_idx INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	master_token TEXT NOT NULL,
	master_lemma TEXT NOT NULL,
	slave_token TEXT NOT NULL,
	slave_lemma TEXT NOT NULL,
	PRIMARY KEY(run_id, page_idx, seq),
	FOREIGN KEY(run_id, page_idx) REFERENCES pages(run_id, page_idx) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateRun inserts a new run
func (s *sqliteStore) CreateRun(ctx context.Context, r store.Run) error {
	const stmt = `
INSERT INTO runs (id, master_name, slave_name, master_digest, slave_digest, pairings, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		r.ID,
		r.MasterName,
		r.SlaveName,
		r.MasterDigest,
		r.SlaveDigest,
		r.Pairings,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("run %s: %w", r.ID, internalerr.ErrDuplicate)
		}
		return err
	}
	return nil
}

// GetRun returns a run by ID
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, bool, error) {
	const query = `
SELECT id, master_name, slave_name, master_digest, slave_digest, pairings, created_at
FROM runs WHERE id = ?;
`
	var (
		r       store.Run
		created string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID,
		&r.MasterName,
		&r.SlaveName,
		&r.MasterDigest,
		&r.SlaveDigest,
		&r.Pairings,
		&created,
	)
	if err == sql.ErrNoRows {
		return store.Run{}, false, nil
	}
	if err != nil {
		return store.Run{}, false, err
	}
	if t, perr := time.Parse(time.RFC3339, created); perr == nil {
		r.CreatedAt = t
	}
	return r, true, nil
}

// DeleteRun removes a run; its pages and rows cascade
func (s *sqliteStore) DeleteRun(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// SavePage replaces the stored rows of one pairing and marks it completed
func (s *sqliteStore) SavePage(ctx context.Context, runID string, index int, rows []emit.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pages WHERE run_id = ? AND page_idx = ?`, runID, index); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pages (run_id, page_idx, row_count, completed_at) VALUES (?, ?, ?, ?)`,
		runID, index, len(rows), time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}

	if len(rows) > 0 {
		ins, err := tx.PrepareContext(ctx, `
INSERT INTO page_rows (run_id, page_idx, seq, master_token, master_lemma, slave_token, slave_lemma)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer ins.Close()

		for seq, r := range rows {
			if _, err := ins.ExecContext(ctx, runID, index, seq,
				r.MasterToken, r.MasterLemma, r.SlaveToken, r.SlaveLemma); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// LoadPages returns every completed pairing of a run with its rows in order
func (s *sqliteStore) LoadPages(ctx context.Context, runID string) (map[int][]emit.Row, error) {
	if _, found, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	} else if !found {
		return nil, fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	pages := make(map[int][]emit.Row)
	idxRows, err := s.db.QueryContext(ctx, `SELECT page_idx FROM pages WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	for idxRows.Next() {
		var idx int
		if err := idxRows.Scan(&idx); err != nil {
			idxRows.Close()
			return nil, err
		}
		pages[idx] = nil
	}
	if err := idxRows.Err(); err != nil {
		idxRows.Close()
		return nil, err
	}
	idxRows.Close()

	rows, err := s.db.QueryContext(ctx, `
SELECT page_idx, master_token, master_lemma, slave_token, slave_lemma
FROM page_rows WHERE run_id = ?
ORDER BY page_idx, seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			idx int
			r   emit.Row
		)
		if err := rows.Scan(&idx, &r.MasterToken, &r.MasterLemma, &r.SlaveToken, &r.SlaveLemma); err != nil {
			return nil, err
		}
		pages[idx] = append(pages[idx], r)
	}
	return pages, rows.Err()
}
