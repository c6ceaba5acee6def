package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"catalogsize/internal/geometry"
	"catalogsize/internal/models"
)

// ErrNoRunMetadata is returned when a document without metadata is written
// to SQLite; rows are keyed by run id.
var ErrNoRunMetadata = errors.New("document has no run metadata")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	tool         TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	config_hash  TEXT,
	entries_hash TEXT,
	entries      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	run_id  TEXT NOT NULL REFERENCES runs(run_id),
	idx     INTEGER NOT NULL,
	country TEXT,
	name    TEXT,
	max_cm  REAL,
	min_cm  REAL,
	record  TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_entries_name ON entries(name);
`

// SQLiteSink stores projected documents in a SQLite database.
type SQLiteSink struct {
	conn         *sql.DB
	countryField string
	nameField    string
}

// OpenSQLite opens or creates the database at path and its schema.
func OpenSQLite(path, countryField, nameField string) (*SQLiteSink, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSink{conn: conn, countryField: countryField, nameField: nameField}, nil
}

// WriteDocument stores the run and all of its entries in one transaction.
func (s *SQLiteSink) WriteDocument(ctx context.Context, doc *models.Document) error {
	if doc.Metadata == nil || doc.Metadata.RunID == "" {
		return ErrNoRunMetadata
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m := doc.Metadata

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, tool, generated_at, config_hash, entries_hash, entries) VALUES (?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Tool, m.GeneratedAt.Format(time.RFC3339), m.ConfigHash, m.EntriesHash, len(doc.Entries),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (run_id, idx, country, name, max_cm, min_cm, record) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range doc.Entries {
		record, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", i, err)
		}

		if _, err := stmt.ExecContext(ctx,
			m.RunID, i,
			nullString(rec, s.countryField),
			nullString(rec, s.nameField),
			nullFloat(rec, geometry.FieldMaxCM),
			nullFloat(rec, geometry.FieldMinCM),
			string(record),
		); err != nil {
			return fmt.Errorf("failed to insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// ProjectedCount returns the number of entries of a run that have max_cm.
func (s *SQLiteSink) ProjectedCount(ctx context.Context, runID string) (int, error) {
	var n int

	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE run_id = ? AND max_cm IS NOT NULL`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	return n, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.conn.Close()
}

func nullString(rec models.Record, field string) sql.NullString {
	v, ok := rec.String(field)
	return sql.NullString{String: v, Valid: ok}
}

func nullFloat(rec models.Record, field string) sql.NullFloat64 {
	v, ok := rec.Float(field)
	return sql.NullFloat64{Float64: v, Valid: ok}
}
