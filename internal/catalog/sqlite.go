package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS objects (
	case_uuid      TEXT NOT NULL,
	relative_path  TEXT NOT NULL,
	name           TEXT NOT NULL,
	content        TEXT NOT NULL,
	classification TEXT NOT NULL,
	stage          TEXT NOT NULL,
	realization_id INTEGER,
	entity_uuid    TEXT NOT NULL DEFAULT '',
	checksum_md5   TEXT NOT NULL,
	size_bytes     INTEGER NOT NULL,
	indexed_at     TEXT NOT NULL,
	document       BLOB NOT NULL,
	PRIMARY KEY (case_uuid, relative_path)
)`

// SQLiteStore persists the catalog to a single SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (and migrates) a SQLite-backed catalog. An empty path
// defaults to fmu_catalog.db in the working directory.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "fmu_catalog.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("create objects table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Driver() Driver { return DriverSQLite }

// Path returns the configured database file.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Upsert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO objects
		(case_uuid, relative_path, name, content, classification, stage,
		 realization_id, entity_uuid, checksum_md5, size_bytes, indexed_at, document)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(case_uuid, relative_path) DO UPDATE SET
		 name=excluded.name, content=excluded.content,
		 classification=excluded.classification, stage=excluded.stage,
		 realization_id=excluded.realization_id, entity_uuid=excluded.entity_uuid,
		 checksum_md5=excluded.checksum_md5, size_bytes=excluded.size_bytes,
		 indexed_at=excluded.indexed_at, document=excluded.document`,
		e.CaseUUID, e.RelativePath, e.Name, e.Content, e.Classification, e.Stage,
		nullableInt(e.RealizationID), e.EntityUUID, e.ChecksumMD5, e.SizeBytes,
		e.IndexedAt.UTC().Format(time.RFC3339Nano), e.Document)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.RelativePath, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, caseUUID, relativePath string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT case_uuid, relative_path, name, content,
		classification, stage, realization_id, entity_uuid, checksum_md5, size_bytes,
		indexed_at, document
		FROM objects WHERE case_uuid = ? AND relative_path = ?`, caseUUID, relativePath)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *SQLiteStore) List(ctx context.Context, caseUUID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT case_uuid, relative_path, name, content,
		classification, stage, realization_id, entity_uuid, checksum_md5, size_bytes,
		indexed_at, document
		FROM objects WHERE case_uuid = ? ORDER BY relative_path`, caseUUID)
	if err != nil {
		return nil, fmt.Errorf("select objects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate objects: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var realization sql.NullInt64
	var indexedAt string
	if err := row.Scan(&e.CaseUUID, &e.RelativePath, &e.Name, &e.Content,
		&e.Classification, &e.Stage, &realization, &e.EntityUUID,
		&e.ChecksumMD5, &e.SizeBytes, &indexedAt, &e.Document); err != nil {
		return Entry{}, err
	}
	if realization.Valid {
		id := int(realization.Int64)
		e.RealizationID = &id
	}
	if ts, err := time.Parse(time.RFC3339Nano, indexedAt); err == nil {
		e.IndexedAt = ts
	}
	return e, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
