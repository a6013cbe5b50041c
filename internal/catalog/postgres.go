package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const postgresDefaultDSN = "postgres://localhost/fmu_catalog?sslmode=disable"

const postgresSchema = `CREATE TABLE IF NOT EXISTS objects (
	case_uuid      TEXT NOT NULL,
	relative_path  TEXT NOT NULL,
	name           TEXT NOT NULL,
	content        TEXT NOT NULL,
	classification TEXT NOT NULL,
	stage          TEXT NOT NULL,
	realization_id INTEGER,
	entity_uuid    TEXT NOT NULL DEFAULT '',
	checksum_md5   TEXT NOT NULL,
	size_bytes     BIGINT NOT NULL,
	indexed_at     TIMESTAMPTZ NOT NULL,
	document       BYTEA NOT NULL,
	PRIMARY KEY (case_uuid, relative_path)
)`

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// OverrideSQLOpen swaps the database opener for tests and returns a
// restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

// PostgresStore persists the catalog to Postgres, sharing the table
// across cases so one database can index a whole field.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens (and migrates) a Postgres-backed catalog.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = postgresDefaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen("pgx", dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create objects table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Driver() Driver { return DriverPostgres }

func (s *PostgresStore) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *PostgresStore) DB() *sql.DB { return s.db }

func (s *PostgresStore) Upsert(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO objects
		(case_uuid, relative_path, name, content, classification, stage,
		 realization_id, entity_uuid, checksum_md5, size_bytes, indexed_at, document)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (case_uuid, relative_path) DO UPDATE SET
		 name=EXCLUDED.name, content=EXCLUDED.content,
		 classification=EXCLUDED.classification, stage=EXCLUDED.stage,
		 realization_id=EXCLUDED.realization_id, entity_uuid=EXCLUDED.entity_uuid,
		 checksum_md5=EXCLUDED.checksum_md5, size_bytes=EXCLUDED.size_bytes,
		 indexed_at=EXCLUDED.indexed_at, document=EXCLUDED.document`,
		e.CaseUUID, e.RelativePath, e.Name, e.Content, e.Classification, e.Stage,
		nullableInt(e.RealizationID), e.EntityUUID, e.ChecksumMD5, e.SizeBytes,
		e.IndexedAt.UTC(), e.Document)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.RelativePath, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, caseUUID, relativePath string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT case_uuid, relative_path, name, content,
		classification, stage, realization_id, entity_uuid, checksum_md5, size_bytes,
		indexed_at, document
		FROM objects WHERE case_uuid = $1 AND relative_path = $2`, caseUUID, relativePath)
	e, err := scanPostgresEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (s *PostgresStore) List(ctx context.Context, caseUUID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT case_uuid, relative_path, name, content,
		classification, stage, realization_id, entity_uuid, checksum_md5, size_bytes,
		indexed_at, document
		FROM objects WHERE case_uuid = $1 ORDER BY relative_path`, caseUUID)
	if err != nil {
		return nil, fmt.Errorf("select objects: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		e, err := scanPostgresEntry(rows)
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

func scanPostgresEntry(row rowScanner) (Entry, error) {
	var e Entry
	var realization sql.NullInt64
	var indexedAt time.Time
	if err := row.Scan(&e.CaseUUID, &e.RelativePath, &e.Name, &e.Content,
		&e.Classification, &e.Stage, &realization, &e.EntityUUID,
		&e.ChecksumMD5, &e.SizeBytes, &indexedAt, &e.Document); err != nil {
		return Entry{}, err
	}
	if realization.Valid {
		id := int(realization.Int64)
		e.RealizationID = &id
	}
	e.IndexedAt = indexedAt
	return e, nil
}
