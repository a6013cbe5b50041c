// Package catalog indexes exported artifacts of a case into a queryable
// store. The scanner walks a case tree, validates every metadata sidecar
// and upserts one catalog entry per artifact, so re-scanning a case is
// idempotent.
//
// The backing store is selected through the environment:
//
//	FMU_DATAIO_CATALOG_DRIVER: memory|sqlite|postgres (default sqlite)
//	FMU_DATAIO_CATALOG_SQLITE_PATH: database file when driver=sqlite
//	FMU_DATAIO_CATALOG_POSTGRES_DSN: connection string when driver=postgres
package catalog

import (
	"context"
	"fmt"
	"os"
	"time"
)

const (
	EnvDriver      = "FMU_DATAIO_CATALOG_DRIVER"
	EnvSQLitePath  = "FMU_DATAIO_CATALOG_SQLITE_PATH"
	EnvPostgresDSN = "FMU_DATAIO_CATALOG_POSTGRES_DSN"
)

// Driver identifies a concrete catalog backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Entry is one indexed artifact. The full metadata document is kept as
// raw YAML next to the columns used for lookups.
type Entry struct {
	CaseUUID       string    `json:"case_uuid"`
	RelativePath   string    `json:"relative_path"`
	Name           string    `json:"name"`
	Content        string    `json:"content"`
	Classification string    `json:"classification"`
	Stage          string    `json:"stage"`
	RealizationID  *int      `json:"realization_id,omitempty"`
	EntityUUID     string    `json:"entity_uuid,omitempty"`
	ChecksumMD5    string    `json:"checksum_md5"`
	SizeBytes      int64     `json:"size_bytes"`
	IndexedAt      time.Time `json:"indexed_at"`
	Document       []byte    `json:"-"`
}

// Store is the catalog abstraction. Upsert replaces any previous entry
// for the same (case uuid, relative path) pair.
type Store interface {
	Upsert(ctx context.Context, e Entry) error
	Get(ctx context.Context, caseUUID, relativePath string) (Entry, bool, error)
	List(ctx context.Context, caseUUID string) ([]Entry, error)
	Driver() Driver
	Close() error
}

// Open selects a catalog backend from the environment.
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv(EnvSQLitePath))
	case DriverPostgres:
		return NewPostgres(ctx, os.Getenv(EnvPostgresDSN))
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", driver)
	}
}
