// Package blob archives case artifacts and their metadata sidecars to a
// pluggable object store. Keys are case-root-relative slash paths, so an
// archived case mirrors the on-disk layout exactly.
//
// Higher layers depend on the Store interface only; the backing
// implementations live under internal/infra/blob and are wrapped here.
package blob

import (
	"context"
	"fmt"
	"os"

	"github.com/ErichSuter/fmu-dataio/internal/infra/blob/core"
	blobfs "github.com/ErichSuter/fmu-dataio/internal/infra/blob/fs"
	blobmem "github.com/ErichSuter/fmu-dataio/internal/infra/blob/memory"
	blobs3 "github.com/ErichSuter/fmu-dataio/internal/infra/blob/s3"
)

// Driver identifies a concrete archive backend.
type Driver = core.Driver

const (
	DriverFilesystem = core.DriverFilesystem
	DriverS3         = core.DriverS3
	DriverMemory     = core.DriverMemory
)

// PutOptions carries optional attributes for archived objects.
type PutOptions = core.PutOptions

// Info describes an archived object.
type Info = core.Info

// Store is the archive abstraction. Put overwrites: archiving is an
// idempotent mirror of the case tree, re-runs refresh objects in place.
type Store = core.Store

// Environment variables selecting and configuring the archive backend:
//
//	FMU_DATAIO_BLOB_DRIVER: fs|s3|memory (default fs)
//	FMU_DATAIO_BLOB_FS_ROOT: directory root when driver=fs (default ./archive)
//	FMU_DATAIO_BLOB_S3_BUCKET: bucket name (required for s3)
//	FMU_DATAIO_BLOB_S3_REGION: region (default us-east-1)
//	FMU_DATAIO_BLOB_S3_ENDPOINT: optional custom endpoint (MinIO)
//	FMU_DATAIO_BLOB_S3_PATH_STYLE: true|false (default false)
const (
	EnvDriver      = "FMU_DATAIO_BLOB_DRIVER"
	EnvFSRoot      = "FMU_DATAIO_BLOB_FS_ROOT"
	EnvS3Bucket    = "FMU_DATAIO_BLOB_S3_BUCKET"
	EnvS3Region    = "FMU_DATAIO_BLOB_S3_REGION"
	EnvS3Endpoint  = "FMU_DATAIO_BLOB_S3_ENDPOINT"
	EnvS3PathStyle = "FMU_DATAIO_BLOB_S3_PATH_STYLE"
)

// Open selects an archive backend from the environment.
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(EnvFSRoot))
	case DriverS3:
		return blobs3.New(ctx, blobs3.Config{
			Bucket:    os.Getenv(EnvS3Bucket),
			Region:    os.Getenv(EnvS3Region),
			Endpoint:  os.Getenv(EnvS3Endpoint),
			PathStyle: os.Getenv(EnvS3PathStyle) == "true",
		})
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}

// NewFilesystem returns a directory-backed archive store.
func NewFilesystem(root string) (Store, error) {
	return blobfs.New(root)
}

// NewMemory returns an in-memory archive store for tests.
func NewMemory() Store {
	return blobmem.New()
}

// NewS3 returns an S3-backed archive store.
func NewS3(ctx context.Context, cfg blobs3.Config) (Store, error) {
	return blobs3.New(ctx, cfg)
}

// ArchiveFile stores one on-disk file under its case-relative key.
func ArchiveFile(ctx context.Context, store Store, key, path, contentType string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("archive %s: %w", key, err)
	}
	defer f.Close()
	return store.Put(ctx, key, f, PutOptions{ContentType: contentType})
}
