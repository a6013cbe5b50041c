// Package objectdata defines the contract between exportable data objects
// and the metadata assembler. The assembler never inspects object
// internals; everything it needs comes through the Object interface.
package objectdata

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// Object is an exportable data object. Implementations describe
// themselves (kind, layout, shape, extent) and know how to serialize
// their payload to a file.
type Object interface {
	// Name is the object's own name before any stratigraphy resolution.
	Name() string

	// Kind classifies the object (surface, table, ...).
	Kind() fmuresults.ObjectKind

	// Extension is the file extension including the leading dot.
	Extension() string

	// Format names the serialization format recorded in metadata.
	Format() string

	// Layout describes the internal arrangement, empty when not
	// applicable.
	Layout() string

	// Spec returns shape characteristics, nil when not applicable.
	Spec() *fmuresults.Spec

	// BBox returns the spatial extent, nil when not applicable.
	BBox() *fmuresults.BoundingBox

	// ExportToFile writes the payload to path. The parent directory
	// exists when called.
	ExportToFile(path string) error
}

// MD5OfFile computes the lowercase hex MD5 digest of a file's content,
// the checksum format recorded in metadata documents.
func MD5OfFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SizeOfFile returns a file's size in bytes.
func SizeOfFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.Size(), nil
}
