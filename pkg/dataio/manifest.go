package dataio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ManifestName is the hidden export manifest kept at the case root. Every
// export inside an FMU run appends one record.
const ManifestName = ".dataio_export_manifest.json"

// ManifestEntry records one export.
type ManifestEntry struct {
	AbsolutePath string    `json:"absolute_path"`
	Exported     time.Time `json:"exported"`
}

// appendToManifest adds an entry to the case manifest, creating the file
// on first use. Failures are reported so callers can decide whether to
// warn; the export itself has already succeeded at this point.
func appendToManifest(casePath, absolutePath string) error {
	manifestPath := filepath.Join(casePath, ManifestName)

	var entries []ManifestEntry
	if raw, err := os.ReadFile(manifestPath); err == nil {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return fmt.Errorf("manifest %s is corrupt: %w", manifestPath, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read manifest: %w", err)
	}

	entries = append(entries, ManifestEntry{
		AbsolutePath: absolutePath,
		Exported:     time.Now().UTC(),
	})
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	tmp, err := os.CreateTemp(casePath, ManifestName+".tmp-*")
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the export manifest of a case. A missing manifest is
// an empty one.
func ReadManifest(casePath string) ([]ManifestEntry, error) {
	raw, err := os.ReadFile(filepath.Join(casePath, ManifestName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	return entries, nil
}
