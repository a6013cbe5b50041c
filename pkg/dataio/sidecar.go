package dataio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// SidecarPath returns the path of the metadata sidecar belonging to an
// artifact: a hidden YAML file next to it, named after the full filename.
func SidecarPath(artifactPath string) string {
	dir, name := filepath.Split(artifactPath)
	return filepath.Join(dir, "."+name+".yml")
}

// WriteMetadata serializes the document to the artifact's sidecar. The
// write is atomic: a temp file in the same directory renamed over the
// target, so readers never observe a half-written sidecar.
func WriteMetadata(doc *fmuresults.Document, artifactPath string) error {
	raw, err := doc.MarshalYAML()
	if err != nil {
		return err
	}
	target := SidecarPath(artifactPath)
	tmp, err := os.CreateTemp(filepath.Dir(target), ".meta-*.yml.tmp")
	if err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ReadMetadata loads and decodes the sidecar belonging to an artifact.
func ReadMetadata(artifactPath string) (*fmuresults.Document, error) {
	raw, err := os.ReadFile(SidecarPath(artifactPath))
	if err != nil {
		return nil, fmt.Errorf("read metadata for %s: %w", artifactPath, err)
	}
	doc, err := fmuresults.ParseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("metadata for %s: %w", artifactPath, err)
	}
	return doc, nil
}
