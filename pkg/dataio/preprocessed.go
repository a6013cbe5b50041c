package dataio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ErichSuter/fmu-dataio/internal/objectdata"
	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// preprocessedNameMarker is a reserved data name that older tooling used
// as a placeholder. A document still carrying it was never completed and
// must not be merged.
const preprocessedNameMarker = "_preprocessed"

// ExportPreprocessedData merges artifacts staged under share/preprocessed
// into the current FMU run: the artifact is copied below the case root,
// its metadata gets the run's fmu block, and a 'merged' event is appended
// to the tracklog.
type ExportPreprocessedData struct {
	Config *fmuresults.GlobalConfiguration

	// CasePath explicitly names the case root instead of discovering it.
	CasePath string

	// IsObservation routes the merged artifact: true lands it below
	// share/observations, false below share/results. When nil the staged
	// metadata's own is_observation flag decides.
	IsObservation *bool

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Export merges one staged artifact into the run and returns the path of
// the copy below the case root.
//
// Unreadable or invalid staged metadata degrades the merge: the artifact
// is still copied, with a warning and without a sidecar. An artifact
// outside the share/preprocessed staging area is an error.
func (e *ExportPreprocessedData) Export(artifactPath string) (string, error) {
	ctx, err := runcontext.Resolve(runcontext.Options{
		CasePath:    e.CasePath,
		Getenv:      e.Getenv,
		RequireCase: true,
	})
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(artifactPath)
	if err != nil {
		return "", fmt.Errorf("preprocessed export: %w", err)
	}
	stagedRel, err := splitPreprocessedPath(abs)
	if err != nil {
		return "", err
	}

	doc, readErr := ReadMetadata(abs)
	if readErr != nil {
		warn.Warnf("staged metadata for %s is unusable (%v); copying the file without metadata",
			abs, readErr)
		tree := ShareResults
		if e.IsObservation != nil && *e.IsObservation {
			tree = ShareObservations
		}
		return e.copyWithoutMetadata(ctx, abs, stagedRel, tree)
	}
	if doc.Data.Name == preprocessedNameMarker {
		return "", fmt.Errorf("staged metadata for %s still carries the %q placeholder name; "+
			"the preprocessed export was never completed", abs, preprocessedNameMarker)
	}
	if !doc.Preprocessed {
		return "", fmt.Errorf("metadata for %s lacks the preprocessed flag; only artifacts "+
			"exported with Preprocessed set can be merged into a run", abs)
	}

	checksum, err := objectdata.MD5OfFile(abs)
	if err != nil {
		return "", err
	}
	if checksum != doc.File.ChecksumMD5 {
		warn.Warnf("checksum of %s changed since its metadata was written; "+
			"recording the current checksum", abs)
		doc.File.ChecksumMD5 = checksum
	}
	size, err := objectdata.SizeOfFile(abs)
	if err != nil {
		return "", err
	}
	doc.File.SizeBytes = &size

	isObservation := doc.Data.IsObservation
	if e.IsObservation != nil {
		isObservation = *e.IsObservation
	}
	shareTree := ShareResults
	if isObservation {
		shareTree = ShareObservations
	}
	relPath := shareTree + "/" + stagedRel
	target := filepath.Join(ctx.CasePath, filepath.FromSlash(relPath))

	doc.FMU = buildFMU(ctx, e.Config, "")
	doc.File.RelativePath = relPath
	doc.File.AbsolutePath = target
	doc.File.RunpathRelativePath = ""
	doc.Preprocessed = false
	doc.Tracklog = append(doc.Tracklog, fmuresults.NewTracklogEvent(fmuresults.EventMerged))

	if err := doc.Finalize(); err != nil {
		warn.Warnf("merged metadata for %s is invalid (%v); copying the file without metadata",
			abs, err)
		return e.copyWithoutMetadata(ctx, abs, stagedRel, shareTree)
	}

	if err := copyFile(abs, target); err != nil {
		return "", err
	}
	if err := WriteMetadata(doc, target); err != nil {
		return "", err
	}
	if err := appendToManifest(ctx.CasePath, target); err != nil {
		warn.Warnf("export manifest not updated: %v", err)
	}
	return target, nil
}

func (e *ExportPreprocessedData) copyWithoutMetadata(ctx *runcontext.RunContext, abs, stagedRel, shareTree string) (string, error) {
	target := filepath.Join(ctx.CasePath, filepath.FromSlash(shareTree+"/"+stagedRel))
	if err := copyFile(abs, target); err != nil {
		return "", err
	}
	return target, nil
}

// splitPreprocessedPath checks the staging gate and returns the artifact
// path below the share/preprocessed root.
func splitPreprocessedPath(abs string) (string, error) {
	slashed := filepath.ToSlash(abs)
	marker := "/" + SharePreprocessed + "/"
	idx := strings.Index(slashed, marker)
	if idx < 0 {
		return "", fmt.Errorf("%s is not below a %s staging area", abs, SharePreprocessed)
	}
	return slashed[idx+len(marker):], nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer in.Close()
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}
