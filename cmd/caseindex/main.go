// Command caseindex scans an FMU case tree, validates every metadata
// sidecar and indexes the artifacts into the configured catalog store.
// With -archive the artifacts and their sidecars are also mirrored to
// the configured object store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ErichSuter/fmu-dataio/internal/blob"
	"github.com/ErichSuter/fmu-dataio/internal/catalog"
	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/pkg/dataio"
)

var exitFunc = os.Exit

// Scanner counters register once per process.
var (
	metricsOnce sync.Once
	metrics     *catalog.Metrics
)

func scannerMetrics() *catalog.Metrics {
	metricsOnce.Do(func() {
		metrics = catalog.NewMetrics(prometheus.DefaultRegisterer)
	})
	return metrics
}

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("caseindex", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		casePath string
		archive  bool
	)
	fs.StringVar(&casePath, "casepath", "", "case root directory (required)")
	fs.BoolVar(&archive, "archive", false, "mirror indexed artifacts to the object store")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if casePath == "" {
		fmt.Fprintln(stderr, "caseindex: -casepath is required")
		fs.Usage()
		return 2
	}

	if err := run(context.Background(), casePath, archive, stdout); err != nil {
		fmt.Fprintf(stderr, "caseindex: %v\n", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, casePath string, archive bool, stdout io.Writer) error {
	store, err := catalog.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	scanner := &catalog.Scanner{
		Store:   store,
		Metrics: scannerMetrics(),
	}
	summary, err := scanner.Scan(ctx, casePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "case %s (%s): %d scanned, %d valid, %d invalid, %d indexed\n",
		summary.CaseName, summary.CaseUUID,
		summary.Scanned, summary.Valid, summary.Invalid, summary.Indexed)

	if !archive {
		return nil
	}
	archived, err := mirrorCase(ctx, store, casePath, summary.CaseUUID)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "archived %d objects\n", archived)
	return nil
}

// mirrorCase copies the case marker plus every indexed artifact and its
// sidecar to the object store, keyed by case-relative path.
func mirrorCase(ctx context.Context, store catalog.Store, casePath, caseUUID string) (int, error) {
	objects, err := blob.Open(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	marker := filepath.Join(casePath, filepath.FromSlash(runcontext.CaseMetadataRelPath))
	if _, err := blob.ArchiveFile(ctx, objects, runcontext.CaseMetadataRelPath, marker, "application/yaml"); err != nil {
		return count, err
	}
	count++

	entries, err := store.List(ctx, caseUUID)
	if err != nil {
		return count, err
	}
	for _, entry := range entries {
		artifact := filepath.Join(casePath, filepath.FromSlash(entry.RelativePath))
		if _, err := blob.ArchiveFile(ctx, objects, entry.RelativePath, artifact, "application/octet-stream"); err != nil {
			return count, err
		}
		count++

		sidecar := dataio.SidecarPath(artifact)
		rel, err := filepath.Rel(casePath, sidecar)
		if err != nil {
			return count, err
		}
		if _, err := blob.ArchiveFile(ctx, objects, filepath.ToSlash(rel), sidecar, "application/yaml"); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
