package dataio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ErichSuter/fmu-dataio/internal/objectdata"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// stagePreprocessed exports an object into a share/preprocessed staging
// area outside any FMU run and returns the artifact path.
func stagePreprocessed(t *testing.T, cfg *fmuresults.GlobalConfiguration, isObservation bool) string {
	t.Helper()
	staging := t.TempDir()
	chdir(t, staging)

	exp := &ExportData{
		Config:        cfg,
		Content:       "depth",
		Preprocessed:  true,
		IsObservation: isObservation,
		Getenv:        func(string) string { return "" },
	}
	artifact, err := exp.Export(testObject())
	if err != nil {
		t.Fatalf("stage preprocessed: %v", err)
	}
	if !strings.Contains(filepath.ToSlash(artifact), SharePreprocessed) {
		t.Fatalf("staged artifact %q not under %s", artifact, SharePreprocessed)
	}
	return artifact
}

func TestPreprocessedMerge(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	staged := stagePreprocessed(t, cfg, false)
	stagedDoc, err := ReadMetadata(staged)
	if err != nil {
		t.Fatal(err)
	}
	if !stagedDoc.Preprocessed {
		t.Fatal("staged document not flagged preprocessed")
	}

	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	target, err := merge.Export(staged)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	doc, err := ReadMetadata(target)
	if err != nil {
		t.Fatalf("read merged sidecar: %v", err)
	}
	if !strings.HasPrefix(doc.File.RelativePath, ShareResults+"/") {
		t.Fatalf("relative_path = %q, want below %s", doc.File.RelativePath, ShareResults)
	}
	if doc.Preprocessed {
		t.Fatal("merged document still flagged preprocessed")
	}
	// The fmu block comes from the current run, not from staging time.
	if doc.FMU == nil || doc.FMU.Context.Stage != fmuresults.ContextCase {
		t.Fatalf("fmu = %+v, want case-staged block", doc.FMU)
	}
	if doc.FMU.Case.Name != "mycase" {
		t.Fatalf("case name = %q", doc.FMU.Case.Name)
	}
	// History is kept: created first, merged appended.
	last := doc.Tracklog[len(doc.Tracklog)-1]
	if doc.Tracklog[0].Event != fmuresults.EventCreated || last.Event != fmuresults.EventMerged {
		t.Fatalf("tracklog events = %+v", doc.Tracklog)
	}
}

func TestPreprocessedMergeObservations(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	staged := stagePreprocessed(t, cfg, true)

	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	target, err := merge.Export(staged)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	doc, err := ReadMetadata(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.File.RelativePath, ShareObservations+"/") {
		t.Fatalf("relative_path = %q, want below %s", doc.File.RelativePath, ShareObservations)
	}
}

func TestPreprocessedStagingGate(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)

	outside := filepath.Join(t.TempDir(), "plain.gri")
	if err := os.WriteFile(outside, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}
	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	if _, err := merge.Export(outside); err == nil {
		t.Fatal("expected failure for artifact outside the staging area")
	}
}

func TestPreprocessedPlaceholderNameIsFatal(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	staged := stagePreprocessed(t, cfg, false)

	doc, err := ReadMetadata(staged)
	if err != nil {
		t.Fatal(err)
	}
	doc.Data.Name = "_preprocessed"
	if err := WriteMetadata(doc, staged); err != nil {
		t.Fatal(err)
	}

	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	if _, err := merge.Export(staged); err == nil {
		t.Fatal("expected failure for the placeholder name")
	}
}

func TestPreprocessedMissingFlagIsFatal(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	staged := stagePreprocessed(t, cfg, false)

	doc, err := ReadMetadata(staged)
	if err != nil {
		t.Fatal(err)
	}
	doc.Preprocessed = false
	if err := WriteMetadata(doc, staged); err != nil {
		t.Fatal(err)
	}

	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	if _, err := merge.Export(staged); err == nil {
		t.Fatal("expected failure when the preprocessed flag is absent")
	}
}

func TestPreprocessedObservationOverride(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	// Staged as a result, routed to observations by the caller.
	staged := stagePreprocessed(t, cfg, false)

	obs := true
	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		IsObservation: &obs, Getenv: func(string) string { return "" }}
	target, err := merge.Export(staged)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	doc, err := ReadMetadata(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(doc.File.RelativePath, ShareObservations+"/") {
		t.Fatalf("relative_path = %q, want below %s", doc.File.RelativePath, ShareObservations)
	}
}

func TestPreprocessedChecksumMismatchWarnsOnly(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	staged := stagePreprocessed(t, cfg, false)

	// The artifact changed after its metadata was written.
	if err := os.WriteFile(staged, []byte("changed payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	var target string
	msgs := warn.Capture(func() {
		var err error
		target, err = merge.Export(staged)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
	})
	found := false
	for _, msg := range msgs {
		if strings.Contains(msg, "checksum") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a checksum warning, got %v", msgs)
	}
	doc, err := ReadMetadata(target)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := objectdata.MD5OfFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if doc.File.ChecksumMD5 != sum {
		t.Fatalf("checksum not refreshed: %q vs %q", doc.File.ChecksumMD5, sum)
	}
}

func TestPreprocessedMergeDegradesOnMissingMetadata(t *testing.T) {
	cfg := testConfig()
	casePath, _, _ := registerCase(t, cfg)
	staged := stagePreprocessed(t, cfg, false)
	if err := os.Remove(SidecarPath(staged)); err != nil {
		t.Fatal(err)
	}

	merge := &ExportPreprocessedData{Config: cfg, CasePath: casePath,
		Getenv: func(string) string { return "" }}
	var target string
	msgs := warn.Capture(func() {
		var err error
		target, err = merge.Export(staged)
		if err != nil {
			t.Fatalf("degraded merge must still copy the file: %v", err)
		}
	})
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("file not copied: %v", err)
	}
	if _, err := os.Stat(SidecarPath(target)); !os.IsNotExist(err) {
		t.Fatal("degraded merge must not write a sidecar")
	}
	found := false
	for _, msg := range msgs {
		if strings.Contains(msg, "without metadata") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a degradation warning, got %v", msgs)
	}
}
