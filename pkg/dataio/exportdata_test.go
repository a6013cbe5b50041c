package dataio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ErichSuter/fmu-dataio/internal/objectdata"
	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

func testConfig() *fmuresults.GlobalConfiguration {
	return &fmuresults.GlobalConfiguration{
		Access: fmuresults.ConfigAccess{
			Asset:          fmuresults.Asset{Name: "Drogon"},
			Classification: fmuresults.ClassificationInternal,
		},
		Masterdata: fmuresults.Masterdata{Smda: fmuresults.Smda{
			CoordinateSystem: fmuresults.MasterdataItem{Identifier: "ST_WGS84_UTM37N_P32637", UUID: uuid.NewString()},
			Country:          []fmuresults.MasterdataItem{{Identifier: "Norway", UUID: uuid.NewString()}},
			Field:            []fmuresults.MasterdataItem{{Identifier: "DROGON", UUID: uuid.NewString()}},
			StratigraphicColumn: fmuresults.MasterdataItem{
				Identifier: "DROGON_2020", UUID: uuid.NewString(),
			},
		}},
		Model: fmuresults.Model{Name: "ff", Revision: "21.0.0"},
		Stratigraphy: fmuresults.Stratigraphy{
			"TopVolantis": {
				Name:          "VOLANTIS GP. Top",
				Stratigraphic: true,
				Alias:         []string{"TopVOLANTIS"},
			},
		},
	}
}

func testSpec() *fmuresults.Spec {
	ncol, nrow := 281, 441
	xinc, yinc := 25.0, 25.0
	return &fmuresults.Spec{NCol: &ncol, NRow: &nrow, XInc: &xinc, YInc: &yinc}
}

func testObject() *objectdata.BytesObject {
	return &objectdata.BytesObject{
		ObjectName: "TopVolantis",
		ObjectKind: fmuresults.KindSurface,
		FileExt:    ".gri",
		FileFormat: "irap_binary",
		ObjectSpec: testSpec(),
		Payload:    []byte("surface payload"),
	}
}

// registerCase builds a case root with metadata and a realization runpath,
// and returns the Getenv func placing the process inside that
// realization.
func registerCase(t *testing.T, cfg *fmuresults.GlobalConfiguration) (casePath, runpath string, getenv func(string) string) {
	t.Helper()
	casePath = filepath.Join(t.TempDir(), "mycase")
	create := &CreateCaseMetadata{Config: cfg, CasePath: casePath, User: "peesv"}
	if _, err := create.Run(); err != nil {
		t.Fatalf("register case: %v", err)
	}
	runpath = filepath.Join(casePath, "realization-4", "iter-0")
	if err := os.MkdirAll(runpath, 0o755); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{
		runcontext.EnvRunpath:           runpath,
		runcontext.EnvExperimentID:      uuid.NewString(),
		runcontext.EnvRealizationNumber: "4",
		runcontext.EnvIterationNumber:   "0",
		runcontext.EnvSimulationMode:    "ensemble_experiment",
	}
	return casePath, runpath, func(key string) string { return env[key] }
}

func TestExportInsideRealization(t *testing.T) {
	cfg := testConfig()
	casePath, _, getenv := registerCase(t, cfg)

	exp := &ExportData{
		Config:  cfg,
		Content: "depth",
		Getenv:  getenv,
	}
	artifact, err := exp.Export(testObject())
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	wantRel := "realization-4/iter-0/share/results/maps/volantis_gp_top.gri"
	if got := filepath.ToSlash(artifact); !strings.HasSuffix(got, wantRel) {
		t.Fatalf("artifact at %q, want suffix %q", got, wantRel)
	}
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}

	doc, err := ReadMetadata(artifact)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if doc.File.RelativePath != wantRel {
		t.Fatalf("relative_path = %q, want %q", doc.File.RelativePath, wantRel)
	}
	sum, err := objectdata.MD5OfFile(artifact)
	if err != nil {
		t.Fatal(err)
	}
	if doc.File.ChecksumMD5 != sum {
		t.Fatalf("checksum %q does not match artifact %q", doc.File.ChecksumMD5, sum)
	}

	if doc.FMU == nil {
		t.Fatal("no fmu block inside an FMU run")
	}
	if doc.FMU.Context.Stage != fmuresults.ContextRealization {
		t.Fatalf("stage = %q, want realization", doc.FMU.Context.Stage)
	}
	if doc.FMU.Realization == nil || doc.FMU.Realization.ID != 4 {
		t.Fatalf("realization = %+v", doc.FMU.Realization)
	}
	if doc.FMU.Ensemble == nil || doc.FMU.Ensemble.Name != "iter-0" {
		t.Fatalf("ensemble = %+v", doc.FMU.Ensemble)
	}
	if doc.FMU.Iteration == nil || doc.FMU.Iteration.UUID != doc.FMU.Ensemble.UUID {
		t.Fatal("deprecated iteration alias not mirrored")
	}
	if doc.FMU.Entity == nil || !fmuresults.IsUUIDStr(doc.FMU.Entity.UUID) {
		t.Fatalf("entity = %+v", doc.FMU.Entity)
	}

	// Stratigraphy resolution: official name with the informal name
	// appended to the aliases.
	if doc.Data.Name != "VOLANTIS GP. Top" {
		t.Fatalf("data name = %q, want official name", doc.Data.Name)
	}
	if !containsString(doc.Data.Alias, "TopVolantis") {
		t.Fatalf("alias %v misses the informal name", doc.Data.Alias)
	}

	// The export lands in the manifest.
	entries, err := ReadManifest(casePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].AbsolutePath != artifact {
		t.Fatalf("manifest = %+v", entries)
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func TestExportOutsideFMURunHasNoFMUBlock(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	exp := &ExportData{
		Config:  testConfig(),
		Content: "depth",
		Getenv:  func(string) string { return "" },
	}
	artifact, err := exp.Export(testObject())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	doc, err := ReadMetadata(artifact)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	if doc.FMU != nil {
		t.Fatalf("fmu block present outside an FMU run: %+v", doc.FMU)
	}
	if doc.File.RelativePath != "share/results/maps/volantis_gp_top.gri" {
		t.Fatalf("relative_path = %q", doc.File.RelativePath)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func TestExportDegradesOnInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	exp := &ExportData{
		Config:  &fmuresults.GlobalConfiguration{},
		Content: "depth",
		Getenv:  func(string) string { return "" },
	}
	var artifact string
	msgs := warn.Capture(func() {
		var err error
		artifact, err = exp.Export(testObject())
		if err != nil {
			t.Fatalf("degraded export must still write the artifact: %v", err)
		}
	})
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if _, err := os.Stat(SidecarPath(artifact)); !os.IsNotExist(err) {
		t.Fatal("degraded export must not write a sidecar")
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

func TestExportInvalidMetadataWritesNothing(t *testing.T) {
	cfg := testConfig()
	_, _, getenv := registerCase(t, cfg)

	exp := &ExportData{
		Config:  cfg,
		Content: "no_such_content",
		Getenv:  getenv,
	}
	_, err := exp.Export(testObject())
	if err == nil {
		t.Fatal("expected InvalidMetadataError")
	}
	invalid, ok := err.(*InvalidMetadataError)
	if !ok {
		t.Fatalf("expected *InvalidMetadataError, got %T: %v", err, err)
	}
	if len(invalid.Err.Violations) == 0 {
		t.Fatal("violation set is empty")
	}
}

func TestTimedataOrderIndependence(t *testing.T) {
	cfg := testConfig()
	_, _, getenv := registerCase(t, cfg)

	later := fmuresults.Timestamp{Value: mustDate("2020-12-24")}
	earlier := fmuresults.Timestamp{Value: mustDate("2018-01-01")}

	for name, timedata := range map[string][]fmuresults.Timestamp{
		"earlier first": {earlier, later},
		"later first":   {later, earlier},
	} {
		t.Run(name, func(t *testing.T) {
			exp := &ExportData{
				Config:   cfg,
				Content:  "seismic",
				Name:     "amplitude",
				Timedata: timedata,
				Getenv:   getenv,
			}
			doc, err := exp.GenerateMetadata(testObject())
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			if doc.Data.Time == nil || doc.Data.Time.T0 == nil || doc.Data.Time.T1 == nil {
				t.Fatalf("time block = %+v", doc.Data.Time)
			}
			if !doc.Data.Time.T0.Value.Equal(earlier.Value) {
				t.Fatalf("t0 = %v, want the earlier date", doc.Data.Time.T0.Value)
			}
			if !strings.Contains(doc.File.RelativePath, "20201224_20180101") {
				t.Fatalf("filestem misses the time window: %q", doc.File.RelativePath)
			}
		})
	}
}

func TestClassificationPrecedence(t *testing.T) {
	cfg := testConfig()
	cfg.Access.Classification = fmuresults.ClassificationRestricted

	tests := []struct {
		name string
		exp  ExportData
		want fmuresults.Classification
	}{
		{
			"argument wins",
			ExportData{
				Config:         cfg,
				Classification: fmuresults.ClassificationInternal,
				AccessSsdl:     &fmuresults.Ssdl{AccessLevel: fmuresults.ClassificationRestricted},
			},
			fmuresults.ClassificationInternal,
		},
		{
			"deprecated block beats config",
			ExportData{
				Config:     cfg,
				AccessSsdl: &fmuresults.Ssdl{AccessLevel: fmuresults.ClassificationInternal},
			},
			fmuresults.ClassificationInternal,
		},
		{
			"config fallback",
			ExportData{Config: cfg},
			fmuresults.ClassificationRestricted,
		},
		{
			"default internal",
			ExportData{},
			fmuresults.ClassificationInternal,
		},
		{
			"asset maps to restricted",
			ExportData{Classification: fmuresults.ClassificationAsset},
			fmuresults.ClassificationRestricted,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got fmuresults.Classification
			warn.Capture(func() { got = tc.exp.resolveClassification() })
			if got != tc.want {
				t.Fatalf("classification = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRepIncludePrecedence(t *testing.T) {
	cfg := testConfig()
	cfg.Access.Ssdl = &fmuresults.Ssdl{RepInclude: true}

	t.Run("argument wins", func(t *testing.T) {
		no := false
		exp := ExportData{Config: cfg, RepInclude: &no,
			AccessSsdl: &fmuresults.Ssdl{RepInclude: true}}
		if exp.resolveRepInclude() {
			t.Fatal("argument did not win")
		}
	})
	t.Run("deprecated block", func(t *testing.T) {
		exp := ExportData{AccessSsdl: &fmuresults.Ssdl{RepInclude: true}}
		if !exp.resolveRepInclude() {
			t.Fatal("deprecated block ignored")
		}
	})
	t.Run("config fallback warns", func(t *testing.T) {
		exp := ExportData{Config: cfg}
		var got bool
		msgs := warn.Capture(func() { got = exp.resolveRepInclude() })
		if !got {
			t.Fatal("config fallback ignored")
		}
		if len(msgs) != 1 || !strings.Contains(msgs[0], "rep_include") {
			t.Fatalf("expected a deprecation warning, got %v", msgs)
		}
	})
	t.Run("default false", func(t *testing.T) {
		exp := ExportData{}
		if exp.resolveRepInclude() {
			t.Fatal("default must be false")
		}
	})
}

func TestContentDictFormDeprecated(t *testing.T) {
	exp := &ExportData{
		Content: map[string]any{
			"seismic": map[string]any{"attribute": "amplitude", "calculation": "mean"},
		},
	}
	var content fmuresults.Content
	msgs := warn.Capture(func() {
		var err error
		content, err = exp.resolveContent()
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
	})
	if content != fmuresults.ContentSeismic {
		t.Fatalf("content = %q, want seismic", content)
	}
	if exp.Seismic == nil || exp.Seismic.Attribute != "amplitude" {
		t.Fatalf("detail block = %+v", exp.Seismic)
	}
	if len(msgs) != 1 || !strings.Contains(msgs[0], "deprecated") {
		t.Fatalf("expected a deprecation warning, got %v", msgs)
	}

	// Multi-key maps are a hard error.
	bad := &ExportData{Content: map[string]any{"seismic": nil, "depth": nil}}
	warn.Capture(func() {
		if _, err := bad.resolveContent(); err == nil {
			t.Fatal("expected error for multi-key content map")
		}
	})
}

func mustDate(s string) (t time.Time) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
