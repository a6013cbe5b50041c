package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	cfg := &fmuresults.GlobalConfiguration{
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
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "global_variables.yml")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCLIRegistersCase(t *testing.T) {
	configPath := writeConfig(t)
	casePath := filepath.Join(t.TempDir(), "mycase")

	var stdout, stderr bytes.Buffer
	code := cli([]string{
		"-config", configPath,
		"-casepath", casePath,
		"-name", "mycase",
		"-user", "peesv",
		"-description", "integration test case",
	}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}

	marker := strings.TrimSpace(stdout.String())
	raw, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	doc, err := fmuresults.ParseCaseDocument(raw)
	if err != nil {
		t.Fatal(err)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("written case metadata invalid: %v", err)
	}
	if doc.FMU.Case.Name != "mycase" {
		t.Fatalf("case name = %q", doc.FMU.Case.Name)
	}
}

func TestCLIRequiresCasepath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := cli([]string{"-config", writeConfig(t)}, &stdout, &stderr); code != 2 {
		t.Fatalf("exit code %d", code)
	}
}

func TestCLIFailsOnMissingConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := cli([]string{
		"-config", filepath.Join(t.TempDir(), "missing.yml"),
		"-casepath", filepath.Join(t.TempDir(), "mycase"),
	}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit code %d", code)
	}
	if stderr.Len() == 0 {
		t.Fatal("no diagnostic on stderr")
	}
}
