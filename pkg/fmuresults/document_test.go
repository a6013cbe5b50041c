package fmuresults

import (
	"errors"
	"strings"
	"testing"
)

func TestDocumentRoundtrip(t *testing.T) {
	doc := validDocument()
	if err := doc.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	raw, err := doc.MarshalYAML()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.File.RelativePath != doc.File.RelativePath {
		t.Fatalf("relative_path %q != %q", got.File.RelativePath, doc.File.RelativePath)
	}
	if got.Data.Content != doc.Data.Content {
		t.Fatalf("content %q != %q", got.Data.Content, doc.Data.Content)
	}
	if got.FMU.Iteration == nil || got.FMU.Iteration.UUID != doc.FMU.Ensemble.UUID {
		t.Fatal("iteration alias lost in roundtrip")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("reparsed document invalid: %v", err)
	}
}

func TestUnsetOptionalsOmitted(t *testing.T) {
	doc := validDocument()
	raw, err := doc.MarshalYAML()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	text := string(raw)
	for _, key := range []string{"absolute_path", "aggregation", "bbox", "preprocessed", "null"} {
		if strings.Contains(text, key) {
			t.Fatalf("unset optional %q serialized:\n%s", key, text)
		}
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	doc := validDocument()
	raw, err := doc.MarshalYAML()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	raw = append(raw, []byte("no_such_field: true\n")...)
	if _, err := ParseDocument(raw); err == nil {
		t.Fatal("expected parse failure for unknown field")
	}
}

func TestParseReportsTypeMismatchesAsViolations(t *testing.T) {
	raw := []byte("version: [1, 2]\nsource: {a: b}\n")
	_, err := ParseDocument(raw)
	if err == nil {
		t.Fatal("expected parse failure")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected wrapped *ValidationError, got %v", err)
	}
	if len(verr.Violations) < 2 {
		t.Fatalf("expected every type mismatch reported, got %v", verr.Violations)
	}
}

func TestCaseDocumentRoundtrip(t *testing.T) {
	doc := &CaseDocument{
		Schema:     SchemaURL,
		Version:    SchemaVersion,
		Source:     SourceTag,
		Tracklog:   InitializeTracklog(),
		Class:      KindCase,
		FMU:        *validDocument().FMU,
		Access:     Access{Asset: Asset{Name: "Drogon"}},
		Masterdata: validMasterdata(),
	}
	doc.FMU.Context.Stage = ContextCase
	doc.FMU.Ensemble = nil
	doc.FMU.Realization = nil

	raw, err := doc.MarshalYAML()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ParseCaseDocument(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.FMU.Case.UUID != doc.FMU.Case.UUID {
		t.Fatalf("case uuid %q != %q", got.FMU.Case.UUID, doc.FMU.Case.UUID)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("reparsed case document invalid: %v", err)
	}
}
