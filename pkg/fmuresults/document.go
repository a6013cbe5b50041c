package fmuresults

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a complete object-level metadata record, the unit persisted
// as a YAML sidecar next to an exported artifact.
type Document struct {
	Schema     string          `yaml:"$schema" json:"$schema"`
	Version    string          `yaml:"version" json:"version"`
	Source     string          `yaml:"source" json:"source"`
	Tracklog   []TracklogEvent `yaml:"tracklog" json:"tracklog"`
	Class      ObjectKind      `yaml:"class" json:"class"`
	FMU        *FMU            `yaml:"fmu,omitempty" json:"fmu,omitempty"`
	File       File            `yaml:"file" json:"file"`
	Data       Data            `yaml:"data" json:"data"`
	Display    Display         `yaml:"display" json:"display"`
	Access     SsdlAccess      `yaml:"access" json:"access"`
	Masterdata Masterdata      `yaml:"masterdata" json:"masterdata"`

	// Preprocessed marks a document still in the preprocessed staging
	// area. It must be cleared during the merge into an FMU run.
	Preprocessed bool `yaml:"preprocessed,omitempty" json:"preprocessed,omitempty"`
}

// CaseDocument is the case-level metadata record written to
// share/metadata/fmu_case.yml when a case is registered. It has no file,
// data or display blocks; its fmu block is always case-shaped.
type CaseDocument struct {
	Schema     string          `yaml:"$schema" json:"$schema"`
	Version    string          `yaml:"version" json:"version"`
	Source     string          `yaml:"source" json:"source"`
	Tracklog   []TracklogEvent `yaml:"tracklog" json:"tracklog"`
	Class      ObjectKind      `yaml:"class" json:"class"`
	FMU        FMU             `yaml:"fmu" json:"fmu"`
	Access     Access          `yaml:"access" json:"access"`
	Masterdata Masterdata      `yaml:"masterdata" json:"masterdata"`
}

// NewDocumentHeader returns the constant header fields shared by every
// document produced by this library.
func NewDocumentHeader() (schema, version, source string) {
	return SchemaURL, SchemaVersion, SourceTag
}

// MarshalYAML serializes the document to YAML. Unset optional fields are
// omitted entirely rather than written as nulls.
func (d *Document) MarshalYAML() ([]byte, error) {
	return marshalYAML(d)
}

// MarshalYAML serializes the case document to YAML.
func (d *CaseDocument) MarshalYAML() ([]byte, error) {
	return marshalYAML(d)
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseDocument decodes an object-level metadata document from YAML.
// Unknown fields are rejected. Type mismatches are reported per field path
// rather than first-failure-only, wrapped in a ValidationError.
func ParseDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseCaseDocument decodes a case-level metadata document from YAML.
func ParseCaseDocument(raw []byte) (*CaseDocument, error) {
	var doc CaseDocument
	if err := decodeStrict(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeStrict(raw []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			verr := &ValidationError{}
			for _, msg := range typeErr.Errors {
				verr.Violations = append(verr.Violations, Violation{
					Path:    "$",
					Message: msg,
				})
			}
			return fmt.Errorf("decode metadata: %w", verr)
		}
		return fmt.Errorf("decode metadata: %w", err)
	}
	return nil
}
