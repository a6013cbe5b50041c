package dataio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ErichSuter/fmu-dataio/internal/objectdata"
	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// InvalidMetadataError reports that an assembled document failed
// validation. It wraps the full violation set.
type InvalidMetadataError struct {
	Err *fmuresults.ValidationError
}

func (e *InvalidMetadataError) Error() string {
	return "invalid metadata: " + e.Err.Error()
}

func (e *InvalidMetadataError) Unwrap() error { return e.Err }

// ExportData assembles and writes a data object together with its
// metadata sidecar. The zero value is not usable; Config and Content must
// be set for a metadata-carrying export.
//
// Content may be a string, a fmuresults.Content, or (deprecated) a
// single-key map whose key names the content and whose value holds the
// content detail block.
type ExportData struct {
	Config  *fmuresults.GlobalConfiguration
	Content any

	Name            string
	Tagname         string
	Parent          string
	Subfolder       string
	Unit            string
	VerticalDomain  fmuresults.VerticalDomain
	DomainReference fmuresults.DomainReference

	// Timedata holds up to two timestamps. Order does not matter: the
	// earlier one always becomes t0.
	Timedata []fmuresults.Timestamp

	// IsPrediction defaults to true when unset.
	IsPrediction  *bool
	IsObservation bool

	// Preprocessed stages the export under share/preprocessed for a later
	// merge into an FMU run.
	Preprocessed bool

	// Classification overrides every other classification source.
	Classification fmuresults.Classification

	// RepInclude overrides every other rep_include source.
	RepInclude *bool

	// AccessSsdl is the deprecated per-export SSDL block. Classification
	// and rep_include arguments take precedence over it.
	AccessSsdl *fmuresults.Ssdl

	Workflow    string
	Description []string
	DisplayName string
	UndefIsZero *bool
	TableIndex  []string

	// CasePath explicitly names the case root instead of discovering it.
	CasePath string

	// Getenv defaults to os.Getenv.
	Getenv func(string) string

	// Content detail blocks for content values that take one. The
	// deprecated map form of Content populates these when unset.
	Seismic      *fmuresults.Seismic
	FluidContact *fmuresults.FluidContact
	FieldOutline *fmuresults.FieldOutline
	FieldRegion  *fmuresults.FieldRegion
	Property     *fmuresults.Property
}

// Export writes the object and, when a valid configuration is present,
// its metadata sidecar. It returns the absolute path of the written
// artifact.
//
// An invalid global configuration downgrades the export: the artifact is
// still written, a warning is emitted, and no sidecar is produced. An
// invalid assembled document is an error and nothing is written.
func (e *ExportData) Export(obj objectdata.Object) (string, error) {
	plan, err := e.plan(obj)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(plan.absPath), 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}

	if !e.configUsable() {
		warn.Warnf("global config is missing or invalid; exporting %s without metadata",
			plan.relPath)
		if err := exportAtomic(obj, plan.absPath); err != nil {
			return "", err
		}
		return plan.absPath, nil
	}

	// Write to a temp name first so an invalid document leaves nothing
	// behind.
	tmp, err := os.CreateTemp(filepath.Dir(plan.absPath), ".export-*")
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)
	if err := obj.ExportToFile(tmpPath); err != nil {
		return "", err
	}

	doc, err := e.assemble(obj, plan, tmpPath)
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, plan.absPath); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := WriteMetadata(doc, plan.absPath); err != nil {
		return "", err
	}
	if plan.ctx.Phase != runcontext.PhaseNone {
		if err := appendToManifest(plan.ctx.CasePath, plan.absPath); err != nil {
			warn.Warnf("export manifest not updated: %v", err)
		}
	}
	return plan.absPath, nil
}

// GenerateMetadata assembles and validates the document without writing
// the artifact or its sidecar. The object is serialized to a throwaway
// file to obtain its checksum and size.
func (e *ExportData) GenerateMetadata(obj objectdata.Object) (*fmuresults.Document, error) {
	plan, err := e.plan(obj)
	if err != nil {
		return nil, err
	}
	if !e.configUsable() {
		return nil, fmt.Errorf("cannot generate metadata without a valid global config")
	}
	tmpDir, err := os.MkdirTemp("", "fmu-dataio-*")
	if err != nil {
		return nil, fmt.Errorf("generate metadata: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	tmpPath := filepath.Join(tmpDir, filepath.Base(plan.absPath))
	if err := obj.ExportToFile(tmpPath); err != nil {
		return nil, err
	}
	return e.assemble(obj, plan, tmpPath)
}

func (e *ExportData) configUsable() bool {
	if e.Config == nil {
		return false
	}
	if err := e.Config.Validate(); err != nil {
		warn.Warnf("global config is invalid: %v", err)
		return false
	}
	return true
}

type exportPlan struct {
	ctx        *runcontext.RunContext
	absPath    string
	relPath    string
	runpathRel string
	stem       string
	name       string
	strat      *fmuresults.StratigraphyElement
}

func (e *ExportData) plan(obj objectdata.Object) (*exportPlan, error) {
	ctx, err := runcontext.Resolve(runcontext.Options{
		CasePath: e.CasePath,
		Getenv:   e.Getenv,
	})
	if err != nil {
		return nil, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	name := e.Name
	if name == "" {
		name = obj.Name()
	}
	var strat *fmuresults.StratigraphyElement
	if e.Config != nil {
		if elem, ok := e.Config.Stratigraphy.Resolve(name); ok {
			strat = &elem
		}
	}
	stemName := name
	if strat != nil {
		stemName = strat.Name
	}

	t0, t1 := e.orderedTimestamps()
	var time0, time1 *time.Time
	if t0 != nil {
		time0 = &t0.Value
	}
	if t1 != nil {
		time1 = &t1.Value
	}
	stem := makeFilestem(e.Parent, stemName, e.Tagname, time0, time1)
	sharePath := makeSharePath(obj.Kind(), e.IsObservation, e.Preprocessed,
		e.Subfolder, stem, obj.Extension())

	exportRoot := ctx.ExportRoot(cwd)
	absPath := filepath.Join(exportRoot, filepath.FromSlash(sharePath))

	plan := &exportPlan{
		ctx:     ctx,
		absPath: absPath,
		stem:    stem,
		name:    name,
		strat:   strat,
	}
	if ctx.Phase == runcontext.PhaseNone {
		plan.relPath = sharePath
	} else {
		rel, err := filepath.Rel(ctx.CasePath, absPath)
		if err != nil {
			return nil, fmt.Errorf("export path outside case root: %w", err)
		}
		plan.relPath = filepath.ToSlash(rel)
	}
	if ctx.Phase == runcontext.PhaseRealization {
		plan.runpathRel = sharePath
	}
	return plan, nil
}

// orderedTimestamps returns the export's time window with the earlier
// timestamp first, regardless of input order.
func (e *ExportData) orderedTimestamps() (t0, t1 *fmuresults.Timestamp) {
	switch len(e.Timedata) {
	case 0:
		return nil, nil
	case 1:
		ts := e.Timedata[0]
		return &ts, nil
	default:
		ts := make([]fmuresults.Timestamp, len(e.Timedata))
		copy(ts, e.Timedata)
		sort.Slice(ts, func(i, j int) bool { return ts[i].Value.Before(ts[j].Value) })
		return &ts[0], &ts[len(ts)-1]
	}
}

func (e *ExportData) assemble(obj objectdata.Object, plan *exportPlan, payloadPath string) (*fmuresults.Document, error) {
	checksum, err := objectdata.MD5OfFile(payloadPath)
	if err != nil {
		return nil, err
	}
	size, err := objectdata.SizeOfFile(payloadPath)
	if err != nil {
		return nil, err
	}

	content, err := e.resolveContent()
	if err != nil {
		return nil, err
	}
	data, err := e.buildData(obj, plan, content)
	if err != nil {
		return nil, err
	}

	doc := &fmuresults.Document{
		Schema:   fmuresults.SchemaURL,
		Version:  fmuresults.SchemaVersion,
		Source:   fmuresults.SourceTag,
		Tracklog: fmuresults.InitializeTracklog(),
		Class:    obj.Kind(),
		FMU:      buildFMU(plan.ctx, e.Config, e.Workflow),
		File: fmuresults.File{
			AbsolutePath:        plan.absPath,
			RelativePath:        plan.relPath,
			RunpathRelativePath: plan.runpathRel,
			ChecksumMD5:         checksum,
			SizeBytes:           &size,
		},
		Data:         *data,
		Display:      fmuresults.Display{Name: e.displayName(plan)},
		Access:       e.buildAccess(),
		Masterdata:   e.Config.Masterdata,
		Preprocessed: e.Preprocessed,
	}
	if doc.FMU != nil {
		doc.FMU.Entity = &fmuresults.Entity{
			UUID: entityUUID(doc.FMU.Case.UUID, stripRealizationSegment(plan.relPath)),
		}
	}

	if err := doc.Finalize(); err != nil {
		verr := err.(*fmuresults.ValidationError)
		return nil, &InvalidMetadataError{Err: verr}
	}
	return doc, nil
}

func (e *ExportData) displayName(plan *exportPlan) string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return plan.name
}

func (e *ExportData) buildData(obj objectdata.Object, plan *exportPlan, content fmuresults.Content) (*fmuresults.Data, error) {
	data := &fmuresults.Data{
		Name:            plan.name,
		Content:         content,
		Tagname:         e.Tagname,
		Format:          obj.Format(),
		Layout:          obj.Layout(),
		Unit:            e.Unit,
		VerticalDomain:  e.VerticalDomain,
		DomainReference: e.DomainReference,
		Spec:            obj.Spec(),
		BBox:            obj.BBox(),
		UndefIsZero:     e.UndefIsZero,
		TableIndex:      e.TableIndex,
		IsPrediction:    e.IsPrediction == nil || *e.IsPrediction,
		IsObservation:   e.IsObservation,
		Description:     e.Description,
		Seismic:         e.Seismic,
		FluidContact:    e.FluidContact,
		FieldOutline:    e.FieldOutline,
		FieldRegion:     e.FieldRegion,
		Property:        e.Property,
	}
	if plan.strat != nil {
		data.Name = plan.strat.Name
		data.Stratigraphic = plan.strat.Stratigraphic
		data.Alias = appendUnique(plan.strat.Alias, plan.name)
		data.StratigraphicAlias = plan.strat.StratigraphicAlias
	}
	t0, t1 := e.orderedTimestamps()
	if t0 != nil {
		data.Time = &fmuresults.Time{T0: t0, T1: t1}
	}
	return data, nil
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	out := make([]string, len(list), len(list)+1)
	copy(out, list)
	return append(out, v)
}

// resolveContent normalizes the content argument. The deprecated map form
// warns and, when the matching detail block is unset, decodes the map
// value into it.
func (e *ExportData) resolveContent() (fmuresults.Content, error) {
	switch v := e.Content.(type) {
	case nil:
		return "", nil
	case fmuresults.Content:
		return v, nil
	case string:
		return fmuresults.Content(v), nil
	case map[string]any:
		if len(v) != 1 {
			return "", fmt.Errorf("content given as a map must hold exactly one key, got %d", len(v))
		}
		for key, detail := range v {
			warn.Deprecationf("content given as a dict is deprecated, "+
				"use content=%q with an explicit detail block", key)
			content := fmuresults.Content(key)
			if detail != nil {
				if err := e.decodeContentDetail(content, detail); err != nil {
					return "", err
				}
			}
			return content, nil
		}
		return "", nil
	default:
		return "", fmt.Errorf("content must be a string or a single-key map, got %T", v)
	}
}

func (e *ExportData) decodeContentDetail(content fmuresults.Content, detail any) error {
	raw, err := yaml.Marshal(detail)
	if err != nil {
		return fmt.Errorf("content detail for %q: %w", content, err)
	}
	decode := func(target any) error {
		if err := yaml.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("content detail for %q: %w", content, err)
		}
		return nil
	}
	switch content {
	case fmuresults.ContentSeismic:
		if e.Seismic == nil {
			e.Seismic = &fmuresults.Seismic{}
			return decode(e.Seismic)
		}
	case fmuresults.ContentFluidContact:
		if e.FluidContact == nil {
			e.FluidContact = &fmuresults.FluidContact{}
			return decode(e.FluidContact)
		}
	case fmuresults.ContentFieldOutline:
		if e.FieldOutline == nil {
			e.FieldOutline = &fmuresults.FieldOutline{}
			return decode(e.FieldOutline)
		}
	case fmuresults.ContentFieldRegion:
		if e.FieldRegion == nil {
			e.FieldRegion = &fmuresults.FieldRegion{}
			return decode(e.FieldRegion)
		}
	case fmuresults.ContentProperty:
		if e.Property == nil {
			e.Property = &fmuresults.Property{}
			return decode(e.Property)
		}
	}
	return nil
}

// buildAccess applies the access precedence rules. Classification:
// argument, then the deprecated per-export SSDL block, then the config,
// then internal. RepInclude: argument, then the deprecated block, then
// the config SSDL block (with a deprecation warning), then false.
func (e *ExportData) buildAccess() fmuresults.SsdlAccess {
	classification := e.resolveClassification()
	return fmuresults.SsdlAccess{
		Asset:          e.configAsset(),
		Classification: classification,
		Ssdl: fmuresults.Ssdl{
			AccessLevel: classification,
			RepInclude:  e.resolveRepInclude(),
		},
	}
}

func (e *ExportData) configAsset() fmuresults.Asset {
	if e.Config != nil {
		return e.Config.Access.Asset
	}
	return fmuresults.Asset{}
}

func (e *ExportData) resolveClassification() fmuresults.Classification {
	var c fmuresults.Classification
	switch {
	case e.Classification != "":
		c = e.Classification
	case e.AccessSsdl != nil && e.AccessSsdl.AccessLevel != "":
		warn.Deprecationf("access_ssdl is deprecated, use the classification argument")
		c = e.AccessSsdl.AccessLevel
	case e.Config != nil && e.Config.Access.Classification != "":
		c = e.Config.Access.Classification
	default:
		c = fmuresults.ClassificationInternal
	}
	if c == fmuresults.ClassificationAsset {
		warn.Deprecationf("classification 'asset' is deprecated, use 'restricted'")
		c = fmuresults.ClassificationRestricted
	}
	return c
}

func (e *ExportData) resolveRepInclude() bool {
	switch {
	case e.RepInclude != nil:
		return *e.RepInclude
	case e.AccessSsdl != nil:
		return e.AccessSsdl.RepInclude
	case e.Config != nil && e.Config.Access.Ssdl != nil:
		warn.Deprecationf("rep_include from the global config ssdl block is deprecated, " +
			"use the rep_include argument")
		return e.Config.Access.Ssdl.RepInclude
	default:
		return false
	}
}

// exportAtomic writes the object via a temp file and rename.
func exportAtomic(obj objectdata.Object, target string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".export-*")
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)
	if err := obj.ExportToFile(tmpPath); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
