package dataio

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ErichSuter/fmu-dataio/internal/objectdata"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

var realizationSegment = regexp.MustCompile(`^realization-\d+$`)

// stripRealizationSegment removes the realization directory from a
// case-relative path, yielding the realization-independent location that
// aggregations and entity identifiers use.
func stripRealizationSegment(relPath string) string {
	parts := strings.Split(relPath, "/")
	kept := parts[:0]
	for _, part := range parts {
		if realizationSegment.MatchString(part) {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

// AggregatedData assembles metadata for a statistic computed across
// realizations. The first source document acts as the template; it is
// deep-copied, never mutated.
type AggregatedData struct {
	// SourceMetadata holds one realization-context document per input, in
	// any order. At least one is required.
	SourceMetadata []*fmuresults.Document

	// Operation names the statistic (mean, std, min, max, p10, ...).
	Operation string

	// Name is the aggregated object's logical name. It replaces the
	// template's filename stem and data.name; when empty the template stem
	// is kept, with a warning.
	Name string

	// Tagname is an extra filename part, appended after the operation.
	Tagname string

	// AggregationID identifies the aggregation. When empty it is derived
	// from the sorted realization identifiers, so the same inputs always
	// produce the same id regardless of input order.
	AggregationID string

	// CasePath overrides the case root for the exported artifact. When
	// set it must already exist; aggregation never creates case roots.
	CasePath string
}

// aggregationID derives the order-independent identifier: the sorted
// realization uuids concatenated and hashed into a uuid.
func aggregationID(sources []*fmuresults.Document) string {
	uuids := make([]string, 0, len(sources))
	for _, src := range sources {
		if src.FMU != nil && src.FMU.Realization != nil {
			uuids = append(uuids, src.FMU.Realization.UUID)
		}
	}
	sort.Strings(uuids)
	return fmuresults.DeterministicUUID(strings.Join(uuids, "")).String()
}

func (a *AggregatedData) validateInputs() error {
	if len(a.SourceMetadata) == 0 {
		return fmt.Errorf("aggregation needs at least one source document")
	}
	if a.Operation == "" {
		return fmt.Errorf("aggregation needs an operation name")
	}
	caseUUID := ""
	for i, src := range a.SourceMetadata {
		if src.FMU == nil || src.FMU.Realization == nil {
			return fmt.Errorf("source document %d is not realization-context metadata", i)
		}
		if caseUUID == "" {
			caseUUID = src.FMU.Case.UUID
		} else if src.FMU.Case.UUID != caseUUID {
			return fmt.Errorf("source document %d belongs to a different case", i)
		}
	}
	if a.CasePath != "" {
		info, err := os.Stat(a.CasePath)
		if err != nil {
			return fmt.Errorf("aggregation casepath: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("aggregation casepath %s is not a directory", a.CasePath)
		}
	}
	return nil
}

// deepCopyDocument clones a document through its serialized form, so the
// template is fully independent of the source.
func deepCopyDocument(doc *fmuresults.Document) (*fmuresults.Document, error) {
	raw, err := doc.MarshalYAML()
	if err != nil {
		return nil, err
	}
	return fmuresults.ParseDocument(raw)
}

// aggregatedRelPath rewrites the template's case-relative path: the
// realization segment disappears and the filename becomes
// name--operation, falling back to the template stem when no name is
// given, with the tagname appended when present.
func aggregatedRelPath(templateRel, name, tagname, operation string) string {
	rel := stripRealizationSegment(templateRel)
	dir, file := path.Split(rel)
	ext := path.Ext(file)
	stem := strings.TrimSuffix(file, ext)
	if name != "" {
		stem = sanitizeStem(name)
	}
	stem += "--" + sanitizeStem(operation)
	if tagname != "" {
		stem += "--" + sanitizeStem(tagname)
	}
	return dir + stem + ext
}

// casePathFor resolves where the aggregated artifact is rooted: the
// explicit override, or the case root recovered from the template's
// absolute path. Empty when neither is available; only export needs it.
func (a *AggregatedData) casePathFor(template *fmuresults.Document) string {
	if a.CasePath != "" {
		return a.CasePath
	}
	abs := template.File.AbsolutePath
	rel := template.File.RelativePath
	if abs == "" || rel == "" {
		return ""
	}
	suffix := filepath.FromSlash(rel)
	if !strings.HasSuffix(abs, suffix) {
		return ""
	}
	return filepath.Clean(strings.TrimSuffix(abs, suffix))
}

// GenerateMetadata assembles the aggregation document without writing
// anything. The object provides the aggregated payload for checksumming.
// When no case root is known the document carries no absolute path; that
// only becomes an error at export time.
func (a *AggregatedData) GenerateMetadata(obj objectdata.Object) (*fmuresults.Document, error) {
	if err := a.validateInputs(); err != nil {
		return nil, err
	}
	doc, err := a.assembleWithoutChecksum(obj)
	if err != nil {
		return nil, err
	}

	tmpDir, err := os.MkdirTemp("", "fmu-dataio-aggr-*")
	if err != nil {
		return nil, fmt.Errorf("generate metadata: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	tmpPath := filepath.Join(tmpDir, path.Base(doc.File.RelativePath))
	if err := obj.ExportToFile(tmpPath); err != nil {
		return nil, err
	}
	if err := fillChecksum(doc, tmpPath); err != nil {
		return nil, err
	}
	if err := doc.Finalize(); err != nil {
		verr := err.(*fmuresults.ValidationError)
		return nil, &InvalidMetadataError{Err: verr}
	}
	return doc, nil
}

// Export writes the aggregated artifact and its sidecar under the case
// root. It fails when no case root can be established, because an
// aggregated artifact has no home outside a case.
func (a *AggregatedData) Export(obj objectdata.Object) (string, error) {
	if err := a.validateInputs(); err != nil {
		return "", err
	}
	doc, err := a.assembleWithoutChecksum(obj)
	if err != nil {
		return "", err
	}
	if doc.File.AbsolutePath == "" {
		return "", fmt.Errorf("aggregation export: no case root known "+
			"(template has no absolute path and no casepath was given): %w", os.ErrNotExist)
	}

	if err := os.MkdirAll(filepath.Dir(doc.File.AbsolutePath), 0o755); err != nil {
		return "", fmt.Errorf("aggregation export: %w", err)
	}
	if err := exportAtomic(obj, doc.File.AbsolutePath); err != nil {
		return "", err
	}
	if err := fillChecksum(doc, doc.File.AbsolutePath); err != nil {
		return "", err
	}
	if err := doc.Finalize(); err != nil {
		verr := err.(*fmuresults.ValidationError)
		return "", &InvalidMetadataError{Err: verr}
	}
	if err := WriteMetadata(doc, doc.File.AbsolutePath); err != nil {
		return "", err
	}
	return doc.File.AbsolutePath, nil
}

func (a *AggregatedData) assembleWithoutChecksum(obj objectdata.Object) (*fmuresults.Document, error) {
	template, err := deepCopyDocument(a.SourceMetadata[0])
	if err != nil {
		return nil, err
	}
	if a.Name == "" {
		warn.Warnf("no aggregation name given; keeping the template filename stem %q",
			strings.TrimSuffix(path.Base(template.File.RelativePath),
				path.Ext(template.File.RelativePath)))
	}

	ids := make([]int, 0, len(a.SourceMetadata))
	for _, src := range a.SourceMetadata {
		ids = append(ids, src.FMU.Realization.ID)
	}
	sort.Ints(ids)

	aggrID := a.AggregationID
	if aggrID == "" {
		aggrID = aggregationID(a.SourceMetadata)
	}

	template.FMU.Context.Stage = fmuresults.ContextEnsemble
	template.FMU.Realization = nil
	template.FMU.Aggregation = &fmuresults.Aggregation{
		ID:             aggrID,
		Operation:      a.Operation,
		RealizationIDs: ids,
	}

	casePath := a.casePathFor(a.SourceMetadata[0])
	relPath := aggregatedRelPath(template.File.RelativePath, a.Name, a.Tagname, a.Operation)
	template.File.RelativePath = relPath
	template.File.RunpathRelativePath = ""
	if casePath != "" {
		template.File.AbsolutePath = filepath.Join(casePath, filepath.FromSlash(relPath))
	} else {
		template.File.AbsolutePath = ""
	}

	if a.Name != "" {
		template.Data.Name = a.Name
	}
	if a.Tagname != "" {
		template.Data.Tagname = a.Tagname
	}
	// The aggregated object's own extent and shape, not realization 0's.
	if bbox := obj.BBox(); bbox != nil {
		template.Data.BBox = bbox
	}
	if spec := obj.Spec(); spec != nil {
		template.Data.Spec = spec
	}

	template.Tracklog = fmuresults.InitializeTracklog()
	return template, nil
}

func fillChecksum(doc *fmuresults.Document, payloadPath string) error {
	checksum, err := objectdata.MD5OfFile(payloadPath)
	if err != nil {
		return err
	}
	size, err := objectdata.SizeOfFile(payloadPath)
	if err != nil {
		return err
	}
	doc.File.ChecksumMD5 = checksum
	doc.File.SizeBytes = &size
	return nil
}
