package fmuresults

import (
	"fmt"
	"sort"
	"strings"
)

// Violation is a single validation finding, locating the offending field
// by a dotted path into the document.
type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}

// ValidationError reports every violation found in a document, never just
// the first one.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "metadata validation failed"
	}
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.String()
	}
	return fmt.Sprintf("metadata validation failed (%d violations): %s",
		len(e.Violations), strings.Join(msgs, "; "))
}

// rule is one named validation check. Rules never mutate the document.
type rule struct {
	name  string
	check func(*Document) []Violation
}

// Validation runs in three ordered stages: value-shape checks on each
// block, then cross-field rules, then vocabulary whitelists. Within a
// stage rules run in declaration order and every rule always runs, so the
// result is the complete set of violations.
var (
	shapeRules = []rule{
		{"header", checkHeader},
		{"file", checkFile},
		{"tracklog", checkTracklog},
		{"masterdata", checkMasterdata},
		{"access", checkAccess},
		{"fmu-identifiers", checkFMUIdentifiers},
		{"data", checkDataShape},
	}
	crossFieldRules = []rule{
		{"context-shape", checkContextShape},
		{"aggregation-exclusion", checkAggregationExclusion},
		{"top-base-pairing", checkTopBasePairing},
		{"bbox-vertical-extent", checkBBoxVerticalExtent},
		{"content-sub-block", checkContentSubBlock},
		{"time-ordering", checkTimeOrdering},
	}
	whitelistRules = []rule{
		{"class", checkClassWhitelist},
		{"content", checkContentWhitelist},
		{"classification", checkClassificationWhitelist},
		{"context", checkContextWhitelist},
		{"tracklog-events", checkEventWhitelist},
	}
)

// Validate checks the document against the schema and returns a
// *ValidationError carrying all violations, or nil when the document is
// valid.
func (d *Document) Validate() error {
	var violations []Violation
	for _, stage := range [][]rule{shapeRules, crossFieldRules, whitelistRules} {
		for _, r := range stage {
			violations = append(violations, r.check(d)...)
		}
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func checkHeader(d *Document) []Violation {
	var out []Violation
	if d.Schema == "" {
		out = append(out, Violation{"$schema", "missing schema reference"})
	}
	if !IsVersionStr(d.Version) {
		out = append(out, Violation{"version", fmt.Sprintf("not a version string: %q", d.Version)})
	}
	if d.Source != SourceTag {
		out = append(out, Violation{"source", fmt.Sprintf("must be %q, got %q", SourceTag, d.Source)})
	}
	return out
}

func checkFile(d *Document) []Violation {
	var out []Violation
	if d.Class == KindCase {
		return out
	}
	if d.File.RelativePath == "" {
		out = append(out, Violation{"file.relative_path", "required"})
	} else if !isASCII(d.File.RelativePath) {
		out = append(out, Violation{"file.relative_path", "must be ASCII only"})
	}
	if d.File.AbsolutePath != "" && !isASCII(d.File.AbsolutePath) {
		out = append(out, Violation{"file.absolute_path", "must be ASCII only"})
	}
	if !IsMD5Hex(d.File.ChecksumMD5) {
		out = append(out, Violation{"file.checksum_md5",
			fmt.Sprintf("not a lowercase hex MD5 digest: %q", d.File.ChecksumMD5)})
	}
	return out
}

func checkTracklog(d *Document) []Violation {
	var out []Violation
	if len(d.Tracklog) == 0 {
		return []Violation{{"tracklog", "must hold at least one event"}}
	}
	if d.Tracklog[0].Event != EventCreated {
		out = append(out, Violation{"tracklog[0].event",
			fmt.Sprintf("first event must be %q, got %q", EventCreated, d.Tracklog[0].Event)})
	}
	for i, ev := range d.Tracklog {
		path := fmt.Sprintf("tracklog[%d]", i)
		if i > 0 && ev.Event == EventCreated {
			out = append(out, Violation{path + ".event",
				fmt.Sprintf("only the first event may be %q", EventCreated)})
		}
		if ev.Datetime.IsZero() {
			out = append(out, Violation{path + ".datetime", "required"})
		}
		if ev.User.ID == "" {
			out = append(out, Violation{path + ".user.id", "required"})
		}
		if ev.Sysinfo != nil && ev.Sysinfo.Komodo != nil && ev.Sysinfo.Komodo.Version == "" {
			out = append(out, Violation{path + ".sysinfo.komodo.version", "must not be empty when set"})
		}
	}
	return out
}

func checkMasterdata(d *Document) []Violation {
	var out []Violation
	smda := &d.Masterdata.Smda
	if smda.CoordinateSystem.Identifier == "" {
		out = append(out, Violation{"masterdata.smda.coordinate_system.identifier", "required"})
	}
	if !IsUUIDStr(smda.CoordinateSystem.UUID) {
		out = append(out, Violation{"masterdata.smda.coordinate_system.uuid", "not a uuid"})
	}
	if !IsUUIDStr(smda.StratigraphicColumn.UUID) {
		out = append(out, Violation{"masterdata.smda.stratigraphic_column.uuid", "not a uuid"})
	}
	if len(smda.Country) == 0 {
		out = append(out, Violation{"masterdata.smda.country", "must hold at least one item"})
	}
	if len(smda.Field) == 0 {
		out = append(out, Violation{"masterdata.smda.field", "must hold at least one item"})
	}
	for i, item := range smda.Country {
		if !IsUUIDStr(item.UUID) {
			out = append(out, Violation{fmt.Sprintf("masterdata.smda.country[%d].uuid", i), "not a uuid"})
		}
	}
	for i, item := range smda.Field {
		if !IsUUIDStr(item.UUID) {
			out = append(out, Violation{fmt.Sprintf("masterdata.smda.field[%d].uuid", i), "not a uuid"})
		}
	}
	for i, item := range smda.Discovery {
		if !IsUUIDStr(item.UUID) {
			out = append(out, Violation{fmt.Sprintf("masterdata.smda.discovery[%d].uuid", i), "not a uuid"})
		}
	}
	return out
}

func checkAccess(d *Document) []Violation {
	var out []Violation
	if d.Access.Asset.Name == "" {
		out = append(out, Violation{"access.asset.name", "required"})
	}
	return out
}

func checkFMUIdentifiers(d *Document) []Violation {
	if d.FMU == nil {
		return nil
	}
	var out []Violation
	f := d.FMU
	if f.Case.Name == "" {
		out = append(out, Violation{"fmu.case.name", "required"})
	}
	if !IsUUIDStr(f.Case.UUID) {
		out = append(out, Violation{"fmu.case.uuid", "not a uuid"})
	}
	if f.Case.User.ID == "" {
		out = append(out, Violation{"fmu.case.user.id", "required"})
	}
	if f.Ensemble != nil && !IsUUIDStr(f.Ensemble.UUID) {
		out = append(out, Violation{"fmu.ensemble.uuid", "not a uuid"})
	}
	if f.Realization != nil && !IsUUIDStr(f.Realization.UUID) {
		out = append(out, Violation{"fmu.realization.uuid", "not a uuid"})
	}
	if f.Entity != nil && !IsUUIDStr(f.Entity.UUID) {
		out = append(out, Violation{"fmu.entity.uuid", "not a uuid"})
	}
	if f.Aggregation != nil && f.Aggregation.ID == "" {
		out = append(out, Violation{"fmu.aggregation.id", "required"})
	}
	return out
}

func checkDataShape(d *Document) []Violation {
	var out []Violation
	if d.Class == KindCase {
		return out
	}
	if d.Data.Name == "" {
		out = append(out, Violation{"data.name", "required"})
	}
	if d.Data.Content == "" {
		out = append(out, Violation{"data.content", "required"})
	}
	if d.Data.Format == "" {
		out = append(out, Violation{"data.format", "required"})
	}
	if (d.Class == KindSurface || d.Class == KindTable) && d.Data.Spec == nil {
		out = append(out, Violation{"data.spec",
			fmt.Sprintf("required for class %q", d.Class)})
	}
	return out
}

// checkContextShape enforces the three mutually exclusive fmu block
// variants. The deprecated 'iteration' stage is treated as 'ensemble'.
func checkContextShape(d *Document) []Violation {
	if d.FMU == nil {
		return nil
	}
	var out []Violation
	f := d.FMU
	stage := f.Context.Stage
	if stage == ContextIteration {
		stage = ContextEnsemble
	}
	switch stage {
	case ContextCase:
		if f.Ensemble != nil {
			out = append(out, Violation{"fmu.ensemble", "forbidden in case context"})
		}
		if f.Realization != nil {
			out = append(out, Violation{"fmu.realization", "forbidden in case context"})
		}
	case ContextEnsemble:
		if f.Ensemble == nil {
			out = append(out, Violation{"fmu.ensemble", "required in ensemble context"})
		}
		if f.Realization != nil {
			out = append(out, Violation{"fmu.realization", "forbidden in ensemble context"})
		}
	case ContextRealization:
		if f.Ensemble == nil {
			out = append(out, Violation{"fmu.ensemble", "required in realization context"})
		}
		if f.Realization == nil {
			out = append(out, Violation{"fmu.realization", "required in realization context"})
		}
	}
	return out
}

// checkAggregationExclusion enforces that a document never carries both an
// aggregation block and a realization block. This holds regardless of the
// context stage.
func checkAggregationExclusion(d *Document) []Violation {
	if d.FMU == nil {
		return nil
	}
	if d.FMU.Aggregation != nil && d.FMU.Realization != nil {
		return []Violation{{"fmu.aggregation",
			"aggregation and realization are mutually exclusive"}}
	}
	return nil
}

// checkTopBasePairing rejects a half-set stratigraphic extent: top and
// base describe the two boundaries of one interval and only make sense
// together.
func checkTopBasePairing(d *Document) []Violation {
	if (d.Data.Top == nil) != (d.Data.Base == nil) {
		return []Violation{{"data.top",
			"top and base must both be present or both absent"}}
	}
	return nil
}

func checkBBoxVerticalExtent(d *Document) []Violation {
	b := d.Data.BBox
	if b == nil {
		return nil
	}
	if (b.ZMin == nil) != (b.ZMax == nil) {
		return []Violation{{"data.bbox",
			"vertical extent must set both zmin and zmax or neither"}}
	}
	return nil
}

func checkContentSubBlock(d *Document) []Violation {
	variant, known := contentVariants[d.Data.Content]
	if !known {
		// Whitelist stage reports the unknown content value.
		return nil
	}
	var out []Violation
	present := d.Data.subBlocks()
	if variant.required && !present[variant.block] {
		out = append(out, Violation{"data." + variant.block,
			fmt.Sprintf("required for content %q", d.Data.Content)})
	}
	names := make([]string, 0, len(present))
	for name := range present {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if name != variant.block {
			out = append(out, Violation{"data." + name,
				fmt.Sprintf("forbidden for content %q", d.Data.Content)})
		}
	}
	return out
}

func checkTimeOrdering(d *Document) []Violation {
	t := d.Data.Time
	if t == nil || t.T0 == nil || t.T1 == nil {
		return nil
	}
	if t.T1.Value.Before(t.T0.Value) {
		return []Violation{{"data.time", "t0 must not be after t1"}}
	}
	return nil
}

func checkClassWhitelist(d *Document) []Violation {
	if !containsObjectKind(KnownObjectKinds, d.Class) {
		return []Violation{{"class", fmt.Sprintf("unknown object kind %q", d.Class)}}
	}
	return nil
}

func checkContentWhitelist(d *Document) []Violation {
	if d.Data.Content == "" {
		return nil
	}
	if !containsContent(KnownContents, d.Data.Content) {
		return []Violation{{"data.content", fmt.Sprintf("unknown content %q", d.Data.Content)}}
	}
	return nil
}

func checkClassificationWhitelist(d *Document) []Violation {
	var out []Violation
	if c := d.Access.Classification; c != "" && !containsClassification(KnownClassifications, c) {
		out = append(out, Violation{"access.classification",
			fmt.Sprintf("unknown classification %q", c)})
	}
	if c := d.Access.Ssdl.AccessLevel; c != "" && !containsClassification(KnownClassifications, c) {
		out = append(out, Violation{"access.ssdl.access_level",
			fmt.Sprintf("unknown classification %q", c)})
	}
	return out
}

func checkContextWhitelist(d *Document) []Violation {
	if d.FMU == nil {
		return nil
	}
	if !containsContext(KnownContexts, d.FMU.Context.Stage) {
		return []Violation{{"fmu.context.stage",
			fmt.Sprintf("unknown context stage %q", d.FMU.Context.Stage)}}
	}
	return nil
}

func checkEventWhitelist(d *Document) []Violation {
	var out []Violation
	for i, ev := range d.Tracklog {
		if !containsEventType(KnownEventTypes, ev.Event) {
			out = append(out, Violation{fmt.Sprintf("tracklog[%d].event", i),
				fmt.Sprintf("unknown event type %q", ev.Event)})
		}
	}
	return out
}

// Validate checks the case document. Case documents share the header,
// tracklog, masterdata and identifier rules with object documents but have
// no file or data blocks and must be case-staged.
func (d *CaseDocument) Validate() error {
	proxy := &Document{
		Schema:   d.Schema,
		Version:  d.Version,
		Source:   d.Source,
		Tracklog: d.Tracklog,
		Class:    d.Class,
		FMU:      &d.FMU,
		Access: SsdlAccess{
			Asset:          d.Access.Asset,
			Classification: d.Access.Classification,
		},
		Masterdata: d.Masterdata,
	}
	var violations []Violation
	if err := proxy.Validate(); err != nil {
		verr := err.(*ValidationError)
		violations = verr.Violations
	}
	if d.Class != KindCase {
		violations = append(violations, Violation{"class",
			fmt.Sprintf("case metadata must have class %q, got %q", KindCase, d.Class)})
	}
	if d.FMU.Context.Stage != ContextCase {
		violations = append(violations, Violation{"fmu.context.stage",
			fmt.Sprintf("case metadata must be %q staged, got %q", ContextCase, d.FMU.Context.Stage)})
	}
	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// Finalize runs validation and, on success, synthesizes the derived
// fields that are mirrored rather than authored (the deprecated iteration
// alias). This is the single gate through which every newly assembled or
// mutated document must pass before serialization.
func (d *Document) Finalize() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.FMU != nil {
		d.FMU.syncIteration()
	}
	return nil
}
