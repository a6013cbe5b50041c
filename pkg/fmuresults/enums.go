// Package fmuresults defines the typed metadata records persisted next to
// exported FMU data objects, together with the validation engine and the
// machine-readable schema document derived from them.
package fmuresults

// SchemaVersion is the current version of the metadata schema. A document
// validates against exactly one schema version at a time.
const SchemaVersion = "0.8.0"

// SchemaURL is the canonical location of the published schema document.
const SchemaURL = "https://main-fmu-schemas-prod.radix.equinor.com/schemas/" +
	SchemaVersion + "/fmu_results.json"

// SourceTag identifies documents produced by this library.
const SourceTag = "fmu"

// ToolVersion is the version of this library, recorded in tracklog events.
const ToolVersion = "2.5.0"

// Classification is the security classification level of a data object.
type Classification string

// Security classification levels. The 'asset' level is deprecated and is
// normalized to 'restricted' on input.
const (
	ClassificationAsset      Classification = "asset"
	ClassificationInternal   Classification = "internal"
	ClassificationRestricted Classification = "restricted"
)

// KnownClassifications is the closed whitelist used during validation.
var KnownClassifications = []Classification{
	ClassificationAsset,
	ClassificationInternal,
	ClassificationRestricted,
}

// TrackLogEventType identifies the lifecycle event recorded in a tracklog.
type TrackLogEventType string

// Tracklog event types. Events are append-only; none is ever removed.
const (
	EventCreated TrackLogEventType = "created"
	EventUpdated TrackLogEventType = "updated"
	EventMerged  TrackLogEventType = "merged"
)

// KnownEventTypes is the closed whitelist used during validation.
var KnownEventTypes = []TrackLogEventType{EventCreated, EventUpdated, EventMerged}

// FMUContext is the stage of an FMU experiment in which data was produced.
type FMUContext string

// FMU context stages. The 'iteration' stage is a deprecated alias kept for
// documents written by older versions; new documents use 'ensemble'.
const (
	ContextCase        FMUContext = "case"
	ContextIteration   FMUContext = "iteration"
	ContextEnsemble    FMUContext = "ensemble"
	ContextRealization FMUContext = "realization"
)

// KnownContexts is the closed whitelist used during validation.
var KnownContexts = []FMUContext{
	ContextCase,
	ContextIteration,
	ContextEnsemble,
	ContextRealization,
}

// ObjectKind classifies the exported object at the top level of a document.
type ObjectKind string

// Object kinds. 'case' is reserved for case-level metadata documents.
const (
	KindSurface      ObjectKind = "surface"
	KindTable        ObjectKind = "table"
	KindCube         ObjectKind = "cube"
	KindGrid         ObjectKind = "cpgrid"
	KindGridProperty ObjectKind = "cpgrid_property"
	KindPolygons     ObjectKind = "polygons"
	KindPoints       ObjectKind = "points"
	KindDictionary   ObjectKind = "dictionary"
	KindCase         ObjectKind = "case"
)

// KnownObjectKinds is the closed whitelist used during validation.
var KnownObjectKinds = []ObjectKind{
	KindSurface,
	KindTable,
	KindCube,
	KindGrid,
	KindGridProperty,
	KindPolygons,
	KindPoints,
	KindDictionary,
	KindCase,
}

// Content is the discriminator of the content-typed data union. Unknown
// content values are rejected; the whitelist is closed.
type Content string

// Whitelisted content values.
const (
	ContentDepth             Content = "depth"
	ContentFaciesThickness   Content = "facies_thickness"
	ContentFaultLines        Content = "fault_lines"
	ContentFaultProperties   Content = "fault_properties"
	ContentFieldOutline      Content = "field_outline"
	ContentFieldRegion       Content = "field_region"
	ContentFluidContact      Content = "fluid_contact"
	ContentKhProduct         Content = "khproduct"
	ContentLiftCurves        Content = "lift_curves"
	ContentNamedArea         Content = "named_area"
	ContentParameters        Content = "parameters"
	ContentPinchout          Content = "pinchout"
	ContentProperty          Content = "property"
	ContentPVT               Content = "pvt"
	ContentRegions           Content = "regions"
	ContentRelperm           Content = "relperm"
	ContentRFT               Content = "rft"
	ContentSeismic           Content = "seismic"
	ContentSubcrop           Content = "subcrop"
	ContentThickness         Content = "thickness"
	ContentTime              Content = "time"
	ContentTimeSeries        Content = "timeseries"
	ContentTransmissibility  Content = "transmissibilities"
	ContentVelocity          Content = "velocity"
	ContentVolumes           Content = "volumes"
	ContentWellPicks         Content = "wellpicks"
)

// KnownContents is the closed whitelist used during validation.
var KnownContents = []Content{
	ContentDepth,
	ContentFaciesThickness,
	ContentFaultLines,
	ContentFaultProperties,
	ContentFieldOutline,
	ContentFieldRegion,
	ContentFluidContact,
	ContentKhProduct,
	ContentLiftCurves,
	ContentNamedArea,
	ContentParameters,
	ContentPinchout,
	ContentProperty,
	ContentPVT,
	ContentRegions,
	ContentRelperm,
	ContentRFT,
	ContentSeismic,
	ContentSubcrop,
	ContentThickness,
	ContentTime,
	ContentTimeSeries,
	ContentTransmissibility,
	ContentVelocity,
	ContentVolumes,
	ContentWellPicks,
}

// VerticalDomain is the domain of the vertical axis of an object.
type VerticalDomain string

// Vertical domains.
const (
	DomainDepth VerticalDomain = "depth"
	DomainTime  VerticalDomain = "time"
)

// DomainReference is the reference for the vertical scale of an object.
type DomainReference string

// Vertical domain references.
const (
	ReferenceMSL    DomainReference = "msl"
	ReferenceSeabed DomainReference = "sb"
	ReferenceRKB    DomainReference = "rkb"
)

func containsClassification(cs []Classification, c Classification) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

func containsContent(cs []Content, c Content) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

func containsContext(cs []FMUContext, c FMUContext) bool {
	for _, v := range cs {
		if v == c {
			return true
		}
	}
	return false
}

func containsEventType(es []TrackLogEventType, e TrackLogEventType) bool {
	for _, v := range es {
		if v == e {
			return true
		}
	}
	return false
}

func containsObjectKind(ks []ObjectKind, k ObjectKind) bool {
	for _, v := range ks {
		if v == k {
			return true
		}
	}
	return false
}
