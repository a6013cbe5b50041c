package fmuresults

import "time"

// BoundingBox is the spatial extent of an object. The horizontal extent is
// always present; the vertical extent is either fully present (3D) or
// fully absent (2D). A half-set vertical extent is invalid.
type BoundingBox struct {
	XMin float64  `yaml:"xmin" json:"xmin"`
	XMax float64  `yaml:"xmax" json:"xmax"`
	YMin float64  `yaml:"ymin" json:"ymin"`
	YMax float64  `yaml:"ymax" json:"ymax"`
	ZMin *float64 `yaml:"zmin,omitempty" json:"zmin,omitempty"`
	ZMax *float64 `yaml:"zmax,omitempty" json:"zmax,omitempty"`
}

// Is3D reports whether the box carries a vertical extent. Only meaningful
// on a validated box; a half-set vertical extent is rejected elsewhere.
func (b *BoundingBox) Is3D() bool {
	return b.ZMin != nil && b.ZMax != nil
}

// Spec holds object-kind specific shape characteristics. Which fields are
// set depends on the object kind; none of them are required.
type Spec struct {
	NCol       *int     `yaml:"ncol,omitempty" json:"ncol,omitempty"`
	NRow       *int     `yaml:"nrow,omitempty" json:"nrow,omitempty"`
	NLay       *int     `yaml:"nlay,omitempty" json:"nlay,omitempty"`
	XOri       *float64 `yaml:"xori,omitempty" json:"xori,omitempty"`
	YOri       *float64 `yaml:"yori,omitempty" json:"yori,omitempty"`
	XInc       *float64 `yaml:"xinc,omitempty" json:"xinc,omitempty"`
	YInc       *float64 `yaml:"yinc,omitempty" json:"yinc,omitempty"`
	YFlip      *int     `yaml:"yflip,omitempty" json:"yflip,omitempty"`
	ZFlip      *int     `yaml:"zflip,omitempty" json:"zflip,omitempty"`
	Rotation   *float64 `yaml:"rotation,omitempty" json:"rotation,omitempty"`
	Undef      *float64 `yaml:"undef,omitempty" json:"undef,omitempty"`
	Columns    []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	NumColumns *int     `yaml:"num_columns,omitempty" json:"num_columns,omitempty"`
	NumRows    *int     `yaml:"num_rows,omitempty" json:"num_rows,omitempty"`
	Size       *int64   `yaml:"size,omitempty" json:"size,omitempty"`
}

// Timestamp is one labelled point in time attached to a data object.
type Timestamp struct {
	Value time.Time `yaml:"value" json:"value"`
	Label string    `yaml:"label,omitempty" json:"label,omitempty"`
}

// Time holds the time window of a data object. T0 is always the earlier
// timestamp when both are set.
type Time struct {
	T0 *Timestamp `yaml:"t0,omitempty" json:"t0,omitempty"`
	T1 *Timestamp `yaml:"t1,omitempty" json:"t1,omitempty"`
}

// Seismic holds attributes specific to seismic content.
type Seismic struct {
	Attribute      string   `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	Calculation    string   `yaml:"calculation,omitempty" json:"calculation,omitempty"`
	FilterSize     *float64 `yaml:"filter_size,omitempty" json:"filter_size,omitempty"`
	ScalingFactor  *float64 `yaml:"scaling_factor,omitempty" json:"scaling_factor,omitempty"`
	StackingOffset string   `yaml:"stacking_offset,omitempty" json:"stacking_offset,omitempty"`
	ZRange         *float64 `yaml:"zrange,omitempty" json:"zrange,omitempty"`
}

// FluidContact holds attributes specific to fluid_contact content. The
// contact kind (e.g. owc, goc, fwl) is mandatory for that content.
type FluidContact struct {
	Contact   string `yaml:"contact" json:"contact"`
	Truncated bool   `yaml:"truncated" json:"truncated"`
}

// FieldOutline holds attributes specific to field_outline content.
type FieldOutline struct {
	Contact string `yaml:"contact" json:"contact"`
}

// FieldRegion holds attributes specific to field_region content.
type FieldRegion struct {
	ID int `yaml:"id" json:"id"`
}

// Property holds attributes specific to property content.
type Property struct {
	Attribute  string `yaml:"attribute,omitempty" json:"attribute,omitempty"`
	IsDiscrete bool   `yaml:"is_discrete" json:"is_discrete"`
}

// Data describes the exported object itself. Content discriminates a
// closed union: for some content values a matching sub-block (seismic,
// fluid_contact, field_outline, field_region, property) is required or
// permitted; for all other content values no sub-block may be present.
type Data struct {
	Name               string          `yaml:"name" json:"name"`
	Stratigraphic      bool            `yaml:"stratigraphic" json:"stratigraphic"`
	Alias              []string        `yaml:"alias,omitempty" json:"alias,omitempty"`
	StratigraphicAlias []string        `yaml:"stratigraphic_alias,omitempty" json:"stratigraphic_alias,omitempty"`
	Offset             float64         `yaml:"offset,omitempty" json:"offset,omitempty"`
	Top                *Layer          `yaml:"top,omitempty" json:"top,omitempty"`
	Base               *Layer          `yaml:"base,omitempty" json:"base,omitempty"`
	Content            Content         `yaml:"content" json:"content"`
	Tagname            string          `yaml:"tagname,omitempty" json:"tagname,omitempty"`
	Format             string          `yaml:"format" json:"format"`
	Layout             string          `yaml:"layout,omitempty" json:"layout,omitempty"`
	Unit               string          `yaml:"unit,omitempty" json:"unit,omitempty"`
	VerticalDomain     VerticalDomain  `yaml:"vertical_domain,omitempty" json:"vertical_domain,omitempty"`
	DomainReference    DomainReference `yaml:"domain_reference,omitempty" json:"domain_reference,omitempty"`
	Spec               *Spec           `yaml:"spec,omitempty" json:"spec,omitempty"`
	BBox               *BoundingBox    `yaml:"bbox,omitempty" json:"bbox,omitempty"`
	Time               *Time           `yaml:"time,omitempty" json:"time,omitempty"`
	UndefIsZero        *bool           `yaml:"undef_is_zero,omitempty" json:"undef_is_zero,omitempty"`
	TableIndex         []string        `yaml:"table_index,omitempty" json:"table_index,omitempty"`
	IsPrediction       bool            `yaml:"is_prediction" json:"is_prediction"`
	IsObservation      bool            `yaml:"is_observation" json:"is_observation"`
	Description        []string        `yaml:"description,omitempty" json:"description,omitempty"`

	Seismic      *Seismic      `yaml:"seismic,omitempty" json:"seismic,omitempty"`
	FluidContact *FluidContact `yaml:"fluid_contact,omitempty" json:"fluid_contact,omitempty"`
	FieldOutline *FieldOutline `yaml:"field_outline,omitempty" json:"field_outline,omitempty"`
	FieldRegion  *FieldRegion  `yaml:"field_region,omitempty" json:"field_region,omitempty"`
	Property     *Property     `yaml:"property,omitempty" json:"property,omitempty"`
}

// Layer names a stratigraphic boundary of the object.
type Layer struct {
	Name          string `yaml:"name" json:"name"`
	Stratigraphic bool   `yaml:"stratigraphic" json:"stratigraphic"`
}

// contentVariant declares, per content value, which sub-block belongs to
// it and whether that sub-block is mandatory. Every member of
// KnownContents has exactly one row here; an exhaustiveness test enforces
// this.
type contentVariant struct {
	block    string
	required bool
}

var contentVariants = map[Content]contentVariant{
	ContentDepth:            {},
	ContentFaciesThickness:  {},
	ContentFaultLines:       {},
	ContentFaultProperties:  {},
	ContentFieldOutline:     {block: "field_outline", required: true},
	ContentFieldRegion:      {block: "field_region", required: true},
	ContentFluidContact:     {block: "fluid_contact", required: true},
	ContentKhProduct:        {},
	ContentLiftCurves:       {},
	ContentNamedArea:        {},
	ContentParameters:       {},
	ContentPinchout:         {},
	ContentProperty:         {block: "property"},
	ContentPVT:              {},
	ContentRegions:          {},
	ContentRelperm:          {},
	ContentRFT:              {},
	ContentSeismic:          {block: "seismic"},
	ContentSubcrop:          {},
	ContentThickness:        {},
	ContentTime:             {},
	ContentTimeSeries:       {},
	ContentTransmissibility: {},
	ContentVelocity:         {},
	ContentVolumes:          {},
	ContentWellPicks:        {},
}

// subBlocks returns the content sub-blocks actually present on d, keyed by
// their serialized names.
func (d *Data) subBlocks() map[string]bool {
	present := map[string]bool{}
	if d.Seismic != nil {
		present["seismic"] = true
	}
	if d.FluidContact != nil {
		present["fluid_contact"] = true
	}
	if d.FieldOutline != nil {
		present["field_outline"] = true
	}
	if d.FieldRegion != nil {
		present["field_region"] = true
	}
	if d.Property != nil {
		present["property"] = true
	}
	return present
}
