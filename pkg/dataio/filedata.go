// Package dataio assembles, exports and mutates metadata documents for
// FMU data objects. ExportData is the entry point for single-object
// exports; AggregatedData and ExportPreprocessedData mutate existing
// documents under controlled rules.
package dataio

import (
	"path"
	"strings"
	"time"

	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// Share tree roots. Observations and results are disjoint trees below the
// export root; preprocessed is a staging area later merged into a run.
const (
	ShareResults      = "share/results"
	ShareObservations = "share/observations"
	SharePreprocessed = "share/preprocessed"
)

// efolders maps an object kind to its folder below the share root.
var efolders = map[fmuresults.ObjectKind]string{
	fmuresults.KindSurface:      "maps",
	fmuresults.KindPolygons:     "polygons",
	fmuresults.KindPoints:       "points",
	fmuresults.KindTable:        "tables",
	fmuresults.KindCube:         "cubes",
	fmuresults.KindGrid:         "grids",
	fmuresults.KindGridProperty: "grids",
	fmuresults.KindDictionary:   "dictionaries",
}

var norwegianASCII = strings.NewReplacer(
	"æ", "ae", "ø", "oe", "å", "aa",
	"Æ", "ae", "Ø", "oe", "Å", "aa",
)

// sanitizeStem makes a name safe for a filename: lowercase ASCII with
// separators collapsed to single underscores.
func sanitizeStem(s string) string {
	s = strings.ToLower(norwegianASCII.Replace(s))
	s = strings.ReplaceAll(s, ". ", "_")
	for _, ch := range []string{" ", ":", "/", "\\"} {
		s = strings.ReplaceAll(s, ch, "_")
	}
	s = strings.ReplaceAll(s, ".", "_")
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// dateStamp renders a timestamp for use in a filestem.
func dateStamp(t time.Time) string {
	return t.Format("20060102")
}

// makeFilestem builds the filename stem: parent--name--tagname--t1_t0,
// with absent parts dropped. When two timestamps are present the later one
// comes first in the suffix; t0 is always the earlier date.
func makeFilestem(parent, name, tagname string, t0, t1 *time.Time) string {
	var parts []string
	if parent != "" {
		parts = append(parts, sanitizeStem(parent))
	}
	parts = append(parts, sanitizeStem(name))
	if tagname != "" {
		parts = append(parts, sanitizeStem(tagname))
	}
	switch {
	case t0 != nil && t1 != nil:
		parts = append(parts, dateStamp(*t1)+"_"+dateStamp(*t0))
	case t0 != nil:
		parts = append(parts, dateStamp(*t0))
	}
	return strings.Join(parts, "--")
}

// shareRoot picks the share tree for an export.
func shareRoot(isObservation, preprocessed bool) string {
	switch {
	case preprocessed:
		return SharePreprocessed
	case isObservation:
		return ShareObservations
	default:
		return ShareResults
	}
}

// makeSharePath builds the slash-separated path of an artifact below the
// export root.
func makeSharePath(kind fmuresults.ObjectKind, isObservation, preprocessed bool, subfolder, stem, ext string) string {
	folder, ok := efolders[kind]
	if !ok {
		folder = "other"
	}
	parts := []string{shareRoot(isObservation, preprocessed), folder}
	if subfolder != "" {
		parts = append(parts, sanitizeStem(subfolder))
	}
	parts = append(parts, stem+ext)
	return path.Join(parts...)
}
