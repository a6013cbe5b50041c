package objectdata

import (
	"fmt"
	"os"

	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// BytesObject is an Object over an already-serialized payload. It covers
// objects produced by external tools (e.g. files handed over for
// re-export) and keeps tests independent of any specific geometry type.
type BytesObject struct {
	ObjectName  string
	ObjectKind  fmuresults.ObjectKind
	FileExt     string
	FileFormat  string
	ObjectSpec  *fmuresults.Spec
	ObjectBBox  *fmuresults.BoundingBox
	LayoutValue string
	Payload     []byte
}

func (o *BytesObject) Name() string                  { return o.ObjectName }
func (o *BytesObject) Kind() fmuresults.ObjectKind   { return o.ObjectKind }
func (o *BytesObject) Extension() string             { return o.FileExt }
func (o *BytesObject) Format() string                { return o.FileFormat }
func (o *BytesObject) Layout() string                { return o.LayoutValue }
func (o *BytesObject) Spec() *fmuresults.Spec        { return o.ObjectSpec }
func (o *BytesObject) BBox() *fmuresults.BoundingBox { return o.ObjectBBox }

func (o *BytesObject) ExportToFile(path string) error {
	if err := os.WriteFile(path, o.Payload, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", o.ObjectName, err)
	}
	return nil
}
