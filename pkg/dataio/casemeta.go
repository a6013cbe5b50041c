package dataio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// CreateCaseMetadata registers a case: it writes the case marker file
// share/metadata/fmu_case.yml below the case root, which is what later
// exports discover to attach themselves to the case.
type CreateCaseMetadata struct {
	Config *fmuresults.GlobalConfiguration

	// CasePath is the case root directory. Created when missing.
	CasePath string

	// CaseName defaults to the case root's directory name.
	CaseName string

	// User is the registering user id.
	User string

	Description []string
}

// Run writes the case metadata and returns the marker file path. A case
// that is already registered is left untouched, with a warning.
func (c *CreateCaseMetadata) Run() (string, error) {
	if c.Config == nil {
		return "", fmt.Errorf("create case metadata: no global config")
	}
	if err := c.Config.Validate(); err != nil {
		return "", fmt.Errorf("create case metadata: %w", err)
	}
	if c.CasePath == "" {
		return "", fmt.Errorf("create case metadata: no casepath")
	}
	casePath, err := filepath.Abs(c.CasePath)
	if err != nil {
		return "", fmt.Errorf("create case metadata: %w", err)
	}

	marker := filepath.Join(casePath, filepath.FromSlash(runcontext.CaseMetadataRelPath))
	if _, err := os.Stat(marker); err == nil {
		warn.Warnf("case %s is already registered; keeping the existing metadata", casePath)
		return marker, nil
	}

	name := c.CaseName
	if name == "" {
		name = filepath.Base(casePath)
	}
	tracklog := fmuresults.InitializeTracklog()
	userID := c.User
	if userID == "" {
		userID = tracklog[0].User.ID
	}
	doc := &fmuresults.CaseDocument{
		Schema:   fmuresults.SchemaURL,
		Version:  fmuresults.SchemaVersion,
		Source:   fmuresults.SourceTag,
		Tracklog: tracklog,
		Class:    fmuresults.KindCase,
		FMU: fmuresults.FMU{
			Case: fmuresults.Case{
				Name:        name,
				User:        fmuresults.User{ID: userID},
				UUID:        uuid.NewString(),
				Description: c.Description,
			},
			Context: fmuresults.Context{Stage: fmuresults.ContextCase},
		},
		Access: fmuresults.Access{
			Asset:          c.Config.Access.Asset,
			Classification: c.Config.Access.Classification,
		},
		Masterdata: c.Config.Masterdata,
	}
	if c.Config.Model.Name != "" {
		model := c.Config.Model
		doc.FMU.Model = &model
	}
	if err := doc.Validate(); err != nil {
		verr := err.(*fmuresults.ValidationError)
		return "", &InvalidMetadataError{Err: verr}
	}

	raw, err := doc.MarshalYAML()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		return "", fmt.Errorf("create case metadata: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(marker), ".fmu_case-*.yml")
	if err != nil {
		return "", fmt.Errorf("create case metadata: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return "", fmt.Errorf("create case metadata: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("create case metadata: %w", err)
	}
	if err := os.Rename(tmp.Name(), marker); err != nil {
		return "", fmt.Errorf("create case metadata: %w", err)
	}
	return marker, nil
}
