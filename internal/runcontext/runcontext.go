// Package runcontext discovers whether the process runs inside an FMU
// run, and if so at which stage, by probing the ERT environment and the
// directory tree. Discovery never guesses: a contradictory environment
// downgrades to "no FMU run" with a warning instead of producing a
// half-valid context.
package runcontext

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// Environment variables exported by ERT into forward-model steps. Runpath
// presence means the process runs inside a realization; experiment id
// without runpath means a case-level (pre/post simulation) hook.
const (
	EnvExperimentID      = "_ERT_EXPERIMENT_ID"
	EnvEnsembleID        = "_ERT_ENSEMBLE_ID"
	EnvSimulationMode    = "_ERT_SIMULATION_MODE"
	EnvIterationNumber   = "_ERT_ITERATION_NUMBER"
	EnvRealizationNumber = "_ERT_REALIZATION_NUMBER"
	EnvRunpath           = "_ERT_RUNPATH"
)

// CaseMetadataRelPath locates the case marker file below a case root. Its
// presence is what makes a directory a case root.
const CaseMetadataRelPath = "share/metadata/fmu_case.yml"

// maxCaseWalkLevels bounds the upward search for the case marker. A
// runpath sits at most at <case>/realization-N/iter-M plus an rms/model
// working directory below that.
const maxCaseWalkLevels = 4

// Phase is the discovered position within an FMU run.
type Phase string

const (
	PhaseNone        Phase = "none"
	PhaseCase        Phase = "case"
	PhaseRealization Phase = "realization"
)

// FmuEnv is a snapshot of the ERT environment variables. Numeric fields
// are -1 when unset.
type FmuEnv struct {
	ExperimentID      string
	EnsembleID        string
	SimulationMode    string
	Runpath           string
	IterationNumber   int
	RealizationNumber int
}

// ProbeEnv reads the ERT environment through getenv (os.Getenv when nil).
func ProbeEnv(getenv func(string) string) FmuEnv {
	if getenv == nil {
		getenv = os.Getenv
	}
	return FmuEnv{
		ExperimentID:      getenv(EnvExperimentID),
		EnsembleID:        getenv(EnvEnsembleID),
		SimulationMode:    getenv(EnvSimulationMode),
		Runpath:           getenv(EnvRunpath),
		IterationNumber:   envInt(getenv, EnvIterationNumber),
		RealizationNumber: envInt(getenv, EnvRealizationNumber),
	}
}

func envInt(getenv func(string) string, key string) int {
	raw := getenv(key)
	if raw == "" {
		return -1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		warn.Warnf("%s=%q is not a number, ignoring", key, raw)
		return -1
	}
	return n
}

// InsideFMURun reports whether the environment indicates any FMU run.
func (e FmuEnv) InsideFMURun() bool {
	return e.Runpath != "" || e.ExperimentID != ""
}

// RunContext is the resolved position of the process within (or outside)
// an FMU run, together with the case identity read from the marker file.
type RunContext struct {
	Phase    Phase
	Env      FmuEnv
	CasePath string
	CaseMeta *fmuresults.CaseDocument

	// Set in the realization phase only.
	Runpath         string
	EnsembleName    string
	RealizationName string
	RealizationID   int
}

// RunContextError reports that a usable run context could not be
// established for an operation that requires one.
type RunContextError struct {
	Reason string
}

func (e *RunContextError) Error() string {
	return "run context: " + e.Reason
}

// Options steers Resolve.
type Options struct {
	// CasePath explicitly names the case root. When set it must exist and
	// hold case metadata; a missing or markerless explicit path is an
	// error, never a downgrade.
	CasePath string

	// RequireCase makes Resolve fail instead of downgrading when no case
	// can be established. Case-scoped operations (aggregation with
	// explicit storage, case registration checks) set this.
	RequireCase bool

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Resolve discovers the run context. Outside any FMU run it returns a
// PhaseNone context and no error. Inside a run, a context that cannot be
// completed (e.g. runpath present but no case marker found) downgrades to
// PhaseNone with a warning, unless RequireCase is set.
func Resolve(opts Options) (*RunContext, error) {
	env := ProbeEnv(opts.Getenv)

	if opts.CasePath != "" {
		return resolveExplicitCase(env, opts)
	}

	switch {
	case env.Runpath != "":
		return resolveRealization(env, opts)
	case env.ExperimentID != "":
		return resolveCaseHook(env, opts)
	default:
		if opts.RequireCase {
			return nil, &RunContextError{Reason: "not inside an FMU run and no casepath given"}
		}
		return &RunContext{Phase: PhaseNone, Env: env}, nil
	}
}

func resolveExplicitCase(env FmuEnv, opts Options) (*RunContext, error) {
	casePath, err := filepath.Abs(opts.CasePath)
	if err != nil {
		return nil, &RunContextError{Reason: fmt.Sprintf("casepath %q: %v", opts.CasePath, err)}
	}
	meta, err := readCaseMetadata(casePath)
	if err != nil {
		return nil, &RunContextError{
			Reason: fmt.Sprintf("casepath %q holds no case metadata: %v", casePath, err),
		}
	}
	return &RunContext{
		Phase:    PhaseCase,
		Env:      env,
		CasePath: casePath,
		CaseMeta: meta,
	}, nil
}

func resolveRealization(env FmuEnv, opts Options) (*RunContext, error) {
	runpath, err := filepath.Abs(env.Runpath)
	if err != nil {
		return nil, &RunContextError{Reason: fmt.Sprintf("runpath %q: %v", env.Runpath, err)}
	}
	casePath, ok := FindCaseRoot(runpath)
	if !ok {
		if opts.RequireCase {
			return nil, &RunContextError{
				Reason: fmt.Sprintf("no %s found above runpath %s", CaseMetadataRelPath, runpath),
			}
		}
		warn.Warnf("runpath %s is set but no case metadata was found above it; "+
			"exporting outside FMU context", runpath)
		return &RunContext{Phase: PhaseNone, Env: env}, nil
	}
	meta, err := readCaseMetadata(casePath)
	if err != nil {
		if opts.RequireCase {
			return nil, &RunContextError{Reason: err.Error()}
		}
		warn.Warnf("case metadata at %s is unreadable (%v); exporting outside FMU context",
			casePath, err)
		return &RunContext{Phase: PhaseNone, Env: env}, nil
	}

	ctx := &RunContext{
		Phase:    PhaseRealization,
		Env:      env,
		CasePath: casePath,
		CaseMeta: meta,
		Runpath:  runpath,
	}
	ctx.RealizationName, ctx.EnsembleName = splitRunpath(casePath, runpath)
	ctx.RealizationID = env.RealizationNumber
	if ctx.RealizationID < 0 {
		ctx.RealizationID = realizationIDFromName(ctx.RealizationName)
	}
	return ctx, nil
}

func resolveCaseHook(env FmuEnv, opts Options) (*RunContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, &RunContextError{Reason: err.Error()}
	}
	casePath, ok := FindCaseRoot(cwd)
	if !ok {
		if opts.RequireCase {
			return nil, &RunContextError{
				Reason: fmt.Sprintf("experiment id is set but no %s found above %s", CaseMetadataRelPath, cwd),
			}
		}
		warn.Warnf("%s is set but no case metadata was found above %s; "+
			"exporting outside FMU context", EnvExperimentID, cwd)
		return &RunContext{Phase: PhaseNone, Env: env}, nil
	}
	meta, err := readCaseMetadata(casePath)
	if err != nil {
		if opts.RequireCase {
			return nil, &RunContextError{Reason: err.Error()}
		}
		warn.Warnf("case metadata at %s is unreadable (%v); exporting outside FMU context",
			casePath, err)
		return &RunContext{Phase: PhaseNone, Env: env}, nil
	}
	return &RunContext{
		Phase:    PhaseCase,
		Env:      env,
		CasePath: casePath,
		CaseMeta: meta,
	}, nil
}

// FindCaseRoot walks from start upward, at most maxCaseWalkLevels steps,
// and returns the first directory holding the case marker file.
func FindCaseRoot(start string) (string, bool) {
	dir := start
	for i := 0; i <= maxCaseWalkLevels; i++ {
		marker := filepath.Join(dir, filepath.FromSlash(CaseMetadataRelPath))
		if info, err := os.Stat(marker); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func readCaseMetadata(casePath string) (*fmuresults.CaseDocument, error) {
	marker := filepath.Join(casePath, filepath.FromSlash(CaseMetadataRelPath))
	raw, err := os.ReadFile(marker)
	if err != nil {
		return nil, fmt.Errorf("read case metadata: %w", err)
	}
	meta, err := fmuresults.ParseCaseDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("parse case metadata %s: %w", marker, err)
	}
	return meta, nil
}

// splitRunpath derives the realization and ensemble directory names from
// the runpath's position below the case root. The conventional layout is
// <case>/realization-N/iter-M.
func splitRunpath(casePath, runpath string) (realization, ensemble string) {
	rel, err := filepath.Rel(casePath, runpath)
	if err != nil || rel == "." {
		return "", ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	realization = parts[0]
	if len(parts) > 1 {
		ensemble = parts[1]
	}
	return realization, ensemble
}

func realizationIDFromName(name string) int {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return -1
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return -1
	}
	return n
}

// ExportRoot decides where share/ trees are rooted for an export. Inside a
// realization it is the runpath; in a case hook it is the case root;
// outside an FMU run it is the working directory, hoisted two levels when
// the process runs inside an rms/model working directory.
func (c *RunContext) ExportRoot(cwd string) string {
	switch c.Phase {
	case PhaseRealization:
		return c.Runpath
	case PhaseCase:
		return c.CasePath
	default:
		if filepath.Base(cwd) == "model" && filepath.Base(filepath.Dir(cwd)) == "rms" {
			return filepath.Dir(filepath.Dir(cwd))
		}
		return cwd
	}
}
