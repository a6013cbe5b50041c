package dataio

import (
	"strconv"
	"strings"

	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// buildFMU derives the fmu block from the resolved run context. The shape
// follows the context phase only: case-phase documents carry no ensemble
// or realization, realization-phase documents carry both. Outside an FMU
// run there is no fmu block at all.
func buildFMU(ctx *runcontext.RunContext, cfg *fmuresults.GlobalConfiguration, workflow string) *fmuresults.FMU {
	if ctx == nil || ctx.Phase == runcontext.PhaseNone {
		return nil
	}

	block := &fmuresults.FMU{
		Case: ctx.CaseMeta.FMU.Case,
	}
	if cfg != nil && cfg.Model.Name != "" {
		model := cfg.Model
		block.Model = &model
	}
	if workflow != "" {
		block.Workflow = &fmuresults.Workflow{Reference: workflow}
	}
	if ctx.Env.ExperimentID != "" {
		block.Ert = &fmuresults.Ert{
			Experiment:     fmuresults.Experiment{ID: ctx.Env.ExperimentID},
			SimulationMode: ctx.Env.SimulationMode,
		}
	}

	switch ctx.Phase {
	case runcontext.PhaseCase:
		block.Context = fmuresults.Context{Stage: fmuresults.ContextCase}
	case runcontext.PhaseRealization:
		block.Context = fmuresults.Context{Stage: fmuresults.ContextRealization}
		ensemble := buildEnsemble(ctx)
		block.Ensemble = ensemble
		block.Realization = &fmuresults.Realization{
			ID:   ctx.RealizationID,
			Name: ctx.RealizationName,
			UUID: fmuresults.DeterministicUUID(
				ctx.CaseMeta.FMU.Case.UUID + ensemble.Name + ctx.RealizationName,
			).String(),
		}
	}
	return block
}

func buildEnsemble(ctx *runcontext.RunContext) *fmuresults.Ensemble {
	id := ctx.Env.IterationNumber
	if id < 0 {
		id = ensembleIDFromName(ctx.EnsembleName)
	}
	if id < 0 {
		id = 0
	}
	return &fmuresults.Ensemble{
		ID:   id,
		Name: ctx.EnsembleName,
		UUID: fmuresults.DeterministicUUID(
			ctx.CaseMeta.FMU.Case.UUID + ctx.EnsembleName,
		).String(),
	}
}

// ensembleIDFromName parses the numeric suffix of conventional ensemble
// directory names like iter-0 or pred-1.
func ensembleIDFromName(name string) int {
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

// entityUUID links all documents describing the same entity within a
// case: the identifier depends on the case and the realization-independent
// location of the artifact, so every realization of an object and every
// aggregation over it share it.
func entityUUID(caseUUID, caseRelPathWithoutRealization string) string {
	return fmuresults.DeterministicUUID(caseUUID + caseRelPathWithoutRealization).String()
}
