package api

import (
	"github.com/justinaw04/box-pdf-merger/internal/merge"
)

// Domain holds the workflow runtime that comprises the API.
type Domain struct {
	Merge *merge.Runtime
}

// NewDomain creates the merge workflow runtime from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	rt := &merge.Runtime{
		Storage:      runtime.Box,
		Converter:    runtime.Converter,
		Logger:       runtime.Logger,
		PollInterval: runtime.Workflow.PollIntervalDuration(),
		PollBudget:   runtime.Workflow.PollBudgetDuration(),
		MinSources:   runtime.Workflow.MinSources,
	}
	if runtime.Workflow.SkipValidation {
		rt.Validate = merge.NoValidation
	}

	return &Domain{Merge: rt}
}
