package merge

import (
	"bytes"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

// Runtime bundles the dependencies that workflow nodes require.
// It is constructed by higher-level composition code from Infrastructure
// and configuration values.
type Runtime struct {
	Storage   box.System
	Converter pdfco.System
	Logger    *slog.Logger

	// PollInterval is the fixed sleep between job status checks.
	PollInterval time.Duration
	// PollBudget is the wall-clock ceiling for the polling loop, measured
	// from submission.
	PollBudget time.Duration
	// MinSources is the minimum number of listed PDFs required to start
	// any conversion-service call.
	MinSources int

	// Validate checks that downloaded bytes are a well-formed PDF before
	// staging. Defaults to a pdfcpu validation pass.
	Validate func(data []byte) error
}

func (rt *Runtime) normalize() {
	if rt.PollInterval <= 0 {
		rt.PollInterval = 5 * time.Second
	}
	if rt.PollBudget <= 0 {
		rt.PollBudget = 300 * time.Second
	}
	if rt.MinSources <= 0 {
		rt.MinSources = 2
	}
	if rt.Validate == nil {
		rt.Validate = validatePDF
	}
}

func validatePDF(data []byte) error {
	return api.Validate(bytes.NewReader(data), nil)
}

// NoValidation accepts any source bytes, disabling the pre-staging
// well-formedness check.
func NoValidation([]byte) error {
	return nil
}
