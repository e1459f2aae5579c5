// Package merge implements the PDF merge workflow: list the source folder,
// prepare each file into the conversion service, submit and poll the merge
// job, then store the result back into the folder with a shared link.
package merge

import (
	"errors"

	"github.com/justinaw04/box-pdf-merger/pkg/box"
	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

// Sentinel errors for workflow gates and terminal failures.
var (
	ErrNoSources     = errors.New("no PDF files found in the folder")
	ErrTooFewSources = errors.New("less than two PDF files found; at least two PDFs are required for merging")
	ErrNonePrepared  = errors.New("no PDF files were successfully prepared for merging")
	ErrNoJob         = errors.New("merge submission returned no job id")
	ErrJobFailed     = errors.New("merge job failed")
	ErrJobAborted    = errors.New("merge job aborted")
	ErrTimeout       = errors.New("merge job timed out")
	ErrStoreFailed   = errors.New("failed to upload merged PDF")
)

// Kind is the closed classification of workflow failures. Human-readable
// messages are produced only at the presentation boundary.
type Kind int

// Failure kinds.
const (
	KindInternal Kind = iota
	KindConfiguration
	KindAuthentication
	KindStorage
	KindConversion
	KindTimeout
	KindRejected
)

// KindFor classifies a workflow error. Unrecognized errors are KindInternal.
func KindFor(err error) Kind {
	switch {
	case errors.Is(err, box.ErrNotConfigured),
		errors.Is(err, box.ErrInvalidCredentials),
		errors.Is(err, pdfco.ErrNotConfigured):
		return KindConfiguration
	case errors.Is(err, box.ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrNoSources),
		errors.Is(err, ErrTooFewSources),
		errors.Is(err, ErrNonePrepared):
		return KindRejected
	case errors.Is(err, ErrNoJob),
		errors.Is(err, ErrJobFailed),
		errors.Is(err, ErrJobAborted),
		errors.Is(err, pdfco.ErrService):
		return KindConversion
	case errors.Is(err, ErrStoreFailed),
		errors.Is(err, box.ErrBackend):
		return KindStorage
	default:
		return KindInternal
	}
}
