package pdfco

import "errors"

var (
	// ErrNotConfigured indicates no API key was provided.
	ErrNotConfigured = errors.New("pdf.co api key not configured")
	// ErrService indicates a conversion-service call failed, either at the
	// transport level or via the application-level error field.
	ErrService = errors.New("pdf.co request failed")
)
