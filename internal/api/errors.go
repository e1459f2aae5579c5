package api

import (
	"errors"
	"net/http"

	"github.com/justinaw04/box-pdf-merger/internal/merge"
)

// Sentinel errors for request validation.
var (
	ErrFolderRequired    = errors.New("folder_id is required")
	ErrInvalidOutputName = errors.New("output_name must end with .pdf")
)

// MapHTTPStatus maps workflow failure kinds to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrFolderRequired) || errors.Is(err, ErrInvalidOutputName) {
		return http.StatusBadRequest
	}

	switch merge.KindFor(err) {
	case merge.KindConfiguration:
		return http.StatusServiceUnavailable
	case merge.KindAuthentication, merge.KindStorage, merge.KindConversion:
		return http.StatusBadGateway
	case merge.KindTimeout:
		return http.StatusGatewayTimeout
	case merge.KindRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
