package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/justinaw04/box-pdf-merger/internal/merge"
	"github.com/justinaw04/box-pdf-merger/pkg/handlers"
	"github.com/justinaw04/box-pdf-merger/pkg/routes"
)

// DefaultOutputName is used when a merge request omits the output file name.
const DefaultOutputName = "Merged_Box_PDF.pdf"

type mergeHandler struct {
	rt     *merge.Runtime
	logger *slog.Logger
}

func newMergeHandler(rt *merge.Runtime, logger *slog.Logger) *mergeHandler {
	return &mergeHandler{
		rt:     rt,
		logger: logger.With("handler", "merge"),
	}
}

func (h *mergeHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/merge",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.merge},
		},
	}
}

// MergeRequest is the presentation-boundary input: the source folder and
// the merged file's name.
type MergeRequest struct {
	FolderID   string `json:"folder_id"`
	OutputName string `json:"output_name"`
}

// MergeResponse carries the human-readable result and the shared link when
// one was created.
type MergeResponse struct {
	Message string `json:"message"`
	Link    string `json:"link,omitempty"`
}

// Normalize applies the default output name and validates the request.
func (r *MergeRequest) Normalize() error {
	if strings.TrimSpace(r.FolderID) == "" {
		return ErrFolderRequired
	}
	if r.OutputName == "" {
		r.OutputName = DefaultOutputName
	}
	if !strings.HasSuffix(strings.ToLower(r.OutputName), ".pdf") {
		return ErrInvalidOutputName
	}
	return nil
}

func (h *mergeHandler) merge(w http.ResponseWriter, r *http.Request) {
	var req MergeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
		return
	}

	if err := req.Normalize(); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	outcome, err := merge.Execute(r.Context(), h.rt, req.FolderID, req.OutputName)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, MergeResponse{
		Message: ResultMessage(outcome, req.OutputName),
		Link:    outcome.SharedLink,
	})
}

// ResultMessage builds the human-readable outcome message. The workflow
// itself never produces presentation strings.
func ResultMessage(outcome *merge.Outcome, outputName string) string {
	if outcome.Degraded {
		return fmt.Sprintf(
			"PDFs merged and uploaded to Box as '%s', but no shareable link could be created. Check your Box folder!",
			outputName,
		)
	}
	return fmt.Sprintf("PDFs merged and uploaded successfully to Box as '%s'.", outputName)
}
