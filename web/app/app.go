// Package app serves the merge form UI: a folder id and output name form
// that drives the merge workflow and renders its outcome.
package app

import (
	"embed"
	"log/slog"
	"net/http"

	"github.com/justinaw04/box-pdf-merger/internal/api"
	"github.com/justinaw04/box-pdf-merger/internal/merge"
	"github.com/justinaw04/box-pdf-merger/pkg/middleware"
	"github.com/justinaw04/box-pdf-merger/pkg/module"
	"github.com/justinaw04/box-pdf-merger/pkg/web"
)

//go:embed templates/*.html
var layoutFS embed.FS

//go:embed views/*.html
var viewFS embed.FS

//go:embed static
var staticFS embed.FS

var indexView = web.ViewDef{
	Route:    "/",
	Template: "index.html",
	Title:    "Box PDF Merger",
}

// Result is the page data rendered after a merge attempt.
type Result struct {
	Message string
	Link    string
	IsError bool
}

type handler struct {
	templates *web.TemplateSet
	rt        *merge.Runtime
	logger    *slog.Logger
}

// NewModule creates the form UI module mounted at basePath.
func NewModule(basePath string, rt *merge.Runtime, logger *slog.Logger) (*module.Module, error) {
	templates, err := web.NewTemplateSet(
		layoutFS, viewFS,
		"templates/*.html", "views",
		basePath,
		[]web.ViewDef{indexView},
	)
	if err != nil {
		return nil, err
	}

	h := &handler{
		templates: templates,
		rt:        rt,
		logger:    logger.With("module", "app"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", templates.PageHandler("layout", indexView))
	mux.HandleFunc("POST /merge-pdfs", h.mergePDFs)
	mux.Handle("GET /static/", web.DistServer(staticFS, "static", "/static/"))

	m := module.New(basePath, mux)
	m.Use(middleware.Logger(h.logger))

	return m, nil
}

func (h *handler) mergePDFs(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, &Result{Message: "Error: invalid form submission.", IsError: true})
		return
	}

	req := api.MergeRequest{
		FolderID:   r.FormValue("box_folder_id"),
		OutputName: r.FormValue("merged_file_name"),
	}
	if err := req.Normalize(); err != nil {
		h.render(w, &Result{Message: "Error: " + err.Error(), IsError: true})
		return
	}

	outcome, err := merge.Execute(r.Context(), h.rt, req.FolderID, req.OutputName)
	if err != nil {
		h.render(w, &Result{Message: "Error: " + err.Error(), IsError: true})
		return
	}

	h.render(w, &Result{
		Message: api.ResultMessage(outcome, req.OutputName),
		Link:    outcome.SharedLink,
		IsError: false,
	})
}

func (h *handler) render(w http.ResponseWriter, result *Result) {
	data := web.ViewData{
		Title:    indexView.Title,
		BasePath: h.templates.BasePath(),
		Data:     result,
	}
	if err := h.templates.Render(w, "layout", indexView.Template, data); err != nil {
		h.logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
