package api

import (
	"net/http"

	"github.com/justinaw04/box-pdf-merger/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	handler := newMergeHandler(domain.Merge, runtime.Logger)

	routes.Register(
		mux,
		handler.routes(),
	)
}
