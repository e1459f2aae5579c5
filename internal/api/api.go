// Package api assembles the API module with the merge workflow and route registration.
package api

import (
	"net/http"

	"github.com/justinaw04/box-pdf-merger/internal/config"
	"github.com/justinaw04/box-pdf-merger/internal/infrastructure"
	"github.com/justinaw04/box-pdf-merger/pkg/middleware"
	"github.com/justinaw04/box-pdf-merger/pkg/module"
)

// NewModule creates the API module with the merge handler and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
