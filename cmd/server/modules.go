package main

import (
	"encoding/json"
	"net/http"

	"github.com/justinaw04/box-pdf-merger/internal/api"
	"github.com/justinaw04/box-pdf-merger/internal/config"
	"github.com/justinaw04/box-pdf-merger/internal/infrastructure"
	"github.com/justinaw04/box-pdf-merger/internal/merge"
	"github.com/justinaw04/box-pdf-merger/pkg/module"
	"github.com/justinaw04/box-pdf-merger/web/app"
)

type Modules struct {
	API *module.Module
	App *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	workflow := &merge.Runtime{
		Storage:      infra.Box,
		Converter:    infra.Converter,
		Logger:       infra.Logger,
		PollInterval: cfg.Workflow.PollIntervalDuration(),
		PollBudget:   cfg.Workflow.PollBudgetDuration(),
		MinSources:   cfg.Workflow.MinSources,
	}
	if cfg.Workflow.SkipValidation {
		workflow.Validate = merge.NoValidation
	}

	appModule, err := app.NewModule(cfg.API.AppPath, workflow, infra.Logger)
	if err != nil {
		return nil, err
	}

	return &Modules{
		API: apiModule,
		App: appModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.App)
}

func buildRouter(infra *infrastructure.Infrastructure, cfg *config.Config) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, cfg.API.AppPath+"/", http.StatusTemporaryRedirect)
	})

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	return router
}
