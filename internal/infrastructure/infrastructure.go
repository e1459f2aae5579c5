// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, storage, conversion) that the workflow requires.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/justinaw04/box-pdf-merger/internal/config"
	"github.com/justinaw04/box-pdf-merger/pkg/box"
	"github.com/justinaw04/box-pdf-merger/pkg/lifecycle"
	"github.com/justinaw04/box-pdf-merger/pkg/pdfco"
)

// Infrastructure holds the core systems required by all modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, and the two external service gateways.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Box       box.System
	Converter pdfco.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	boxSystem, err := box.New(&cfg.Box, logger)
	if err != nil {
		return nil, fmt.Errorf("box init failed: %w", err)
	}

	converter := pdfco.New(&cfg.PDFCo, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Box:       boxSystem,
		Converter: converter,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Box.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("box start failed: %w", err)
	}
	if err := i.Converter.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("pdfco start failed: %w", err)
	}
	return nil
}
