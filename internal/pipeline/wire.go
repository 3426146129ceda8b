package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/hints"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm/mistral"
)

// Options select the optional stages when building from configuration.
type Options struct {
	Structure     bool
	Strict        bool // reject replies that need sanitizing
	Validate      bool
	AnnotateLines bool
	AnnotatePDF   bool
}

// Build is the result of NewFromConfig: a Processor plus the resources to release.
type Build struct {
	Processor *Processor
	Hints     hints.Store
	Cleanup   func()
}

// NewFromConfig wires a Processor from the loaded configuration. The hint
// store and the structuring client are only opened when opts.Structure is set.
func NewFromConfig(ctx context.Context, cfg *common.Config, opts Options, logger *slog.Logger) (*Build, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(opts.Structure); err != nil {
		return nil, err
	}

	b := &Build{Cleanup: func() {}}
	var structure *StructureStage
	if opts.Structure {
		mcfg := mistral.ConfigFromEnv(cfg.LLM)
		mcfg.Strict = opts.Strict
		client, err := mistral.NewClient(mcfg, logger)
		if err != nil {
			return nil, err
		}
		store, err := hints.Open(ctx, cfg.Hints, logger)
		if err != nil {
			return nil, err
		}
		b.Hints = store
		b.Cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Warn("pipeline.hints.close_error", "error", err)
			}
		}
		structure = NewStructureStage(client, store, logger)
	}

	b.Processor = NewProcessor(logger, Config{
		TemplatesDir:  cfg.Templates.Dir,
		Validate:      opts.Validate,
		AnnotateLines: opts.AnnotateLines,
		AnnotatePDF:   opts.AnnotatePDF,
	}, NewTextStage(nil, nil, nil, logger), structure)
	logger.Info("pipeline.ready",
		"templates_dir", cfg.Templates.Dir,
		"structure", opts.Structure,
		"hints_driver", cfg.Hints.Driver,
		"validate", opts.Validate,
		"annotate_pdf", opts.AnnotatePDF,
	)
	return b, nil
}
