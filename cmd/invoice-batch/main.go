package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/batch"
	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/export"
	"github.com/joseph-ayodele/invoice-analyst/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir        = flag.String("dir", "", "directory to process invoices from (required)")
		out        = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		artifacts  = flag.String("artifacts", "", "write per-invoice artifacts under this directory")
		templates  = flag.String("templates", "", "templates directory (overrides TEMPLATES_DIR)")
		workers    = flag.Int("workers", 0, "parallel documents (overrides BATCH_WORKERS)")
		structure  = flag.Bool("structure", false, "structure invoices with the Mistral API")
		validate   = flag.Bool("validate", false, "validate structured values against the page text")
		skipHidden = flag.Bool("skip-hidden", true, "skip hidden files and directories")
		watch      = flag.Bool("watch", false, "keep watching --dir and process new invoices as they arrive")
		debounce   = flag.Duration("debounce", 500*time.Millisecond, "coalesce file events in watch mode")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "invoices.xlsx")
	}

	cfg := common.LoadConfig()
	if *templates != "" {
		cfg.Templates.Dir = *templates
	}
	if *workers > 0 {
		cfg.Batch.Workers = *workers
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := pipeline.NewFromConfig(ctx, cfg, pipeline.Options{
		Structure:   *structure,
		Validate:    *validate,
		AnnotatePDF: *artifacts != "",
	}, logger)
	if err != nil {
		logger.Error("batch.init_failed", "error", err)
		os.Exit(1)
	}
	defer b.Cleanup()

	runner := batch.NewRunner(b.Processor, batch.Config{
		Workers:    cfg.Batch.Workers,
		SkipHidden: *skipHidden,
		OutputDir:  *artifacts,
	}, logger)

	if *watch {
		err := runner.Watch(ctx, batch.WatchConfig{Roots: []string{*dir}, InitialScan: true, Debounce: *debounce},
			func(fr batch.FileResult) {
				if fr.Result == nil {
					return
				}
				logger.Info("batch.watch.processed", "path", fr.Path, "status", fr.Result.Status, "error", fr.Err)
			})
		if err != nil && ctx.Err() == nil {
			logger.Error("batch.watch_failed", "error", err)
			os.Exit(1)
		}
		return
	}

	results, stats, err := runner.RunDirectory(ctx, *dir)
	if err != nil {
		logger.Error("batch.failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	docs := make([]export.Document, 0, len(results))
	for _, fr := range results {
		if fr.Result != nil {
			docs = append(docs, fr.Result.Document())
		} else {
			docs = append(docs, export.Document{Name: filepath.Base(fr.Path), Status: constants.StatusFailed, Error: fr.Err})
		}
	}
	data, err := export.NewService(logger).WorkbookXLSX(docs)
	if err != nil {
		logger.Error("batch.export_failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("batch.write_failed", "out", *out, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files matched: %d\n", stats.Matched)
	fmt.Printf("- Extracted: %d\n", stats.Succeeded)
	fmt.Printf("- Unsupported: %d\n", stats.NoTemplate)
	fmt.Printf("- Without table: %d\n", stats.NoTable)
	fmt.Printf("- Structuring errors: %d\n", stats.StructuringErrors)
	fmt.Printf("- Failures: %d\n", stats.Failed)
	fmt.Printf("- Output: %s\n", *out)
}
