package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/constants"
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
		pdfPath   = flag.String("pdf", "", "invoice PDF to process (required)")
		out       = flag.String("out", "", "output directory (defaults to <pdf name>_out next to the PDF)")
		templates = flag.String("templates", "", "templates directory (overrides TEMPLATES_DIR)")
		structure = flag.Bool("structure", false, "structure the invoice with the Mistral API")
		strict    = flag.Bool("strict", false, "reject structuring replies that need sanitizing")
		validate  = flag.Bool("validate", false, "validate structured values against the page text (needs -structure)")
		lines     = flag.Bool("annotate-lines", false, "add per-line annotations to the validation report")
		annotated = flag.Bool("annotated", true, "write "+constants.AnnotatedPDFFile+" when validating")
		xlsx      = flag.Bool("xlsx", false, "also write "+constants.WorkbookFile)
		review    = flag.Bool("review", false, "also write "+constants.ReviewPDFFile)
	)
	flag.Parse()
	if *pdfPath == "" && flag.NArg() > 0 {
		*pdfPath = flag.Arg(0)
	}
	if *pdfPath == "" {
		printError("Error: --pdf is required\n")
		flag.Usage()
		os.Exit(2)
	}
	if *out == "" {
		stem := strings.TrimSuffix(filepath.Base(*pdfPath), filepath.Ext(*pdfPath))
		*out = filepath.Join(filepath.Dir(*pdfPath), stem+"_out")
	}

	cfg := common.LoadConfig()
	if *templates != "" {
		cfg.Templates.Dir = *templates
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := pipeline.NewFromConfig(ctx, cfg, pipeline.Options{
		Structure:     *structure,
		Strict:        *strict,
		Validate:      *validate,
		AnnotateLines: *lines,
		AnnotatePDF:   *annotated,
	}, logger)
	if err != nil {
		logger.Error("extract.init_failed", "error", err)
		os.Exit(1)
	}
	defer b.Cleanup()

	res, err := b.Processor.ProcessFile(ctx, *pdfPath)
	if err != nil {
		logger.Error("extract.failed", "pdf", *pdfPath, "status", res.Status, "error", err)
		os.Exit(1)
	}

	written, err := pipeline.WriteArtifacts(*out, res)
	if err != nil {
		logger.Error("extract.write_failed", "out", *out, "error", err)
		os.Exit(1)
	}

	svc := export.NewService(logger)
	doc := res.Document()
	if *xlsx {
		data, err := svc.WorkbookXLSX([]export.Document{doc})
		if err == nil {
			path := filepath.Join(*out, constants.WorkbookFile)
			if err = os.WriteFile(path, data, 0o644); err == nil {
				written = append(written, path)
			}
		}
		if err != nil {
			logger.Error("extract.xlsx_failed", "error", err)
			os.Exit(1)
		}
	}
	if *review {
		data, err := svc.ReviewPDF(export.ReviewMarkdown(doc), doc.Name)
		if err == nil {
			path := filepath.Join(*out, constants.ReviewPDFFile)
			if err = os.WriteFile(path, data, 0o644); err == nil {
				written = append(written, path)
			}
		}
		if err != nil {
			logger.Error("extract.review_failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("extract.done",
		"pdf", *pdfPath,
		"run_id", res.RunID,
		"status", res.Status,
		"supplier", res.Supplier,
		"rows", res.Rows,
		"artifacts", written,
		"elapsed_ms", res.ElapsedMS,
	)
	if res.Status != constants.StatusOK {
		printError("Warning: %s: %s\n", res.Status, res.Error)
	}
}
