package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
)

// Config tunes glyph-to-run merging.
type Config struct {
	// DefaultPageHeight is used when a page carries no usable MediaBox.
	DefaultPageHeight float64
	// GapFactor is the widest horizontal gap, in font sizes, still joined into one run.
	GapFactor float64
	// SkipValidation bypasses the pdfcpu structural check.
	SkipValidation bool
}

// Extractor reads PDF documents into positioned text runs.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.DefaultPageHeight <= 0 {
		cfg.DefaultPageHeight = 792
	}
	if cfg.GapFactor <= 0 {
		cfg.GapFactor = 1.0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// ExtractFile reads the document at path.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]entity.TextRun, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.DocumentNotFoundError(path)
		}
		return nil, common.DocumentOpenError(err)
	}
	e.logger.Debug("pdftext.read", "path", path, "bytes", len(data))
	return e.ExtractBytes(ctx, data)
}

// ExtractBytes returns every non-blank text run of the document, page by page,
// in content-stream order. Repeated calls on the same bytes yield the same runs.
func (e *Extractor) ExtractBytes(ctx context.Context, data []byte) (runs []entity.TextRun, err error) {
	start := time.Now()
	if len(data) == 0 {
		return nil, common.DocumentOpenError(errors.New("empty document"))
	}

	pageCount := 0
	if !e.cfg.SkipValidation {
		pageCount, err = PageCount(data)
		if err != nil {
			e.logger.Warn("pdftext.validate_failed", "error", err)
			return nil, common.DocumentOpenError(err)
		}
	}

	// The content-stream interpreter panics on malformed operators.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pdftext.extract.panic", "recovered", fmt.Sprint(r))
			runs = nil
			err = common.DocumentOpenError(fmt.Errorf("read content: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.DocumentOpenError(err)
	}

	n := reader.NumPage()
	if pageCount > 0 && pageCount != n {
		e.logger.Warn("pdftext.page_count_mismatch", "pdfcpu", pageCount, "reader", n)
	}

	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		height := pageHeight(page.V, e.cfg.DefaultPageHeight)
		pageRuns := mergeGlyphs(page.Content().Text, i-1, height, e.cfg.GapFactor)
		e.logger.Debug("pdftext.page", "page", i-1, "runs", len(pageRuns), "height", height)
		runs = append(runs, pageRuns...)
	}

	e.logger.Info("pdftext.extract.ok",
		"pages", n,
		"runs", len(runs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return runs, nil
}

// PageCount validates data as a PDF and returns its page count.
func PageCount(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx.PageCount, nil
}

// PageHeights returns the MediaBox height of every page, in page order, the
// same heights ExtractBytes flips y with. Pages without a usable MediaBox get
// fallback.
func PageHeights(data []byte, fallback float64) (heights []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			heights = nil
			err = common.DocumentOpenError(fmt.Errorf("read page tree: %v", r))
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.DocumentOpenError(err)
	}
	heights = make([]float64, reader.NumPage())
	for i := range heights {
		heights[i] = pageHeight(reader.Page(i+1).V, fallback)
	}
	return heights, nil
}

// pageHeight resolves the (possibly inherited) MediaBox height.
func pageHeight(v pdf.Value, fallback float64) float64 {
	for depth := 0; depth < 16 && !v.IsNull(); depth++ {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return fallback
}
