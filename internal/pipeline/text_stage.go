package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/markdown"
	"github.com/joseph-ayodele/invoice-analyst/internal/pdftext"
	"github.com/joseph-ayodele/invoice-analyst/internal/table"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
)

// TextOutcome is what the geometry stages produce for one document.
// Template is nil when no template matched; Tables is nil when none was found.
type TextOutcome struct {
	Runs          []entity.TextRun
	Template      *template.Template
	Tables        *table.Result
	TableMarkdown string
	InfoMarkdown  string
}

// TextStage reads a document, picks its template and extracts the article table.
type TextStage struct {
	Text    *pdftext.Extractor
	Matcher *template.Matcher
	Tables  *table.Extractor
	Logger  *slog.Logger
}

func NewTextStage(text *pdftext.Extractor, matcher *template.Matcher, tables *table.Extractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	if text == nil {
		text = pdftext.NewExtractor(pdftext.Config{}, logger)
	}
	if matcher == nil {
		matcher = template.NewMatcher(template.NewCache(), logger)
	}
	if tables == nil {
		tables = table.NewExtractor(table.DefaultOptions(), logger)
	}
	return &TextStage{Text: text, Matcher: matcher, Tables: tables, Logger: logger}
}

// Run extracts runs from data and renders both markdown artifacts.
// Only unreadable input and a missing templates directory are errors.
func (s *TextStage) Run(ctx context.Context, data []byte, templatesDir string) (TextOutcome, error) {
	start := time.Now()
	var out TextOutcome

	runs, err := s.Text.ExtractBytes(ctx, data)
	if err != nil {
		return out, err
	}
	out.Runs = runs

	tpl, err := s.Matcher.FindMatching(runs, templatesDir)
	if err != nil {
		return out, err
	}
	out.Template = tpl

	var instances []entity.TableRegion
	if tpl != nil {
		res, err := s.Tables.ExtractAndMerge(runs, tpl)
		switch {
		case errors.Is(err, common.ErrNoTableFound):
		case err != nil:
			return out, err
		default:
			out.Tables = res
			instances = res.Instances
			out.TableMarkdown = markdown.Table(res.Merged, tpl.Table.ExcludedColumns)
		}
	}

	info := markdown.Dedupe(markdown.FilterNonTable(runs, instances))
	out.InfoMarkdown = markdown.Info(info)

	s.Logger.Info("pipeline.text.ok",
		"req_id", common.RequestIDFromContext(ctx),
		"runs", len(runs),
		"pages", len(entity.Pages(runs)),
		"matched", tpl != nil,
		"table", out.Tables != nil,
		"info_runs", len(info),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}
