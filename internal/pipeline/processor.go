// Package pipeline runs the whole extraction for one document: positioned
// text, template matching, table extraction, markdown rendering, optional
// structuring and validation.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-analyst/constants"
	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/export"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
	"github.com/joseph-ayodele/invoice-analyst/internal/table"
	"github.com/joseph-ayodele/invoice-analyst/internal/validate"
)

// Config holds behavior flags for one processor.
type Config struct {
	TemplatesDir string
	// Validate re-checks structured values against the page text.
	Validate bool
	// AnnotateLines adds per-line annotations to the validation report.
	AnnotateLines bool
	// AnnotatePDF draws the validation report onto a copy of the input.
	AnnotatePDF bool
}

// Result is the outcome of one document. Status tells which stages ran;
// fields of stages that did not run stay empty.
type Result struct {
	RunID     uuid.UUID                  `json:"run_id"`
	File      string                     `json:"file"`
	Status    constants.ExtractionStatus `json:"status"`
	Supplier  string                     `json:"supplier,omitempty"`
	Template  string                     `json:"template,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Pages     int                        `json:"pages"`
	Runs      int                        `json:"runs"`
	Rows      int                        `json:"rows"`
	Dropped   []table.Dropped            `json:"dropped,omitempty"`
	ElapsedMS int64                      `json:"elapsed_ms"`

	TableMarkdown string                 `json:"-"`
	InfoMarkdown  string                 `json:"-"`
	Table         *entity.TableRegion    `json:"-"`
	Invoice       *llm.StructuredInvoice `json:"-"`
	RawJSON       []byte                 `json:"-"`
	Report        *validate.Report       `json:"-"`
	Annotated     []byte                 `json:"-"`
}

// Document converts r for the exporters.
func (r *Result) Document() export.Document {
	return export.Document{
		Name:     r.File,
		Supplier: r.Supplier,
		Status:   r.Status,
		Error:    r.Error,
		Table:    r.Table,
		Invoice:  r.Invoice,
		Report:   r.Report,
	}
}

// Processor coordinates the text stage, then the structure stage when a
// structurer is configured, then validation.
type Processor struct {
	Logger    *slog.Logger
	Cfg       Config
	Text      *TextStage
	Structure *StructureStage
	Validator *validate.Validator
	Exporter  *export.Service
}

func NewProcessor(logger *slog.Logger, cfg Config, text *TextStage, structure *StructureStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if text == nil {
		text = NewTextStage(nil, nil, nil, logger)
	}
	return &Processor{
		Logger:    logger,
		Cfg:       cfg,
		Text:      text,
		Structure: structure,
		Validator: validate.NewValidator(logger),
		Exporter:  export.NewService(logger),
	}
}

// ProcessFile reads path and processes it.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		res := p.newResult(filepath.Base(path))
		if errors.Is(err, fs.ErrNotExist) {
			err = common.DocumentNotFoundError(path)
		} else {
			err = common.DocumentOpenError(err)
		}
		res.fail(constants.StatusFailed, err)
		return res, err
	}
	return p.ProcessBytes(ctx, filepath.Base(path), data)
}

// ProcessBytes processes one document held in memory. The returned error is
// set only for input and configuration failures, in which case the Result
// carries StatusFailed. No template, no table and structuring failures are
// reported through Result.Status.
func (p *Processor) ProcessBytes(ctx context.Context, name string, data []byte) (*Result, error) {
	start := time.Now()
	res := p.newResult(name)
	ctx = common.WithRequestID(ctx, res.RunID.String())
	defer func() { res.ElapsedMS = time.Since(start).Milliseconds() }()

	p.Logger.Info("pipeline.start", "req_id", res.RunID, "file", name, "bytes", len(data))

	text, err := p.Text.Run(ctx, data, p.Cfg.TemplatesDir)
	if err != nil {
		res.fail(constants.StatusFailed, err)
		p.Logger.Error("pipeline.text.failed", "req_id", res.RunID, "file", name, "error", err)
		return res, err
	}
	res.Runs = len(text.Runs)
	res.Pages = len(entity.Pages(text.Runs))
	res.TableMarkdown = text.TableMarkdown
	res.InfoMarkdown = text.InfoMarkdown

	if text.Template == nil {
		res.Status = constants.StatusNoTemplate
		res.Error = constants.ErrUnsupportedInvoice
		p.Logger.Info("pipeline.no_template", "req_id", res.RunID, "file", name)
		return res, nil
	}
	res.Supplier = text.Template.Supplier
	res.Template = text.Template.Source
	ctx = common.WithSupplier(ctx, res.Supplier)

	res.Status = constants.StatusOK
	if text.Tables == nil {
		res.Status = constants.StatusNoTable
		res.Error = common.ErrNoTableFound.Error()
	} else {
		merged := text.Tables.Merged
		res.Table = &merged
		res.Rows = len(merged.Rows)
		res.Dropped = text.Tables.Dropped
	}

	if p.Structure != nil {
		inv, raw, err := p.Structure.Run(ctx, llm.StructureRequest{
			InfoMarkdown:  text.InfoMarkdown,
			TableMarkdown: text.TableMarkdown,
			Supplier:      res.Supplier,
			FilePath:      name,
		})
		res.RawJSON = raw
		if err != nil {
			res.fail(constants.StatusStructuringError, err)
			p.Logger.Warn("pipeline.structure.failed", "req_id", res.RunID, "file", name, "error", err)
			return res, nil
		}
		res.Invoice = &inv

		if p.Cfg.Validate {
			rep := p.Validator.Run(text.Runs, ValidationInput(inv), p.Cfg.AnnotateLines)
			res.Report = &rep
			if p.Cfg.AnnotatePDF {
				out, err := p.Exporter.AnnotatedPDF(data, &rep)
				if err != nil {
					p.Logger.Warn("pipeline.annotate.failed", "req_id", res.RunID, "file", name, "error", err)
				} else {
					res.Annotated = out
				}
			}
		}
	}

	p.Logger.Info("pipeline.ok",
		"req_id", res.RunID,
		"file", name,
		"status", res.Status,
		"supplier", res.Supplier,
		"rows", res.Rows,
		"structured", res.Invoice != nil,
		"validated", res.Report != nil,
		"annotated", res.Annotated != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) newResult(name string) *Result {
	return &Result{RunID: uuid.New(), File: name}
}

func (r *Result) fail(status constants.ExtractionStatus, err error) {
	r.Status = status
	r.Error = err.Error()
}

// ValidationInput converts a structured invoice into the values checked
// against the page. Blank metadata values are left out.
func ValidationInput(inv llm.StructuredInvoice) validate.Invoice {
	md := inv.Metadata()
	var out validate.Invoice
	for _, name := range constants.MetadataFields {
		if v := md[name]; v != "" {
			out.Metadata = append(out.Metadata, validate.Field{Name: name, Value: v})
		}
	}
	out.Articles = make([]validate.Article, len(inv.Articles))
	for i, a := range inv.Articles {
		out.Articles[i] = validate.Article(a.Map())
	}
	return out
}
