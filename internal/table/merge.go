package table

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
)

// Dropped is a table instance left out of the merge because its headers did
// not match the first instance.
type Dropped struct {
	Page    int      `json:"page"`
	Headers []string `json:"headers"`
}

// Result is the outcome of ExtractAndMerge.
type Result struct {
	Merged    entity.TableRegion
	Instances []entity.TableRegion
	Dropped   []Dropped
	RowHeight float64
}

// Extractor runs table detection over all pages of a document.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

func NewExtractor(opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{opts: opts.withDefaults(), logger: logger}
}

// DetectAll detects one table instance per page, in ascending page order.
// A page that yields no table, or panics while doing so, is logged and skipped.
func (e *Extractor) DetectAll(runs []entity.TextRun, tpl *template.Template, rowHeight float64) []entity.TableRegion {
	var tables []entity.TableRegion
	for _, page := range entity.Pages(runs) {
		region, err := e.detectPage(entity.PageRuns(runs, page), tpl, page, rowHeight)
		if err != nil {
			e.logger.Warn("table.detect.skipped", "page", page, "supplier", tpl.Supplier, "reason", err.Error())
			continue
		}
		tables = append(tables, *region)
	}
	return tables
}

func (e *Extractor) detectPage(runs []entity.TextRun, tpl *template.Template, page int, rowHeight float64) (region *entity.TableRegion, err error) {
	defer func() {
		if r := recover(); r != nil {
			region, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	region, reason := detect(runs, tpl, page, rowHeight, e.opts.HeaderThreshold)
	if reason != "" {
		return nil, errors.New(reason)
	}
	rows, decisions := ExtractRows(runs, region, tpl.Table, e.opts)
	for _, d := range decisions {
		e.logger.Debug("table.row.dropped", "page", d.Page, "y", d.Y, "kind", string(d.Kind), "text", d.Text)
	}
	for i := range rows {
		rows[i].Cells = normalizeCells(rows[i].Cells, len(region.Headers))
	}
	region.Rows = rows
	if y, ok := region.LastRowY(); ok {
		region.EndY = y
	}
	e.logger.Info("table.detect.ok", "page", page, "columns", len(region.ColumnPositions), "rows", len(rows), "dropped", len(decisions))
	return region, nil
}

// normalizeCells makes a row exactly n cells wide. Overflow is joined into
// the last cell so nothing is lost.
func normalizeCells(cells []string, n int) []string {
	if n <= 0 || len(cells) == n {
		return cells
	}
	if len(cells) < n {
		return append(cells, make([]string, n-len(cells))...)
	}
	var tail []string
	for _, c := range cells[n-1:] {
		if c != "" {
			tail = append(tail, c)
		}
	}
	out := slices.Clone(cells[:n-1])
	return append(out, strings.Join(tail, " "))
}

// Merge concatenates the rows of every instance whose headers match the first
// one, in instance order. Instances that do not match are returned as Dropped.
func Merge(instances []entity.TableRegion) (entity.TableRegion, []Dropped, error) {
	return merge(instances, DefaultHeaderThreshold)
}

func merge(instances []entity.TableRegion, threshold float64) (entity.TableRegion, []Dropped, error) {
	if len(instances) == 0 {
		return entity.TableRegion{}, nil, common.ErrNoTableFound
	}
	first := instances[0]
	merged := entity.TableRegion{
		Headers:         slices.Clone(first.Headers),
		ColumnPositions: slices.Clone(first.ColumnPositions),
		StartY:          first.StartY,
		EndY:            first.EndY,
		Page:            first.Page,
	}
	var dropped []Dropped
	for _, t := range instances {
		if !FuzzyMatchHeaders(t.Headers, merged.Headers, threshold) {
			dropped = append(dropped, Dropped{Page: t.Page, Headers: slices.Clone(t.Headers)})
			continue
		}
		merged.Rows = append(merged.Rows, t.Rows...)
		merged.EndY = t.EndY
	}
	return merged, dropped, nil
}

// ExtractAndMerge detects the table on every page and merges the instances.
// It returns common.ErrNoTableFound when no page has a table.
func (e *Extractor) ExtractAndMerge(runs []entity.TextRun, tpl *template.Template) (*Result, error) {
	rowHeight := AutoDetectRowHeight(runs)
	instances := e.DetectAll(runs, tpl, rowHeight)
	merged, dropped, err := merge(instances, e.opts.HeaderThreshold)
	if err != nil {
		e.logger.Info("table.none", "supplier", tpl.Supplier, "pages", len(entity.Pages(runs)))
		return nil, err
	}
	for _, d := range dropped {
		e.logger.Warn("table.merge.dropped", "page", d.Page, "headers", d.Headers)
	}
	e.logger.Info("table.merge.ok",
		"supplier", tpl.Supplier,
		"instances", len(instances),
		"rows", len(merged.Rows),
		"dropped", len(dropped),
		"row_height", rowHeight,
	)
	return &Result{Merged: merged, Instances: instances, Dropped: dropped, RowHeight: rowHeight}, nil
}
