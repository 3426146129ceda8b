package table

import (
	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
)

// Reasons a page yields no table.
const (
	ReasonNoAnchor       = "no_anchor"
	ReasonNoColumns      = "no_columns"
	ReasonHeaderMismatch = "header_mismatch"
)

// DetectTable locates the table header on one page. The returned region has
// no rows yet; StartY is the first line below the header block.
func DetectTable(runs []entity.TextRun, tpl *template.Template, page int, rowHeight float64) (*entity.TableRegion, bool) {
	region, reason := detect(runs, tpl, page, rowHeight, DefaultHeaderThreshold)
	return region, reason == ""
}

func detect(runs []entity.TextRun, tpl *template.Template, page int, rowHeight, threshold float64) (*entity.TableRegion, string) {
	cfg := tpl.Table
	anchorY, ok := FindStartAnchor(runs, cfg.StartAnchor)
	if !ok {
		return nil, ReasonNoAnchor
	}
	positions := DetectColumnPositions(runs, anchorY)
	if len(positions) == 0 {
		return nil, ReasonNoColumns
	}
	headers := JoinMultiLineHeaders(HeaderRegion(runs, anchorY), positions, cfg.Header)
	if !FuzzyMatchHeaders(headers, cfg.Header, threshold) {
		return nil, ReasonHeaderMismatch
	}
	start := anchorY + float64(cfg.HeaderRows)*rowHeight
	return &entity.TableRegion{
		Headers:         headers,
		ColumnPositions: positions,
		StartY:          start,
		EndY:            start,
		Page:            page,
	}, ""
}
