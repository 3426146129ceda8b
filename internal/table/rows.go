package table

import (
	"math"
	"strings"

	"github.com/joseph-ayodele/invoice-analyst/internal/entity"
	"github.com/joseph-ayodele/invoice-analyst/internal/template"
)

// DecisionKind says why a row cluster did not become a data row.
type DecisionKind string

const (
	DecisionSummary    DecisionKind = "summary"
	DecisionDetail     DecisionKind = "detail"
	DecisionFooter     DecisionKind = "footer"
	DecisionMisaligned DecisionKind = "misaligned"
	DecisionBlank      DecisionKind = "blank"
	DecisionStop       DecisionKind = "misaligned_stop"
)

// RowDecision records one skipped, rejected or terminating cluster.
type RowDecision struct {
	Kind DecisionKind
	Y    float64
	Page int
	Text string
}

// rowState is the value folded over the clusters of one page.
type rowState struct {
	Rows       []entity.TableRow
	Misaligned int
	Stopped    bool
	Decisions  []RowDecision
}

// CheckAlignment reports whether enough runs sit on a column: at least
// minAligned of them, and at least threshold of the row.
func CheckAlignment(runs []entity.TextRun, positions []float64, tolerance, threshold float64, minAligned int) bool {
	if len(runs) == 0 {
		return false
	}
	aligned := 0
	for _, r := range runs {
		for _, x := range positions {
			if math.Abs(r.X-x) < tolerance {
				aligned++
				break
			}
		}
	}
	if aligned < minAligned {
		return false
	}
	return float64(aligned)/float64(len(runs)) >= threshold
}

func startsWithAny(runs []entity.TextRun, prefixes []string) bool {
	if len(runs) == 0 || len(prefixes) == 0 {
		return false
	}
	first := strings.TrimSpace(runs[0].Text)
	for _, p := range prefixes {
		if strings.HasPrefix(first, p) {
			return true
		}
	}
	return false
}

func isFooter(runs []entity.TextRun, keywords []string) bool {
	if len(runs) == 0 || len(keywords) == 0 {
		return false
	}
	text := strings.TrimSpace(joinRunText(runs))
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ExtractRows walks the clusters below region.StartY and returns the data rows
// plus a decision for every cluster that was not kept.
func ExtractRows(pageRuns []entity.TextRun, region *entity.TableRegion, cfg template.TableConfig, opts Options) ([]entity.TableRow, []RowDecision) {
	opts = opts.withDefaults()
	var below []entity.TextRun
	for _, r := range pageRuns {
		if r.Y >= region.StartY {
			below = append(below, r)
		}
	}

	state := rowState{}
	for _, c := range ClusterByY(below, opts.ClusterTolerance) {
		state = state.step(c, region, cfg, opts)
		if state.Stopped {
			break
		}
	}
	return state.Rows, state.Decisions
}

func (s rowState) step(c Cluster, region *entity.TableRegion, cfg template.TableConfig, opts Options) rowState {
	decide := func(kind DecisionKind) {
		s.Decisions = append(s.Decisions, RowDecision{Kind: kind, Y: c.Y, Page: region.Page, Text: joinRunText(c.Runs)})
	}

	switch {
	case startsWithAny(c.Runs, cfg.SummaryPatterns):
		decide(DecisionSummary)
		s.Misaligned = 0
	case startsWithAny(c.Runs, cfg.DetailPatterns):
		decide(DecisionDetail)
		s.Misaligned = 0
	case isFooter(c.Runs, cfg.FooterKeywords):
		decide(DecisionFooter)
		s.Stopped = true
	case CheckAlignment(c.Runs, region.ColumnPositions, opts.ColumnTolerance, cfg.AlignmentThreshold, cfg.MinAlignedBlocks):
		cells := BuildRowCells(c.Runs, region.ColumnPositions, cfg, opts.ColumnTolerance)
		if !anyNonBlank(cells) {
			decide(DecisionBlank)
			break
		}
		s.Rows = append(s.Rows, entity.TableRow{Cells: cells, Y: c.Y, Page: region.Page})
		s.Misaligned = 0
	default:
		s.Misaligned++
		decide(DecisionMisaligned)
		if s.Misaligned >= opts.MaxMisaligned {
			decide(DecisionStop)
			s.Stopped = true
		}
	}
	return s
}

func anyNonBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
