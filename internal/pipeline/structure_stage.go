package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/hints"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
)

// StructureStage asks the structuring service for the invoice fields, passing
// the known brands and categories along.
type StructureStage struct {
	Structurer llm.Structurer
	Hints      hints.Store
	Logger     *slog.Logger
}

func NewStructureStage(s llm.Structurer, store hints.Store, logger *slog.Logger) *StructureStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructureStage{Structurer: s, Hints: store, Logger: logger}
}

// Run returns the structured invoice and the raw JSON that passed validation.
// A hint store failure only drops the hints.
func (s *StructureStage) Run(ctx context.Context, req llm.StructureRequest) (llm.StructuredInvoice, []byte, error) {
	if s.Hints != nil {
		h, err := hints.Load(ctx, s.Hints)
		if err != nil {
			s.Logger.Warn("pipeline.structure.hints_unavailable",
				"req_id", common.RequestIDFromContext(ctx), "error", err)
		} else {
			req.KnownBrands = h.Brands
			req.KnownCategories = h.Categories
		}
	}
	return s.Structurer.Structure(ctx, req)
}
