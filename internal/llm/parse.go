package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

var errEmptyContent = errors.New("empty response content")

// ParseStructured turns a model reply into a StructuredInvoice. The reply is
// validated strictly first; when that fails and lenient is set, it is
// sanitized and validated again. The returned bytes are the JSON that passed.
func ParseStructured(content string, lenient bool, logger *slog.Logger) (StructuredInvoice, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw := []byte(StripCodeFences(content))
	if len(raw) == 0 {
		return StructuredInvoice{}, nil, errEmptyContent
	}

	if err := ValidateInvoiceJSON(raw); err != nil {
		if !lenient {
			return StructuredInvoice{}, raw, fmt.Errorf("schema validation failed: %w", err)
		}
		cleaned, dropped, sErr := NormalizeAndSanitizeJSON(raw, logger)
		if sErr != nil {
			return StructuredInvoice{}, raw, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := ValidateInvoiceJSON(cleaned); vErr != nil {
			return StructuredInvoice{}, cleaned, fmt.Errorf("schema validation failed: %w", vErr)
		}
		logger.Warn("llm.structure.lenient_sanitize_applied", "dropped", dropped)
		raw = cleaned
	}

	var out StructuredInvoice
	if err := json.Unmarshal(raw, &out); err != nil {
		return StructuredInvoice{}, raw, fmt.Errorf("unmarshal invoice: %w", err)
	}
	if _, err := ParseInvoiceDate(out.InvoiceDate.String()); err != nil {
		return StructuredInvoice{}, raw, err
	}
	return out, raw, nil
}
