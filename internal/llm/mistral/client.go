package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
)

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Structure implements llm.Structurer with a single-message chat/completions call.
// Transport failures, retryable statuses and unparseable replies are retried
// with exponential backoff; the final failure wraps common.ErrStructuring.
func (c *Client) Structure(ctx context.Context, req llm.StructureRequest) (llm.StructuredInvoice, []byte, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	prompt := llm.BuildPrompt(c.prompt, req)
	c.log.Info("llm.structure.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"supplier", req.Supplier,
		"file", req.FilePath,
		"prompt_len", len(prompt),
		"known_brands", len(req.KnownBrands),
		"known_categories", len(req.KnownCategories),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var (
		out llm.StructuredInvoice
		raw []byte
	)
	err := common.Retry(ctx, c.cfg.Retry, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return common.Permanent(fmt.Errorf("rate limiter: %w", err))
		}
		resp, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
		if err != nil {
			var se *llm.StatusError
			if errors.As(err, &se) && !se.Retryable() {
				return common.Permanent(err)
			}
			if ctx.Err() != nil {
				return common.Permanent(err)
			}
			return err
		}

		var cc chatResponse
		if err := json.Unmarshal(resp, &cc); err != nil {
			return fmt.Errorf("decode mistral response: %w", err)
		}
		if len(cc.Choices) == 0 {
			return errors.New("no choices in mistral response")
		}
		out, raw, err = llm.ParseStructured(cc.Choices[0].Message.Content, !c.cfg.Strict, c.log)
		return err
	}, func(attempt int, delay time.Duration, err error) {
		c.log.Warn("llm.structure.retry",
			"req_id", rid,
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err,
		)
	})
	if err != nil {
		c.log.Error("llm.structure.failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.StructuredInvoice{}, raw, common.StructuringErrorf("%v", err)
	}

	c.log.Info("llm.structure.ok",
		"req_id", rid,
		"invoice_number", out.InvoiceNumber,
		"date", out.InvoiceDate,
		"supplier", out.Supplier.Name,
		"articles", len(out.Articles),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, raw, nil
}
