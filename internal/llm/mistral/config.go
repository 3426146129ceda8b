package mistral

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/joseph-ayodele/invoice-analyst/internal/common"
	"github.com/joseph-ayodele/invoice-analyst/internal/llm"
)

// Config for the Mistral client.
type Config struct {
	APIKey      string        // if empty, falls back to env MISTRAL_API_KEY
	BaseURL     string        // default https://api.mistral.ai/v1
	Model       string        // default mistral-large-latest
	Temperature float32       // 0..1
	Timeout     time.Duration // http client timeout
	RPS         float64       // request pacing; <= 0 disables it
	Retry       common.RetryPolicy
	PromptPath  string // optional template replacing llm.DefaultPrompt
	Strict      bool   // skip the lenient sanitize pass
}

// ConfigFromEnv maps the loaded application settings onto a client Config.
func ConfigFromEnv(c common.LLMConfig) Config {
	return Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
		RPS:         c.RPS,
		Retry:       c.RetryPolicy(),
		PromptPath:  c.PromptPath,
	}
}

type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	prompt  string
	log     *slog.Logger
}

var _ llm.Structurer = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("MISTRAL_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "mistral-large-latest"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = common.DefaultRetryPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, common.NewAppError("CONFIG_ERROR", "MISTRAL_API_KEY is required", common.ErrInvalidInput)
	}

	prompt, err := llm.LoadPrompt(cfg.PromptPath)
	if err != nil {
		return nil, common.NewAppError("CONFIG_ERROR", "load prompt", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		prompt:  prompt,
		log:     logger,
	}, nil
}
