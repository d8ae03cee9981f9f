package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/time/rate"

	"github.com/largefullmoon/backend-book-recommendation/internal/config"
	"github.com/largefullmoon/backend-book-recommendation/internal/errors"
)

// OpenAIClient calls the OpenAI chat completions API.
type OpenAIClient struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
	timeout     time.Duration
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewOpenAIClient creates a completion client from config.
// Rate limited to one request per second with a small burst; plan generation
// is interactive but bursty traffic must not exhaust the API quota.
func NewOpenAIClient(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		client:      openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   int64(cfg.MaxTokens),
		timeout:     cfg.Timeout,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
	}
}

// Complete sends the prompt pair and returns the raw completion text.
// Transient failures are retried once; the caller sees a single error that
// maps to 502 upstream handling.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(c.maxTokens),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil && retryable(err) && ctx.Err() == nil {
		c.logger.Warn("completion request failed, retrying once", "error", err)
		resp, err = c.client.Chat.Completions.New(ctx, params)
	}
	if err != nil {
		return "", errors.UpstreamLLM(err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.UpstreamLLM(errors.New("completion returned no choices"))
	}

	c.logger.Debug("completion received",
		"model", c.model,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Choices[0].Message.Content, nil
}

// retryable reports whether an API error is worth a single retry.
// Rate limits and transient server errors are; everything else is not.
func retryable(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "timeout")
}
