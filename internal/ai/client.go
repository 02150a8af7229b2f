// Package ai talks to an OpenAI-compatible chat-completions endpoint
// and turns its output into structured analysis artifacts. Every caller
// has a deterministic fallback; nothing in this package is allowed to
// fail an analysis.
package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds LLM endpoint settings. An empty APIKey disables the
// client; callers then go straight to their fallbacks.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client is a minimal chat-completions client. Calls are blocking with
// a hard timeout and are never retried; a circuit breaker stops us from
// queueing on a dead endpoint.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

// NewClient creates an LLM client. Timeout defaults to 30s.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		logger:  logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one system+user exchange and returns the raw model
// text.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	if !c.Enabled() {
		return "", fmt.Errorf("llm client disabled: no api key configured")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, system, user, temperature, maxTokens)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read llm response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode llm response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm response has no choices")
	}

	c.logger.DebugContext(ctx, "llm completion",
		slog.String("model", c.cfg.Model),
		slog.Duration("elapsed", time.Since(start)))
	return parsed.Choices[0].Message.Content, nil
}
