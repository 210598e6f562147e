// Package gemini implements the language model boundary using Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Config controls model behavior. The per-call timeout and bounded retry
// count here are the only retry/cancellation mechanism in the service;
// callers add none.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxRetries  int
}

// Client is a Gemini-backed model client.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	cfg    Config
}

// New creates a Gemini client with the given API key and config.
func New(ctx context.Context, apiKey string, cfg Config) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(float32(cfg.Temperature))
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}

	return &Client{client: client, model: model, cfg: cfg}, nil
}

// Invoke sends a prompt and returns the model's text response. Transient
// failures are retried up to MaxRetries times with linear backoff; permanent
// ones (blocked prompts, client errors such as a bad API key) fail
// immediately.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	attempts := c.cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * time.Second
			slog.Debug("Retrying model invocation", "attempt", attempt, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := c.generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	return "", fmt.Errorf("model invocation failed: %w", lastErr)
}

// retryable reports whether another attempt could plausibly succeed. Safety
// blocks and 4xx API errors (other than rate limiting) will fail the same
// way every time.
func retryable(err error) bool {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	return true
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

// Close releases the underlying API client.
func (c *Client) Close() error {
	return c.client.Close()
}
