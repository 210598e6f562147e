// Package intent extracts a structured purchase intent from free-form text.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookworm-ai/bookworm/internal/llm"
	"github.com/bookworm-ai/bookworm/internal/models"
)

const classifyPrompt = `Analyze this user request: '%s'
If the request is about buying books, respond with ONLY a valid JSON object in this exact format:
{"quantity": <number>, "topic": "<description>"}

Rules:
- quantity must be a valid number (default to 1 if not specified).
- if the request is not about buying books, set quantity to 0 and topic to "Null".
- topic should be the search terms for the book (if applicable).
- remove words like "buy me" or "get me" from the topic.
- remove the quantity words from the topic.
- handle typos in the query (in quantity and topic)

Example inputs and outputs:
Input: "buy me three books about dragons"
Output: {"quantity": 3, "topic": "dragons"}

Input: "hello"
Output: {"quantity": 0, "topic": "Null"}
`

// Classifier turns free text into a purchase intent using a language model.
type Classifier struct {
	model llm.Model
}

// NewClassifier creates a Classifier backed by the given model.
func NewClassifier(model llm.Model) *Classifier {
	return &Classifier{model: model}
}

// Classify parses the user's request. Malformed model output and model
// invocation failures both fall back to the "not a purchase" intent; this
// method never fails a request.
func (c *Classifier) Classify(ctx context.Context, text string) models.Intent {
	raw, err := c.model.Invoke(ctx, fmt.Sprintf(classifyPrompt, text))
	if err != nil {
		slog.Warn("Intent classification failed, treating as conversation", "err", err)
		return models.NoPurchase()
	}

	cleaned := stripCodeFence(strings.TrimSpace(raw))

	var parsed models.Intent
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		slog.Warn("Model returned invalid intent JSON, treating as conversation", "response", cleaned)
		return models.NoPurchase()
	}

	if parsed.Quantity < 0 {
		parsed.Quantity = 0
	}
	if parsed.Topic == "" {
		parsed.Topic = models.TopicNone
	}
	return parsed
}

// stripCodeFence removes a markdown code fence wrapping, with or without a
// language tag, so fenced JSON still parses.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	return strings.TrimSpace(s)
}
