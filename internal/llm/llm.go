package llm

import (
	"context"
)

// Model defines the interface to a natural-language model. The core depends
// only on this shape, not on any specific vendor.
type Model interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}
