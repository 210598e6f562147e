// Package resolver turns a purchase topic into catalog-enriched candidates.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookworm-ai/bookworm/internal/llm"
	"github.com/bookworm-ai/bookworm/internal/models"
)

const discoverPrompt = "You are a helpful book recommendation assistant. The user is looking for books about: '%s'.\n\n" +
	"Please provide a markdown table with two columns: 'Title' and 'Author'. " +
	"Return only the table without any extra commentary. Give me 5 relevant books."

// Catalog looks up authoritative book metadata by title.
type Catalog interface {
	Lookup(ctx context.Context, title string) (*models.Book, error)
}

// Candidate is a title/author pair proposed by the model before enrichment.
type Candidate struct {
	Title  string
	Author string
}

// Resolver asks the language model for candidate titles and enriches them
// through the catalog.
type Resolver struct {
	model   llm.Model
	catalog Catalog
}

// New creates a Resolver.
func New(model llm.Model, catalog Catalog) *Resolver {
	return &Resolver{model: model, catalog: catalog}
}

// ResolveCandidates produces up to 5 catalog entries for a topic, in the
// model's ranking order. Candidates the catalog cannot resolve are dropped
// silently; an error is returned only when the model itself cannot be
// invoked.
func (r *Resolver) ResolveCandidates(ctx context.Context, topic string) ([]models.Book, error) {
	raw, err := r.model.Invoke(ctx, fmt.Sprintf(discoverPrompt, topic))
	if err != nil {
		return nil, fmt.Errorf("candidate generation failed: %w", err)
	}

	candidates := parseTable(raw)

	var resolved []models.Book
	for _, cand := range candidates {
		book, err := r.catalog.Lookup(ctx, cand.Title)
		if err != nil {
			slog.Warn("Catalog lookup failed, dropping candidate", "title", cand.Title, "err", err)
			continue
		}
		if book == nil {
			slog.Debug("No catalog match for candidate", "title", cand.Title)
			continue
		}
		resolved = append(resolved, *book)
	}

	return resolved, nil
}

// parseTable extracts title/author rows from a markdown table. The model's
// free text is never trusted as structured data; only the two-column signal
// is kept. The first two lines (header and separator) are always discarded,
// and a row counts only if it yields at least two non-empty fields.
func parseTable(text string) []Candidate {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 3 {
		return nil
	}

	var candidates []Candidate
	for _, line := range lines[2:] {
		var fields []string
		for _, part := range strings.Split(line, "|") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				fields = append(fields, trimmed)
			}
		}
		if len(fields) < 2 {
			continue
		}
		candidates = append(candidates, Candidate{Title: fields[0], Author: fields[1]})
	}
	return candidates
}
