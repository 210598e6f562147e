// Package recommend computes category-based book recommendations.
package recommend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookworm-ai/bookworm/internal/models"
)

// maxRecommendations bounds the persisted recommendation list.
const maxRecommendations = 10

// degradedSampleSize is how many arbitrary ids the degraded fallback pulls
// when a category scan fails mid-way.
const degradedSampleSize = 20

// Store is the document-store surface the engine needs.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	SetRecommendations(ctx context.Context, userID string, recommendations []models.Book) error
	GetItem(ctx context.Context, id string) (*models.Book, error)
	QueryByCategory(ctx context.Context, category string) ([]string, error)
	RandomItems(ctx context.Context, n int) ([]string, error)
}

// Result is a computed recommendation list. Degraded is set when the
// category scan failed and the engine fell back to arbitrary catalog items.
type Result struct {
	Books    []models.Book
	Degraded bool
}

// Engine derives recommendations from a user's preferences, wishlist and
// owned books.
type Engine struct {
	store Store
}

// NewEngine creates an Engine.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Recommend computes up to 10 recommendations for the user and persists
// them on the profile before returning. A user with no category signal gets
// an empty result and no catalog query is issued. Profile store failures
// propagate; per-item catalog failures do not.
func (e *Engine) Recommend(ctx context.Context, userID string) (Result, error) {
	profile, err := e.store.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("load profile: %w", err)
	}

	categories := e.collectCategories(ctx, profile)
	if len(categories) == 0 {
		slog.Info("No category signal for user, skipping recommendations", "user_id", userID)
		return Result{}, nil
	}

	candidateIDs, degraded := e.findCandidates(ctx, categories)

	excluded := make(map[string]bool, len(profile.Wishlist)+len(profile.OwnedBooks))
	for _, id := range profile.Wishlist {
		excluded[id] = true
	}
	for _, id := range profile.OwnedBooks {
		excluded[id] = true
	}

	var recommendations []models.Book
	for _, id := range candidateIDs {
		if excluded[id] {
			continue
		}
		book, err := e.store.GetItem(ctx, id)
		if err != nil || book == nil {
			continue
		}
		recommendations = append(recommendations, *book)
		if len(recommendations) == maxRecommendations {
			break
		}
	}

	if err := e.store.SetRecommendations(ctx, userID, recommendations); err != nil {
		return Result{}, fmt.Errorf("persist recommendations: %w", err)
	}

	slog.Info("Computed recommendations", "user_id", userID,
		"categories", len(categories), "results", len(recommendations), "degraded", degraded)
	return Result{Books: recommendations, Degraded: degraded}, nil
}

// collectCategories unions the user's stated preferences with the
// categories of wishlist and owned items. Item lookup failures just lose
// that item's signal.
func (e *Engine) collectCategories(ctx context.Context, profile *models.Profile) []string {
	seen := make(map[string]bool)
	var categories []string

	add := func(cat string) {
		if cat == "" || cat == "N/A" || seen[cat] {
			return
		}
		seen[cat] = true
		categories = append(categories, cat)
	}

	for _, cat := range profile.Preferences {
		add(cat)
	}

	for _, id := range append(append([]string{}, profile.Wishlist...), profile.OwnedBooks...) {
		book, err := e.store.GetItem(ctx, id)
		if err != nil || book == nil {
			continue
		}
		for _, cat := range book.Categories {
			add(cat)
		}
	}

	return categories
}

// findCandidates unions matching ids across all categories. If any category
// scan fails, the engine switches to the degraded branch and returns an
// arbitrary sample instead of failing the whole operation.
func (e *Engine) findCandidates(ctx context.Context, categories []string) (ids []string, degraded bool) {
	seen := make(map[string]bool)

	for _, category := range categories {
		matches, err := e.store.QueryByCategory(ctx, category)
		if err != nil {
			slog.Warn("Category scan failed, entering degraded mode", "category", category, "err", err)
			fallback, fbErr := e.store.RandomItems(ctx, degradedSampleSize)
			if fbErr != nil {
				slog.Error("Degraded fallback also failed", "err", fbErr)
				return nil, true
			}
			return fallback, true
		}
		for _, id := range matches {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids, false
}
