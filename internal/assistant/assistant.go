// Package assistant is the single entry point every front-end (HTTP, voice,
// CLI) uses to turn a user message into a reply, found books and purchase
// offers.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookworm-ai/bookworm/internal/chatlog"
	"github.com/bookworm-ai/bookworm/internal/llm"
	"github.com/bookworm-ai/bookworm/internal/models"
)

const (
	historyWindow = 10

	confirmMessage  = "You can now go to the basket to confirm payment."
	fallbackMessage = "I'm sorry, I couldn't process your request right now. Please try again."
)

// Classifier extracts a purchase intent from free text.
type Classifier interface {
	Classify(ctx context.Context, text string) models.Intent
}

// CandidateResolver produces catalog-enriched candidates for a topic.
type CandidateResolver interface {
	ResolveCandidates(ctx context.Context, topic string) ([]models.Book, error)
}

// ProfileReader loads user profiles from the document store.
type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// History persists chat turns. May be nil to disable history.
type History interface {
	Save(ctx context.Context, userID, message, role string) (string, error)
	History(ctx context.Context, userID string, limit int) ([]chatlog.Message, error)
}

// Assistant wires the intent classifier, resolver and profile store behind
// the handle contract.
type Assistant struct {
	model      llm.Model
	classifier Classifier
	resolver   CandidateResolver
	profiles   ProfileReader
	history    History
}

// New creates an Assistant. history may be nil.
func New(model llm.Model, classifier Classifier, resolver CandidateResolver, profiles ProfileReader, history History) *Assistant {
	return &Assistant{
		model:      model,
		classifier: classifier,
		resolver:   resolver,
		profiles:   profiles,
		history:    history,
	}
}

// Handle processes one user message. Conversational requests get a model
// reply; purchase requests get found books and composed offers. Only
// profile-store failures surface as errors; everything else degrades to a
// best-effort message.
func (a *Assistant) Handle(ctx context.Context, userID, text string) (models.ChatResult, error) {
	a.saveTurn(ctx, userID, text, "user")

	intent := a.classifier.Classify(ctx, text)
	if !intent.IsPurchase() {
		reply := a.converse(ctx, userID, text)
		a.saveTurn(ctx, userID, reply, "assistant")
		return conversational(reply), nil
	}

	result, err := a.assemble(ctx, userID, intent)
	if err != nil {
		return models.ChatResult{}, err
	}
	a.saveTurn(ctx, userID, result.Message, "assistant")
	return result, nil
}

// assemble runs the purchase path: resolve candidates, filter owned titles,
// compose offers with profile defaults.
func (a *Assistant) assemble(ctx context.Context, userID string, intent models.Intent) (models.ChatResult, error) {
	candidates, err := a.resolver.ResolveCandidates(ctx, intent.Topic)
	if err != nil {
		slog.Warn("Candidate resolution failed", "topic", intent.Topic, "err", err)
		candidates = nil
	}

	if len(candidates) == 0 {
		return models.ChatResult{
			Message:           fmt.Sprintf("I couldn't find any books about '%s'. Please try a different topic.", intent.Topic),
			RequestedQuantity: intent.Quantity,
			RequestedTopic:    intent.Topic,
			FoundBooks:        []models.Book{},
			PurchaseDetails:   []models.PurchaseOffer{},
		}, nil
	}

	// Identity and entitlements cannot be defaulted; a profile read
	// failure aborts the request.
	profile, err := a.profiles.GetProfile(ctx, userID)
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("load profile: %w", err)
	}

	filtered := make([]models.Book, 0, len(candidates))
	for _, book := range candidates {
		if profile.Owns(book.Title) {
			continue
		}
		filtered = append(filtered, book)
	}

	count := intent.Quantity
	if count > len(filtered) {
		count = len(filtered)
	}

	offers := make([]models.PurchaseOffer, 0, count)
	for _, book := range filtered[:count] {
		price := book.Price
		if price == "" {
			price = models.PriceUnavailable
		}
		offers = append(offers, models.PurchaseOffer{
			UserID:          userID,
			BookTitle:       book.Title,
			Author:          book.Author,
			Price:           price,
			Format:          profile.Format(),
			PaymentMethod:   profile.Payment(),
			ShippingAddress: profile.DefaultAddress,
		})
	}

	found := filtered
	if len(found) > intent.Quantity {
		found = found[:intent.Quantity]
	}

	return models.ChatResult{
		Message:           confirmMessage,
		RequestedQuantity: intent.Quantity,
		RequestedTopic:    intent.Topic,
		FoundBooks:        found,
		PurchaseDetails:   offers,
	}, nil
}

// converse generates a free-form reply, feeding recent history back to the
// model for context. Model failures degrade to a fixed apology.
func (a *Assistant) converse(ctx context.Context, userID, text string) string {
	prompt := text
	if a.history != nil {
		if turns, err := a.history.History(ctx, userID, historyWindow); err == nil && len(turns) > 0 {
			var b strings.Builder
			for _, turn := range turns {
				b.WriteString(turn.Role)
				b.WriteString(": ")
				b.WriteString(turn.Message)
				b.WriteString("\n")
			}
			b.WriteString("user: ")
			b.WriteString(text)
			prompt = b.String()
		}
	}

	reply, err := a.model.Invoke(ctx, prompt)
	if err != nil {
		slog.Warn("Conversational reply failed", "user_id", userID, "err", err)
		return fallbackMessage
	}
	return strings.TrimSpace(reply)
}

// saveTurn records a chat turn; history is best-effort and never fails the
// request.
func (a *Assistant) saveTurn(ctx context.Context, userID, message, role string) {
	if a.history == nil || message == "" {
		return
	}
	if _, err := a.history.Save(ctx, userID, message, role); err != nil {
		slog.Warn("Failed to save chat turn", "user_id", userID, "role", role, "err", err)
	}
}

func conversational(message string) models.ChatResult {
	return models.ChatResult{
		Message:         message,
		FoundBooks:      []models.Book{},
		PurchaseDetails: []models.PurchaseOffer{},
	}
}
