// Package voice runs the spoken front-end as a single-consumer loop over
// the assistant's handle contract.
package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bookworm-ai/bookworm/internal/models"
)

// Recognizer captures one utterance of user speech as text. An empty string
// with a nil error means nothing usable was heard.
type Recognizer interface {
	Listen(ctx context.Context) (string, error)
}

// Synthesizer speaks a reply to the user.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// HandleFunc is the assistant's synchronous entry point; the loop owns no
// state the core depends on and talks to it only through this contract.
type HandleFunc func(ctx context.Context, userID, text string) (models.ChatResult, error)

var exitPhrases = []string{"exit", "quit", "goodbye", "bye"}

// maxListenFailures bounds consecutive recognizer failures before the loop
// gives up; without it a permanently broken recognizer spins forever.
const maxListenFailures = 3

// Loop is the voice interaction loop for one user.
type Loop struct {
	recognizer  Recognizer
	synthesizer Synthesizer
	handle      HandleFunc
	userID      string
}

// NewLoop creates a voice loop.
func NewLoop(recognizer Recognizer, synthesizer Synthesizer, handle HandleFunc, userID string) *Loop {
	return &Loop{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		handle:      handle,
		userID:      userID,
	}
}

// Run greets the user and processes utterances until an exit phrase or
// context cancellation.
func (l *Loop) Run(ctx context.Context) error {
	l.say(ctx, "Hello! How can I help you find books today?")

	failures := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		query, err := l.recognizer.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Exhausted input means the user is gone, not mumbling
			if errors.Is(err, io.EOF) {
				return nil
			}
			failures++
			if failures >= maxListenFailures {
				return fmt.Errorf("speech recognition failed repeatedly: %w", err)
			}
			l.say(ctx, "I couldn't understand that. Could you please repeat?")
			continue
		}
		failures = 0
		if strings.TrimSpace(query) == "" {
			continue
		}

		if isExit(query) {
			l.say(ctx, "Goodbye! Have a great day!")
			return nil
		}

		result, err := l.handle(ctx, l.userID, query)
		if err != nil {
			slog.Error("Voice request failed", "user_id", l.userID, "err", err)
			l.say(ctx, "I'm sorry, there was an error processing your request.")
			continue
		}

		l.say(ctx, summarize(result))

		if len(result.PurchaseDetails) > 0 {
			l.confirmPurchase(ctx, result.PurchaseDetails)
		}
	}
}

// confirmPurchase asks for a spoken yes/no on the pending offers.
func (l *Loop) confirmPurchase(ctx context.Context, offers []models.PurchaseOffer) {
	l.say(ctx, "Would you like to proceed with the purchase? Please say yes or no.")

	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}
		answer, err := l.recognizer.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			failures++
			if failures >= maxListenFailures {
				return
			}
			continue
		}
		failures = 0
		if strings.TrimSpace(answer) == "" {
			continue
		}

		lower := strings.ToLower(answer)
		switch {
		case strings.Contains(lower, "yes") || strings.Contains(lower, "yeah"):
			total := totalPrice(offers)
			if total > 0 {
				l.say(ctx, fmt.Sprintf("Your total comes to %.2f. You can confirm payment in your basket.", total))
			} else {
				l.say(ctx, "You can confirm payment in your basket.")
			}
			return
		case strings.Contains(lower, "no"):
			l.say(ctx, "No problem. Let me know if you need anything else.")
			return
		default:
			l.say(ctx, "Please say yes or no.")
		}
	}
}

func (l *Loop) say(ctx context.Context, text string) {
	if err := l.synthesizer.Speak(ctx, text); err != nil {
		slog.Warn("Speech synthesis failed", "err", err)
	}
}

// summarize composes the spoken reply: top matches for a purchase result,
// otherwise the assistant's message.
func summarize(result models.ChatResult) string {
	if len(result.FoundBooks) == 0 {
		if result.Message != "" {
			return result.Message
		}
		return "I'm sorry, I couldn't process your request."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d books. Here are the top matches: ", len(result.FoundBooks))
	for i, book := range result.FoundBooks {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s by %s. ", i+1, book.Title, book.Author)
	}
	if len(result.PurchaseDetails) > 0 {
		b.WriteString("Would you like to purchase any of these books?")
	}
	return b.String()
}

// totalPrice sums the numeric part of offer prices, skipping unpriced ones.
func totalPrice(offers []models.PurchaseOffer) float64 {
	var total float64
	for _, offer := range offers {
		fields := strings.Fields(offer.Price)
		if len(fields) == 0 {
			continue
		}
		amount, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			continue
		}
		total += amount
	}
	return total
}

func isExit(query string) bool {
	lower := strings.ToLower(query)
	for _, phrase := range exitPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
