package chatlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bookworm-ai/bookworm/internal/db"
)

// fakeEmbedder returns a fixed vector per known text so similarity is
// deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func newTestStore(t *testing.T, embedder Embedder) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database, embedder)
}

func TestSaveAndHistory(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	turns := []struct{ text, role string }{
		{"hello", "user"},
		{"Hi! How can I help?", "assistant"},
		{"buy me a book about dragons", "user"},
	}
	for _, turn := range turns {
		if _, err := s.Save(ctx, "u1", turn.text, turn.role); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if _, err := s.Save(ctx, "u2", "other user's message", "user"); err != nil {
		t.Fatalf("save: %v", err)
	}

	history, err := s.History(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 messages for u1, got %d", len(history))
	}
	if history[0].Message != "hello" || history[2].Message != "buy me a book about dragons" {
		t.Errorf("history not in chronological order: %+v", history)
	}
	if history[1].Role != "assistant" {
		t.Errorf("role not preserved: %+v", history[1])
	}
}

func TestHistoryLimit(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three", "four"} {
		if _, err := s.Save(ctx, "u1", text, "user"); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	history, err := s.History(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	// The limit keeps the most recent messages
	if history[0].Message != "three" || history[1].Message != "four" {
		t.Errorf("expected the two most recent messages, got %+v", history)
	}
}

func TestSaveDefaultRole(t *testing.T) {
	s := newTestStore(t, nil)
	ctx := context.Background()

	if _, err := s.Save(ctx, "u1", "no role given", ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	history, err := s.History(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history[0].Role != "user" {
		t.Errorf("Role = %q, want user", history[0].Role)
	}
}

func TestSearch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"dragon books":      {1, 0, 0},
		"tell me a joke":    {0, 1, 0},
		"books on dragons?": {0.9, 0.1, 0},
	}}
	s := newTestStore(t, embedder)
	ctx := context.Background()

	for _, text := range []string{"dragon books", "tell me a joke"} {
		if _, err := s.Save(ctx, "u1", text, "user"); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	results, err := s.Search(ctx, "u1", "books on dragons?", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].Message != "dragon books" {
		t.Errorf("Search() = %+v, want the dragon message", results)
	}
}

func TestSearchWithoutEmbedder(t *testing.T) {
	s := newTestStore(t, nil)
	if _, err := s.Search(context.Background(), "u1", "anything", 3); err == nil {
		t.Fatal("expected error when no embedder is configured")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
