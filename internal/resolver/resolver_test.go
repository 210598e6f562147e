package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bookworm-ai/bookworm/internal/models"
)

type fakeModel struct {
	response string
	err      error
}

func (f *fakeModel) Invoke(ctx context.Context, prompt string) (string, error) {
	return f.response, f.err
}

// fakeCatalog resolves titles present in the entries map and fails titles
// present in the failures set.
type fakeCatalog struct {
	entries  map[string]*models.Book
	failures map[string]bool
	calls    []string
}

func (f *fakeCatalog) Lookup(ctx context.Context, title string) (*models.Book, error) {
	f.calls = append(f.calls, title)
	if f.failures[title] {
		return nil, errors.New("transport error")
	}
	return f.entries[title], nil
}

const dragonTable = `| Title | Author |
|-------|--------|
| Eragon | Christopher Paolini |
| A Natural History of Dragons | Marie Brennan |
| His Majesty's Dragon | Naomi Novik |
| Seraphina | Rachel Hartman |
| The Dragonbone Chair | Tad Williams |`

func catalogFor(titles ...string) *fakeCatalog {
	entries := make(map[string]*models.Book, len(titles))
	for i, title := range titles {
		entries[title] = &models.Book{ID: fmt.Sprintf("id%d", i), Title: title, Author: "someone"}
	}
	return &fakeCatalog{entries: entries, failures: map[string]bool{}}
}

func TestResolveCandidates(t *testing.T) {
	t.Run("all five resolve in order", func(t *testing.T) {
		catalog := catalogFor("Eragon", "A Natural History of Dragons",
			"His Majesty's Dragon", "Seraphina", "The Dragonbone Chair")
		r := New(&fakeModel{response: dragonTable}, catalog)

		got, err := r.ResolveCandidates(context.Background(), "dragons")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 5 {
			t.Fatalf("expected 5 candidates, got %d", len(got))
		}
		if got[0].Title != "Eragon" || got[4].Title != "The Dragonbone Chair" {
			t.Errorf("ranking order not preserved: %+v", got)
		}
	})

	t.Run("catalog misses are dropped silently", func(t *testing.T) {
		catalog := catalogFor("Eragon", "Seraphina")
		r := New(&fakeModel{response: dragonTable}, catalog)

		got, err := r.ResolveCandidates(context.Background(), "dragons")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(got))
		}
		if got[0].Title != "Eragon" || got[1].Title != "Seraphina" {
			t.Errorf("order not preserved after drops: %+v", got)
		}
	})

	t.Run("lookup failure drops only that candidate", func(t *testing.T) {
		catalog := catalogFor("Eragon", "Seraphina")
		catalog.failures["A Natural History of Dragons"] = true
		r := New(&fakeModel{response: dragonTable}, catalog)

		got, err := r.ResolveCandidates(context.Background(), "dragons")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(got))
		}
		if len(catalog.calls) != 5 {
			t.Errorf("expected all 5 lookups attempted, got %d", len(catalog.calls))
		}
	})

	t.Run("model failure surfaces", func(t *testing.T) {
		r := New(&fakeModel{err: errors.New("timeout")}, catalogFor())
		if _, err := r.ResolveCandidates(context.Background(), "dragons"); err == nil {
			t.Fatal("expected error when the model cannot be invoked")
		}
	})
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Candidate
	}{
		{
			name: "standard table",
			text: "| Title | Author |\n|---|---|\n| Dune | Frank Herbert |\n| Hyperion | Dan Simmons |",
			want: []Candidate{
				{Title: "Dune", Author: "Frank Herbert"},
				{Title: "Hyperion", Author: "Dan Simmons"},
			},
		},
		{
			name: "fewer rows than promised",
			text: "| Title | Author |\n|---|---|\n| Dune | Frank Herbert |",
			want: []Candidate{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			name: "rows missing a column are skipped",
			text: "| Title | Author |\n|---|---|\n| Dune | Frank Herbert |\n| Orphan Title |\n||",
			want: []Candidate{{Title: "Dune", Author: "Frank Herbert"}},
		},
		{
			name: "header only",
			text: "| Title | Author |\n|---|---|",
			want: nil,
		},
		{
			name: "commentary instead of a table",
			text: "Sorry, I can't help with that.",
			want: nil,
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTable(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("parseTable() returned %d rows, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
