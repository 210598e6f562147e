package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bookworm-ai/bookworm/internal/db"
	"github.com/bookworm-ai/bookworm/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(database)
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := models.Profile{
		UserID:          "u1",
		Preferences:     []string{"Fantasy", "Science"},
		Wishlist:        []string{"b1", "b2"},
		OwnedBooks:      []string{"The Hobbit"},
		PreferredFormat: "Hardcover",
		DefaultPayment:  "PayPal",
		DefaultAddress:  "1 Main St",
	}
	if err := s.PutProfile(ctx, in); err != nil {
		t.Fatalf("put profile: %v", err)
	}

	got, err := s.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.PreferredFormat != "Hardcover" || got.DefaultPayment != "PayPal" {
		t.Errorf("profile fields not round-tripped: %+v", got)
	}
	if len(got.Preferences) != 2 || got.Preferences[0] != "Fantasy" {
		t.Errorf("preferences not round-tripped: %v", got.Preferences)
	}
	if !got.Owns("The Hobbit") {
		t.Error("expected ownership of The Hobbit")
	}
}

func TestGetProfileMissingUser(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetProfile(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.UserID != "nobody" {
		t.Errorf("UserID = %q, want nobody", got.UserID)
	}
	if len(got.Preferences) != 0 || len(got.OwnedBooks) != 0 {
		t.Errorf("missing user should yield an empty profile: %+v", got)
	}
	if got.Format() != models.DefaultFormat {
		t.Errorf("Format() = %q, want default %q", got.Format(), models.DefaultFormat)
	}
	if got.Payment() != models.DefaultPayment {
		t.Errorf("Payment() = %q, want default %q", got.Payment(), models.DefaultPayment)
	}
}

func TestSetRecommendationsCreatesUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recs := []models.Book{{ID: "b1", Title: "Dune", Author: "Frank Herbert"}}
	if err := s.SetRecommendations(ctx, "fresh", recs); err != nil {
		t.Fatalf("set recommendations: %v", err)
	}

	got, err := s.GetProfile(ctx, "fresh")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(got.Recommendations) != 1 || got.Recommendations[0].Title != "Dune" {
		t.Errorf("recommendations not persisted: %+v", got.Recommendations)
	}
}

func TestBooksCollection(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	booksToAdd := []models.Book{
		{ID: "b1", Title: "Dune", Categories: []string{"Science Fiction"}},
		{ID: "b2", Title: "Eragon", Categories: []string{"Fantasy", "Young Adult"}},
		{ID: "b3", Title: "Seraphina", Categories: []string{"Fantasy"}},
		{ID: "b4", Title: "No Categories"},
	}
	for _, b := range booksToAdd {
		if err := s.PutItem(ctx, b); err != nil {
			t.Fatalf("put item %s: %v", b.ID, err)
		}
	}

	t.Run("get item", func(t *testing.T) {
		got, err := s.GetItem(ctx, "b2")
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if got == nil || got.Title != "Eragon" || len(got.Categories) != 2 {
			t.Errorf("unexpected item: %+v", got)
		}
	})

	t.Run("get absent item", func(t *testing.T) {
		got, err := s.GetItem(ctx, "missing")
		if err != nil {
			t.Fatalf("get item: %v", err)
		}
		if got != nil {
			t.Errorf("expected absent item, got %+v", got)
		}
	})

	t.Run("query by category", func(t *testing.T) {
		ids, err := s.QueryByCategory(ctx, "Fantasy")
		if err != nil {
			t.Fatalf("query by category: %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("expected 2 fantasy books, got %v", ids)
		}
	})

	t.Run("query unknown category", func(t *testing.T) {
		ids, err := s.QueryByCategory(ctx, "Cooking")
		if err != nil {
			t.Fatalf("query by category: %v", err)
		}
		if len(ids) != 0 {
			t.Errorf("expected no matches, got %v", ids)
		}
	})

	t.Run("random items bounded", func(t *testing.T) {
		ids, err := s.RandomItems(ctx, 2)
		if err != nil {
			t.Fatalf("random items: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("expected 2 ids, got %v", ids)
		}
	})
}

func TestListUserIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"u2", "u1"} {
		if err := s.PutProfile(ctx, models.Profile{UserID: id}); err != nil {
			t.Fatalf("put profile: %v", err)
		}
	}

	ids, err := s.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("list user ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Errorf("ListUserIDs() = %v, want [u1 u2]", ids)
	}
}
