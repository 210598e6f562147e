package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/bookworm-ai/bookworm/internal/models"
)

// fakeStore is an in-memory Store with switchable failure modes.
type fakeStore struct {
	profiles     map[string]*models.Profile
	items        map[string]*models.Book
	profileErr   error
	queryErr     error
	setRecsErr   error
	queryCount   int
	savedRecs    map[string][]models.Book
	randomResult []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  map[string]*models.Profile{},
		items:     map[string]*models.Book{},
		savedRecs: map[string][]models.Book{},
	}
}

func (f *fakeStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return &models.Profile{UserID: userID}, nil
}

func (f *fakeStore) SetRecommendations(ctx context.Context, userID string, recs []models.Book) error {
	if f.setRecsErr != nil {
		return f.setRecsErr
	}
	f.savedRecs[userID] = recs
	return nil
}

func (f *fakeStore) GetItem(ctx context.Context, id string) (*models.Book, error) {
	return f.items[id], nil
}

func (f *fakeStore) QueryByCategory(ctx context.Context, category string) ([]string, error) {
	f.queryCount++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var ids []string
	for id, book := range f.items {
		for _, c := range book.Categories {
			if c == category {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, nil
}

func (f *fakeStore) RandomItems(ctx context.Context, n int) ([]string, error) {
	if f.randomResult != nil {
		return f.randomResult, nil
	}
	var ids []string
	for id := range f.items {
		ids = append(ids, id)
		if len(ids) == n {
			break
		}
	}
	return ids, nil
}

func (f *fakeStore) addBook(id string, categories ...string) {
	f.items[id] = &models.Book{ID: id, Title: "Book " + id, Categories: categories}
}

func TestRecommend(t *testing.T) {
	t.Run("category overlap drives results", func(t *testing.T) {
		s := newFakeStore()
		s.addBook("owned", "Fantasy")
		s.addBook("f1", "Fantasy")
		s.addBook("f2", "Fantasy", "Young Adult")
		s.addBook("cooking", "Cooking")
		s.profiles["u1"] = &models.Profile{UserID: "u1", OwnedBooks: []string{"owned"}}

		result, err := NewEngine(s).Recommend(context.Background(), "u1")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if result.Degraded {
			t.Error("unexpected degraded mode")
		}
		if len(result.Books) != 2 {
			t.Fatalf("expected 2 recommendations, got %d: %+v", len(result.Books), result.Books)
		}
		for _, b := range result.Books {
			if b.ID == "owned" {
				t.Error("owned book must not be recommended")
			}
			if b.ID == "cooking" {
				t.Error("book outside the user's categories must not be recommended")
			}
		}
		if len(s.savedRecs["u1"]) != 2 {
			t.Error("recommendations were not persisted on the profile")
		}
	})

	t.Run("no duplicates for multi-category matches", func(t *testing.T) {
		s := newFakeStore()
		s.addBook("seed", "Fantasy", "Young Adult")
		s.addBook("multi", "Fantasy", "Young Adult")
		s.profiles["u1"] = &models.Profile{UserID: "u1", Wishlist: []string{"seed"}}

		result, err := NewEngine(s).Recommend(context.Background(), "u1")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		seen := map[string]bool{}
		for _, b := range result.Books {
			if seen[b.ID] {
				t.Errorf("duplicate id %s in result", b.ID)
			}
			seen[b.ID] = true
		}
		if seen["seed"] {
			t.Error("wishlist book must be excluded")
		}
	})

	t.Run("result capped at ten", func(t *testing.T) {
		s := newFakeStore()
		s.profiles["u1"] = &models.Profile{UserID: "u1", Preferences: []string{"Fantasy"}}
		for i := 0; i < 25; i++ {
			s.addBook(string(rune('a'+i)), "Fantasy")
		}

		result, err := NewEngine(s).Recommend(context.Background(), "u1")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(result.Books) > 10 {
			t.Errorf("expected at most 10 recommendations, got %d", len(result.Books))
		}
	})

	t.Run("no signal yields empty result and no catalog query", func(t *testing.T) {
		s := newFakeStore()
		s.profiles["u1"] = &models.Profile{UserID: "u1"}

		result, err := NewEngine(s).Recommend(context.Background(), "u1")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(result.Books) != 0 {
			t.Errorf("expected empty result, got %+v", result.Books)
		}
		if s.queryCount != 0 {
			t.Errorf("expected no category queries, got %d", s.queryCount)
		}
	})

	t.Run("degraded mode on scan failure", func(t *testing.T) {
		s := newFakeStore()
		s.addBook("b1", "Fantasy")
		s.addBook("b2", "Fantasy")
		s.profiles["u1"] = &models.Profile{UserID: "u1", Preferences: []string{"Fantasy"}}
		s.queryErr = errors.New("store unavailable")
		s.randomResult = []string{"b1", "b2"}

		result, err := NewEngine(s).Recommend(context.Background(), "u1")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if !result.Degraded {
			t.Error("expected degraded mode to be reported")
		}
		if len(result.Books) != 2 {
			t.Errorf("expected fallback books, got %+v", result.Books)
		}
	})

	t.Run("profile read failure propagates", func(t *testing.T) {
		s := newFakeStore()
		s.profileErr = errors.New("store down")
		if _, err := NewEngine(s).Recommend(context.Background(), "u1"); err == nil {
			t.Fatal("expected error from profile store")
		}
	})

	t.Run("persist failure propagates", func(t *testing.T) {
		s := newFakeStore()
		s.addBook("b1", "Fantasy")
		s.profiles["u1"] = &models.Profile{UserID: "u1", Preferences: []string{"Fantasy"}}
		s.setRecsErr = errors.New("write failed")
		if _, err := NewEngine(s).Recommend(context.Background(), "u1"); err == nil {
			t.Fatal("expected error from recommendation write")
		}
	})

	t.Run("placeholder category carries no signal", func(t *testing.T) {
		s := newFakeStore()
		s.items["junk"] = &models.Book{ID: "junk", Categories: []string{"N/A", ""}}
		s.profiles["u1"] = &models.Profile{UserID: "u1", OwnedBooks: []string{"junk"}}

		result, err := NewEngine(s).Recommend(context.Background(), "u1")
		if err != nil {
			t.Fatalf("recommend: %v", err)
		}
		if len(result.Books) != 0 || s.queryCount != 0 {
			t.Errorf("placeholder categories should not trigger queries: %+v", result)
		}
	})
}
