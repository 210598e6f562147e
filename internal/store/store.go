// Package store implements the profile and book document store over SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bookworm-ai/bookworm/internal/models"
)

// Store persists user profiles and the books collection.
type Store struct {
	db *sql.DB
}

// New creates a Store backed by the given database.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetProfile returns the user's profile. A user with no stored record gets
// an empty profile, not an error; callers substitute defaults at read time.
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT preferences, wishlist, owned_books, preferred_format, default_payment, default_address, recommendations
		 FROM users WHERE id = ?`, userID)

	var prefs, wishlist, owned, recs string
	profile := &models.Profile{UserID: userID}
	err := row.Scan(&prefs, &wishlist, &owned,
		&profile.PreferredFormat, &profile.DefaultPayment, &profile.DefaultAddress, &recs)
	if err == sql.ErrNoRows {
		return profile, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(prefs), &profile.Preferences); err != nil {
		profile.Preferences = nil
	}
	if err := json.Unmarshal([]byte(wishlist), &profile.Wishlist); err != nil {
		profile.Wishlist = nil
	}
	if err := json.Unmarshal([]byte(owned), &profile.OwnedBooks); err != nil {
		profile.OwnedBooks = nil
	}
	if err := json.Unmarshal([]byte(recs), &profile.Recommendations); err != nil {
		profile.Recommendations = nil
	}
	return profile, nil
}

// PutProfile upserts a full profile record. Profiles are normally mutated by
// account-management collaborators; this is their write surface.
func (s *Store) PutProfile(ctx context.Context, profile models.Profile) error {
	prefs, _ := json.Marshal(emptyIfNil(profile.Preferences))
	wishlist, _ := json.Marshal(emptyIfNil(profile.Wishlist))
	owned, _ := json.Marshal(emptyIfNil(profile.OwnedBooks))
	recs, err := json.Marshal(profile.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	if profile.Recommendations == nil {
		recs = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, preferences, wishlist, owned_books, preferred_format, default_payment, default_address, recommendations)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   preferences = excluded.preferences,
		   wishlist = excluded.wishlist,
		   owned_books = excluded.owned_books,
		   preferred_format = excluded.preferred_format,
		   default_payment = excluded.default_payment,
		   default_address = excluded.default_address,
		   recommendations = excluded.recommendations`,
		profile.UserID, string(prefs), string(wishlist), string(owned),
		profile.PreferredFormat, profile.DefaultPayment, profile.DefaultAddress, string(recs))
	if err != nil {
		return fmt.Errorf("put profile %s: %w", profile.UserID, err)
	}
	return nil
}

// SetRecommendations stores the computed recommendation list on the user's
// profile, creating the record if needed.
func (s *Store) SetRecommendations(ctx context.Context, userID string, recommendations []models.Book) error {
	recs, err := json.Marshal(recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, recommendations) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET recommendations = excluded.recommendations`,
		userID, string(recs))
	if err != nil {
		return fmt.Errorf("set recommendations for %s: %w", userID, err)
	}
	return nil
}

// ListUserIDs returns every user id in the store.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetItem returns a book from the books collection, or (nil, nil) if absent.
func (s *Store) GetItem(ctx context.Context, id string) (*models.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, publisher, published_date, description, thumbnail, categories, price
		 FROM books WHERE id = ?`, id)

	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return book, nil
}

// PutItem upserts a book into the books collection.
func (s *Store) PutItem(ctx context.Context, book models.Book) error {
	cats, err := json.Marshal(emptyIfNil(book.Categories))
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO books (id, title, author, publisher, published_date, description, thumbnail, categories, price)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   author = excluded.author,
		   publisher = excluded.publisher,
		   published_date = excluded.published_date,
		   description = excluded.description,
		   thumbnail = excluded.thumbnail,
		   categories = excluded.categories,
		   price = excluded.price`,
		book.ID, book.Title, book.Author, book.Publisher, book.PublishedDate,
		book.Description, book.Thumbnail, string(cats), book.Price)
	if err != nil {
		return fmt.Errorf("put item %s: %w", book.ID, err)
	}
	return nil
}

// QueryByCategory returns the ids of books whose category list contains the
// given category. SQLite has no array-contains operator, so the categories
// are filtered in Go.
func (s *Store) QueryByCategory(ctx context.Context, category string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, categories FROM books`)
	if err != nil {
		return nil, fmt.Errorf("query by category %q: %w", category, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id, catsJSON string
		if err := rows.Scan(&id, &catsJSON); err != nil {
			return nil, err
		}
		var cats []string
		if err := json.Unmarshal([]byte(catsJSON), &cats); err != nil {
			continue
		}
		for _, c := range cats {
			if c == category {
				ids = append(ids, id)
				break
			}
		}
	}
	return ids, rows.Err()
}

// RandomItems returns up to n arbitrary book ids. Used as the degraded-mode
// fallback when a category scan fails.
func (s *Store) RandomItems(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM books LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("random items: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*models.Book, error) {
	var book models.Book
	var catsJSON string
	err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Publisher,
		&book.PublishedDate, &book.Description, &book.Thumbnail, &catsJSON, &book.Price)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(catsJSON), &book.Categories); err != nil {
		book.Categories = nil
	}
	return &book, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
