// Package chatlog persists per-user chat history with optional embeddings.
package chatlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

// Message is one stored chat turn.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists chat messages. ULID ids make history chronologically
// ordered without a separate sequence column.
type Store struct {
	db       *sql.DB
	embedder Embedder
}

// NewStore creates a chat history store. embedder may be nil.
func NewStore(db *sql.DB, embedder Embedder) *Store {
	return &Store{db: db, embedder: embedder}
}

// Save stores a chat message and returns its id. Embedding failures are
// logged and ignored; history must survive an unavailable embedding
// backend.
func (s *Store) Save(ctx context.Context, userID, message, role string) (string, error) {
	if role == "" {
		role = "user"
	}
	id := ulid.Make().String()

	var embedding any
	if s.embedder != nil {
		vector, err := s.embedder.Embed(ctx, message)
		if err != nil {
			slog.Warn("Failed to embed chat message", "user_id", userID, "err", err)
		} else if raw, err := json.Marshal(vector); err == nil {
			embedding = string(raw)
		}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, role, message, embedding, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, userID, role, message, embedding, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("save chat message: %w", err)
	}
	return id, nil
}

// History returns the user's most recent messages, oldest first.
func (s *Store) History(ctx context.Context, userID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, message, created_at
		 FROM chat_messages WHERE user_id = ?
		 ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// scored pairs a message with its similarity to a query.
type scored struct {
	msg   Message
	score float64
}

// Search returns the user's k messages most similar to the query, best
// first. It requires an embedder.
func (s *Store) Search(ctx context.Context, userID, query string, k int) ([]Message, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("search requires an embedding provider")
	}
	if k <= 0 {
		k = 5
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, message, embedding, created_at
		 FROM chat_messages WHERE user_id = ? AND embedding IS NOT NULL`, userID)
	if err != nil {
		return nil, fmt.Errorf("load chat embeddings: %w", err)
	}
	defer rows.Close()

	var results []scored
	for rows.Next() {
		var m Message
		var embJSON string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Message, &embJSON, &m.CreatedAt); err != nil {
			return nil, err
		}
		var vec []float32
		if err := json.Unmarshal([]byte(embJSON), &vec); err != nil {
			continue
		}
		results = append(results, scored{msg: m, score: CosineSimilarity(queryVec, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].score > results[j].score })
	if len(results) > k {
		results = results[:k]
	}

	messages := make([]Message, len(results))
	for i, r := range results {
		messages[i] = r.msg
	}
	return messages, nil
}
