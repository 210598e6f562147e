package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bookworm-ai/bookworm/internal/assistant"
	"github.com/bookworm-ai/bookworm/internal/books"
	"github.com/bookworm-ai/bookworm/internal/chatlog"
	"github.com/bookworm-ai/bookworm/internal/config"
	"github.com/bookworm-ai/bookworm/internal/db"
	"github.com/bookworm-ai/bookworm/internal/gemini"
	"github.com/bookworm-ai/bookworm/internal/intent"
	"github.com/bookworm-ai/bookworm/internal/recommend"
	"github.com/bookworm-ai/bookworm/internal/resolver"
	"github.com/bookworm-ai/bookworm/internal/store"
)

// app holds the wired service graph shared by the commands.
type app struct {
	cfg       *config.Config
	database  *sql.DB
	model     *gemini.Client
	store     *store.Store
	history   *chatlog.Store
	assistant *assistant.Assistant
	engine    *recommend.Engine
}

// newApp wires the full assistant stack. Commands that never talk to the
// model use newStoreApp instead so they run without a Gemini API key.
func newApp(ctx context.Context, configPath string) (*app, error) {
	a, err := newStoreApp(configPath)
	if err != nil {
		return nil, err
	}

	model, err := gemini.New(ctx, a.cfg.GeminiAPIKey, gemini.Config{
		Model:       a.cfg.GenAIModel,
		Temperature: a.cfg.GenAITemperature,
		MaxTokens:   a.cfg.GenAIMaxTokens,
		Timeout:     a.cfg.GenAITimeout,
		MaxRetries:  a.cfg.GenAIMaxRetries,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.model = model

	catalog := books.NewClient(a.cfg.BooksAPIKey)
	a.assistant = assistant.New(
		model,
		intent.NewClassifier(model),
		resolver.New(model, catalog),
		a.store,
		a.history,
	)
	return a, nil
}

// newStoreApp wires config, database, stores and the recommendation engine.
func newStoreApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	st := store.New(database)
	return &app{
		cfg:      cfg,
		database: database,
		store:    st,
		history:  chatlog.NewStore(database, chatlog.NewEmbedder(cfg.EmbedProvider, cfg.EmbedModel)),
		engine:   recommend.NewEngine(st),
	}, nil
}

func (a *app) Close() {
	if a.model != nil {
		_ = a.model.Close()
	}
	if a.database != nil {
		_ = a.database.Close()
	}
}
