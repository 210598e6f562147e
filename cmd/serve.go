package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookworm-ai/bookworm/internal/handlers"
	"github.com/bookworm-ai/bookworm/internal/voice"
)

func newServeCmd(configPath *string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Starts the Bookworm HTTP API on the specified port.

The API exposes chat, chat-history search, recommendations and a
voice-assistant trigger.`,
		Example: `  # Start server on the default port
  bookworm serve

  # Start server on a custom port
  bookworm serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			voiceRunner := func(ctx context.Context) error {
				console := voice.NewConsole(os.Stdin, os.Stdout)
				return voice.NewLoop(console, console, app.assistant.Handle, app.cfg.VoiceUserID).Run(ctx)
			}
			handler := handlers.New(app.assistant, app.engine, app.history, voiceRunner)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/chat", handler.HandleChat)
			mux.HandleFunc("/chat/save", handler.HandleChatSave)
			mux.HandleFunc("/chat/history", handler.HandleChatHistory)
			mux.HandleFunc("/search", handler.HandleSearch)
			mux.HandleFunc("/recommend", handler.HandleRecommend)
			mux.HandleFunc("/start-voice", handler.HandleStartVoice)
			mux.HandleFunc("/healthcheck", handler.HandleHealthcheck)

			if port == "" {
				port = app.cfg.Port
			}
			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Bookworm API available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (default from PORT)")

	return cmd
}
