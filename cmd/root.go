package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "bookworm",
		Short: "Conversational book purchase and recommendation assistant",
		Long: `Bookworm is an LLM-powered assistant for finding and buying books.

It understands free-text purchase requests, resolves candidate titles
against the Google Books catalog, composes purchase offers from the
user's profile, and computes category-based recommendations.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Optional YAML config file")

	// Add subcommands
	cmd.AddCommand(newServeCmd(&configPath))
	cmd.AddCommand(newChatCmd(&configPath))
	cmd.AddCommand(newVoiceCmd(&configPath))
	cmd.AddCommand(newRecommendCmd(&configPath))
	cmd.AddCommand(newSeedCmd(&configPath))

	return cmd
}
