package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newRecommendCmd(configPath *string) *cobra.Command {
	var userID string
	var all bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Compute and persist recommendations",
		Long: `Computes category-based recommendations and stores them on each
user's profile.`,
		Example: `  # One user
  bookworm recommend --user alice

  # Every user in the store
  bookworm recommend --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" && !all {
				return fmt.Errorf("either --user or --all is required")
			}

			app, err := newStoreApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			userIDs := []string{userID}
			if all {
				userIDs, err = app.store.ListUserIDs(cmd.Context())
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			for _, id := range userIDs {
				result, err := app.engine.Recommend(cmd.Context(), id)
				if err != nil {
					slog.Error("Recommendation failed", "user_id", id, "err", err)
					continue
				}
				fmt.Fprintf(out, "%s: %d recommendations", id, len(result.Books))
				if result.Degraded {
					fmt.Fprint(out, " (degraded)")
				}
				fmt.Fprintln(out)
				for _, book := range result.Books {
					fmt.Fprintf(out, "  - %s by %s\n", book.Title, book.Author)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id to recommend for")
	cmd.Flags().BoolVar(&all, "all", false, "Recommend for every user in the store")

	return cmd
}
