package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCmd(configPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive chat session in the terminal",
		Example: `  # Chat as a specific user
  bookworm chat --user alice`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Bookworm chat. Type 'exit' to quit.")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				result, err := app.assistant.Handle(cmd.Context(), userID, line)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}

				fmt.Fprintln(out, result.Message)
				for i, book := range result.FoundBooks {
					fmt.Fprintf(out, "  %d. %s by %s\n", i+1, book.Title, book.Author)
				}
				for _, offer := range result.PurchaseDetails {
					fmt.Fprintf(out, "  offer: %s (%s, %s, %s)\n",
						offer.BookTitle, offer.Price, offer.Format, offer.PaymentMethod)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "cli_user", "User id for the session")

	return cmd
}
