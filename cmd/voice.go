package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/bookworm-ai/bookworm/internal/voice"
)

func newVoiceCmd(configPath *string) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Run the voice assistant loop in the foreground",
		Long: `Runs the voice interaction loop on the terminal.

Without speech hardware the console stands in for the recognizer and
synthesizer: you type utterances and replies are printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			if userID == "" {
				userID = app.cfg.VoiceUserID
			}
			console := voice.NewConsole(os.Stdin, cmd.OutOrStdout())
			return voice.NewLoop(console, console, app.assistant.Handle, userID).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id for the session (default from BOOKWORM_VOICE_USER)")

	return cmd
}
