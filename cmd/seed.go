package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookworm-ai/bookworm/internal/seed"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var dataset string
	var limit int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a book dataset into the store",
		Long: `Loads book records from a Parquet or JSONL dataset file into the
books collection so recommendations and catalog lookups have data.`,
		Example: `  # Load a full dataset
  bookworm seed --dataset books.parquet

  # Load the first 100 records of a JSONL file
  bookworm seed --dataset books.jsonl --limit 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newStoreApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := seed.Import(cmd.Context(), app.store, dataset, limit)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d books\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "Path to the dataset file (.parquet or .jsonl)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to import (0 = all)")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}
