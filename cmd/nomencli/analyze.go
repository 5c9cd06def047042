package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <id> [id...]",
	Short: "Run the classifier against one or more records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()

		if len(ids) == 1 {
			result, err := store.Analyze(cmd.Context(), ids[0])
			if err != nil {
				return fmt.Errorf("analyze %s: %w", ids[0], err)
			}

			fmt.Fprintf(out, "%s: %d hit(s), caption %q\n", ids[0], len(result.Hits), result.Caption)

			return nil
		}

		for _, outcome := range store.AnalyzeBatch(cmd.Context(), ids) {
			if outcome.Err != nil {
				fmt.Fprintf(out, "%s: error: %v\n", outcome.ID, outcome.Err)
				continue
			}

			fmt.Fprintf(out, "%s: %d hit(s), caption %q\n", outcome.ID, len(outcome.Record.Hits), outcome.Record.Caption)
		}

		return nil
	},
}
