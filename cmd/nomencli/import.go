package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importRecursiveFlag bool

var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Scan a directory for WAV files and add or refresh their records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		result, err := store.Import(cmd.Context(), args[0], importRecursiveFlag)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "imported %d file(s)\n", len(result.Imported))

		for _, skipped := range result.Skipped {
			fmt.Fprintf(out, "  skipped %s: %v\n", skipped.Path, skipped.Err)
		}

		for _, removed := range result.Removed {
			fmt.Fprintf(out, "  removed stale record for %s\n", removed)
		}

		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importRecursiveFlag, "recursive", false, "recurse into subdirectories")
}
