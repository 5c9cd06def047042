package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipe the entire file repository and analysis cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Reset(); err != nil {
			return fmt.Errorf("reset: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "repository reset")

		return nil
	},
}
