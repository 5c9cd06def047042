package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert <id>",
	Short: "Discard unsaved edits, re-reading the record from its WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Revert(id)
		if err != nil {
			return fmt.Errorf("revert %s: %w", id, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "reverted %s to status %s\n", rec.ID, rec.Status)

		return nil
	},
}
