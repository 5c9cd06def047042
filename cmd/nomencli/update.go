package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nomenaudio/corewav/repository"
)

var updateSetFlags []string

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Apply field edits to one record's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}

		partial, err := parseSetFlags(updateSetFlags)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.UpdateMetadata(id, partial)
		if err != nil {
			return fmt.Errorf("update %s: %w", id, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "updated %s: changed fields %v\n", rec.ID, rec.ChangedFieldNames())

		return nil
	},
}

func init() {
	updateCmd.Flags().StringArrayVar(&updateSetFlags, "set", nil, "field=value pair, may be repeated (e.g. --set fx_name=\"Jet Flyby\")")
}

// parseSetFlags turns a slice of "field=value" strings into a PartialMetadata,
// erroring on any entry missing the '=' separator.
func parseSetFlags(entries []string) (repository.PartialMetadata, error) {
	partial := repository.PartialMetadata{}

	for _, entry := range entries {
		field, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q: expected field=value", entry)
		}

		partial[field] = value
	}

	return partial, nil
}
