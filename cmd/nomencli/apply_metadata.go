package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var applyMetadataFieldsFlag string

var applyMetadataCmd = &cobra.Command{
	Use:   "apply-metadata <source-id> <target-id> [target-id...]",
	Short: "Copy named fields from one record onto others",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid source id %q: %w", args[0], err)
		}

		targetIDs, err := parseIDs(args[1:])
		if err != nil {
			return err
		}

		if applyMetadataFieldsFlag == "" {
			return fmt.Errorf("--fields is required")
		}

		fields := strings.Split(applyMetadataFieldsFlag, ",")

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.ApplyMetadata(sourceID, targetIDs, fields); err != nil {
			return fmt.Errorf("apply-metadata: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "applied %v from %s to %d record(s)\n", fields, sourceID, len(targetIDs))

		return nil
	},
}

func init() {
	applyMetadataCmd.Flags().StringVar(&applyMetadataFieldsFlag, "fields", "", "comma-separated field names to copy")
}
