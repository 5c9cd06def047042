package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nomenaudio/corewav/repository"
)

var (
	saveRenameFlag bool
	saveCopyFlag   bool
)

var saveCmd = &cobra.Command{
	Use:   "save <id> [id...]",
	Short: "Write each record's metadata back to its WAV file",
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

		opts := repository.SaveOptions{Rename: saveRenameFlag, Copy: saveCopyFlag}

		if len(ids) == 1 {
			if err := store.Save(cmd.Context(), ids[0], opts); err != nil {
				return fmt.Errorf("save %s: %w", ids[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", ids[0])

			return nil
		}

		outcomes := store.SaveBatch(cmd.Context(), ids, opts)

		out := cmd.OutOrStdout()

		for _, outcome := range outcomes {
			if outcome.Err != nil {
				fmt.Fprintf(out, "%s: error: %v\n", outcome.ID, outcome.Err)
				continue
			}

			fmt.Fprintf(out, "%s: saved\n", outcome.ID)
		}

		return nil
	},
}

func init() {
	saveCmd.Flags().BoolVar(&saveRenameFlag, "rename", false, "rename to the stored suggested filename on save")
	saveCmd.Flags().BoolVar(&saveCopyFlag, "copy", false, "save to a sibling copy, leaving the original untouched")
}

func parseIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, len(args))

	for i, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", arg, err)
		}

		ids[i] = id
	}

	return ids, nil
}
