package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/corewav/repository"
)

var (
	listStatusFlag   string
	listCategoryFlag string
	listQueryFlag    string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported files, optionally filtered",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(repository.ListFilters{
			Status:   repository.Status(listStatusFlag),
			Category: listCategoryFlag,
			Query:    listQueryFlag,
		})
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}

		out := cmd.OutOrStdout()

		for _, rec := range records {
			fmt.Fprintf(out, "%s  %-10s  %-12s  %s\n", rec.ID, rec.Status, rec.Metadata.CatID, rec.Path)
		}

		fmt.Fprintf(out, "%d file(s)\n", len(records))

		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatusFlag, "status", "", "filter by status (unmodified, modified, saved, flagged)")
	listCmd.Flags().StringVar(&listCategoryFlag, "category", "", "filter by UCS Category")
	listCmd.Flags().StringVar(&listQueryFlag, "query", "", "case-insensitive substring search")
}
