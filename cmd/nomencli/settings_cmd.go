package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nomenaudio/corewav/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View or edit the shared creator/source/library defaults",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}

		cur := store.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "creator_id: %s\n", cur.CreatorID)
		fmt.Fprintf(out, "source_id: %s\n", cur.SourceID)
		fmt.Fprintf(out, "library_name: %s\n", cur.LibraryName)
		fmt.Fprintf(out, "library_template: %s\n", cur.LibraryTemplate)
		fmt.Fprintf(out, "rename_on_save_default: %v\n", cur.RenameOnSaveDefault)

		for _, field := range cur.CustomFields {
			fmt.Fprintf(out, "custom_field: %s (%s)\n", field.Tag, field.Label)
		}

		return nil
	},
}

var (
	settingsCreatorIDFlag       string
	settingsSourceIDFlag        string
	settingsLibraryNameFlag     string
	settingsLibraryTemplateFlag string
	settingsRenameOnSaveFlag    bool
)

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update one or more settings fields",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}

		updated, err := store.Update(func(cur settings.Settings) settings.Settings {
			if cmd.Flags().Changed("creator-id") {
				cur.CreatorID = settingsCreatorIDFlag
			}

			if cmd.Flags().Changed("source-id") {
				cur.SourceID = settingsSourceIDFlag
			}

			if cmd.Flags().Changed("library-name") {
				cur.LibraryName = settingsLibraryNameFlag
			}

			if cmd.Flags().Changed("library-template") {
				cur.LibraryTemplate = settingsLibraryTemplateFlag
			}

			if cmd.Flags().Changed("rename-on-save") {
				cur.RenameOnSaveDefault = settingsRenameOnSaveFlag
			}

			return cur
		})
		if err != nil {
			return fmt.Errorf("update settings: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "creator_id: %s, source_id: %s\n", updated.CreatorID, updated.SourceID)

		return nil
	},
}

func init() {
	settingsSetCmd.Flags().StringVar(&settingsCreatorIDFlag, "creator-id", "", "default creator id")
	settingsSetCmd.Flags().StringVar(&settingsSourceIDFlag, "source-id", "", "default source id")
	settingsSetCmd.Flags().StringVar(&settingsLibraryNameFlag, "library-name", "", "default library name")
	settingsSetCmd.Flags().StringVar(&settingsLibraryTemplateFlag, "library-template", "", "default library filename template")
	settingsSetCmd.Flags().BoolVar(&settingsRenameOnSaveFlag, "rename-on-save", false, "default rename-on-save")

	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
