// Command nomencli is the command-line front end for importing WAV files,
// editing their broadcast/UCS metadata, and saving the result back to disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nomenaudio/corewav/classifier"
	"github.com/nomenaudio/corewav/repository"
	"github.com/nomenaudio/corewav/settings"
	"github.com/nomenaudio/corewav/ucs"
)

var (
	dbPathFlag       string
	settingsPathFlag string
	verboseFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "nomencli",
	Short: "Tag, browse, and save UCS-categorized broadcast WAV metadata",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", defaultDBPath(), "path to the sqlite file repository")
	rootCmd.PersistentFlags().StringVar(&settingsPathFlag, "settings", defaultSettingsPath(), "path to the JSON settings document")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log at debug level instead of info")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(revertCmd)
	rootCmd.AddCommand(applyMetadataCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func defaultDBPath() string {
	return filepath.Join(".nomencli", "store.db")
}

func defaultSettingsPath() string {
	return filepath.Join(".nomencli", "settings.json")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\ncanceling, waiting for in-flight writes to finish...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verboseFlag {
		level = zerolog.DebugLevel
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// openStore wires up the UCS taxonomy and a store. The classifier is always
// the no-op collaborator here: nomencli has no embedded model, only the
// boundary a future ML backend plugs into.
func openStore() (*repository.Store, error) {
	engine, err := ucs.New()
	if err != nil {
		return nil, fmt.Errorf("load UCS taxonomy: %w", err)
	}

	store, err := repository.Open(dbPathFlag, engine, classifier.NoopAnalyzer{}, newLogger())
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return store, nil
}

func openSettings() (*settings.Store, error) {
	return settings.Open(settingsPathFlag)
}
