package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deckpatch/deckpatch/internal/config"
	"github.com/deckpatch/deckpatch/internal/pptx"
)

var rootCmd = &cobra.Command{
	Use:          "deckpatch",
	Short:        "deckpatch — inspect and bulk-replace images embedded in PPTX files",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `deckpatch lists the images embedded in PowerPoint files and replaces a
specific image across one or many presentations, identified by content hash,
filename or size. Replacements are written atomically: the original archive
is never touched until the rewritten copy is complete.`,
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads ~/.deckpatch/deckpatch.yaml and applies the settings that
// affect every command, such as extra image extensions.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	pptx.RegisterImageExtensions(cfg.Extensions...)
	return cfg, nil
}
