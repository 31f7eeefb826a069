package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deckpatch/deckpatch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	Long: `Create ~/.deckpatch/deckpatch.yaml with the default settings so they can
be edited:

  backup: true        # keep a one-time .backup before in-place replacements
  recursive: true     # descend into subdirectories when scanning folders
  workers: 0          # batch scan parallelism, 0 = one per CPU
  extensions: []      # extra image extensions, e.g. [webp]

An existing config file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	cfgPath, err := config.Path()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot check %s: %w", cfgPath, err)
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	return nil
}
