package cmd

import (
	"fmt"
	"os"

	"github.com/deckpatch/deckpatch/internal/tui"
	"github.com/spf13/cobra"
)

type tuiFlags struct {
	dir         string
	source      string
	replacement string
	outputDir   string
	noBackup    bool
	noRecursive bool
}

var tuiOpts tuiFlags

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Interactive scan-then-replace with live progress",
	Long: `Open the interactive surface: scan a folder for presentations embedding
the source image, review the matches in a table, then replace them with live
per-archive progress. Uses the same scan and replace engine as 'deckpatch
replace'.

Example:
  deckpatch tui --dir ./decks --source old_logo.png --replacement new_logo.png`,
	RunE: runTUI,
}

func init() {
	f := tuiCmd.Flags()
	f.StringVarP(&tuiOpts.dir, "dir", "d", "", "Directory of PPTX files to process")
	f.StringVarP(&tuiOpts.source, "source", "s", "", "Image to find (matched by content hash)")
	f.StringVarP(&tuiOpts.replacement, "replacement", "r", "", "Path of the replacement image")
	f.StringVarP(&tuiOpts.outputDir, "output-dir", "o", "", "Write results here instead of overwriting")
	f.BoolVar(&tuiOpts.noBackup, "no-backup", false, "Skip the .backup sibling on in-place overwrites")
	f.BoolVar(&tuiOpts.noRecursive, "no-recursive", false, "Do not descend into subdirectories")
	_ = tuiCmd.MarkFlagRequired("dir")
	_ = tuiCmd.MarkFlagRequired("source")
	_ = tuiCmd.MarkFlagRequired("replacement")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	for _, p := range []string{tuiOpts.dir, tuiOpts.source, tuiOpts.replacement} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("cannot open %s: %w", p, err)
		}
	}

	return tui.Run(tui.Options{
		Dir:         tuiOpts.dir,
		Source:      tuiOpts.source,
		Replacement: tuiOpts.replacement,
		OutputDir:   tuiOpts.outputDir,
		Recursive:   cfg.Recursive && !tuiOpts.noRecursive,
		Backup:      cfg.Backup && !tuiOpts.noBackup,
		Workers:     cfg.Workers,
	})
}
