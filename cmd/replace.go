package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/deckpatch/deckpatch/internal/pptx"
	"github.com/spf13/cobra"
)

type replaceFlags struct {
	dir         string
	file        string
	target      string
	replacement string
	matchBy     string
	outputDir   string
	noBackup    bool
	noRecursive bool
}

var replaceOpts replaceFlags

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace a matching image in one or many presentations",
	Long: `Find every media entry matching the target identifier and substitute the
replacement image's bytes, across a single file (--file) or every PPTX under
a directory (--dir).

Directory mode is two-phase: all archives are scanned first, then only the
ones with at least one match are rewritten. The rewrite always goes through
a temporary archive; in-place overwrites keep a one-time <file>.backup
sibling unless --no-backup is given. With --output-dir the originals are
left untouched and results mirror the directory structure.

Examples:
  deckpatch replace --file deck.pptx --target 9e107d9d... --replacement new_logo.png
  deckpatch replace --dir ./decks --match-by filename --target logo.png \
      --replacement new_logo.png --output-dir ./patched`,
	RunE: runReplace,
}

func init() {
	f := replaceCmd.Flags()
	f.StringVarP(&replaceOpts.dir, "dir", "d", "", "Directory of PPTX files to process")
	f.StringVar(&replaceOpts.file, "file", "", "Single PPTX file to process")
	f.StringVarP(&replaceOpts.target, "target", "t", "", "Target identifier (hash, filename or size)")
	f.StringVarP(&replaceOpts.replacement, "replacement", "r", "", "Path of the replacement image")
	f.StringVarP(&replaceOpts.matchBy, "match-by", "m", pptx.MatchByHash, "Match mode: hash, filename or size")
	f.StringVarP(&replaceOpts.outputDir, "output-dir", "o", "", "Write results here instead of overwriting")
	f.BoolVar(&replaceOpts.noBackup, "no-backup", false, "Skip the .backup sibling on in-place overwrites")
	f.BoolVar(&replaceOpts.noRecursive, "no-recursive", false, "Do not descend into subdirectories")
	_ = replaceCmd.MarkFlagRequired("target")
	_ = replaceCmd.MarkFlagRequired("replacement")
	replaceCmd.MarkFlagsMutuallyExclusive("dir", "file")
	replaceCmd.MarkFlagsOneRequired("dir", "file")
	rootCmd.AddCommand(replaceCmd)
}

func runReplace(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	match, err := pptx.NewMatcher(replaceOpts.matchBy, replaceOpts.target)
	if err != nil {
		return err
	}

	backup := cfg.Backup && !replaceOpts.noBackup

	if replaceOpts.file != "" {
		return replaceSingle(match, backup)
	}

	recursive := cfg.Recursive && !replaceOpts.noRecursive
	return replaceBatch(cmd, match, backup, recursive, cfg.Workers)
}

func replaceSingle(match pptx.Matcher, backup bool) error {
	var outputPath string
	if replaceOpts.outputDir != "" {
		outputPath = filepath.Join(replaceOpts.outputDir, filepath.Base(replaceOpts.file))
	}

	res := pptx.ReplaceFile(replaceOpts.file, match, replaceOpts.replacement, pptx.ReplaceOptions{
		OutputPath: outputPath,
		Backup:     backup,
	})
	printReplaceResult(res)
	if !res.Success {
		return fmt.Errorf("replacement failed: %s", res.Message)
	}
	return nil
}

func replaceBatch(cmd *cobra.Command, match pptx.Matcher, backup, recursive bool, workers int) error {
	printSection(fmt.Sprintf("Batch replace in %s", replaceOpts.dir))

	results, err := pptx.BatchReplace(cmd.Context(), replaceOpts.dir, match, replaceOpts.replacement,
		pptx.BatchOptions{
			Recursive:  recursive,
			OutputRoot: replaceOpts.outputDir,
			Backup:     backup,
			Workers:    workers,
		},
		func(current, total int, archivePath string) {
			fmt.Printf("  [%d/%d] %s\n", current, total, filepath.Base(archivePath))
		})
	if err != nil {
		return err
	}

	var replaced, noMatch, failed, images int
	for _, r := range results {
		printReplaceResult(r)
		switch {
		case r.Success && r.ReplacedCount > 0:
			replaced++
			images += r.ReplacedCount
		case r.Success:
			noMatch++
		default:
			failed++
		}
	}

	printSection("Summary")
	printInfo("", fmt.Sprintf("archives processed: %d", len(results)))
	printInfo("", fmt.Sprintf("rewritten: %d (%d image(s))", replaced, images))
	printInfo("", fmt.Sprintf("no match: %d", noMatch))
	printInfo("", fmt.Sprintf("failed: %d", failed))

	if failed > 0 {
		return fmt.Errorf("%d archive(s) failed", failed)
	}
	return nil
}

func printReplaceResult(r pptx.ReplaceResult) {
	name := filepath.Base(r.ArchivePath)
	switch {
	case r.Success && r.ReplacedCount > 0:
		printOK(name, r.Message)
	case r.Success:
		printSkip(name, r.Message)
	default:
		printErr(name, r.Message)
	}
}
