package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckpatch/deckpatch/internal/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run pre-flight environment checks",
	Long: `Check that deckpatch's environment is usable: the config file parses, the
working directory accepts the staging files replacements are built in, and
any lock sidecars left by earlier in-place replacements are listed.

Run this command when something seems wrong, or before filing a bug report.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	allOK := true
	failD := func(format string, args ...any) {
		printErr("", fmt.Sprintf(format, args...))
		allOK = false
	}

	printSection("deckpatch doctor")
	fmt.Println()

	fmt.Println("[ config ]")
	cfgPath, err := config.Path()
	if err != nil {
		failD("cannot determine home directory: %v", err)
	} else if _, statErr := os.Stat(cfgPath); os.IsNotExist(statErr) {
		printSkip("", fmt.Sprintf("no config file at %s — defaults apply (run 'deckpatch init' to create one)", cfgPath))
	} else if cfg, loadErr := config.Load(); loadErr != nil {
		failD("cannot parse %s: %v", cfgPath, loadErr)
	} else {
		printOK("", fmt.Sprintf("valid YAML: %s", cfgPath))
		if cfg.Workers < 0 {
			failD("workers is negative (%d)", cfg.Workers)
		}
	}
	fmt.Println()

	// Replace stages its rewritten archive next to the destination before the
	// final rename, so an unwritable working directory breaks in-place runs
	// here.
	fmt.Println("[ staging ]")
	if tmp, err := os.CreateTemp(".", "deckpatch-doctor-*"); err != nil {
		failD("cannot stage files in the current directory: %v", err)
	} else {
		name := tmp.Name()
		_ = tmp.Close()
		_ = os.Remove(name)
		printOK("", "current directory accepts staging files")
	}
	fmt.Println()

	fmt.Println("[ lock sidecars ]")
	locks := findLockSidecars(".")
	if len(locks) == 0 {
		printOK("", "no .lock files under the current directory")
	} else {
		for _, p := range locks {
			printInfo("", p)
		}
		fmt.Printf("\n  ~  %d lock sidecar(s) found. They persist after in-place\n", len(locks))
		fmt.Println("     replacements and are safe to delete while nothing is running.")
	}
	fmt.Println()

	fmt.Println("===================")
	if allOK {
		fmt.Println("✓  All checks passed. deckpatch is ready to use.")
		return nil
	}
	fmt.Fprintln(os.Stderr, "✗  One or more checks failed. See details above.")
	return fmt.Errorf("doctor found issues")
}

// findLockSidecars walks root and returns the relative paths of all
// <file>.pptx.lock sidecars left behind by in-place replacements.
func findLockSidecars(root string) []string {
	var found []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if filepath.Ext(d.Name()) == ".lock" {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			found = append(found, rel)
		}
		return nil
	})
	return found
}
