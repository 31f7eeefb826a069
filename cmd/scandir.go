package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deckpatch/deckpatch/internal/pptx"
	"github.com/spf13/cobra"
)

var scanDirNoRecursive bool

var scanDirCmd = &cobra.Command{
	Use:   "scan-dir <directory>",
	Short: "Analyze the unique images across every PPTX in a directory",
	Long: `Scan every presentation under a directory and group their media entries
by content hash. Images shared across several files show up once, with the
list of presentations that embed them — useful for finding the logo that
needs replacing everywhere.

Example:
  deckpatch scan-dir ./decks
  deckpatch scan-dir ./decks --no-recursive`,
	Args: cobra.ExactArgs(1),
	RunE: runScanDir,
}

func init() {
	scanDirCmd.Flags().BoolVarP(&scanDirNoRecursive, "no-recursive", "R", false, "Do not descend into subdirectories")
	rootCmd.AddCommand(scanDirCmd)
}

// uniqueImage aggregates one distinct payload (by hash) across archives.
type uniqueImage struct {
	entry    pptx.MediaEntry
	archives []string
}

func runScanDir(_ *cobra.Command, args []string) error {
	root := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	recursive := cfg.Recursive && !scanDirNoRecursive

	paths, err := pptx.FindArchives(root, recursive)
	if err != nil {
		return err
	}

	byHash := make(map[string]*uniqueImage)
	for _, p := range paths {
		entries, err := pptx.ListMedia(p)
		if err != nil {
			printWarn(p, fmt.Sprintf("skipped: %v", err))
			continue
		}
		for _, e := range entries {
			u, ok := byHash[e.MD5]
			if !ok {
				u = &uniqueImage{entry: e}
				byHash[e.MD5] = u
			}
			u.archives = append(u.archives, p)
		}
	}

	printSection(fmt.Sprintf("Unique images across %d archive(s) in %s", len(paths), root))
	if len(byHash) == 0 {
		printSkip("", "no images found")
		return nil
	}

	// Most widely used first; hash as tiebreaker for stable output.
	uniques := make([]*uniqueImage, 0, len(byHash))
	for _, u := range byHash {
		uniques = append(uniques, u)
	}
	sort.Slice(uniques, func(i, j int) bool {
		if len(uniques[i].archives) != len(uniques[j].archives) {
			return len(uniques[i].archives) > len(uniques[j].archives)
		}
		return uniques[i].entry.MD5 < uniques[j].entry.MD5
	})

	fmt.Printf("%-34s %s %-10s %s\n", "MD5", padDisplay("Filename", 20), "Size", "Used In")
	fmt.Println(strings.Repeat("=", 85))
	for _, u := range uniques {
		fmt.Printf("%-34s %s %-10d %d file(s)\n",
			u.entry.MD5, padDisplay(u.entry.Name, 20), u.entry.Size, len(u.archives))
	}
	fmt.Println(strings.Repeat("=", 85))
	printInfo("", fmt.Sprintf("%d unique image(s)", len(uniques)))

	// Shared images get the per-file breakdown.
	for _, u := range uniques {
		if len(u.archives) < 2 {
			continue
		}
		fmt.Printf("\n  %s (%s, %d bytes) appears in:\n", u.entry.Name, u.entry.MD5, u.entry.Size)
		for _, p := range u.archives {
			fmt.Printf("    - %s\n", p)
		}
	}
	return nil
}
