package cmd

import (
	"fmt"
	"strings"

	"github.com/deckpatch/deckpatch/internal/pptx"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file.pptx>",
	Short: "List the media entries of one presentation with size and hash",
	Long: `Print every image entry under ppt/media/ with its size and MD5 hash.
The hash column is the identifier to pass to 'deckpatch replace --target'.

Example:
  deckpatch scan deck.pptx`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	archivePath := args[0]
	if _, err := loadConfig(); err != nil {
		return err
	}

	entries, err := pptx.ListMedia(archivePath)
	if err != nil {
		return err
	}

	printSection(fmt.Sprintf("Media in %s", archivePath))
	if len(entries) == 0 {
		printSkip("", "no images found")
		return nil
	}

	fmt.Printf("%-4s %s %-12s %s\n", "No.", padDisplay("Filename", 25), "Size", "MD5")
	fmt.Println(strings.Repeat("-", 80))
	for i, e := range entries {
		fmt.Printf("%-4d %s %-12d %s\n", i+1, padDisplay(e.Name, 25), e.Size, e.MD5)
	}
	fmt.Println(strings.Repeat("-", 80))
	printInfo("", fmt.Sprintf("%d image(s) total", len(entries)))
	return nil
}
