package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/deckpatch/deckpatch/internal/pptx"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Print the identifiers of an image file for use with replace",
	Long: `Compute the three identifiers — filename, size and MD5 hash — that
'deckpatch replace' can match on, for a standalone image file.

Example:
  deckpatch analyze old_logo.png`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, args []string) error {
	imagePath := args[0]

	info, err := os.Stat(imagePath)
	if err != nil {
		return fmt.Errorf("cannot analyze %s: %w", imagePath, err)
	}
	hash, err := pptx.FileMD5(imagePath)
	if err != nil {
		return err
	}

	printSection("Image Analysis")
	fmt.Printf("Filename: %s\n", filepath.Base(imagePath))
	fmt.Printf("Size:     %d bytes\n", info.Size())
	fmt.Printf("MD5:      %s\n", hash)

	fmt.Println("\nUsage:")
	fmt.Printf("  deckpatch replace --match-by hash     --target %s ...\n", hash)
	fmt.Printf("  deckpatch replace --match-by filename --target %s ...\n", filepath.Base(imagePath))
	fmt.Printf("  deckpatch replace --match-by size     --target %d ...\n", info.Size())
	return nil
}
