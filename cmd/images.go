package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deckpatch/deckpatch/internal/pptx"
	"github.com/spf13/cobra"
)

var (
	imagesVerbose  bool
	imagesJSONPath string
)

var imagesCmd = &cobra.Command{
	Use:   "images <file.pptx>",
	Short: "List embedded images with recovered names and slide usage",
	Long: `Build the image inventory of one presentation: every image under
ppt/media/, which slides use it, and — when PowerPoint kept them — the
author's original filename, shape name and alt text.

Slide number 0 means the image is only referenced from a slide layout or
master.

Example:
  deckpatch images deck.pptx
  deckpatch images deck.pptx -v --json images.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImages,
}

func init() {
	imagesCmd.Flags().BoolVarP(&imagesVerbose, "verbose", "v", false, "Also show size and MD5 hash")
	imagesCmd.Flags().StringVar(&imagesJSONPath, "json", "", "Export the inventory to a JSON file")
	rootCmd.AddCommand(imagesCmd)
}

func runImages(_ *cobra.Command, args []string) error {
	archivePath := args[0]
	if _, err := loadConfig(); err != nil {
		return err
	}

	records, warnings, err := pptx.ListImages(archivePath)
	if err != nil {
		return err
	}

	printSection(fmt.Sprintf("Images in %s", archivePath))
	for _, w := range warnings {
		printWarn("", w)
	}

	if len(records) == 0 {
		printSkip("", "no images found")
		return nil
	}

	printImageTable(records, imagesVerbose)
	printImageSummary(records)

	if imagesJSONPath != "" {
		if err := pptx.WriteJSONFile(records, imagesJSONPath); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("inventory exported to %s", imagesJSONPath))
	}
	return nil
}

func printImageTable(records []*pptx.ImageRecord, verbose bool) {
	const (
		nameWidth    = 25
		displayWidth = 35
	)

	if verbose {
		fmt.Printf("%-4s %s %s %-10s %-15s %s\n", "No.",
			padDisplay("Internal Name", nameWidth),
			padDisplay("Name / Alt Text", displayWidth),
			"Size", "Slides", "MD5")
	} else {
		fmt.Printf("%-4s %s %s %s\n", "No.",
			padDisplay("Internal Name", nameWidth),
			padDisplay("Name / Alt Text", displayWidth),
			"Slides")
	}
	fmt.Println(strings.Repeat("-", 90))

	for i, r := range records {
		display := r.DisplayName()
		if display == "" {
			display = "(none)"
		}
		display = truncateDisplay(display, displayWidth)

		if verbose {
			fmt.Printf("%-4d %s %s %-10d %-15s %s\n", i+1,
				padDisplay(r.InternalName, nameWidth),
				padDisplay(display, displayWidth),
				r.Size, slidesLabel(r), r.MD5Hash)
		} else {
			fmt.Printf("%-4d %s %s %s\n", i+1,
				padDisplay(r.InternalName, nameWidth),
				padDisplay(display, displayWidth),
				slidesLabel(r))
		}
	}
	fmt.Println()
}

func printImageSummary(records []*pptx.ImageRecord) {
	var withOriginal, withShape, withDesc, unused int
	for _, r := range records {
		if r.OriginalName != "" {
			withOriginal++
		}
		if r.ShapeName != "" {
			withShape++
		}
		if r.Description != "" {
			withDesc++
		}
		if !r.Used() {
			unused++
		}
	}

	total := len(records)
	printInfo("", fmt.Sprintf("%d image(s) total", total))
	if withOriginal > 0 {
		printInfo("", fmt.Sprintf("original filename recovered: %d/%d", withOriginal, total))
	} else {
		printInfo("", "no original filenames recovered (PowerPoint may have discarded them)")
	}
	printInfo("", fmt.Sprintf("shape name: %d/%d, alt text: %d/%d", withShape, total, withDesc, total))
	if unused > 0 {
		printInfo("", fmt.Sprintf("unreferenced images: %d", unused))
	}
}

// slidesLabel renders an image's slide usage, e.g. "1,3,7". Slide 0 stands
// for layout/master-only usage.
func slidesLabel(r *pptx.ImageRecord) string {
	slides := r.Slides()
	if len(slides) == 0 {
		return "(unused)"
	}
	parts := make([]string, len(slides))
	for i, n := range slides {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}
