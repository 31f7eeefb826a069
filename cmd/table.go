package cmd

import (
	"strings"

	"golang.org/x/text/width"
)

// Shape names and alt text in real decks are frequently CJK, where one rune
// occupies two terminal cells. Plain %-*s padding misaligns those rows, so
// column padding is computed from display width instead of rune count.

// displayWidth returns the number of terminal cells s occupies.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

// padDisplay right-pads s with spaces to the given display width.
func padDisplay(s string, cells int) string {
	gap := cells - displayWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// truncateDisplay shortens s to at most cells display cells, appending "..."
// when anything was cut.
func truncateDisplay(s string, cells int) string {
	if displayWidth(s) <= cells {
		return s
	}
	budget := cells - 3
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := 1
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			rw = 2
		}
		if w+rw > budget {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "..."
}
