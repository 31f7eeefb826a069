// Package pptx inspects and rewrites images embedded in PowerPoint (PPTX)
// archives. A PPTX file is a ZIP container of XML parts; images live under
// ppt/media/ and are referenced from slides through per-part relationship
// (.rels) files.
package pptx

import (
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
)

// mediaDir is the package directory that holds embedded image payloads.
const mediaDir = "ppt/media/"

// imageExtensions are the media extensions treated as images. Anything else
// under ppt/media/ (audio, video) is ignored.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".tiff": true, ".tif": true, ".wmf": true, ".emf": true, ".svg": true,
	".wdp": true,
}

// IsImagePath reports whether the archive path has a recognized image
// extension (case-insensitive).
func IsImagePath(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// RegisterImageExtensions adds extra extensions to the recognized set, with
// or without a leading dot. Call before any scan starts; the set is not
// safe for concurrent mutation.
func RegisterImageExtensions(exts ...string) {
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if ext == "." {
			continue
		}
		imageExtensions[ext] = true
	}
}

// isMediaImage reports whether a normalized archive path is an image entry
// under ppt/media/.
func isMediaImage(name string) bool {
	return strings.HasPrefix(name, mediaDir) && IsImagePath(name)
}

// ImageRecord describes one image entry in a PPTX archive, keyed by its
// internal path. Slide usage and shape metadata are merged in as the slide
// graph is walked; for the string fields the first non-empty value wins and
// later candidates never override it.
type ImageRecord struct {
	InternalPath string // normalized path inside the archive, e.g. ppt/media/image3.png
	InternalName string // basename of InternalPath
	OriginalName string // author's filename, when a shape name looks like one
	ShapeName    string // display name of the first referencing shape
	Description  string // alt text of the first referencing shape
	Size         int64
	MD5Hash      string // hex digest of the entry bytes

	usedIn map[int]bool // slide numbers; 0 = layout/master only
}

// AddSlide records that the image is used on slide n. Slide number 0 is
// reserved for layout and master parts, which carry no ordering.
func (r *ImageRecord) AddSlide(n int) {
	if r.usedIn == nil {
		r.usedIn = make(map[int]bool)
	}
	r.usedIn[n] = true
}

// Slides returns the slide numbers the image is used on, sorted ascending.
func (r *ImageRecord) Slides() []int {
	if len(r.usedIn) == 0 {
		return nil
	}
	out := make([]int, 0, len(r.usedIn))
	for n := range r.usedIn {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Used reports whether the image is referenced by any slide, layout or master.
func (r *ImageRecord) Used() bool {
	return len(r.usedIn) > 0
}

// DisplayName returns the most meaningful name available for the image:
// original filename, then shape name, then alt text.
func (r *ImageRecord) DisplayName() string {
	switch {
	case r.OriginalName != "":
		return r.OriginalName
	case r.ShapeName != "":
		return r.ShapeName
	case r.Description != "":
		return r.Description
	}
	return ""
}

// mergeShape applies the first-non-empty-wins merge rules for one referencing
// shape. A shape name is adopted as the original filename only when it ends
// in a recognized image extension.
func (r *ImageRecord) mergeShape(slideNumber int, shapeName, description string) {
	r.AddSlide(slideNumber)
	if r.OriginalName == "" && IsImagePath(shapeName) {
		r.OriginalName = shapeName
	}
	if r.ShapeName == "" {
		r.ShapeName = shapeName
	}
	if r.Description == "" {
		r.Description = description
	}
}

// MediaEntry is the identity of one image payload inside an archive, carrying
// everything the match predicates can key on.
type MediaEntry struct {
	Path string // normalized archive path
	Name string // basename
	Size int64
	MD5  string // hex digest
}

// MatchResult is produced per scanned media entry per archive.
type MatchResult struct {
	ArchivePath string
	ImagePath   string
	ImageName   string
	Matched     bool
}

// ReplaceResult is produced per archive processed by Replace. Success is
// false only on unrecoverable I/O or format failure; a zero-match run is
// reported as Success=true with ReplacedCount=0.
type ReplaceResult struct {
	ArchivePath   string
	Success       bool
	ReplacedCount int
	Message       string
}

// Matcher decides whether a media entry is the replacement target.
type Matcher func(e MediaEntry) bool

// MatchHash matches entries whose MD5 digest equals the given hex string
// (case-insensitive).
func MatchHash(hexDigest string) Matcher {
	return func(e MediaEntry) bool { return strings.EqualFold(e.MD5, hexDigest) }
}

// MatchFilename matches entries whose basename equals name exactly.
func MatchFilename(name string) Matcher {
	return func(e MediaEntry) bool { return e.Name == name }
}

// MatchSize matches entries whose payload is exactly size bytes.
func MatchSize(size int64) Matcher {
	return func(e MediaEntry) bool { return e.Size == size }
}

// Match modes accepted by NewMatcher.
const (
	MatchByHash     = "hash"
	MatchByFilename = "filename"
	MatchBySize     = "size"
)

// NewMatcher builds a Matcher from a mode name and its target identifier.
func NewMatcher(mode, target string) (Matcher, error) {
	switch mode {
	case MatchByHash:
		return MatchHash(target), nil
	case MatchByFilename:
		return MatchFilename(target), nil
	case MatchBySize:
		n, err := strconv.ParseInt(target, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size %q: %w", target, err)
		}
		return MatchSize(n), nil
	}
	return nil, fmt.Errorf("unknown match mode %q (want hash, filename or size)", mode)
}
