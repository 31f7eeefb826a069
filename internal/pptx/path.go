package pptx

import (
	"path"
	"strings"
)

// NormalizePath converts a raw archive or relationship path to the canonical
// form used everywhere in this package: forward slashes, no leading slash.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "/")
}

// ResolveTarget maps a relationship target string to a normalized package
// path. It is total over the three target shapes found in real packages:
//
//	../media/image1.png   — relative to the referencing part's directory
//	ppt/media/image1.png  — already rooted at the package root
//	media/image1.png      — implicitly relative to the ppt/ root
//
// partDir is the directory of the part whose .rels file produced the target,
// e.g. "ppt/slides".
func ResolveTarget(partDir, target string) string {
	t := NormalizePath(target)
	switch {
	case t == "":
		return ""
	case strings.HasPrefix(t, "../") || t == "..":
		return NormalizePath(path.Join(partDir, t))
	case t == "ppt" || strings.HasPrefix(t, "ppt/"):
		return t
	}
	return "ppt/" + t
}
