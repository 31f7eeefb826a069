//go:build !windows

package pptx

import "os"

// publishFile moves the finished temporary archive onto its destination. The
// temp file is staged in the destination's directory, so the rename is a
// same-device atomic replace. There is deliberately no copy fallback: a copy
// would open the destination for writing and a failure mid-copy would leave
// it truncated.
func publishFile(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}
