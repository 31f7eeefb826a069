//go:build windows

package pptx

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// publishFile moves the finished temporary archive to its final destination.
// The temp file is staged in the destination's directory, so the rename is
// same-device and atomic.
//
// On Windows the destination is frequently still held open — PowerPoint keeps
// presentations locked, and antivirus/indexers grab fresh files — so sharing
// violations get a short retry window before we give up. There is no copy
// fallback: a copy would open the destination for writing and a failure
// mid-copy would leave it truncated.
func publishFile(tmpPath, dest string) error {
	var lastErr error
	for i := 0; i < 15; i++ {
		if err := os.Rename(tmpPath, dest); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if !errors.Is(lastErr, windows.ERROR_SHARING_VIOLATION) &&
			!errors.Is(lastErr, windows.ERROR_ACCESS_DENIED) {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	return lastErr
}
