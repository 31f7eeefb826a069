package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/gofrs/flock"
)

// BackupSuffix is appended to an archive's path when a pre-replacement copy
// is kept.
const BackupSuffix = ".backup"

// ReplaceOptions controls how Replace publishes its result.
type ReplaceOptions struct {
	// OutputPath, when non-empty, receives the rewritten archive and the
	// original is left untouched. Missing parent directories are created.
	OutputPath string
	// Backup keeps a one-time <archive>.backup sibling before an in-place
	// overwrite. Ignored when OutputPath is set.
	Backup bool
}

// ListMedia returns the identity of every image entry under ppt/media/ in
// the archive, in entry order.
func ListMedia(archivePath string) ([]MediaEntry, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s as a PPTX archive: %w", archivePath, err)
	}
	defer zr.Close()

	var entries []MediaEntry
	for _, f := range zr.File {
		name := NormalizePath(f.Name)
		if !isMediaImage(name) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MediaEntry{
			Path: name,
			Name: path.Base(name),
			Size: int64(len(data)),
			MD5:  BytesMD5(data),
		})
	}
	return entries, nil
}

// ScanArchive hashes every image entry in the archive and flags the ones the
// matcher selects. The archive is never mutated.
func ScanArchive(archivePath string, match Matcher) ([]MatchResult, error) {
	entries, err := ListMedia(archivePath)
	if err != nil {
		return nil, err
	}
	results := make([]MatchResult, 0, len(entries))
	for _, e := range entries {
		results = append(results, MatchResult{
			ArchivePath: archivePath,
			ImagePath:   e.Path,
			ImageName:   e.Name,
			Matched:     match(e),
		})
	}
	return results, nil
}

// ReplaceFile reads the replacement image from disk and substitutes it for
// every matching media entry in the archive. See Replace.
func ReplaceFile(archivePath string, match Matcher, replacementPath string, opts ReplaceOptions) ReplaceResult {
	replacement, err := os.ReadFile(replacementPath)
	if err != nil {
		return ReplaceResult{
			ArchivePath: archivePath,
			Message:     fmt.Sprintf("cannot read replacement image: %v", err),
		}
	}
	return Replace(archivePath, match, replacement, opts)
}

// Replace rewrites the archive with every matching media entry's payload
// substituted by replacement, byte for byte. The rewrite happens on a
// temporary file; the original archive is never opened for writing and stays
// intact on any failure. A zero-match run discards the temporary file and is
// reported as success with ReplacedCount=0.
func Replace(archivePath string, match Matcher, replacement []byte, opts ReplaceOptions) ReplaceResult {
	fail := func(format string, args ...any) ReplaceResult {
		return ReplaceResult{ArchivePath: archivePath, Message: fmt.Sprintf(format, args...)}
	}

	if _, err := os.Stat(archivePath); err != nil {
		return fail("archive not found: %v", err)
	}

	dest := archivePath
	if opts.OutputPath != "" {
		dest = opts.OutputPath
		if dir := filepath.Dir(dest); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fail("cannot create output directory: %v", err)
			}
		}
	}

	// In-place rewrites take a sidecar lock so two concurrent invocations
	// cannot interleave their temp-and-publish sequences on the same file.
	// The sidecar stays on disk after the run: unlinking a file others may
	// have already opened for flock lets two later invocations hold locks on
	// different inodes of the same path.
	if opts.OutputPath == "" {
		lockPath := archivePath + ".lock"
		lock := flock.New(lockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return fail("cannot acquire lock %s: %v", lockPath, err)
		}
		if !locked {
			return fail("another replacement is in progress (lock: %s)", lockPath)
		}
		defer func() {
			_ = lock.Unlock()
		}()
	}

	tmpPath, count, err := rewriteArchive(archivePath, filepath.Dir(dest), match, replacement)
	if tmpPath != "" {
		defer os.Remove(tmpPath)
	}
	if err != nil {
		return fail("rewrite failed: %v", err)
	}

	if count == 0 {
		return ReplaceResult{
			ArchivePath: archivePath,
			Success:     true,
			Message:     "no matching image",
		}
	}

	if opts.OutputPath == "" && opts.Backup {
		backupPath := archivePath + BackupSuffix
		// Never overwrite an earlier backup: the first one is the only copy
		// of the pristine archive.
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			if err := copyFile(archivePath, backupPath); err != nil {
				return fail("cannot create backup: %v", err)
			}
		}
	}

	if err := publishFile(tmpPath, dest); err != nil {
		return fail("cannot publish %s: %v", dest, err)
	}

	return ReplaceResult{
		ArchivePath:   archivePath,
		Success:       true,
		ReplacedCount: count,
		Message:       fmt.Sprintf("replaced %d image(s)", count),
	}
}

// rewriteArchive streams the source archive into a fresh temporary ZIP,
// entry by entry in original order. Untouched entries are copied raw,
// preserving their compressed bytes; matching media entries are re-written
// with the replacement payload under the same path and extension.
//
// The temp file is staged in stageDir, the destination's own directory, so
// the final rename never crosses filesystems and stays atomic. os.TempDir
// would break that: on most Linux systems /tmp is a tmpfs on a different
// device than the archive.
func rewriteArchive(src, stageDir string, match Matcher, replacement []byte) (tmpPath string, count int, err error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return "", 0, fmt.Errorf("cannot open %s as a PPTX archive: %w", src, err)
	}
	defer zr.Close()

	tmp, err := os.CreateTemp(stageDir, "deckpatch-*.tmp")
	if err != nil {
		return "", 0, fmt.Errorf("cannot create temp archive: %w", err)
	}
	tmpPath = tmp.Name()

	zw := zip.NewWriter(tmp)
	for _, f := range zr.File {
		name := NormalizePath(f.Name)
		if isMediaImage(name) {
			data, err := readZipFile(f)
			if err != nil {
				closeDiscard(zw, tmp)
				return tmpPath, 0, err
			}
			entry := MediaEntry{
				Path: name,
				Name: path.Base(name),
				Size: int64(len(data)),
				MD5:  BytesMD5(data),
			}
			if match(entry) {
				if err := writeReplaced(zw, f, replacement); err != nil {
					closeDiscard(zw, tmp)
					return tmpPath, 0, err
				}
				count++
				continue
			}
		}
		if err := zw.Copy(f); err != nil {
			closeDiscard(zw, tmp)
			return tmpPath, 0, fmt.Errorf("cannot copy entry %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return tmpPath, 0, fmt.Errorf("cannot finalize temp archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return tmpPath, 0, fmt.Errorf("cannot close temp archive: %w", err)
	}
	return tmpPath, count, nil
}

// writeReplaced writes one entry with the original header metadata but the
// replacement payload. Path and extension stay unchanged even if the
// replacement's true format differs; format compatibility is the caller's
// responsibility.
func writeReplaced(zw *zip.Writer, f *zip.File, replacement []byte) error {
	header := f.FileHeader
	header.CRC32 = 0
	header.CompressedSize64 = 0
	header.UncompressedSize64 = 0

	w, err := zw.CreateHeader(&header)
	if err != nil {
		return fmt.Errorf("cannot create entry %s: %w", f.Name, err)
	}
	if _, err := w.Write(replacement); err != nil {
		return fmt.Errorf("cannot write entry %s: %w", f.Name, err)
	}
	return nil
}

func closeDiscard(zw *zip.Writer, tmp *os.File) {
	_ = zw.Close()
	_ = tmp.Close()
}

// copyFile copies src to dst, preserving permissions.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
