package pptx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// lockFilePrefix marks Office lock-file artifacts left next to open
// presentations; they are never real archives.
const lockFilePrefix = "~$"

// Progress is invoked after each archive of a batch completes, so callers can
// render progress without blocking the batch itself.
type Progress func(current, total int, archivePath string)

// BatchOptions configures BatchScan and BatchReplace.
type BatchOptions struct {
	Recursive bool
	// OutputRoot, when non-empty, receives rewritten archives mirroring each
	// archive's path relative to the scanned root. Empty means in-place.
	OutputRoot string
	Backup     bool
	// Workers bounds scan parallelism; 0 means one worker per CPU.
	Workers int
}

// ArchiveMatches is the per-archive outcome of a batch scan.
type ArchiveMatches struct {
	ArchivePath string
	Matches     int
	Err         error // unreadable archive; counted as zero matches
}

// FindArchives lists candidate PPTX files under root, sorted by path. The
// extension test is case-insensitive and Office ~$ lock artifacts are
// excluded.
func FindArchives(root string, recursive bool) ([]string, error) {
	var out []string

	if recursive {
		err := filepath.WalkDir(root, func(p string, d os.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if !d.IsDir() && isArchiveName(d.Name()) {
				out = append(out, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("cannot walk %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() && isArchiveName(e.Name()) {
				out = append(out, filepath.Join(root, e.Name()))
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

func isArchiveName(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pptx") &&
		!strings.HasPrefix(name, lockFilePrefix)
}

// BatchScan scans every candidate archive under root for entries the matcher
// selects. Scans are read-only and independent, so they run concurrently up
// to the worker bound; results come back in path order regardless of
// completion order.
func BatchScan(ctx context.Context, root string, match Matcher, opts BatchOptions) ([]ArchiveMatches, error) {
	paths, err := FindArchives(root, opts.Recursive)
	if err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]ArchiveMatches, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = scanOne(p, match)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanOne(archivePath string, match Matcher) ArchiveMatches {
	out := ArchiveMatches{ArchivePath: archivePath}
	matches, err := ScanArchive(archivePath, match)
	if err != nil {
		out.Err = err
		return out
	}
	for _, m := range matches {
		if m.Matched {
			out.Matches++
		}
	}
	return out
}

// BatchReplace runs the two-phase scan-then-replace workflow over root. Only
// archives the scan flagged with at least one match are ever opened for
// writing, but every scanned archive gets a result: zero-match archives are
// reported as success with no replacements, unreadable ones as failures.
// The replacement bytes are read once and reused. Rewrites run sequentially
// and one archive's failure never aborts the rest; progress counts rewrites,
// not scans. Cancellation via ctx takes effect between archives only — an
// in-flight rewrite always runs to completion or failure first.
func BatchReplace(ctx context.Context, root string, match Matcher, replacementPath string, opts BatchOptions, progress Progress) ([]ReplaceResult, error) {
	replacement, err := os.ReadFile(replacementPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read replacement image: %w", err)
	}

	scans, err := BatchScan(ctx, root, match, opts)
	if err != nil {
		return nil, err
	}

	var targets int
	for _, s := range scans {
		if s.Err == nil && s.Matches > 0 {
			targets++
		}
	}

	results := make([]ReplaceResult, 0, len(scans))
	done := 0
	for _, s := range scans {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		switch {
		case s.Err != nil:
			results = append(results, ReplaceResult{
				ArchivePath: s.ArchivePath,
				Message:     fmt.Sprintf("scan failed: %v", s.Err),
			})
			continue
		case s.Matches == 0:
			results = append(results, ReplaceResult{
				ArchivePath: s.ArchivePath,
				Success:     true,
				Message:     "no matching image",
			})
			continue
		}

		var outputPath string
		if opts.OutputRoot != "" {
			rel, err := filepath.Rel(root, s.ArchivePath)
			if err != nil {
				rel = filepath.Base(s.ArchivePath)
			}
			outputPath = filepath.Join(opts.OutputRoot, rel)
		}

		results = append(results, Replace(s.ArchivePath, match, replacement, ReplaceOptions{
			OutputPath: outputPath,
			Backup:     opts.Backup,
		}))

		done++
		if progress != nil {
			progress(done, targets, s.ArchivePath)
		}
	}
	return results, nil
}
