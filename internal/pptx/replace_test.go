package pptx_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deckpatch/deckpatch/internal/pptx"
)

func TestScanArchive_Matchers(t *testing.T) {
	deck, img1, _ := standardDeck(t, t.TempDir())

	for _, tc := range []struct {
		name  string
		match pptx.Matcher
		want  map[string]bool
	}{
		{"hash", pptx.MatchHash(pptx.BytesMD5(img1)),
			map[string]bool{"image1.png": true, "image2.jpeg": false}},
		{"filename", pptx.MatchFilename("image2.jpeg"),
			map[string]bool{"image1.png": false, "image2.jpeg": true}},
		{"size", pptx.MatchSize(int64(len(img1))),
			map[string]bool{"image1.png": true, "image2.jpeg": false}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			results, err := pptx.ScanArchive(deck, tc.match)
			if err != nil {
				t.Fatalf("ScanArchive: %v", err)
			}
			if len(results) != len(tc.want) {
				t.Fatalf("want %d results, got %d", len(tc.want), len(results))
			}
			for _, r := range results {
				if r.Matched != tc.want[r.ImageName] {
					t.Errorf("%s: matched=%v, want %v", r.ImageName, r.Matched, tc.want[r.ImageName])
				}
			}
		})
	}
}

func TestNewMatcher(t *testing.T) {
	if _, err := pptx.NewMatcher("size", "not-a-number"); err == nil {
		t.Error("want error for a non-numeric size")
	}
	if _, err := pptx.NewMatcher("fuzzy", "x"); err == nil {
		t.Error("want error for an unknown mode")
	}
	m, err := pptx.NewMatcher("hash", "ABCDEF")
	if err != nil {
		t.Fatal(err)
	}
	if !m(pptx.MediaEntry{MD5: "abcdef"}) {
		t.Error("hash matching must be case-insensitive")
	}
}

func TestReplace_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	deck, img1, img2 := standardDeck(t, dir)
	before := readDeck(t, deck)
	newBytes := []byte("brand-new-image-payload")

	res := pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(img1)), newBytes, pptx.ReplaceOptions{})
	if !res.Success {
		t.Fatalf("replace failed: %s", res.Message)
	}
	if res.ReplacedCount != 1 {
		t.Fatalf("want 1 replacement, got %d", res.ReplacedCount)
	}

	after := readDeck(t, deck)
	if len(after) != len(before) {
		t.Fatalf("entry count changed: %d → %d", len(before), len(after))
	}
	if !bytes.Equal(after["ppt/media/image1.png"], newBytes) {
		t.Error("target entry does not carry the replacement bytes")
	}
	for name, data := range before {
		if name == "ppt/media/image1.png" {
			continue
		}
		if !bytes.Equal(after[name], data) {
			t.Errorf("entry %s changed", name)
		}
	}
	if !bytes.Equal(after["ppt/media/image2.jpeg"], img2) {
		t.Error("unrelated media entry changed")
	}
}

func TestReplace_ZeroMatchLeavesArchiveUntouched(t *testing.T) {
	dir := t.TempDir()
	deck, _, _ := standardDeck(t, dir)

	beforeHash, err := pptx.FileMD5(deck)
	if err != nil {
		t.Fatal(err)
	}

	res := pptx.Replace(deck, pptx.MatchHash("0123456789abcdef0123456789abcdef"),
		[]byte("unused"), pptx.ReplaceOptions{Backup: true})
	if !res.Success {
		t.Fatalf("zero matches must be success: %s", res.Message)
	}
	if res.ReplacedCount != 0 {
		t.Fatalf("want 0 replacements, got %d", res.ReplacedCount)
	}

	afterHash, err := pptx.FileMD5(deck)
	if err != nil {
		t.Fatal(err)
	}
	if beforeHash != afterHash {
		t.Error("archive changed despite zero matches")
	}
	if _, err := os.Stat(deck + pptx.BackupSuffix); !os.IsNotExist(err) {
		t.Error("no backup may be created on a zero-match run")
	}
}

func TestReplace_BackupCreatedOnceAndNeverOverwritten(t *testing.T) {
	dir := t.TempDir()
	deck, img1, _ := standardDeck(t, dir)

	original, err := os.ReadFile(deck)
	if err != nil {
		t.Fatal(err)
	}

	second := []byte("second-generation-payload")
	res := pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(img1)), second, pptx.ReplaceOptions{Backup: true})
	if !res.Success || res.ReplacedCount != 1 {
		t.Fatalf("first replace: %+v", res)
	}

	backupPath := deck + pptx.BackupSuffix
	backup, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("backup missing: %v", err)
	}
	if !bytes.Equal(backup, original) {
		t.Error("backup must equal the pre-first-call archive")
	}

	third := []byte("third-generation-payload")
	res = pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(second)), third, pptx.ReplaceOptions{Backup: true})
	if !res.Success || res.ReplacedCount != 1 {
		t.Fatalf("second replace: %+v", res)
	}

	backupAfter, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(backupAfter, original) {
		t.Error("second call altered the backup")
	}
}

func TestReplace_AlternateOutputLeavesOriginalAlone(t *testing.T) {
	dir := t.TempDir()
	deck, img1, _ := standardDeck(t, dir)

	original, err := os.ReadFile(deck)
	if err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "nested", "deep", "patched.pptx")
	res := pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(img1)), []byte("new"),
		pptx.ReplaceOptions{OutputPath: out, Backup: true})
	if !res.Success || res.ReplacedCount != 1 {
		t.Fatalf("replace: %+v", res)
	}

	after, err := os.ReadFile(deck)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(after, original) {
		t.Error("original archive changed in alternate-output mode")
	}
	if _, err := os.Stat(deck + pptx.BackupSuffix); !os.IsNotExist(err) {
		t.Error("no backup may be created in alternate-output mode")
	}

	entries := readDeck(t, out)
	if !bytes.Equal(entries["ppt/media/image1.png"], []byte("new")) {
		t.Error("output archive does not carry the replacement")
	}
}

func TestReplace_InPlacePublishIsFreshFile(t *testing.T) {
	dir := t.TempDir()
	deck, img1, _ := standardDeck(t, dir)

	before, err := os.Stat(deck)
	if err != nil {
		t.Fatal(err)
	}

	res := pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(img1)), []byte("new"), pptx.ReplaceOptions{})
	if !res.Success || res.ReplacedCount != 1 {
		t.Fatalf("replace: %+v", res)
	}

	after, err := os.Stat(deck)
	if err != nil {
		t.Fatal(err)
	}
	// The rewritten archive must be renamed onto the path. Rewriting the
	// original file in place would keep its identity, and a crash mid-write
	// would leave it truncated.
	if os.SameFile(before, after) {
		t.Error("archive kept its file identity; publish must rename a fresh file onto it")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "deckpatch-") {
			t.Errorf("staging file left behind: %s", e.Name())
		}
	}
}

func TestReplace_LockSidecarPersistsAndDoesNotBlock(t *testing.T) {
	dir := t.TempDir()
	deck, img1, _ := standardDeck(t, dir)

	second := []byte("second-generation-payload")
	res := pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(img1)), second, pptx.ReplaceOptions{})
	if !res.Success || res.ReplacedCount != 1 {
		t.Fatalf("first replace: %+v", res)
	}

	// The sidecar outlives the run; unlinking it would let two later
	// invocations lock different inodes of the same path.
	lockPath := deck + ".lock"
	if _, err := os.Stat(lockPath); err != nil {
		t.Fatalf("lock sidecar missing after run: %v", err)
	}

	res = pptx.Replace(deck, pptx.MatchHash(pptx.BytesMD5(second)), []byte("third"), pptx.ReplaceOptions{})
	if !res.Success || res.ReplacedCount != 1 {
		t.Fatalf("leftover sidecar must not block a later run: %+v", res)
	}
}

func TestReplace_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	deck, img1, _ := standardDeck(t, dir)

	res := pptx.Replace(filepath.Join(dir, "no-such.pptx"),
		pptx.MatchHash("00"), []byte("x"), pptx.ReplaceOptions{})
	if res.Success {
		t.Error("missing archive must fail")
	}

	res = pptx.ReplaceFile(deck, pptx.MatchHash(pptx.BytesMD5(img1)),
		filepath.Join(dir, "no-such.png"), pptx.ReplaceOptions{})
	if res.Success {
		t.Error("missing replacement image must fail")
	}
	if res.ReplacedCount != 0 {
		t.Error("failed replace must report zero replacements")
	}
}

func TestListMedia(t *testing.T) {
	deck, img1, _ := standardDeck(t, t.TempDir())

	entries, err := pptx.ListMedia(deck)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 media entries, got %d", len(entries))
	}
	if entries[0].Path != "ppt/media/image1.png" || entries[0].Name != "image1.png" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].MD5 != pptx.BytesMD5(img1) || entries[0].Size != int64(len(img1)) {
		t.Errorf("identity mismatch: %+v", entries[0])
	}
}
