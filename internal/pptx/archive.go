package pptx

import (
	"archive/zip"
	"fmt"
	"io"
)

// archive indexes an open ZIP reader by normalized entry path so parts can be
// looked up without rescanning the central directory.
type archive struct {
	entries []*zip.File
	byPath  map[string]*zip.File
}

func newArchive(zr *zip.Reader) *archive {
	a := &archive{
		entries: zr.File,
		byPath:  make(map[string]*zip.File, len(zr.File)),
	}
	for _, f := range zr.File {
		a.byPath[NormalizePath(f.Name)] = f
	}
	return a
}

// read returns the full contents of the entry at the normalized path.
func (a *archive) read(name string) ([]byte, error) {
	f, ok := a.byPath[name]
	if !ok {
		return nil, fmt.Errorf("entry %s not found in archive", name)
	}
	return readZipFile(f)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("cannot read entry %s: %w", f.Name, err)
	}
	return data, nil
}
