package pptx_test

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Relationship types as they appear in real OOXML packages.
const (
	relTypeSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relTypeLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTypeImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

type zipEntry struct {
	name string
	data []byte
}

// writeDeck writes a ZIP archive with the given entries, in order, and
// returns its path.
func writeDeck(t *testing.T, dir, name string, entries []zipEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

// presentationXML declares slides in the given r:id order.
func presentationXML(rids ...string) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	sb.WriteString(`<p:sldIdLst>`)
	for i, rid := range rids {
		fmt.Fprintf(&sb, `<p:sldId id="%d" r:id="%s"/>`, 256+i, rid)
	}
	sb.WriteString(`</p:sldIdLst></p:presentation>`)
	return []byte(sb.String())
}

type rel struct {
	id, typ, target string
}

func relsXML(rels ...rel) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&sb, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	sb.WriteString(`</Relationships>`)
	return []byte(sb.String())
}

type pic struct {
	name, descr, embed string
}

// slideXML builds a minimal slide (or layout/master) part with one picture
// shape per pic.
func slideXML(pics ...pic) []byte {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString(`<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`)
	sb.WriteString(`<p:cSld><p:spTree>`)
	for i, p := range pics {
		fmt.Fprintf(&sb, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="%s" descr="%s"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr>`, i+2, p.name, p.descr)
		fmt.Fprintf(&sb, `<p:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`, p.embed)
		sb.WriteString(`<p:spPr/></p:pic>`)
	}
	sb.WriteString(`</p:spTree></p:cSld></p:sld>`)
	return []byte(sb.String())
}

func writeBytes(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

// readDeck returns every entry of a ZIP archive keyed by its path.
func readDeck(t *testing.T, path string) map[string][]byte {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer zr.Close()

	out := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		out[f.Name] = data
	}
	return out
}
