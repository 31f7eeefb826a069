package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// presentationPart is the main part that declares slide order.
const presentationPart = "ppt/presentation.xml"

// ListImages builds the image inventory of a PPTX archive: every image entry
// under ppt/media/, annotated with the slides that use it and best-effort
// shape metadata recovered from the slide XML. Records are sorted by internal
// path.
//
// The returned warnings describe non-fatal degradations (for example a
// malformed presentation part, which loses slide ordering but not the media
// listing). Only failures to open the archive itself are returned as errors.
func ListImages(archivePath string) (records []*ImageRecord, warnings []string, err error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s as a PPTX archive: %w", archivePath, err)
	}
	defer zr.Close()

	a := newArchive(&zr.Reader)
	byPath := make(map[string]*ImageRecord)

	// Seed one record per media image entry.
	for _, f := range a.entries {
		name := NormalizePath(f.Name)
		if !isMediaImage(name) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping unreadable entry %s: %v", name, err))
			continue
		}
		byPath[name] = &ImageRecord{
			InternalPath: name,
			InternalName: path.Base(name),
			Size:         int64(len(data)),
			MD5Hash:      BytesMD5(data),
		}
	}

	// Walk slides in the order the presentation declares them.
	order, orderErr := slideOrder(a)
	if orderErr != nil {
		warnings = append(warnings, fmt.Sprintf("cannot resolve slide order: %v", orderErr))
	}
	for i, slidePath := range order {
		collectPartImages(a, slidePath, i+1, byPath)
	}

	// Layouts and masters carry no ordering; they count as slide 0.
	for _, f := range a.entries {
		name := NormalizePath(f.Name)
		if !isLayoutOrMasterPart(name) {
			continue
		}
		collectPartImages(a, name, 0, byPath)
	}

	records = make([]*ImageRecord, 0, len(byPath))
	for _, r := range byPath {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].InternalPath < records[j].InternalPath
	})
	return records, warnings, nil
}

// slideOrder resolves the authoritative 1-based slide sequence: the rId order
// of sldIdLst in the presentation part, mapped to part paths through the
// presentation's own .rels file.
func slideOrder(a *archive) ([]string, error) {
	data, err := a.read(presentationPart)
	if err != nil {
		return nil, err
	}

	rids, err := slideIDOrder(data)
	if err != nil {
		return nil, err
	}

	ridToPath := relMap(a, partRelsPath(presentationPart), isSlideRelType)
	partDir, _ := splitPartPath(presentationPart)

	var order []string
	for _, rid := range rids {
		if target, ok := ridToPath[rid]; ok {
			order = append(order, ResolveTarget(partDir, target))
		}
	}
	return order, nil
}

// slideIDOrder extracts the r:id sequence from the sldIdLst element. Each
// sldId carries both its own numeric id attribute and the relationship id;
// only the latter, namespaced attribute identifies the slide part.
func slideIDOrder(presXML []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(presXML))

	var rids []string
	inList := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed presentation part: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "sldIdLst":
				inList = true
			case "sldId":
				if !inList {
					continue
				}
				for _, attr := range el.Attr {
					if attr.Name.Local == "id" && attr.Name.Space == relAttrNS {
						rids = append(rids, attr.Value)
					}
				}
			}
		case xml.EndElement:
			if el.Name.Local == "sldIdLst" {
				inList = false
			}
		}
	}
	return rids, nil
}

// isLayoutOrMasterPart matches slideLayout*.xml and slideMaster*.xml parts,
// skipping their .rels siblings.
func isLayoutOrMasterPart(name string) bool {
	if !strings.HasSuffix(name, ".xml") || strings.Contains(name, "_rels") {
		return false
	}
	return strings.Contains(name, "slideLayout") || strings.Contains(name, "slideMaster")
}

// picXML captures the two things we need from a picture shape: its
// non-visual properties (display name, alt text) and the blip's embedded
// relationship id.
type picXML struct {
	NvPicPr struct {
		CNvPr struct {
			Name  string `xml:"name,attr"`
			Descr string `xml:"descr,attr"`
		} `xml:"cNvPr"`
	} `xml:"nvPicPr"`
	BlipFill struct {
		Blip struct {
			Embed string `xml:"embed,attr"`
		} `xml:"blip"`
	} `xml:"blipFill"`
}

// collectPartImages parses one slide, layout or master part and merges every
// picture reference it finds into the inventory. All failures here are
// per-part: a malformed part or missing .rels file is skipped without
// touching the rest of the inventory.
func collectPartImages(a *archive, partPath string, slideNumber int, byPath map[string]*ImageRecord) {
	partDir, _ := splitPartPath(partPath)
	rels := relMap(a, partRelsPath(partPath), isImageRelType)
	if len(rels) == 0 {
		return
	}

	data, err := a.read(partPath)
	if err != nil {
		return
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			// EOF or malformed XML mid-part: either way, stop here and keep
			// whatever was merged so far.
			return
		}
		el, ok := tok.(xml.StartElement)
		if !ok || el.Name.Local != "pic" {
			continue
		}

		var pic picXML
		if err := dec.DecodeElement(&pic, &el); err != nil {
			return
		}

		target, ok := rels[pic.BlipFill.Blip.Embed]
		if !ok {
			continue
		}
		resolved := ResolveTarget(partDir, target)
		rec, ok := byPath[resolved]
		if !ok {
			// Referenced but absent from ppt/media/ (or an unsupported
			// codec): not an error, just not inventoried.
			continue
		}
		rec.mergeShape(slideNumber, pic.NvPicPr.CNvPr.Name, pic.NvPicPr.CNvPr.Descr)
	}
}
