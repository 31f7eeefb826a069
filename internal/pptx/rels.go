package pptx

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// OOXML relationship namespace used for r:id / r:embed attributes.
const relAttrNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// relationshipsXML mirrors the shape of a .rels part. Element matching is by
// local name, so the package-relationships default namespace needs no tag.
type relationshipsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// relMap reads a .rels part and returns rId → normalized target for every
// relationship whose Type passes keep. A missing or malformed .rels file is
// not an error; it yields an empty map. The map is transient — relationship
// ids are scoped to their owning part, never shared across parts.
func relMap(a *archive, relsPath string, keep func(relType string) bool) map[string]string {
	out := make(map[string]string)

	data, err := a.read(relsPath)
	if err != nil {
		return out
	}
	// Some producers emit a UTF-8 BOM, which encoding/xml rejects.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var rels relationshipsXML
	if err := xml.Unmarshal(data, &rels); err != nil {
		return out
	}

	for _, r := range rels.Relationships {
		if r.ID == "" || !keep(r.Type) {
			continue
		}
		out[r.ID] = NormalizePath(r.Target)
	}
	return out
}

// isImageRelType matches image relationships, including the HD Photo
// extension type used for .wdp payloads.
func isImageRelType(relType string) bool {
	t := strings.ToLower(relType)
	return strings.Contains(t, "image") || strings.Contains(t, "hdphoto")
}

// isSlideRelType matches relationships that point at slide parts, excluding
// the layout and master relationship types.
func isSlideRelType(relType string) bool {
	t := strings.ToLower(relType)
	return strings.Contains(t, "slide") &&
		!strings.Contains(t, "slidelayout") &&
		!strings.Contains(t, "slidemaster") &&
		!strings.Contains(t, "notesslide")
}

// partRelsPath returns the conventional .rels sibling path for a part, e.g.
// ppt/slides/slide1.xml → ppt/slides/_rels/slide1.xml.rels.
func partRelsPath(partPath string) string {
	dir, base := splitPartPath(partPath)
	return dir + "/_rels/" + base + ".rels"
}

func splitPartPath(partPath string) (dir, base string) {
	if i := strings.LastIndex(partPath, "/"); i >= 0 {
		return partPath[:i], partPath[i+1:]
	}
	return ".", partPath
}
