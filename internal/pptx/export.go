package pptx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// jsonRecord is the export shape of an ImageRecord. Unset optional strings
// serialize as null rather than "".
type jsonRecord struct {
	InternalPath string  `json:"internal_path"`
	InternalName string  `json:"internal_name"`
	OriginalName *string `json:"original_name"`
	ShapeName    *string `json:"shape_name"`
	Description  *string `json:"description"`
	Size         int64   `json:"size"`
	MD5Hash      string  `json:"md5_hash"`
	UsedInSlides []int   `json:"used_in_slides"`
}

// ExportJSON writes the inventory as a UTF-8 JSON array to w.
func ExportJSON(records []*ImageRecord, w io.Writer) error {
	out := make([]jsonRecord, 0, len(records))
	for _, r := range records {
		slides := r.Slides()
		if slides == nil {
			slides = []int{}
		}
		out = append(out, jsonRecord{
			InternalPath: r.InternalPath,
			InternalName: r.InternalName,
			OriginalName: nullable(r.OriginalName),
			ShapeName:    nullable(r.ShapeName),
			Description:  nullable(r.Description),
			Size:         r.Size,
			MD5Hash:      r.MD5Hash,
			UsedInSlides: slides,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

// WriteJSONFile exports the inventory to a file.
func WriteJSONFile(records []*ImageRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	if err := ExportJSON(records, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return f.Close()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
