package pptx_test

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/deckpatch/deckpatch/internal/pptx"
)

func TestExportJSON(t *testing.T) {
	used := &pptx.ImageRecord{
		InternalPath: "ppt/media/image1.png",
		InternalName: "image1.png",
		OriginalName: "logo.png",
		ShapeName:    "Picture 3",
		Description:  "Company logo",
		Size:         42,
		MD5Hash:      "0123456789abcdef0123456789abcdef",
	}
	used.AddSlide(2)
	used.AddSlide(1)
	used.AddSlide(2)

	orphan := &pptx.ImageRecord{
		InternalPath: "ppt/media/image2.jpeg",
		InternalName: "image2.jpeg",
		Size:         7,
		MD5Hash:      "fedcba9876543210fedcba9876543210",
	}

	var buf bytes.Buffer
	if err := pptx.ExportJSON([]*pptx.ImageRecord{used, orphan}, &buf); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var out []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}

	first := out[0]
	if first["internal_path"] != "ppt/media/image1.png" {
		t.Errorf("internal_path = %v", first["internal_path"])
	}
	if first["original_name"] != "logo.png" {
		t.Errorf("original_name = %v", first["original_name"])
	}
	slides, ok := first["used_in_slides"].([]any)
	if !ok {
		t.Fatalf("used_in_slides is %T, want array", first["used_in_slides"])
	}
	if len(slides) != 2 || slides[0] != float64(1) || slides[1] != float64(2) {
		t.Errorf("used_in_slides = %v, want [1 2]", slides)
	}

	second := out[1]
	for _, key := range []string{"original_name", "shape_name", "description"} {
		if v, present := second[key]; !present || v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
	slides, ok = second["used_in_slides"].([]any)
	if !ok || len(slides) != 0 {
		t.Errorf("used_in_slides for an orphan = %v, want empty array", second["used_in_slides"])
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := t.TempDir() + "/inventory.json"
	rec := &pptx.ImageRecord{
		InternalPath: "ppt/media/image1.png",
		InternalName: "image1.png",
		Size:         3,
		MD5Hash:      "aa",
	}
	if err := pptx.WriteJSONFile([]*pptx.ImageRecord{rec}, path); err != nil {
		t.Fatalf("WriteJSONFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON on disk: %v", err)
	}
	if len(out) != 1 || out[0]["internal_name"] != "image1.png" {
		t.Errorf("unexpected content: %v", out)
	}
}
