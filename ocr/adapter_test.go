package ocr

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestInputFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	in, err := InputFromImage(img, 2, 300,
		WithLanguages("eng", "deu"),
		WithTesseractPSM(6),
	)
	if err != nil {
		t.Fatalf("InputFromImage() error = %v", err)
	}
	if in.ID != "page-2-300dpi" {
		t.Errorf("ID = %q", in.ID)
	}
	if in.Format != ImageFormatPNG || in.PageIndex != 2 || in.DPI != 300 {
		t.Errorf("input = %+v", in)
	}
	if len(in.Languages) != 2 {
		t.Errorf("Languages = %v", in.Languages)
	}
	if in.Metadata["tessedit_pageseg_mode"] != "6" {
		t.Errorf("Metadata = %v", in.Metadata)
	}
	decoded, err := png.Decode(bytes.NewReader(in.Image))
	if err != nil {
		t.Fatalf("payload is not valid PNG: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Errorf("decoded size = %v", b)
	}
}

func TestWithRegionEmptyClears(t *testing.T) {
	in := Input{Region: &Region{X: 1, Y: 1, Width: 10, Height: 10}}
	WithRegion(Region{})(&in)
	if in.Region != nil {
		t.Fatalf("Region = %+v, want nil", in.Region)
	}
}

func TestResultWords(t *testing.T) {
	r := Result{Blocks: []TextBlock{{
		Lines: []TextLine{
			{Words: []TextWord{{Text: "a"}, {Text: "b"}}},
			{Words: []TextWord{{Text: "c"}}},
		},
	}}}
	if got := r.Words(); len(got) != 3 {
		t.Fatalf("Words() = %d entries, want 3", len(got))
	}
}
