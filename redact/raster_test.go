package redact

import (
	"image"
	"testing"

	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
)

func TestApplyRasterReplacesPage(t *testing.T) {
	eng := engine.NewMemoryEngine()
	eng.Put("in.pdf", engine.NewMemoryDocument(ssnPage(), ssnPage()))

	boxes := geo.PageRects{1: {{X0: 122, Y0: 540, X1: 232, Y1: 552}}}
	stats, err := New(eng).ApplyRaster("in.pdf", "out.pdf", boxes, 144)
	if err != nil {
		t.Fatalf("ApplyRaster() error = %v", err)
	}
	if stats.RectsApplied != 1 || stats.PagesTouched != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	out := savedPage(t, eng, "out.pdf", 0)
	if out.PlainText() != "" {
		t.Fatalf("rasterized page still has extractable text: %q", out.PlainText())
	}
	img := out.ReplacedImage()
	if img == nil {
		t.Fatal("page content not replaced with an image")
	}
	// 612x792 points at 144 dpi.
	if b := img.Bounds(); b.Dx() != 1224 || b.Dy() != 1584 {
		t.Fatalf("image size = %dx%d, want 1224x1584", b.Dx(), b.Dy())
	}

	// Center of the painted region is fill-colored; a far corner is not.
	scale := 144.0 / 72.0
	cx, cy := int(177*scale), int(546*scale)
	if got := colorAt(img, cx, cy); got != [3]uint8{0, 0, 0} {
		t.Fatalf("painted region color = %v, want black", got)
	}
	if got := colorAt(img, 10, 10); got == [3]uint8{0, 0, 0} {
		t.Fatal("unpainted region is black")
	}

	// Second page had no rectangles and keeps its text.
	second := savedPage(t, eng, "out.pdf", 1)
	if second.PlainText() == "" {
		t.Fatal("untouched page lost its content")
	}
}

func colorAt(img image.Image, x, y int) [3]uint8 {
	r, g, b, _ := img.At(x, y).RGBA()
	return [3]uint8{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

func TestApplyRasterDefaultDPI(t *testing.T) {
	eng := engine.NewMemoryEngine()
	eng.Put("in.pdf", engine.NewMemoryDocument(ssnPage()))

	boxes := geo.PageRects{1: {{X0: 122, Y0: 540, X1: 232, Y1: 552}}}
	if _, err := New(eng).ApplyRaster("in.pdf", "out.pdf", boxes, 0); err != nil {
		t.Fatalf("ApplyRaster() error = %v", err)
	}
	img := savedPage(t, eng, "out.pdf", 0).ReplacedImage()
	if img == nil {
		t.Fatal("page content not replaced")
	}
	// 612 points at the 300 dpi default.
	if got := img.Bounds().Dx(); got != 2550 {
		t.Fatalf("image width = %d, want 2550", got)
	}
}
