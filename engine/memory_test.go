package engine

import (
	"image/color"
	"strings"
	"testing"

	"github.com/wudi/pdfredact/geo"
)

func letterPage() *MemoryPage {
	return NewMemoryPage(geo.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}, 0)
}

func TestMemoryEngineOpenIsolation(t *testing.T) {
	page := letterPage()
	page.AddLine(Span("confidential report", geo.Rect{X0: 72, Y0: 100, X1: 272, Y1: 114}))
	eng := NewMemoryEngine()
	eng.Put("in.pdf", NewMemoryDocument(page))

	doc, err := eng.Open("in.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	p, _ := doc.Page(0)
	if err := p.AddRedaction(geo.Rect{X0: 72, Y0: 100, X1: 272, Y1: 114}, color.Black); err != nil {
		t.Fatalf("AddRedaction() error = %v", err)
	}
	if err := p.ApplyRedactions(false); err != nil {
		t.Fatalf("ApplyRedactions() error = %v", err)
	}
	if got := p.PlainText(); got != "" {
		t.Fatalf("PlainText() after commit = %q, want empty", got)
	}

	// The stored original must be untouched until Save.
	orig, _ := eng.Document("in.pdf")
	op, _ := orig.Page(0)
	if got := op.PlainText(); got != "confidential report" {
		t.Fatalf("stored document mutated before save: %q", got)
	}

	if err := doc.Save("out.pdf", SaveOptions{GarbageCollect: true, Compress: true}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	saved, ok := eng.Document("out.pdf")
	if !ok {
		t.Fatal("saved document not registered")
	}
	sp, _ := saved.Page(0)
	if got := sp.PlainText(); got != "" {
		t.Fatalf("saved PlainText() = %q, want empty", got)
	}
	opts, _ := eng.SavedOptions("out.pdf")
	if !opts.GarbageCollect || !opts.Compress {
		t.Fatalf("SavedOptions() = %+v", opts)
	}
}

func TestMemoryPageSearch(t *testing.T) {
	page := letterPage()
	page.AddLine(
		Span("Name: ", geo.Rect{X0: 0, Y0: 100, X1: 60, Y1: 112}),
		Span("John Q. Public", geo.Rect{X0: 60, Y0: 100, X1: 200, Y1: 112}),
	)
	rects := page.Search("john q. public")
	if len(rects) != 1 {
		t.Fatalf("Search() = %v, want one hit", rects)
	}
	want := geo.Rect{X0: 60, Y0: 100, X1: 200, Y1: 112}
	if rects[0] != want {
		t.Fatalf("Search() rect = %v, want %v", rects[0], want)
	}
	if got := page.Search("absent"); got != nil {
		t.Fatalf("Search(absent) = %v, want nil", got)
	}
}

func TestMemoryPageSearchRotated(t *testing.T) {
	page := NewMemoryPage(geo.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792}, 90)
	content := geo.Rect{X0: 10, Y0: 20, X1: 110, Y1: 32}
	page.AddLine(Span("rotated", content))

	rects := page.Search("rotated")
	if len(rects) != 1 {
		t.Fatalf("Search() = %v, want one hit", rects)
	}
	// View-space rect must differ from content space and invert back
	// through the page transform.
	if rects[0] == content {
		t.Fatal("rotated search returned content-space rect")
	}
	inv, err := page.Transform().Inverse()
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}
	back := rects[0].Transform(inv)
	if !approxRect(back, content) {
		t.Fatalf("inverse-mapped rect = %v, want %v", back, content)
	}
}

func approxRect(a, b geo.Rect) bool {
	const eps = 1e-6
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(a.X0-b.X0) < eps && abs(a.Y0-b.Y0) < eps &&
		abs(a.X1-b.X1) < eps && abs(a.Y1-b.Y1) < eps
}

func TestMemoryPagePartialRedaction(t *testing.T) {
	page := letterPage()
	page.AddLine(Span("SSN: 123-45-6789", geo.Rect{X0: 0, Y0: 100, X1: 160, Y1: 112}))

	// Redact only the digits: characters 5..16 of 16, i.e. x in [50, 160].
	if err := page.AddRedaction(geo.Rect{X0: 50, Y0: 100, X1: 160, Y1: 112}, color.Black); err != nil {
		t.Fatalf("AddRedaction() error = %v", err)
	}
	if err := page.ApplyRedactions(true); err != nil {
		t.Fatalf("ApplyRedactions() error = %v", err)
	}
	got := page.PlainText()
	if strings.Contains(got, "123-45-6789") {
		t.Fatalf("digits survived redaction: %q", got)
	}
	if !strings.HasPrefix(got, "SSN:") {
		t.Fatalf("prefix outside region removed: %q", got)
	}
	if page.PendingRedactions() != 0 {
		t.Fatal("pending queue not cleared by commit")
	}
}

func TestMemoryPageFailRedactions(t *testing.T) {
	page := letterPage()
	page.FailRedactions(1)
	if err := page.AddRedaction(geo.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, color.Black); err == nil {
		t.Fatal("expected staged failure")
	}
	if err := page.AddRedaction(geo.Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}, color.Black); err != nil {
		t.Fatalf("second AddRedaction() error = %v", err)
	}
}

func TestMemoryPageRenderAndReplace(t *testing.T) {
	page := letterPage()
	page.AddLine(Span("text", geo.Rect{X0: 0, Y0: 0, X1: 40, Y1: 12}))

	img, err := page.Render(144)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 1224 || b.Dy() != 1584 {
		t.Fatalf("Render() size = %dx%d, want 1224x1584", b.Dx(), b.Dy())
	}

	if err := page.ReplaceWithImage(img); err != nil {
		t.Fatalf("ReplaceWithImage() error = %v", err)
	}
	if got := page.PlainText(); got != "" {
		t.Fatalf("PlainText() after replace = %q, want empty", got)
	}
	if page.ReplacedImage() == nil {
		t.Fatal("replacement image not recorded")
	}
}

func TestMemoryDocumentClosed(t *testing.T) {
	eng := NewMemoryEngine()
	eng.Put("in.pdf", NewMemoryDocument(letterPage()))
	doc, _ := eng.Open("in.pdf")
	if err := doc.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := doc.Page(0); err == nil {
		t.Fatal("Page() after Close should fail")
	}
	if err := doc.Save("out.pdf", SaveOptions{}); err == nil {
		t.Fatal("Save() after Close should fail")
	}
}

func TestDefaultEngineUnavailable(t *testing.T) {
	if _, err := Default().Open("x.pdf"); err == nil {
		t.Fatal("expected error from unregistered engine")
	}
}
