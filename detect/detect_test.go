package detect

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
)

func letterBounds() geo.Rect { return geo.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792} }

func textPage(lines ...string) *engine.MemoryPage {
	p := engine.NewMemoryPage(letterBounds(), 0)
	y := 100.0
	for _, line := range lines {
		width := float64(len(line)) * 6
		p.AddLine(engine.Span(line, geo.Rect{X0: 72, Y0: y, X1: 72 + width, Y1: y + 12}))
		y += 20
	}
	return p
}

func memEngine(t *testing.T, path string, pages ...*engine.MemoryPage) *engine.MemoryEngine {
	t.Helper()
	eng := engine.NewMemoryEngine()
	eng.Put(path, engine.NewMemoryDocument(pages...))
	return eng
}

func TestFindEmptyCriteriaKeysEveryPage(t *testing.T) {
	eng := memEngine(t, "in.pdf",
		textPage("first page body text"),
		textPage("second page body text"),
		textPage("third page body text"),
	)
	boxes, summary, err := New(eng).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(boxes) != 3 {
		t.Fatalf("len(boxes) = %d, want 3", len(boxes))
	}
	for page := 1; page <= 3; page++ {
		rects, ok := boxes[page]
		if !ok {
			t.Fatalf("page %d missing from map", page)
		}
		if len(rects) != 0 {
			t.Fatalf("page %d has %d rects, want 0", page, len(rects))
		}
	}
	if len(summary.Matches) != 0 {
		t.Fatalf("summary has %d matches, want 0", len(summary.Matches))
	}
}

func TestFindTermIdentityRotation(t *testing.T) {
	page := textPage("Account holder: John Q. Public resides here")
	eng := memEngine(t, "in.pdf", page)

	boxes, summary, err := New(eng, WithTerms("John Q. Public")).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if summary.TermMatches != 1 {
		t.Fatalf("TermMatches = %d, want 1", summary.TermMatches)
	}
	// On a 0-degree page, detection must leave the engine's rectangles
	// untouched.
	raw := page.Search("John Q. Public")
	if len(raw) != 1 || boxes[1][0] != raw[0] {
		t.Fatalf("normalized rect %v differs from raw engine rect %v", boxes[1], raw)
	}
}

func TestFindTermRotatedPage(t *testing.T) {
	page := engine.NewMemoryPage(letterBounds(), 90)
	content := geo.Rect{X0: 72, Y0: 100, X1: 172, Y1: 112}
	page.AddLine(engine.Span("classified", content), engine.Span(" ... surrounding text", geo.Rect{X0: 172, Y0: 100, X1: 372, Y1: 112}))
	eng := memEngine(t, "in.pdf", page)

	boxes, _, err := New(eng, WithTerms("classified")).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(boxes[1]) != 1 {
		t.Fatalf("boxes[1] = %v, want one rect", boxes[1])
	}
	got := boxes[1][0]
	if !approx(got.X0, content.X0) || !approx(got.Y0, content.Y0) ||
		!approx(got.X1, content.X1) || !approx(got.Y1, content.Y1) {
		t.Fatalf("rotated match not normalized to content space: got %v, want %v", got, content)
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func TestFindRegexAcrossSpans(t *testing.T) {
	p := engine.NewMemoryPage(letterBounds(), 0)
	p.AddLine(
		engine.Span("SSN: ", geo.Rect{X0: 72, Y0: 540, X1: 122, Y1: 552}),
		engine.Span("123-45-6789", geo.Rect{X0: 122, Y0: 540, X1: 232, Y1: 552}),
	)
	eng := memEngine(t, "in.pdf", p)

	boxes, summary, err := New(eng, WithPatterns(`\b\d{3}-\d{2}-\d{4}\b`)).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if summary.RegexMatches != 1 {
		t.Fatalf("RegexMatches = %d, want 1; warnings: %v", summary.RegexMatches, summary.Warnings)
	}
	if summary.Matches[0].Text != "123-45-6789" {
		t.Fatalf("match text = %q", summary.Matches[0].Text)
	}
	got := boxes[1][0]
	// The digits occupy exactly the second span.
	want := geo.Rect{X0: 122, Y0: 540, X1: 232, Y1: 552}
	if !approx(got.X0, want.X0) || !approx(got.X1, want.X1) {
		t.Fatalf("match rect = %v, want %v", got, want)
	}
}

func TestFindInvalidPatternIsolated(t *testing.T) {
	p := textPage("reach me at alice@example.com or 555-123-4567 today")
	eng := memEngine(t, "in.pdf", p)

	_, summary, err := New(eng, WithPatterns(
		`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
		`((`, // malformed
		`\b\d{3}-\d{3}-\d{4}\b`,
	)).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if summary.RegexMatches != 2 {
		t.Fatalf("RegexMatches = %d, want 2 (valid patterns must survive)", summary.RegexMatches)
	}
	found := false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "invalid regex") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected invalid-regex warning, got %v", summary.Warnings)
	}
}

func TestFindScannedPageSkipped(t *testing.T) {
	scanned := engine.NewMemoryPage(letterBounds(), 0) // no text at all
	searchable := textPage("SSN: 123-45-6789 appears on this page")
	eng := memEngine(t, "in.pdf", scanned, searchable)

	boxes, summary, err := New(eng, WithCommonPatterns("ssn")).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(summary.ScannedPages) != 1 || summary.ScannedPages[0] != 1 {
		t.Fatalf("ScannedPages = %v, want [1]", summary.ScannedPages)
	}
	if rects, ok := boxes[1]; !ok || len(rects) != 0 {
		t.Fatalf("scanned page entry = %v, %v; want present and empty", rects, ok)
	}
	if len(boxes[2]) != 1 {
		t.Fatalf("boxes[2] = %v, want one ssn match", boxes[2])
	}
}

func TestFindUnknownCommonPatternWarns(t *testing.T) {
	eng := memEngine(t, "in.pdf", textPage("nothing sensitive in this text"))
	_, summary, err := New(eng, WithCommonPatterns("passport")).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "passport") {
		t.Fatalf("Warnings = %v", summary.Warnings)
	}
}

func TestFindRectSpecMerge(t *testing.T) {
	dir := t.TempDir()
	specPath := filepath.Join(dir, "rects.json")
	spec := `{"1": [{"x0":72,"y0":540,"x1":320,"y1":565}], "2": [{"x0":10,"y0":10,"x1":20,"y1":20}], "oops": []}`
	if err := os.WriteFile(specPath, []byte(spec), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := memEngine(t, "in.pdf", textPage("single page document body")) // one page only
	boxes, summary, err := New(eng, WithRectSpec(specPath)).Find("in.pdf")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if summary.UserRects != 1 {
		t.Fatalf("UserRects = %d, want 1", summary.UserRects)
	}
	if len(boxes[1]) != 1 {
		t.Fatalf("boxes[1] = %v, want the user rect", boxes[1])
	}
	var sawPage2, sawBadKey bool
	for _, w := range summary.Warnings {
		if strings.Contains(w, "page 2") {
			sawPage2 = true
		}
		if strings.Contains(w, `"oops"`) {
			sawBadKey = true
		}
	}
	if !sawPage2 || !sawBadKey {
		t.Fatalf("Warnings = %v, want out-of-range page and bad key warnings", summary.Warnings)
	}
}

func TestFindOpenFailureFatal(t *testing.T) {
	eng := engine.NewMemoryEngine()
	if _, _, err := New(eng, WithTerms("x")).Find("missing.pdf"); err == nil {
		t.Fatal("expected fatal error for unopenable document")
	}
}

func TestLoadRectSpecErrors(t *testing.T) {
	if _, _, err := LoadRectSpec(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadRectSpec(bad); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
