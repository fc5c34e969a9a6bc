package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wudi/pdfredact/audit"
	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/object"
	"github.com/wudi/pdfredact/plaintext"
)

func letterBounds() geo.Rect { return geo.Rect{X0: 0, Y0: 0, X1: 612, Y1: 792} }

func fixtureEngine() *engine.MemoryEngine {
	eng := engine.NewMemoryEngine()
	page := engine.NewMemoryPage(letterBounds(), 0)
	page.AddLine(
		engine.Span("Employee: ", geo.Rect{X0: 72, Y0: 500, X1: 172, Y1: 512}),
		engine.Span("John Q. Public", geo.Rect{X0: 172, Y0: 500, X1: 312, Y1: 512}),
	)
	page.AddLine(
		engine.Span("SSN: ", geo.Rect{X0: 72, Y0: 540, X1: 122, Y1: 552}),
		engine.Span("123-45-6789", geo.Rect{X0: 122, Y0: 540, X1: 232, Y1: 552}),
	)
	eng.Put("in.pdf", engine.NewMemoryDocument(page))
	return eng
}

func TestRunRoundTrip(t *testing.T) {
	eng := fixtureEngine()
	p := New(eng, nil, WithTextSource(plaintext.EngineSource{Engine: eng}))

	req := NewRequest("in.pdf", "out.pdf")
	req.Terms = []string{"John Q. Public"}
	req.CommonPatterns = []string{"ssn"}
	req.Sanitize = false // structural sweep is exercised separately

	out, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Apply.RectsApplied == 0 {
		t.Fatal("nothing applied")
	}
	if !out.Verified {
		t.Fatal("verification did not run")
	}
	if len(out.Remaining) != 0 {
		t.Fatalf("content survived redaction: %v", out.Remaining)
	}

	text, err := plaintext.EngineSource{Engine: eng}.Text("out.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(text, "John Q. Public") || strings.Contains(text, "123-45-6789") {
		t.Fatalf("output text still holds targets: %q", text)
	}
	if out.Report == nil || out.Report.Summary.TotalRedactions == 0 {
		t.Fatalf("report = %+v", out.Report)
	}
}

// memStore is a structural tree store over an in-memory fixture.
type memStore struct {
	doc   *object.Document
	saved map[string]object.SaveOptions
}

func newMemStore(doc *object.Document) *memStore {
	return &memStore{doc: doc, saved: make(map[string]object.SaveOptions)}
}

func (s *memStore) Name() string { return "memstore" }

func (s *memStore) Open(path string) (*object.Document, error) {
	return s.doc, nil
}

func (s *memStore) Save(doc *object.Document, path string, opts object.SaveOptions) error {
	s.saved[path] = opts
	return nil
}

func TestRunWithSanitize(t *testing.T) {
	eng := fixtureEngine()
	tree := object.NewDocument()
	tree.Info.Set("Author", object.Str("J. Smith"))
	store := newMemStore(tree)

	p := New(eng, store)
	req := NewRequest("in.pdf", "out.pdf")
	req.Terms = []string{"John Q. Public"}
	req.Verify = false

	out, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Sanitize == nil || out.Sanitize.Metadata != 1 {
		t.Fatalf("sanitize report = %+v", out.Sanitize)
	}
	opts, ok := store.saved["out.pdf"]
	if !ok {
		t.Fatal("sanitized tree not saved to final output")
	}
	if !opts.CompressStreams || !opts.NormalizeStreams {
		t.Fatalf("save options = %+v", opts)
	}
	// The redaction pass itself went to the temporary file.
	if _, ok := eng.SavedOptions("out.pdf.tmp.pdf"); !ok {
		t.Fatal("application did not target the temporary file")
	}
}

func TestRunValidateFails(t *testing.T) {
	eng := engine.NewMemoryEngine()
	p := New(eng, nil)
	if _, err := p.Run(context.Background(), NewRequest("missing.pdf", "out.pdf")); err == nil {
		t.Fatal("expected validation error")
	}

	eng.Put("empty.pdf", engine.NewMemoryDocument())
	if _, err := p.Run(context.Background(), NewRequest("empty.pdf", "out.pdf")); err == nil {
		t.Fatal("expected no-pages error")
	}
}

func TestRunRecordsAudit(t *testing.T) {
	eng := fixtureEngine()
	db, err := audit.Open(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	p := New(eng, nil,
		WithTextSource(plaintext.EngineSource{Engine: eng}),
		WithAudit(db),
	)
	req := NewRequest("in.pdf", "out.pdf")
	req.Terms = []string{"John Q. Public"}
	req.Sanitize = false

	out, err := p.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.AuditRunID == "" {
		t.Fatal("run not recorded")
	}
	runs, err := db.History("in.pdf", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != out.AuditRunID || !runs[0].VerificationPassed {
		t.Fatalf("history = %+v", runs)
	}
}

func TestRunWritesReport(t *testing.T) {
	eng := fixtureEngine()
	p := New(eng, nil)
	req := NewRequest("in.pdf", "out.pdf")
	req.Terms = []string{"John Q. Public"}
	req.Sanitize = false
	req.Verify = false
	req.ReportPath = filepath.Join(t.TempDir(), "report.json")

	if _, err := p.Run(context.Background(), req); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if _, err := os.Stat(req.ReportPath); err != nil {
		t.Fatalf("report not written: %v", err)
	}
}
