package sanitize

import (
	"fmt"
	"strings"

	"github.com/dop251/goja/parser"
	"golang.org/x/net/html"

	"github.com/wudi/pdfredact/object"
)

// Analysis is a read-only inventory of security and privacy risks in a
// document. It never modifies the tree.
type Analysis struct {
	MetadataKeys      []string
	JavaScriptFound   bool
	ScriptCalls       []string
	EmbeddedFileCount int
	LinkCount         int
	FormsFound        bool
	AnnotationCount   int
	ThumbnailCount    int
	RichTextFields    int
	Encrypted         bool
	Warnings          []string
}

// riskyCalls are script API calls that reach outside the document: network
// submission, file export, and external process launch.
var riskyCalls = []string{
	"launchURL",
	"submitForm",
	"exportDataObject",
	"importDataObject",
	"mailDoc",
	"getURL",
}

// Analyze inspects doc and reports what sanitization would remove plus
// derived warnings. Malformed or unresolvable nodes are skipped rather
// than failing the analysis.
func Analyze(doc *object.Document) *Analysis {
	a := &Analysis{Encrypted: doc.Encrypted}

	if doc.Info != nil {
		a.MetadataKeys = doc.Info.Keys()
	}
	if doc.Root != nil {
		if doc.Root.Has("Metadata") {
			a.MetadataKeys = append(a.MetadataKeys, "XMP")
		}
		for _, key := range rootScriptKeys {
			if doc.Root.Has(key) {
				a.JavaScriptFound = true
				break
			}
		}
		a.FormsFound = doc.Root.Has("AcroForm")
		if names := doc.ResolveDict(rootValue(doc, "Names")); names != nil {
			if embedded, ok := names.Get("EmbeddedFiles"); ok {
				a.EmbeddedFileCount = embeddedFileCount(doc, embedded)
			}
			if js := doc.ResolveDict(dictValue(doc, names, "JavaScript")); js != nil {
				a.JavaScriptFound = true
				a.ScriptCalls = append(a.ScriptCalls, inspectScriptTree(doc, js)...)
			}
		}
	}

	for _, page := range doc.Pages {
		if page.Has("Thumb") {
			a.ThumbnailCount++
		}
		annots := doc.ResolveArray(dictValue(doc, page, "Annots"))
		if annots == nil {
			continue
		}
		for i := 0; i < annots.Len(); i++ {
			item, _ := annots.Get(i)
			annot := doc.ResolveDict(item)
			if annot == nil {
				continue
			}
			a.AnnotationCount++
			if subtype(doc, annot) == "Link" {
				a.LinkCount++
			}
			if rich, ok := doc.StringValue(dictValue(doc, annot, "RC")); ok {
				a.RichTextFields++
				a.Warnings = append(a.Warnings, inspectRichText(rich)...)
			}
			if js, ok := doc.StringValue(scriptPayload(doc, annot)); ok {
				a.JavaScriptFound = true
				a.ScriptCalls = append(a.ScriptCalls, inspectScript(js)...)
			}
		}
	}

	a.Warnings = append(a.Warnings, deriveWarnings(a)...)
	return a
}

// AnalyzeFile opens the document through the store and analyzes it.
func AnalyzeFile(store object.Store, path string) (*Analysis, error) {
	if store == nil {
		store = object.DefaultStore()
	}
	doc, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return Analyze(doc), nil
}

// inspectScriptTree walks a name-tree leaf of JavaScript actions and
// inspects each payload.
func inspectScriptTree(doc *object.Document, tree *object.Dict) []string {
	leaf := doc.ResolveArray(dictValue(doc, tree, "Names"))
	if leaf == nil {
		return nil
	}
	var calls []string
	// Name-tree leaves alternate name and value entries.
	for i := 1; i < leaf.Len(); i += 2 {
		item, _ := leaf.Get(i)
		action := doc.ResolveDict(item)
		if action == nil {
			continue
		}
		if js, ok := doc.StringValue(dictValue(doc, action, "JS")); ok {
			calls = append(calls, inspectScript(js)...)
		}
	}
	return calls
}

// inspectScript parses a script payload and reports calls that reach
// outside the document. A payload that does not parse is itself reported;
// unparsable scripts deserve a closer look, not a pass.
func inspectScript(src string) []string {
	if _, err := parser.ParseFile(nil, "embedded.js", src, 0); err != nil {
		return []string{fmt.Sprintf("unparsable script: %v", err)}
	}
	var calls []string
	for _, name := range riskyCalls {
		if strings.Contains(src, name) {
			calls = append(calls, name)
		}
	}
	return calls
}

func scriptPayload(doc *object.Document, annot *object.Dict) object.Object {
	action := doc.ResolveDict(dictValue(doc, annot, "A"))
	if action == nil {
		return nil
	}
	if kind, _ := doc.NameValue(dictValue(doc, action, "S")); kind != "JavaScript" {
		return nil
	}
	return dictValue(doc, action, "JS")
}

// inspectRichText parses a rich-text payload and flags external references
// hiding in markup attributes.
func inspectRichText(rich string) []string {
	node, err := html.Parse(strings.NewReader(rich))
	if err != nil {
		return []string{fmt.Sprintf("unparsable rich text: %v", err)}
	}
	var warnings []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					warnings = append(warnings,
						fmt.Sprintf("rich text references external resource: %s", attr.Val))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return warnings
}

func deriveWarnings(a *Analysis) []string {
	var warnings []string
	if len(a.MetadataKeys) > 0 {
		warnings = append(warnings, "document contains metadata that may reveal sensitive information")
	}
	if a.JavaScriptFound {
		warnings = append(warnings, "document contains JavaScript which could be a security risk")
	}
	for _, call := range a.ScriptCalls {
		warnings = append(warnings, "script uses risky call: "+call)
	}
	if a.EmbeddedFileCount > 0 {
		warnings = append(warnings, fmt.Sprintf("document contains %d embedded files", a.EmbeddedFileCount))
	}
	if a.LinkCount > 0 {
		warnings = append(warnings, fmt.Sprintf("document contains %d external links", a.LinkCount))
	}
	if a.Encrypted {
		warnings = append(warnings, "document is encrypted; sanitization requires decrypted input")
	}
	return warnings
}
