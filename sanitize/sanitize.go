// Package sanitize strips a document's structural tree of content that
// redaction does not touch: metadata, scripts and actions, embedded files,
// external links, interactive forms, thumbnails, private application data,
// and residual annotations. Stages run in a fixed order, each is
// individually toggleable, and the whole sweep is idempotent.
package sanitize

import (
	"fmt"

	"github.com/wudi/pdfredact/object"
	"github.com/wudi/pdfredact/observability"
)

// Report counts removals per category.
type Report struct {
	Metadata      int
	Scripts       int
	EmbeddedFiles int
	Links         int
	Forms         int
	Thumbnails    int
	Annotations   int
}

// Total returns the number of items removed across all categories.
func (r *Report) Total() int {
	return r.Metadata + r.Scripts + r.EmbeddedFiles + r.Links +
		r.Forms + r.Thumbnails + r.Annotations
}

// Sanitizer performs the structural sweep. The zero options enable every
// stage.
type Sanitizer struct {
	store object.Store
	log   observability.Logger

	metadata      bool
	scripts       bool
	embeddedFiles bool
	links         bool
	forms         bool
	thumbnails    bool
	annotations   bool
}

// Option toggles a sanitization stage.
type Option func(*Sanitizer)

// WithMetadata toggles clearing the info dictionary and metadata stream.
func WithMetadata(on bool) Option { return func(s *Sanitizer) { s.metadata = on } }

// WithScripts toggles removal of scripts and automatic actions.
func WithScripts(on bool) Option { return func(s *Sanitizer) { s.scripts = on } }

// WithEmbeddedFiles toggles removal of embedded files and attachments.
func WithEmbeddedFiles(on bool) Option { return func(s *Sanitizer) { s.embeddedFiles = on } }

// WithLinks toggles removal of external link annotations. Internal
// navigation links are always preserved.
func WithLinks(on bool) Option { return func(s *Sanitizer) { s.links = on } }

// WithForms toggles removal of interactive forms.
func WithForms(on bool) Option { return func(s *Sanitizer) { s.forms = on } }

// WithThumbnails toggles removal of page thumbnails and private
// application data.
func WithThumbnails(on bool) Option { return func(s *Sanitizer) { s.thumbnails = on } }

// WithAnnotations toggles the final sweep of residual annotations.
func WithAnnotations(on bool) Option { return func(s *Sanitizer) { s.annotations = on } }

// WithLogger sets the diagnostic logger.
func WithLogger(log observability.Logger) Option {
	return func(s *Sanitizer) { s.log = log }
}

// New creates a Sanitizer with every stage enabled. A nil store uses the
// registered default.
func New(store object.Store, opts ...Option) *Sanitizer {
	if store == nil {
		store = object.DefaultStore()
	}
	s := &Sanitizer{
		store:         store,
		log:           observability.NopLogger{},
		metadata:      true,
		scripts:       true,
		embeddedFiles: true,
		links:         true,
		forms:         true,
		thumbnails:    true,
		annotations:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sanitize opens the document at inPath, runs the enabled stages, and
// writes a fully rewritten file to outPath. The rewrite drops incremental
// updates, so earlier revisions of the content cannot be recovered from the
// output.
func (s *Sanitizer) Sanitize(inPath, outPath string) (*Report, error) {
	doc, err := s.store.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	report := s.Clean(doc)
	opts := object.SaveOptions{CompressStreams: true, NormalizeStreams: true}
	if err := s.store.Save(doc, outPath, opts); err != nil {
		return report, fmt.Errorf("save sanitized document: %w", err)
	}
	s.log.Info("sanitized document", observability.Int("removed", report.Total()))
	return report, nil
}

// MetadataOnly clears document metadata and writes the result, leaving all
// interactive features intact.
func (s *Sanitizer) MetadataOnly(inPath, outPath string) (*Report, error) {
	doc, err := s.store.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	report := &Report{Metadata: removeMetadata(doc)}
	if err := s.store.Save(doc, outPath, object.SaveOptions{}); err != nil {
		return report, fmt.Errorf("save document: %w", err)
	}
	return report, nil
}

// Clean runs the enabled stages against an in-memory tree and returns what
// was removed. Running Clean twice on the same tree removes nothing the
// second time.
func (s *Sanitizer) Clean(doc *object.Document) *Report {
	report := &Report{}
	if s.metadata {
		report.Metadata = removeMetadata(doc)
	}
	if s.scripts {
		report.Scripts = removeScriptsAndActions(doc)
	}
	if s.embeddedFiles {
		report.EmbeddedFiles = removeEmbeddedFiles(doc)
	}
	if s.links {
		report.Links = removeExternalLinks(doc)
	}
	if s.forms {
		report.Forms = removeForms(doc)
	}
	if s.thumbnails {
		report.Thumbnails = removeThumbnails(doc)
	}
	if s.annotations {
		report.Annotations = removeAnnotations(doc)
	}
	return report
}

// rootScriptKeys are the catalog entries that trigger script execution or
// automatic actions on open.
var rootScriptKeys = []string{"OpenAction", "AA", "JS", "JavaScript"}

// pageActionKeys are the per-page action entries.
var pageActionKeys = []string{"AA", "A"}

func removeMetadata(doc *object.Document) int {
	removed := 0
	if doc.Info != nil {
		removed += doc.Info.Clear()
	}
	if doc.Root != nil && doc.Root.Delete("Metadata") {
		removed++
	}
	return removed
}

func removeScriptsAndActions(doc *object.Document) int {
	removed := 0
	if doc.Root != nil {
		for _, key := range rootScriptKeys {
			if doc.Root.Delete(key) {
				removed++
			}
		}
	}
	for _, page := range doc.Pages {
		for _, key := range pageActionKeys {
			if page.Delete(key) {
				removed++
			}
		}
	}
	return removed
}

func removeEmbeddedFiles(doc *object.Document) int {
	removed := 0
	if names := doc.ResolveDict(rootValue(doc, "Names")); names != nil {
		if embedded, ok := names.Get("EmbeddedFiles"); ok {
			removed += embeddedFileCount(doc, embedded)
			names.Delete("EmbeddedFiles")
		}
		if names.Len() == 0 {
			doc.Root.Delete("Names")
		}
	}
	for _, page := range doc.Pages {
		removed += removeMatchingAnnots(doc, page, func(annot *object.Dict) bool {
			return subtype(doc, annot) == "FileAttachment"
		})
	}
	return removed
}

// embeddedFileCount reads the name-tree leaf under /EmbeddedFiles, whose
// entries come in name/value pairs. An unreadable structure still counts
// as one embedded file.
func embeddedFileCount(doc *object.Document, embedded object.Object) int {
	if tree := doc.ResolveDict(embedded); tree != nil {
		if leaf, ok := tree.Get("Names"); ok {
			if arr := doc.ResolveArray(leaf); arr != nil {
				return arr.Len() / 2
			}
		}
	}
	return 1
}

func removeExternalLinks(doc *object.Document) int {
	removed := 0
	for _, page := range doc.Pages {
		removed += removeMatchingAnnots(doc, page, func(annot *object.Dict) bool {
			if subtype(doc, annot) != "Link" {
				return false
			}
			action := doc.ResolveDict(dictValue(doc, annot, "A"))
			if action == nil {
				return false
			}
			kind, _ := doc.NameValue(dictValue(doc, action, "S"))
			return kind == "URI"
		})
	}
	return removed
}

// formFieldSubtypes identifies form widgets and bare field annotations.
var formFieldSubtypes = map[string]bool{
	"Widget": true,
	"Tx":     true,
	"Btn":    true,
	"Ch":     true,
}

func removeForms(doc *object.Document) int {
	removed := 0
	if doc.Root != nil {
		if acro, ok := doc.Root.Get("AcroForm"); ok {
			removed += acroFieldCount(doc, acro)
			doc.Root.Delete("AcroForm")
		}
	}
	for _, page := range doc.Pages {
		removed += removeMatchingAnnots(doc, page, func(annot *object.Dict) bool {
			return formFieldSubtypes[subtype(doc, annot)]
		})
	}
	return removed
}

func acroFieldCount(doc *object.Document, acro object.Object) int {
	if form := doc.ResolveDict(acro); form != nil {
		if fields := doc.ResolveArray(dictValue(doc, form, "Fields")); fields != nil {
			return fields.Len()
		}
	}
	return 1
}

func removeThumbnails(doc *object.Document) int {
	removed := 0
	for _, page := range doc.Pages {
		if page.Delete("Thumb") {
			removed++
		}
		if page.Delete("PieceInfo") {
			removed++
		}
	}
	return removed
}

func removeAnnotations(doc *object.Document) int {
	removed := 0
	for _, page := range doc.Pages {
		if annots := doc.ResolveArray(dictValue(doc, page, "Annots")); annots != nil {
			removed += annots.Len()
		}
		page.Delete("Annots")
	}
	return removed
}

// removeMatchingAnnots deletes every annotation on the page for which match
// returns true, walking indices in reverse so earlier removals do not shift
// later ones. Unresolvable entries are left in place. An emptied array is
// deleted from the page.
func removeMatchingAnnots(doc *object.Document, page *object.Dict, match func(*object.Dict) bool) int {
	annots := doc.ResolveArray(dictValue(doc, page, "Annots"))
	if annots == nil {
		return 0
	}
	removed := 0
	for i := annots.Len() - 1; i >= 0; i-- {
		item, _ := annots.Get(i)
		annot := doc.ResolveDict(item)
		if annot == nil {
			continue
		}
		if match(annot) {
			annots.Remove(i)
			removed++
		}
	}
	if annots.Len() == 0 {
		page.Delete("Annots")
	}
	return removed
}

func subtype(doc *object.Document, annot *object.Dict) string {
	name, _ := doc.NameValue(dictValue(doc, annot, "Subtype"))
	return name
}

func rootValue(doc *object.Document, key string) object.Object {
	if doc.Root == nil {
		return nil
	}
	obj, _ := doc.Root.Get(key)
	return obj
}

func dictValue(doc *object.Document, dict *object.Dict, key string) object.Object {
	if dict == nil {
		return nil
	}
	obj, _ := dict.Get(key)
	return obj
}
