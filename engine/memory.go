package engine

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/wudi/pdfredact/coords"
	"github.com/wudi/pdfredact/geo"
)

// MemoryEngine is an in-memory document engine faithful to the Engine
// contract, including destructive commit of staged redactions. It backs the
// package tests and is useful for embedders that assemble documents
// programmatically.
type MemoryEngine struct {
	files map[string]*MemoryDocument
	saves map[string]SaveOptions
}

// NewMemoryEngine returns an engine with no documents.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{
		files: make(map[string]*MemoryDocument),
		saves: make(map[string]SaveOptions),
	}
}

func (e *MemoryEngine) Name() string { return "memory" }

// Put registers a document under a path.
func (e *MemoryEngine) Put(path string, doc *MemoryDocument) { e.files[path] = doc }

// Document returns the document stored under a path, if any.
func (e *MemoryEngine) Document(path string) (*MemoryDocument, bool) {
	doc, ok := e.files[path]
	return doc, ok
}

// SavedOptions returns the options used by the most recent Save to path.
func (e *MemoryEngine) SavedOptions(path string) (SaveOptions, bool) {
	opts, ok := e.saves[path]
	return opts, ok
}

// Open returns a working copy of the stored document; mutations are not
// visible until Save.
func (e *MemoryEngine) Open(path string) (Document, error) {
	doc, ok := e.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such document", path)
	}
	clone := doc.clone()
	clone.eng = e
	return clone, nil
}

// MemoryDocument is a page container served by MemoryEngine.
type MemoryDocument struct {
	pages  []*MemoryPage
	eng    *MemoryEngine
	closed bool
}

// NewMemoryDocument assembles a document from pages.
func NewMemoryDocument(pages ...*MemoryPage) *MemoryDocument {
	return &MemoryDocument{pages: pages}
}

func (d *MemoryDocument) PageCount() int { return len(d.pages) }

func (d *MemoryDocument) Page(index int) (Page, error) {
	if d.closed {
		return nil, fmt.Errorf("page %d: document closed", index)
	}
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("page %d: out of range [0, %d)", index, len(d.pages))
	}
	return d.pages[index], nil
}

func (d *MemoryDocument) Save(path string, opts SaveOptions) error {
	if d.closed {
		return fmt.Errorf("save %s: document closed", path)
	}
	if d.eng == nil {
		return fmt.Errorf("save %s: document not opened through an engine", path)
	}
	d.eng.files[path] = d.clone()
	d.eng.saves[path] = opts
	return nil
}

func (d *MemoryDocument) Close() error {
	d.closed = true
	return nil
}

func (d *MemoryDocument) clone() *MemoryDocument {
	pages := make([]*MemoryPage, len(d.pages))
	for i, p := range d.pages {
		pages[i] = p.clone()
	}
	return &MemoryDocument{pages: pages}
}

// MemoryPage holds text content in unrotated content space as lines of
// spans, mirroring the layout shape real engines expose.
type MemoryPage struct {
	bounds     geo.Rect
	rotation   int
	lines      [][]TextSpan
	images     int
	pending    []redactionMark
	highlights []HighlightMark
	replaced   image.Image

	invisibleRuns  int
	failRedactions int
}

type redactionMark struct {
	rect geo.Rect
	fill color.Color
}

// HighlightMark records a non-destructive review annotation.
type HighlightMark struct {
	Rect    geo.Rect
	Color   color.Color
	Opacity float64
}

// NewMemoryPage creates an empty page with the given bounds and rotation.
func NewMemoryPage(bounds geo.Rect, rotation int) *MemoryPage {
	return &MemoryPage{bounds: bounds, rotation: rotation}
}

// Span is a convenience constructor for layout spans.
func Span(text string, bounds geo.Rect) TextSpan {
	return TextSpan{Text: text, Bounds: bounds}
}

// AddLine appends a line of spans to the page.
func (p *MemoryPage) AddLine(spans ...TextSpan) { p.lines = append(p.lines, spans) }

// AddImages records n raster images on the page.
func (p *MemoryPage) AddImages(n int) { p.images += n }

// ImageCount returns the number of raster images remaining on the page.
func (p *MemoryPage) ImageCount() int { return p.images }

// Highlights returns the review annotations staged on the page.
func (p *MemoryPage) Highlights() []HighlightMark { return p.highlights }

// PendingRedactions returns the number of staged, uncommitted regions.
func (p *MemoryPage) PendingRedactions() int { return len(p.pending) }

// ReplacedImage returns the raster substituted for the page content, if any.
func (p *MemoryPage) ReplacedImage() image.Image { return p.replaced }

// InvisibleTextRuns returns the number of hidden text runs inserted.
func (p *MemoryPage) InvisibleTextRuns() int { return p.invisibleRuns }

// FailRedactions makes the next n AddRedaction calls fail, for exercising
// partial-application handling.
func (p *MemoryPage) FailRedactions(n int) { p.failRedactions = n }

func (p *MemoryPage) clone() *MemoryPage {
	cp := &MemoryPage{
		bounds:         p.bounds,
		rotation:       p.rotation,
		images:         p.images,
		replaced:       p.replaced,
		invisibleRuns:  p.invisibleRuns,
		failRedactions: p.failRedactions,
	}
	cp.lines = make([][]TextSpan, len(p.lines))
	for i, line := range p.lines {
		cp.lines[i] = append([]TextSpan(nil), line...)
	}
	cp.highlights = append([]HighlightMark(nil), p.highlights...)
	return cp
}

func (p *MemoryPage) Bounds() geo.Rect { return p.bounds }
func (p *MemoryPage) Rotation() int    { return p.rotation }

func (p *MemoryPage) Transform() coords.Matrix {
	return coords.RotationDegrees(p.rotation, p.bounds.Width(), p.bounds.Height())
}

func (p *MemoryPage) PlainText() string {
	if p.replaced != nil {
		return ""
	}
	var sb strings.Builder
	for i, line := range p.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, span := range line {
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

func (p *MemoryPage) Layout() (TextLayout, error) {
	if p.replaced != nil {
		return TextLayout{}, nil
	}
	block := TextBlock{}
	for _, line := range p.lines {
		block.Lines = append(block.Lines, TextLine{Spans: append([]TextSpan(nil), line...)})
	}
	return TextLayout{Blocks: []TextBlock{block}}, nil
}

func (p *MemoryPage) Search(term string) []geo.Rect {
	if term == "" || p.replaced != nil {
		return nil
	}
	want := []rune(strings.ToLower(term))
	var out []geo.Rect
	view := p.Transform()
	for _, line := range p.lines {
		runes, rects := lineCharRects(line)
		lower := []rune(strings.ToLower(string(runes)))
		for start := 0; start+len(want) <= len(lower); start++ {
			if !runesEqual(lower[start:start+len(want)], want) {
				continue
			}
			rect := rects[start]
			for i := start + 1; i < start+len(want); i++ {
				rect = rect.Union(rects[i])
			}
			if p.rotation != 0 {
				rect = rect.Transform(view)
			}
			out = append(out, rect)
		}
	}
	return out
}

func (p *MemoryPage) Render(dpi float64) (image.Image, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("render: invalid dpi %v", dpi)
	}
	scale := dpi / 72.0
	w := int(p.bounds.Width()*scale + 0.5)
	h := int(p.bounds.Height()*scale + 0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: degenerate page bounds %v", p.bounds)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img, nil
}

func (p *MemoryPage) AddRedaction(r geo.Rect, fill color.Color) error {
	if p.failRedactions > 0 {
		p.failRedactions--
		return fmt.Errorf("add redaction %v: staging rejected", r)
	}
	p.pending = append(p.pending, redactionMark{rect: r, fill: fill})
	return nil
}

// ApplyRedactions deletes every character whose center falls inside a
// staged region, then discards the staged regions. Spans keep their bounds;
// only the run text shrinks, which is how a destructive engine surfaces the
// removal to later text extraction.
func (p *MemoryPage) ApplyRedactions(removeImages bool) error {
	if len(p.pending) == 0 {
		return nil
	}
	for li := range p.lines {
		// Rects come from the layout as it was before this commit.
		_, rects := lineCharRects(p.lines[li])
		offset := 0
		for si := range p.lines[li] {
			runes := []rune(p.lines[li][si].Text)
			kept := make([]rune, 0, len(runes))
			for i, r := range runes {
				if !p.redacted(rects[offset+i]) {
					kept = append(kept, r)
				}
			}
			offset += len(runes)
			if len(kept) != len(runes) {
				p.lines[li][si].Text = string(kept)
			}
		}
	}
	if removeImages {
		p.images = 0
	}
	p.pending = nil
	return nil
}

func (p *MemoryPage) redacted(charRect geo.Rect) bool {
	cx := (charRect.X0 + charRect.X1) / 2
	cy := (charRect.Y0 + charRect.Y1) / 2
	for _, mark := range p.pending {
		r := mark.rect.Normalized()
		if cx >= r.X0 && cx <= r.X1 && cy >= r.Y0 && cy <= r.Y1 {
			return true
		}
	}
	return false
}

func (p *MemoryPage) AddHighlight(r geo.Rect, c color.Color, opacity float64) error {
	p.highlights = append(p.highlights, HighlightMark{Rect: r, Color: c, Opacity: opacity})
	return nil
}

func (p *MemoryPage) ReplaceWithImage(img image.Image) error {
	if img == nil {
		return fmt.Errorf("replace page content: nil image")
	}
	p.replaced = img
	p.lines = nil
	p.images = 1
	return nil
}

func (p *MemoryPage) InsertInvisibleText(text string, r geo.Rect) error {
	if text == "" {
		return fmt.Errorf("insert text: empty run")
	}
	p.lines = append(p.lines, []TextSpan{{Text: text, Bounds: r}})
	p.invisibleRuns++
	return nil
}

// lineCharRects flattens a line into runes with one rectangle per rune,
// slicing each span's bounds into equal horizontal strips.
func lineCharRects(line []TextSpan) ([]rune, []geo.Rect) {
	var runes []rune
	var rects []geo.Rect
	for _, span := range line {
		chars := []rune(span.Text)
		if len(chars) == 0 {
			continue
		}
		width := span.Bounds.Width() / float64(len(chars))
		for i, c := range chars {
			runes = append(runes, c)
			rects = append(rects, geo.Rect{
				X0: span.Bounds.X0 + float64(i)*width,
				Y0: span.Bounds.Y0,
				X1: span.Bounds.X0 + float64(i+1)*width,
				Y1: span.Bounds.Y1,
			})
		}
	}
	return runes, rects
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
