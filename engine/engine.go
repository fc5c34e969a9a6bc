// Package engine declares the contract for the rendered-document engine the
// redaction pipeline drives: page access, text layout, verbatim search, the
// redact-annotation primitive, rasterization, and persistence. The engine
// itself (file parsing, rendering, writing) lives outside this module;
// implementations register via SetDefault in the manner of database/sql
// drivers. An in-memory engine faithful to the contract ships in this
// package for tests and embedding.
package engine

import (
	"fmt"
	"image"
	"image/color"

	"github.com/wudi/pdfredact/coords"
	"github.com/wudi/pdfredact/geo"
)

// TextSpan is a run of text sharing one bounding rectangle.
type TextSpan struct {
	Text   string
	Bounds geo.Rect
}

// TextLine groups spans sharing a baseline, in reading order.
type TextLine struct {
	Spans []TextSpan
}

// TextBlock groups lines that form a logical block.
type TextBlock struct {
	Lines []TextLine
}

// TextLayout is the per-page span layout used for pattern detection.
type TextLayout struct {
	Blocks []TextBlock
}

// SaveOptions controls document persistence.
type SaveOptions struct {
	// GarbageCollect removes unreferenced objects so deleted content does
	// not survive as dangling bytes in the output file.
	GarbageCollect bool
	// Compress deflates content streams.
	Compress bool
}

// Page is a single page borrowed from an open document.
type Page interface {
	// Bounds returns the page rectangle in page units.
	Bounds() geo.Rect
	// Rotation returns the page's declared rotation in degrees.
	Rotation() int
	// Transform maps unrotated content space into the rotated view space
	// in which Search results are expressed.
	Transform() coords.Matrix
	// PlainText returns the page's extractable text.
	PlainText() string
	// Layout returns the block/line/span structure with bounds.
	Layout() (TextLayout, error)
	// Search performs verbatim, case-insensitive substring search and
	// returns one rectangle per occurrence, in view space.
	Search(term string) []geo.Rect
	// Render rasterizes the page at the given resolution.
	Render(dpi float64) (image.Image, error)
	// AddRedaction stages a destructive removal region with a fill color.
	AddRedaction(r geo.Rect, fill color.Color) error
	// ApplyRedactions commits all staged regions, deleting the content
	// beneath them. When removeImages is set, raster content intersecting
	// a region is deleted as well.
	ApplyRedactions(removeImages bool) error
	// AddHighlight draws a translucent, non-destructive review annotation.
	AddHighlight(r geo.Rect, c color.Color, opacity float64) error
	// ReplaceWithImage substitutes the page's entire content with a single
	// raster image.
	ReplaceWithImage(img image.Image) error
	// InsertInvisibleText writes a hidden text run over the region. The
	// text participates in extraction and search but does not render,
	// which is how a scanned page becomes searchable.
	InsertInvisibleText(text string, r geo.Rect) error
}

// Document is an open document handle. It is borrowed for the duration of a
// pipeline stage and must be closed on every exit path.
type Document interface {
	PageCount() int
	// Page returns the page at the 0-based index.
	Page(index int) (Page, error)
	Save(path string, opts SaveOptions) error
	Close() error
}

// Engine opens documents.
type Engine interface {
	Name() string
	Open(path string) (Document, error)
}

var defaultEngine Engine = unavailableEngine{}

// Default returns the registered document engine.
func Default() Engine { return defaultEngine }

// SetDefault registers the engine used when callers do not supply one.
func SetDefault(e Engine) {
	if e == nil {
		e = unavailableEngine{}
	}
	defaultEngine = e
}

type unavailableEngine struct{}

func (unavailableEngine) Name() string { return "unavailable" }

func (unavailableEngine) Open(path string) (Document, error) {
	return nil, fmt.Errorf("open %s: no document engine registered", path)
}
