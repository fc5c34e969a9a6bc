// Package redact destructively applies page-keyed redaction rectangles to a
// document. Regions are clipped to page bounds, optionally merged, staged as
// redaction annotations, and committed so underlying text and images are
// removed rather than covered. A raster fallback and a non-destructive
// preview mode round out the surface.
package redact

import (
	"fmt"
	"image/color"

	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/observability"
)

// Stats summarizes one application run.
type Stats struct {
	RectsApplied int
	PagesTouched int
	Failures     int
	Warnings     []string
}

func (s *Stats) warnf(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Applicator applies redaction rectangles through a document engine.
type Applicator struct {
	eng          engine.Engine
	fill         color.RGBA
	merge        bool
	removeImages bool
	log          observability.Logger
}

// Option configures an Applicator.
type Option func(*Applicator)

// WithFill sets the fill color painted over redacted regions.
func WithFill(c color.RGBA) Option {
	return func(a *Applicator) { a.fill = c }
}

// WithMerge controls whether overlapping and near-adjacent rectangles are
// coalesced before staging. Enabled by default.
func WithMerge(merge bool) Option {
	return func(a *Applicator) { a.merge = merge }
}

// WithImageRemoval controls whether images intersecting redacted regions
// are removed on commit. Enabled by default.
func WithImageRemoval(remove bool) Option {
	return func(a *Applicator) { a.removeImages = remove }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log observability.Logger) Option {
	return func(a *Applicator) { a.log = log }
}

// New creates an Applicator backed by the given engine. A nil engine uses
// the registered default. Defaults: black fill, merging on, image removal
// on.
func New(eng engine.Engine, opts ...Option) *Applicator {
	if eng == nil {
		eng = engine.Default()
	}
	a := &Applicator{
		eng:          eng,
		fill:         FillColor("black"),
		merge:        true,
		removeImages: true,
		log:          observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply stages and commits the rectangles in boxes, then writes the result
// to outPath with garbage collection and stream compression. Out-of-range
// pages and individual staging failures are recorded in Stats and skipped;
// only open and save failures are fatal. The input file is never modified.
func (a *Applicator) Apply(inPath, outPath string, boxes geo.PageRects) (*Stats, error) {
	stats := &Stats{}
	doc, err := a.eng.Open(inPath)
	if err != nil {
		return stats, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	for _, pageNo := range boxes.Pages() {
		rects := boxes[pageNo]
		if len(rects) == 0 {
			continue
		}
		if pageNo < 1 || pageNo > doc.PageCount() {
			stats.warnf("page %d out of range, skipping", pageNo)
			continue
		}
		page, err := doc.Page(pageNo - 1)
		if err != nil {
			stats.warnf("page %d: %v", pageNo, err)
			continue
		}

		valid := clipAll(rects, page.Bounds())
		if len(valid) == 0 {
			a.log.Debug("no valid rectangles on page", observability.Int("page", pageNo))
			continue
		}
		if a.merge {
			valid = geo.Merge(valid)
		}

		staged := 0
		for _, rect := range valid {
			if err := page.AddRedaction(rect, a.fill); err != nil {
				stats.Failures++
				a.log.Warn("failed to stage redaction",
					observability.Int("page", pageNo), observability.Error("err", err))
				continue
			}
			staged++
		}
		if staged == 0 {
			continue
		}
		if err := page.ApplyRedactions(a.removeImages); err != nil {
			stats.Failures += staged
			stats.warnf("page %d: commit: %v", pageNo, err)
			continue
		}
		stats.RectsApplied += staged
		stats.PagesTouched++
		a.log.Info("applied redactions",
			observability.Int("page", pageNo), observability.Int("count", staged))
	}

	opts := engine.SaveOptions{GarbageCollect: true, Compress: true}
	if err := doc.Save(outPath, opts); err != nil {
		return stats, fmt.Errorf("save redacted document: %w", err)
	}
	return stats, nil
}

// clipAll clips every rectangle to the page bounds and drops rejects.
func clipAll(rects []geo.Rect, bounds geo.Rect) []geo.Rect {
	out := make([]geo.Rect, 0, len(rects))
	for _, r := range rects {
		if clipped, ok := geo.Clip(r, bounds); ok {
			out = append(out, clipped)
		}
	}
	return out
}
