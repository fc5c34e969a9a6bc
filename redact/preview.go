package redact

import (
	"fmt"
	"image/color"

	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/observability"
)

// previewOpacity is the translucency of preview highlights.
const previewOpacity = 0.5

// PreviewColor is the default highlight color, yellow.
var PreviewColor = color.RGBA{255, 255, 0, 255}

// Preview writes a copy of the document with each rectangle marked by a
// translucent highlight annotation. Nothing is removed; the output exists
// so a reviewer can approve regions before the destructive run. It must be
// written to a distinct path and never shipped in place of redacted output.
func (a *Applicator) Preview(inPath, outPath string, boxes geo.PageRects) (*Stats, error) {
	return a.previewWith(inPath, outPath, boxes, PreviewColor)
}

// PreviewColored is Preview with a caller-chosen highlight color.
func (a *Applicator) PreviewColored(inPath, outPath string, boxes geo.PageRects, highlight color.RGBA) (*Stats, error) {
	return a.previewWith(inPath, outPath, boxes, highlight)
}

func (a *Applicator) previewWith(inPath, outPath string, boxes geo.PageRects, highlight color.RGBA) (*Stats, error) {
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
		marked := 0
		for _, r := range rects {
			if err := page.AddHighlight(r, highlight, previewOpacity); err != nil {
				stats.Failures++
				continue
			}
			marked++
		}
		if marked > 0 {
			stats.RectsApplied += marked
			stats.PagesTouched++
			a.log.Debug("highlighted preview regions",
				observability.Int("page", pageNo), observability.Int("count", marked))
		}
	}

	if err := doc.Save(outPath, engine.SaveOptions{}); err != nil {
		return stats, fmt.Errorf("save preview document: %w", err)
	}
	return stats, nil
}
