package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/observability"
)

// SearchableResult reports what MakeSearchable did.
type SearchableResult struct {
	// PagesConverted is the number of image-only pages that were
	// recognized.
	PagesConverted int
	// WordsInserted is the number of invisible text runs written.
	WordsInserted int
}

// MakeSearchable recognizes the document's image-only pages and writes each
// recognized word back as an invisible text run at its page position, so
// the saved output can be searched and extracted like a native text
// document. Pages that already expose text are left untouched; recognized
// words below the confidence floor are not inserted.
func (d *Detector) MakeSearchable(ctx context.Context, inPath, outPath string) (*SearchableResult, error) {
	doc, err := d.docs.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	res := &SearchableResult{}
	scale := 72.0 / float64(d.cfg.DPI)
	langs := d.languageHints(doc)

	for i := 0; i < doc.PageCount(); i++ {
		pageNo := i + 1
		page, err := doc.Page(i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNo, err)
		}
		if len(strings.TrimSpace(page.PlainText())) > skipTextThreshold {
			continue
		}

		img, err := page.Render(float64(d.cfg.DPI))
		if err != nil {
			return nil, fmt.Errorf("page %d: render: %w", pageNo, err)
		}
		opts := []InputOption{WithLanguages(langs...)}
		if d.cfg.PSM > 0 {
			opts = append(opts, WithTesseractPSM(d.cfg.PSM))
		}
		input, err := InputFromImage(img, i, d.cfg.DPI, opts...)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", pageNo, err)
		}
		result, err := d.eng.Recognize(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("page %d: recognize: %w", pageNo, err)
		}
		res.PagesConverted++

		inserted := 0
		for _, word := range result.Words() {
			if word.Confidence < d.cfg.MinConfidence || word.Text == "" {
				continue
			}
			rect := geo.Rect{
				X0: word.Bounds.X * scale,
				Y0: word.Bounds.Y * scale,
				X1: (word.Bounds.X + word.Bounds.Width) * scale,
				Y1: (word.Bounds.Y + word.Bounds.Height) * scale,
			}
			if err := page.InsertInvisibleText(word.Text, rect); err != nil {
				d.log.Warn("skipping text run",
					observability.Int("page", pageNo), observability.Error("err", err))
				continue
			}
			inserted++
		}
		res.WordsInserted += inserted
		d.log.Info("text layer written",
			observability.Int("page", pageNo), observability.Int("words", inserted))
	}

	if err := doc.Save(outPath, engine.SaveOptions{GarbageCollect: true, Compress: true}); err != nil {
		return nil, fmt.Errorf("save %s: %w", outPath, err)
	}
	return res, nil
}
