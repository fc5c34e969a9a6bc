package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/observability"
)

// skipTextThreshold is the number of extractable characters above which a
// page is considered searchable and skipped by OCR detection.
const skipTextThreshold = 50

// languageSampleLimit caps the text gathered for language detection.
const languageSampleLimit = 4096

// Config tunes OCR-based detection.
type Config struct {
	// DPI is the rendering resolution for page images.
	DPI int
	// MinConfidence drops recognized words below this confidence, on a
	// 0..1 scale.
	MinConfidence float64
	// Languages carries language hints for the OCR engine. When empty,
	// hints are derived from whatever text the document does expose.
	Languages []string
	// PSM optionally overrides the Tesseract page segmentation mode.
	PSM int
}

// DefaultConfig returns the standard detection tuning: 300 dpi rendering
// and a 30% word confidence floor.
func DefaultConfig() Config {
	return Config{DPI: 300, MinConfidence: 0.3}
}

// Detector locates terms and patterns on scanned pages by recognizing
// rendered page images.
type Detector struct {
	docs engine.Engine
	eng  Engine
	cfg  Config
	log  observability.Logger
}

// NewDetector builds a Detector. A nil document engine or OCR engine uses
// the respective registered default.
func NewDetector(docs engine.Engine, eng Engine, cfg Config, log observability.Logger) *Detector {
	if docs == nil {
		docs = engine.Default()
	}
	if eng == nil {
		eng = DefaultEngine()
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Detector{docs: docs, eng: eng, cfg: cfg, log: log}
}

// FindScanned runs OCR detection over the document's image-only pages and
// returns matches in page space. Pages with enough extractable text are
// skipped; recognized words are matched individually, terms by
// case-insensitive substring and patterns by search, and each matching
// word's box is scaled from pixels back to page units. Invalid patterns
// are dropped.
func (d *Detector) FindScanned(ctx context.Context, path string, terms, patterns []string) (geo.PageRects, error) {
	if len(terms) == 0 && len(patterns) == 0 {
		return geo.PageRects{}, nil
	}
	doc, err := d.docs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			d.log.Warn("skipping invalid pattern",
				observability.String("pattern", pat), observability.Error("err", err))
			continue
		}
		compiled = append(compiled, re)
	}

	boxes := make(geo.PageRects, doc.PageCount())
	scale := 72.0 / float64(d.cfg.DPI)
	langs := d.languageHints(doc)

	for i := 0; i < doc.PageCount(); i++ {
		pageNo := i + 1
		boxes[pageNo] = nil

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

		for _, word := range result.Words() {
			if word.Confidence < d.cfg.MinConfidence || word.Text == "" {
				continue
			}
			if !d.wordMatches(word.Text, terms, compiled) {
				continue
			}
			boxes.Add(pageNo, geo.Rect{
				X0: word.Bounds.X * scale,
				Y0: word.Bounds.Y * scale,
				X1: (word.Bounds.X + word.Bounds.Width) * scale,
				Y1: (word.Bounds.Y + word.Bounds.Height) * scale,
			})
		}
		if n := len(boxes[pageNo]); n > 0 {
			d.log.Info("ocr matches on scanned page",
				observability.Int("page", pageNo), observability.Int("count", n))
		}
	}
	return boxes, nil
}

// languageHints returns the configured language codes, or derives them
// from the text the document's searchable pages expose. Scanned pages
// contribute nothing, so a fully scanned document yields no hints and the
// engine stays on its own defaults.
func (d *Detector) languageHints(doc engine.Document) []string {
	if len(d.cfg.Languages) > 0 {
		return d.cfg.Languages
	}
	var sample strings.Builder
	for i := 0; i < doc.PageCount() && sample.Len() < languageSampleLimit; i++ {
		page, err := doc.Page(i)
		if err != nil {
			continue
		}
		text := strings.TrimSpace(page.PlainText())
		if len(text) <= skipTextThreshold {
			continue
		}
		sample.WriteString(text)
		sample.WriteByte(' ')
	}
	return LanguageHints(sample.String())
}

func (d *Detector) wordMatches(text string, terms []string, patterns []*regexp.Regexp) bool {
	lower := strings.ToLower(text)
	for _, term := range terms {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
