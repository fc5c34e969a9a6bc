// Package detect locates content slated for redaction: verbatim terms via
// the engine's search primitive, regular expressions via text reconstructed
// from layout spans, and user-supplied rectangles from a JSON spec. Output
// is a page-keyed rectangle map plus a summary of matches and skips.
package detect

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/wudi/pdfredact/coords"
	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/observability"
)

// scannedTextThreshold is the number of extractable characters below which
// a page is classified as scanned (image-only) and left to OCR.
const scannedTextThreshold = 10

// MatchKind distinguishes how a match was found.
type MatchKind string

const (
	KindTerm  MatchKind = "term"
	KindRegex MatchKind = "regex"
)

// Match is a located occurrence of a term or pattern. Values are immutable
// once produced.
type Match struct {
	Text string
	Rect geo.Rect
	Page int // 1-based
	Kind MatchKind
}

// Summary reports what a detection run found and what it skipped.
type Summary struct {
	Matches      []Match
	TermMatches  int
	RegexMatches int
	UserRects    int
	ScannedPages []int
	Warnings     []string
}

func (s *Summary) warnf(format string, args ...interface{}) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// Detector finds redaction targets in a document.
type Detector struct {
	eng         engine.Engine
	terms       []string
	patterns    []string
	commonNames []string
	rectSpec    string
	log         observability.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithTerms adds exact terms to search for.
func WithTerms(terms ...string) Option {
	return func(d *Detector) { d.terms = append(d.terms, terms...) }
}

// WithPatterns adds regular expressions to match. Patterns are compiled
// case-insensitive and multi-line; invalid patterns are skipped with a
// warning.
func WithPatterns(patterns ...string) Option {
	return func(d *Detector) { d.patterns = append(d.patterns, patterns...) }
}

// WithCommonPatterns adds entries from the built-in PII pattern table by
// name. Unknown names are skipped at detection time with a warning.
func WithCommonPatterns(names ...string) Option {
	return func(d *Detector) { d.commonNames = append(d.commonNames, names...) }
}

// WithRectSpec merges user-supplied rectangles from a JSON file keyed by
// page number.
func WithRectSpec(path string) Option {
	return func(d *Detector) { d.rectSpec = path }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log observability.Logger) Option {
	return func(d *Detector) { d.log = log }
}

// New creates a Detector backed by the given engine. A nil engine uses the
// registered default.
func New(eng engine.Engine, opts ...Option) *Detector {
	if eng == nil {
		eng = engine.Default()
	}
	d := &Detector{eng: eng, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Find locates every term, pattern, and user rectangle in the document and
// returns the per-page rectangle map together with a run summary. The map
// keys every page of the document, including pages without matches. Only a
// failure to open the document is fatal; all per-page failures degrade to
// "no match contributed" with a warning in the summary.
func (d *Detector) Find(path string) (geo.PageRects, *Summary, error) {
	summary := &Summary{}
	doc, err := d.eng.Open(path)
	if err != nil {
		return nil, summary, fmt.Errorf("open document: %w", err)
	}
	defer doc.Close()

	compiled := d.compilePatterns(summary)
	boxes := make(geo.PageRects, doc.PageCount())

	for i := 0; i < doc.PageCount(); i++ {
		pageNo := i + 1
		boxes[pageNo] = nil

		page, err := doc.Page(i)
		if err != nil {
			summary.warnf("page %d: %v", pageNo, err)
			continue
		}
		if isScanned(page) {
			summary.ScannedPages = append(summary.ScannedPages, pageNo)
			d.log.Info("skipping scanned page; OCR detection handles image-only pages",
				observability.Int("page", pageNo))
			continue
		}

		inv, invErr := pageInverse(page)
		if invErr != nil {
			summary.warnf("page %d: rotation transform: %v", pageNo, invErr)
			continue
		}

		for _, term := range d.terms {
			for _, rect := range page.Search(term) {
				m := Match{
					Text: term,
					Rect: normalizeRotation(rect, page, inv),
					Page: pageNo,
					Kind: KindTerm,
				}
				summary.Matches = append(summary.Matches, m)
				summary.TermMatches++
				boxes.Add(pageNo, m.Rect)
			}
		}

		for _, cp := range compiled {
			for _, oc := range d.patternMatches(page, pageNo, cp, inv) {
				if oc.skip != "" {
					summary.warnf("page %d: %s", pageNo, oc.skip)
					continue
				}
				summary.Matches = append(summary.Matches, oc.match)
				summary.RegexMatches++
				boxes.Add(pageNo, oc.match.Rect)
			}
		}

		if n := len(boxes[pageNo]); n > 0 {
			d.log.Debug("page matches", observability.Int("page", pageNo), observability.Int("count", n))
		}
	}

	if d.rectSpec != "" {
		d.mergeRectSpec(boxes, summary)
	}
	return boxes, summary, nil
}

func (d *Detector) compilePatterns(summary *Summary) []*regexp.Regexp {
	patterns := append([]string(nil), d.patterns...)
	for _, name := range d.commonNames {
		p, ok := Pattern(name)
		if !ok {
			summary.warnf("unknown common pattern %q", name)
			continue
		}
		patterns = append(patterns, p)
	}
	var out []*regexp.Regexp
	for _, pat := range patterns {
		re, err := regexp.Compile("(?im)" + pat)
		if err != nil {
			summary.warnf("invalid regex pattern %q: %v", pat, err)
			d.log.Warn("skipping invalid pattern",
				observability.String("pattern", pat), observability.Error("err", err))
			continue
		}
		out = append(out, re)
	}
	return out
}

// outcome models the per-item skip/match policy explicitly: a regex hit
// either yields a match or names why it was skipped.
type outcome struct {
	match Match
	skip  string
}

// patternMatches reconstructs each line's text from its spans, approximates
// per-character rectangles as equal horizontal slices of the owning span
// (an accepted positioning error for variable-width fonts), and unions the
// slices under each regex hit.
func (d *Detector) patternMatches(page engine.Page, pageNo int, re *regexp.Regexp, inv *coords.Matrix) []outcome {
	layout, err := page.Layout()
	if err != nil {
		return []outcome{{skip: fmt.Sprintf("text layout: %v", err)}}
	}
	var out []outcome
	for _, block := range layout.Blocks {
		for _, line := range block.Lines {
			text, charRects := lineText(line)
			if text == "" {
				continue
			}
			for _, span := range re.FindAllStringIndex(text, -1) {
				start := utf8.RuneCountInString(text[:span[0]])
				end := start + utf8.RuneCountInString(text[span[0]:span[1]])
				if end > len(charRects) || start >= end {
					// Reconstruction mismatch between text and span
					// geometry; drop the hit rather than guess.
					continue
				}
				rect := charRects[start]
				for i := start + 1; i < end; i++ {
					rect = rect.Union(charRects[i])
				}
				out = append(out, outcome{match: Match{
					Text: text[span[0]:span[1]],
					Rect: normalizeRotation(rect, page, inv),
					Page: pageNo,
					Kind: KindRegex,
				}})
			}
		}
	}
	return out
}

func (d *Detector) mergeRectSpec(boxes geo.PageRects, summary *Summary) {
	spec, warnings, err := LoadRectSpec(d.rectSpec)
	if err != nil {
		summary.warnf("rect spec %s: %v", d.rectSpec, err)
		return
	}
	summary.Warnings = append(summary.Warnings, warnings...)
	for pageNo, rects := range spec {
		if _, ok := boxes[pageNo]; !ok {
			summary.warnf("rect spec page %d not in document, ignored", pageNo)
			continue
		}
		boxes.Add(pageNo, rects...)
		summary.UserRects += len(rects)
	}
}

// isScanned reports whether the page has too little extractable text to be
// searched natively.
func isScanned(page engine.Page) bool {
	return len(strings.TrimSpace(page.PlainText())) < scannedTextThreshold
}

// pageInverse returns the inverse page transform for rotated pages, or nil
// for identity-rotation pages where search rectangles are already in
// content space.
func pageInverse(page engine.Page) (*coords.Matrix, error) {
	if page.Rotation() == 0 {
		return nil, nil
	}
	inv, err := page.Transform().Inverse()
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func normalizeRotation(rect geo.Rect, page engine.Page, inv *coords.Matrix) geo.Rect {
	if inv == nil {
		return rect
	}
	return rect.Transform(*inv)
}

// lineText concatenates a line's span texts and builds one rectangle per
// character by slicing each span's bounds uniformly.
func lineText(line engine.TextLine) (string, []geo.Rect) {
	var sb strings.Builder
	var rects []geo.Rect
	for _, span := range line.Spans {
		chars := []rune(span.Text)
		if len(chars) == 0 {
			continue
		}
		width := span.Bounds.Width() / float64(len(chars))
		for i, c := range chars {
			sb.WriteRune(c)
			rects = append(rects, geo.Rect{
				X0: span.Bounds.X0 + float64(i)*width,
				Y0: span.Bounds.Y0,
				X1: span.Bounds.X0 + float64(i+1)*width,
				Y1: span.Bounds.Y1,
			})
		}
	}
	return sb.String(), rects
}
