// Package pipeline chains the redaction stages end to end: detect,
// apply, sanitize, verify, report. Application writes to a temporary file
// next to the output so the sanitization rewrite, not the redaction pass,
// produces the file that ships; the temporary is removed on every path.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/wudi/pdfredact/audit"
	"github.com/wudi/pdfredact/config"
	"github.com/wudi/pdfredact/detect"
	"github.com/wudi/pdfredact/engine"
	"github.com/wudi/pdfredact/geo"
	"github.com/wudi/pdfredact/object"
	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/ocr"
	"github.com/wudi/pdfredact/redact"
	"github.com/wudi/pdfredact/report"
	"github.com/wudi/pdfredact/sanitize"
)

// Request describes one redaction run.
type Request struct {
	InputPath  string
	OutputPath string

	Terms          []string
	Patterns       []string
	CommonPatterns []string
	RectSpec       string

	Fill         string
	Merge        bool
	RemoveImages bool
	Raster       bool
	RasterDPI    float64

	Sanitize     bool
	MetadataOnly bool
	Verify       bool
	ReportPath   string

	OCR    bool
	OCRDPI int
}

// NewRequest returns a request with the standard switches on: merging,
// image removal, sanitization, and verification.
func NewRequest(inPath, outPath string) Request {
	return Request{
		InputPath:    inPath,
		OutputPath:   outPath,
		Fill:         "black",
		Merge:        true,
		RemoveImages: true,
		Sanitize:     true,
		Verify:       true,
	}
}

// FromProfile builds a request from a configuration profile.
func FromProfile(p *config.Profile, inPath, outPath string) Request {
	return Request{
		InputPath:      inPath,
		OutputPath:     outPath,
		Terms:          p.Terms,
		Patterns:       p.Patterns,
		CommonPatterns: p.CommonPatterns,
		RectSpec:       p.RectSpec,
		Fill:           p.Fill,
		Merge:          p.MergeEnabled(),
		RemoveImages:   p.RemoveImagesEnabled(),
		Raster:         p.Raster,
		RasterDPI:      float64(p.RasterDPI),
		Sanitize:       p.SanitizeEnabled(),
		MetadataOnly:   p.MetadataOnly,
		Verify:         p.VerifyEnabled(),
		ReportPath:     p.ReportPath,
		OCR:            p.OCR,
		OCRDPI:         p.OCRDPI,
	}
}

// Outcome collects the results of every stage that ran.
type Outcome struct {
	Boxes      geo.PageRects
	Detection  *detect.Summary
	Apply      *redact.Stats
	Sanitize   *sanitize.Report
	Verified   bool
	Remaining  []string
	Report     *report.Report
	AuditRunID string
}

// Pipeline wires the stages to their collaborators.
type Pipeline struct {
	docs    engine.Engine
	store   object.Store
	src     detect.TextSource
	ocrEng  ocr.Engine
	history *audit.DB
	log     observability.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTextSource sets the extractor used for verification.
func WithTextSource(src detect.TextSource) Option {
	return func(p *Pipeline) { p.src = src }
}

// WithOCREngine sets the OCR engine used for scanned pages.
func WithOCREngine(eng ocr.Engine) Option {
	return func(p *Pipeline) { p.ocrEng = eng }
}

// WithAudit records every run in the history database.
func WithAudit(db *audit.DB) Option {
	return func(p *Pipeline) { p.history = db }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log observability.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// New builds a Pipeline. A nil document engine or tree store uses the
// registered defaults.
func New(docs engine.Engine, store object.Store, opts ...Option) *Pipeline {
	if docs == nil {
		docs = engine.Default()
	}
	if store == nil {
		store = object.DefaultStore()
	}
	p := &Pipeline{docs: docs, store: store, log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks that the input opens and has at least one page.
func (p *Pipeline) Validate(path string) error {
	doc, err := p.docs.Open(path)
	if err != nil {
		return fmt.Errorf("not a readable document: %w", err)
	}
	defer doc.Close()
	if doc.PageCount() == 0 {
		return fmt.Errorf("document has no pages")
	}
	return nil
}

// Run executes the stages selected by the request and returns the
// per-stage results. Detection or application failures abort the run;
// verification is advisory and never fails it.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Outcome, error) {
	if err := p.Validate(req.InputPath); err != nil {
		return nil, err
	}
	out := &Outcome{}

	boxes, summary, err := p.detectStage(ctx, req)
	if err != nil {
		return nil, err
	}
	out.Boxes = boxes
	out.Detection = summary

	applyTarget := req.OutputPath
	if req.Sanitize || req.MetadataOnly {
		applyTarget = req.OutputPath + ".tmp.pdf"
		defer os.Remove(applyTarget)
	}

	if err := p.applyStage(req, boxes, applyTarget, out); err != nil {
		return nil, err
	}

	if req.Sanitize || req.MetadataOnly {
		s := sanitize.New(p.store, sanitize.WithLogger(p.log))
		if req.MetadataOnly {
			out.Sanitize, err = s.MetadataOnly(applyTarget, req.OutputPath)
		} else {
			out.Sanitize, err = s.Sanitize(applyTarget, req.OutputPath)
		}
		if err != nil {
			return nil, fmt.Errorf("sanitize: %w", err)
		}
	}

	if req.Verify && p.src != nil && (len(req.Terms) > 0 || len(p.allPatterns(req)) > 0) {
		remaining, err := detect.VerifyFile(p.src, req.OutputPath, req.Terms, p.allPatterns(req))
		if err != nil {
			p.log.Warn("verification failed to run", observability.Error("err", err))
		} else {
			out.Verified = true
			out.Remaining = remaining
			if len(remaining) > 0 {
				p.log.Warn("content still present after redaction",
					observability.Int("remaining", len(remaining)))
			}
		}
	}

	out.Report = report.Build(req.InputPath, req.OutputPath, boxes, req.Terms, p.allPatterns(req))
	if out.Verified {
		out.Report.AttachVerification(out.Remaining)
	}
	if req.ReportPath != "" {
		if err := out.Report.WriteJSON(req.ReportPath); err != nil {
			return nil, err
		}
	}

	if p.history != nil {
		out.AuditRunID = p.recordRun(req, out)
	}
	return out, nil
}

func (p *Pipeline) detectStage(ctx context.Context, req Request) (geo.PageRects, *detect.Summary, error) {
	d := detect.New(p.docs,
		detect.WithTerms(req.Terms...),
		detect.WithPatterns(req.Patterns...),
		detect.WithCommonPatterns(req.CommonPatterns...),
		detect.WithRectSpec(req.RectSpec),
		detect.WithLogger(p.log),
	)
	boxes, summary, err := d.Find(req.InputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("detect: %w", err)
	}

	if req.OCR && len(summary.ScannedPages) > 0 {
		cfg := ocr.DefaultConfig()
		if req.OCRDPI > 0 {
			cfg.DPI = req.OCRDPI
		}
		od := ocr.NewDetector(p.docs, p.ocrEng, cfg, p.log)
		scanned, err := od.FindScanned(ctx, req.InputPath, req.Terms, p.allPatterns(req))
		if err != nil {
			return nil, nil, fmt.Errorf("ocr detect: %w", err)
		}
		for pageNo, rects := range scanned {
			boxes.Add(pageNo, rects...)
		}
	}
	return boxes, summary, nil
}

func (p *Pipeline) applyStage(req Request, boxes geo.PageRects, target string, out *Outcome) error {
	a := redact.New(p.docs,
		redact.WithFill(redact.FillColor(req.Fill)),
		redact.WithMerge(req.Merge),
		redact.WithImageRemoval(req.RemoveImages),
		redact.WithLogger(p.log),
	)
	var err error
	if req.Raster {
		out.Apply, err = a.ApplyRaster(req.InputPath, target, boxes, req.RasterDPI)
	} else {
		out.Apply, err = a.Apply(req.InputPath, target, boxes)
	}
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}
	return nil
}

func (p *Pipeline) allPatterns(req Request) []string {
	pats := append([]string(nil), req.Patterns...)
	for _, name := range req.CommonPatterns {
		if pat, ok := detect.Pattern(name); ok {
			pats = append(pats, pat)
		}
	}
	return pats
}

func (p *Pipeline) recordRun(req Request, out *Outcome) string {
	run := audit.Run{
		InputFile:        req.InputPath,
		OutputFile:       req.OutputPath,
		TermsSearched:    len(req.Terms),
		PatternsSearched: len(p.allPatterns(req)),
		Verified:         out.Verified,
	}
	if out.Apply != nil {
		run.RedactionsApplied = out.Apply.RectsApplied
		run.PagesModified = out.Apply.PagesTouched
	}
	if out.Sanitize != nil {
		run.SanitizeRemoved = out.Sanitize.Total()
	}
	if out.Verified {
		run.VerificationPassed = len(out.Remaining) == 0
	}
	id, err := p.history.Record(run)
	if err != nil {
		p.log.Warn("failed to record run history", observability.Error("err", err))
		return ""
	}
	return id
}
