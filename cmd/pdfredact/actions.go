package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/urfave/cli/v2"

	"github.com/wudi/pdfredact/audit"
	"github.com/wudi/pdfredact/config"
	"github.com/wudi/pdfredact/detect"
	"github.com/wudi/pdfredact/object"
	"github.com/wudi/pdfredact/ocr"
	"github.com/wudi/pdfredact/pipeline"
	"github.com/wudi/pdfredact/plaintext"
	"github.com/wudi/pdfredact/redact"
	"github.com/wudi/pdfredact/sanitize"
)

func redactAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: pdfredact redact INPUT OUTPUT")
	}
	input, output := c.Args().Get(0), c.Args().Get(1)
	if err := validateInput(input); err != nil {
		return err
	}

	var req pipeline.Request
	if c.IsSet("profile") {
		profile, err := config.Load(c.String("profile"))
		if err != nil {
			return err
		}
		req = pipeline.FromProfile(profile, input, output)
	} else {
		req = pipeline.NewRequest(input, output)
		req.Terms = c.StringSlice("term")
		req.Patterns = c.StringSlice("regex")
		req.CommonPatterns = c.StringSlice("pattern")
		req.RectSpec = c.String("rects")
		req.Fill = c.String("fill")
		req.Merge = !c.Bool("no-merge")
		req.RemoveImages = !c.Bool("keep-images")
		req.Raster = c.Bool("raster")
		req.RasterDPI = c.Float64("raster-dpi")
		req.Sanitize = !c.Bool("no-sanitize")
		req.MetadataOnly = c.Bool("metadata-only")
		req.Verify = !c.Bool("no-verify")
		req.OCR = c.Bool("ocr")
		req.OCRDPI = c.Int("ocr-dpi")
		req.ReportPath = c.String("report")
	}
	if err := checkCriteria(req.Terms, req.Patterns, req.CommonPatterns, req.RectSpec); err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(newLogger(c)),
		pipeline.WithTextSource(plaintext.FileSource{}),
	}
	if c.String("audit") != "" {
		db, err := audit.Open(c.String("audit"))
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, pipeline.WithAudit(db))
	}

	out, err := pipeline.New(nil, nil, opts...).Run(c.Context, req)
	if err != nil {
		return err
	}

	printWarnings(out.Detection.Warnings)
	if out.Apply != nil {
		printWarnings(out.Apply.Warnings)
		colorGreen.Printf("✓ %d redactions applied across %d pages\n",
			out.Apply.RectsApplied, out.Apply.PagesTouched)
		if out.Apply.Failures > 0 {
			colorYellow.Fprintf(os.Stderr, "! %d redactions failed to stage\n", out.Apply.Failures)
		}
	}
	if out.Sanitize != nil {
		colorGreen.Printf("✓ sanitization removed %d items\n", out.Sanitize.Total())
	}
	if out.Verified {
		if len(out.Remaining) == 0 {
			colorGreen.Println("✓ verification passed: no criteria remain")
		} else {
			colorYellow.Fprintf(os.Stderr, "! verification found %d remaining:\n", len(out.Remaining))
			for _, r := range out.Remaining {
				colorYellow.Fprintf(os.Stderr, "    %s\n", r)
			}
		}
	}
	if req.ReportPath != "" {
		colorCyan.Printf("report written to %s\n", req.ReportPath)
	}
	if out.AuditRunID != "" {
		colorCyan.Printf("audit run %s\n", out.AuditRunID)
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func sanitizeAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: pdfredact sanitize INPUT OUTPUT")
	}
	input, output := c.Args().Get(0), c.Args().Get(1)
	if err := validateInput(input); err != nil {
		return err
	}

	s := sanitize.New(nil,
		sanitize.WithAnnotations(!c.Bool("keep-annotations")),
		sanitize.WithLogger(newLogger(c)),
	)
	var (
		rep *sanitize.Report
		err error
	)
	if c.Bool("metadata-only") {
		rep, err = s.MetadataOnly(input, output)
	} else {
		rep, err = s.Sanitize(input, output)
	}
	if err != nil {
		return err
	}
	colorGreen.Printf("✓ removed %d items\n", rep.Total())
	for _, row := range []struct {
		label string
		n     int
	}{
		{"metadata entries", rep.Metadata},
		{"scripts and actions", rep.Scripts},
		{"embedded files", rep.EmbeddedFiles},
		{"external links", rep.Links},
		{"form fields", rep.Forms},
		{"thumbnails and private data", rep.Thumbnails},
		{"annotations", rep.Annotations},
	} {
		if row.n > 0 {
			fmt.Printf("  %-28s %d\n", row.label, row.n)
		}
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func analyzeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: pdfredact analyze INPUT")
	}
	input := c.Args().Get(0)
	if err := validateInput(input); err != nil {
		return err
	}

	a, err := sanitize.AnalyzeFile(object.DefaultStore(), input)
	if err != nil {
		return err
	}
	colorCyan.Printf("%s\n", input)
	fmt.Printf("  metadata keys:   %s\n", orNone(strings.Join(a.MetadataKeys, ", ")))
	fmt.Printf("  javascript:      %v\n", a.JavaScriptFound)
	for _, call := range a.ScriptCalls {
		colorYellow.Printf("    script: %s\n", call)
	}
	fmt.Printf("  embedded files:  %d\n", a.EmbeddedFileCount)
	fmt.Printf("  links:           %d\n", a.LinkCount)
	fmt.Printf("  forms:           %v\n", a.FormsFound)
	fmt.Printf("  annotations:     %d\n", a.AnnotationCount)
	fmt.Printf("  thumbnails:      %d\n", a.ThumbnailCount)
	fmt.Printf("  encrypted:       %v\n", a.Encrypted)
	if len(a.Warnings) == 0 {
		colorGreen.Println("✓ no warnings")
		return nil
	}
	for _, w := range a.Warnings {
		colorYellow.Printf("! %s\n", w)
	}
	return nil
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: pdfredact verify INPUT")
	}
	input := c.Args().Get(0)
	if err := validateInput(input); err != nil {
		return err
	}
	terms := c.StringSlice("term")
	patterns, err := resolvePatterns(c)
	if err != nil {
		return err
	}
	if len(terms) == 0 && len(patterns) == 0 {
		return fmt.Errorf("nothing to verify: provide --term, --regex, or --pattern")
	}

	remaining, err := detect.VerifyFile(plaintext.FileSource{}, input, terms, patterns)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		colorGreen.Println("✓ verification passed: no criteria remain")
		return nil
	}
	for _, r := range remaining {
		colorYellow.Fprintf(os.Stderr, "! still present: %s\n", r)
	}
	return fmt.Errorf("%d criteria still present", len(remaining))
}

func previewAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: pdfredact preview INPUT OUTPUT")
	}
	input, output := c.Args().Get(0), c.Args().Get(1)
	if err := validateInput(input); err != nil {
		return err
	}
	if err := checkCriteria(c.StringSlice("term"), c.StringSlice("regex"),
		c.StringSlice("pattern"), c.String("rects")); err != nil {
		return err
	}
	log := newLogger(c)

	d := detect.New(nil,
		detect.WithTerms(c.StringSlice("term")...),
		detect.WithPatterns(c.StringSlice("regex")...),
		detect.WithCommonPatterns(c.StringSlice("pattern")...),
		detect.WithRectSpec(c.String("rects")),
		detect.WithLogger(log),
	)
	boxes, summary, err := d.Find(input)
	if err != nil {
		return err
	}
	printWarnings(summary.Warnings)

	stats, err := redact.New(nil, redact.WithLogger(log)).Preview(input, output, boxes)
	if err != nil {
		return err
	}
	printWarnings(stats.Warnings)
	colorGreen.Printf("✓ %d regions highlighted across %d pages\n",
		stats.RectsApplied, stats.PagesTouched)
	fmt.Printf("wrote %s\n", output)
	return nil
}

func searchableAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: pdfredact searchable INPUT OUTPUT")
	}
	input, output := c.Args().Get(0), c.Args().Get(1)
	if err := validateInput(input); err != nil {
		return err
	}

	cfg := ocr.DefaultConfig()
	if c.Int("ocr-dpi") > 0 {
		cfg.DPI = c.Int("ocr-dpi")
	}
	cfg.Languages = c.StringSlice("lang")

	d := ocr.NewDetector(nil, nil, cfg, newLogger(c))
	res, err := d.MakeSearchable(c.Context, input, output)
	if err != nil {
		return err
	}
	colorGreen.Printf("✓ %d words recognized onto %d scanned pages\n",
		res.WordsInserted, res.PagesConverted)
	fmt.Printf("wrote %s\n", output)
	return nil
}

func patternsAction(c *cli.Context) error {
	table := detect.CommonPatterns()
	for _, name := range detect.PatternNames() {
		colorCyan.Printf("%-14s", name)
		fmt.Printf(" %s\n", table[name])
	}
	return nil
}

func historyAction(c *cli.Context) error {
	path := c.String("audit")
	if path == "" {
		return fmt.Errorf("history needs --audit PATH")
	}
	db, err := audit.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.History(c.String("input"), c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, run := range runs {
		status := colorGreen
		mark := "✓"
		if run.Error != "" || (run.Verified && !run.VerificationPassed) {
			status = colorYellow
			mark = "!"
		}
		status.Printf("%s %s  %s -> %s\n", mark,
			run.StartedAt.Format("2006-01-02 15:04"), run.InputFile, run.OutputFile)
		fmt.Printf("    run %s: %d redacted on %d pages, %d sanitized\n",
			run.ID, run.RedactionsApplied, run.PagesModified, run.SanitizeRemoved)
		if run.Error != "" {
			colorYellow.Printf("    error: %s\n", run.Error)
		}
	}
	return nil
}

// validateInput rejects files that are not PDFs before any stage opens
// them, using the magic bytes rather than the extension.
func validateInput(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if !filetype.Is(head[:n], "pdf") {
		return fmt.Errorf("%s is not a PDF document", path)
	}
	return nil
}

func checkCriteria(terms, patterns, common []string, rectSpec string) error {
	if len(terms) == 0 && len(patterns) == 0 && len(common) == 0 && rectSpec == "" {
		return fmt.Errorf("nothing to redact: provide --term, --regex, --pattern, or --rects")
	}
	for _, name := range common {
		if _, ok := detect.Pattern(name); !ok {
			return fmt.Errorf("unknown pattern %q (see: pdfredact patterns)", name)
		}
	}
	return nil
}

// resolvePatterns combines --regex values with the expansions of --pattern
// names, erroring on unknown names.
func resolvePatterns(c *cli.Context) ([]string, error) {
	patterns := append([]string(nil), c.StringSlice("regex")...)
	names := append([]string(nil), c.StringSlice("pattern")...)
	sort.Strings(names)
	for _, name := range names {
		pat, ok := detect.Pattern(name)
		if !ok {
			return nil, fmt.Errorf("unknown pattern %q (see: pdfredact patterns)", name)
		}
		patterns = append(patterns, pat)
	}
	return patterns, nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		colorYellow.Fprintf(os.Stderr, "! %s\n", w)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
