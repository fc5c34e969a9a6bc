// Command pdfredact removes sensitive content from PDF documents: it
// locates terms, regular expressions, and common PII patterns, blacks out
// the matching regions destructively, strips metadata and active content,
// and verifies the result.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/wudi/pdfredact/detect"
	"github.com/wudi/pdfredact/observability"
	"github.com/wudi/pdfredact/redact"

	_ "github.com/wudi/pdfredact/ocr/tesseract"
)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

func main() {
	app := &cli.App{
		Name:  "pdfredact",
		Usage: "destructive PDF redaction, sanitization, and verification",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug-level diagnostics on stderr"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "errors only on stderr"},
			&cli.StringFlag{Name: "audit", Usage: "record runs in the SQLite history database at `PATH`"},
		},
		Commands: []*cli.Command{
			{
				Name:      "redact",
				Usage:     "detect and black out content, then sanitize the result",
				ArgsUsage: "INPUT OUTPUT",
				Flags: append(criteriaFlags(),
					&cli.StringFlag{Name: "profile", Usage: "load terms and settings from a YAML profile at `PATH`"},
					&cli.StringFlag{
						Name:  "fill",
						Value: "black",
						Usage: fmt.Sprintf("fill color (%s)", strings.Join(redact.FillColorNames(), ", ")),
					},
					&cli.BoolFlag{Name: "no-merge", Usage: "do not merge overlapping or adjacent boxes"},
					&cli.BoolFlag{Name: "keep-images", Usage: "do not remove images under redaction boxes"},
					&cli.BoolFlag{Name: "raster", Usage: "rasterize redacted pages instead of editing content"},
					&cli.Float64Flag{Name: "raster-dpi", Value: redact.DefaultRasterDPI, Usage: "render resolution for --raster"},
					&cli.BoolFlag{Name: "no-sanitize", Usage: "skip the structural sanitization pass"},
					&cli.BoolFlag{Name: "metadata-only", Usage: "sanitize metadata only, keep other structures"},
					&cli.BoolFlag{Name: "no-verify", Usage: "skip the post-redaction text check"},
					&cli.BoolFlag{Name: "ocr", Usage: "run OCR detection on scanned pages"},
					&cli.IntFlag{Name: "ocr-dpi", Usage: "render resolution for OCR detection"},
					&cli.StringFlag{Name: "report", Usage: "write a JSON redaction report to `PATH`"},
				),
				Action: redactAction,
			},
			{
				Name:      "sanitize",
				Usage:     "strip metadata, scripts, embedded files, and other active content",
				ArgsUsage: "INPUT OUTPUT",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "metadata-only", Usage: "clear document metadata and nothing else"},
					&cli.BoolFlag{Name: "keep-annotations", Usage: "leave residual annotations in place"},
				},
				Action: sanitizeAction,
			},
			{
				Name:      "analyze",
				Usage:     "report security and privacy risks without modifying the file",
				ArgsUsage: "INPUT",
				Action:    analyzeAction,
			},
			{
				Name:      "verify",
				Usage:     "check that no search criteria remain in a document's text",
				ArgsUsage: "INPUT",
				Flags:     criteriaFlags(),
				Action:    verifyAction,
			},
			{
				Name:      "preview",
				Usage:     "highlight what redaction would remove, without removing it",
				ArgsUsage: "INPUT OUTPUT",
				Flags:     criteriaFlags(),
				Action:    previewAction,
			},
			{
				Name:      "searchable",
				Usage:     "OCR scanned pages and add an invisible text layer",
				ArgsUsage: "INPUT OUTPUT",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "ocr-dpi", Usage: "render resolution for recognition"},
					&cli.StringSliceFlag{Name: "lang", Usage: "Tesseract language code hint (repeatable)"},
				},
				Action: searchableAction,
			},
			{
				Name:   "patterns",
				Usage:  "list the built-in PII patterns",
				Action: patternsAction,
			},
			{
				Name:  "history",
				Usage: "show past runs from the audit database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "input", Usage: "only runs for this input file"},
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum rows to show"},
				},
				Action: historyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		colorRed.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// criteriaFlags are shared by every command that searches for content.
func criteriaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "term", Aliases: []string{"t"}, Usage: "literal text to find (repeatable)"},
		&cli.StringSliceFlag{Name: "regex", Aliases: []string{"r"}, Usage: "regular expression to find (repeatable)"},
		&cli.StringSliceFlag{
			Name:  "pattern",
			Usage: fmt.Sprintf("built-in PII pattern (%s)", strings.Join(detect.PatternNames(), ", ")),
		},
		&cli.StringFlag{Name: "rects", Usage: "JSON file of page rectangles to redact"},
	}
}

// newLogger follows the run-wide verbosity flags. Diagnostics go to stderr
// as JSON so stdout stays clean for command output.
func newLogger(c *cli.Context) observability.Logger {
	level := slog.LevelInfo
	if c.Bool("quiet") {
		level = slog.LevelError
	}
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	return observability.NewSlog(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
