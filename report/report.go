// Package report assembles a record of one redaction run: what was
// searched, what was removed, how file sizes changed, and whether
// verification found residual content. Reports serialize to JSON for
// machines and render to Markdown or HTML for people.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/wudi/pdfredact/geo"
)

// Summary aggregates run-level counts.
type Summary struct {
	TotalRedactions  int `json:"total_redactions"`
	PagesModified    int `json:"pages_modified"`
	TermsSearched    int `json:"terms_searched"`
	PatternsSearched int `json:"patterns_searched"`
}

// FileAnalysis compares input and output file sizes in bytes.
type FileAnalysis struct {
	InputSize     int64 `json:"input_size"`
	OutputSize    int64 `json:"output_size"`
	SizeReduction int64 `json:"size_reduction"`
}

// PageDetail records the regions applied to one page.
type PageDetail struct {
	RedactionCount int        `json:"redaction_count"`
	Rectangles     []geo.Rect `json:"rectangles"`
}

// Verification records the advisory post-redaction text check.
type Verification struct {
	RemainingTerms []string `json:"remaining_terms"`
	Passed         bool     `json:"verification_passed"`
}

// Report is the full record of a redaction run.
type Report struct {
	ID           string             `json:"id"`
	InputFile    string             `json:"input_file"`
	OutputFile   string             `json:"output_file"`
	Timestamp    time.Time          `json:"timestamp"`
	Summary      Summary            `json:"redaction_summary"`
	FileAnalysis FileAnalysis       `json:"file_analysis"`
	Details      map[int]PageDetail `json:"redaction_details"`
	Verification *Verification      `json:"verification,omitempty"`
}

// Build assembles a report from the applied rectangle map. File sizes are
// read from disk; a missing file simply reports zero.
func Build(inPath, outPath string, boxes geo.PageRects, terms, patterns []string) *Report {
	r := &Report{
		ID:         uuid.NewString(),
		InputFile:  inPath,
		OutputFile: outPath,
		Timestamp:  time.Now(),
		Summary: Summary{
			TotalRedactions:  boxes.Total(),
			PagesModified:    len(boxes.PagesWithRects()),
			TermsSearched:    len(terms),
			PatternsSearched: len(patterns),
		},
		Details: make(map[int]PageDetail),
	}
	for pageNo, rects := range boxes {
		if len(rects) == 0 {
			continue
		}
		r.Details[pageNo] = PageDetail{
			RedactionCount: len(rects),
			Rectangles:     append([]geo.Rect(nil), rects...),
		}
	}
	r.FileAnalysis.InputSize = fileSize(inPath)
	r.FileAnalysis.OutputSize = fileSize(outPath)
	if r.FileAnalysis.OutputSize > 0 {
		r.FileAnalysis.SizeReduction = r.FileAnalysis.InputSize - r.FileAnalysis.OutputSize
	}
	return r
}

// AttachVerification records the outcome of the post-redaction text check.
func (r *Report) AttachVerification(remaining []string) {
	r.Verification = &Verification{
		RemainingTerms: append([]string(nil), remaining...),
		Passed:         len(remaining) == 0,
	}
}

// WriteJSON saves the report as indented JSON.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown renders the report for human review.
func (r *Report) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Redaction Report\n\n")
	fmt.Fprintf(&sb, "- Run: %s\n", r.ID)
	fmt.Fprintf(&sb, "- Input: %s\n", r.InputFile)
	fmt.Fprintf(&sb, "- Output: %s\n", r.OutputFile)
	fmt.Fprintf(&sb, "- Time: %s\n\n", r.Timestamp.Format(time.RFC3339))

	fmt.Fprintf(&sb, "## Summary\n\n")
	fmt.Fprintf(&sb, "- Redactions applied: %d\n", r.Summary.TotalRedactions)
	fmt.Fprintf(&sb, "- Pages modified: %d\n", r.Summary.PagesModified)
	fmt.Fprintf(&sb, "- Terms searched: %d\n", r.Summary.TermsSearched)
	fmt.Fprintf(&sb, "- Patterns searched: %d\n\n", r.Summary.PatternsSearched)

	fmt.Fprintf(&sb, "## Files\n\n")
	fmt.Fprintf(&sb, "- Input size: %s\n", humanize.Bytes(uint64(r.FileAnalysis.InputSize)))
	fmt.Fprintf(&sb, "- Output size: %s\n", humanize.Bytes(uint64(r.FileAnalysis.OutputSize)))
	if r.FileAnalysis.SizeReduction != 0 {
		fmt.Fprintf(&sb, "- Size change: %s\n", formatDelta(r.FileAnalysis.SizeReduction))
	}
	sb.WriteString("\n")

	if len(r.Details) > 0 {
		fmt.Fprintf(&sb, "## Pages\n\n")
		pages := make([]int, 0, len(r.Details))
		for pageNo := range r.Details {
			pages = append(pages, pageNo)
		}
		sort.Ints(pages)
		for _, pageNo := range pages {
			fmt.Fprintf(&sb, "- Page %d: %d region(s)\n", pageNo, r.Details[pageNo].RedactionCount)
		}
		sb.WriteString("\n")
	}

	if r.Verification != nil {
		fmt.Fprintf(&sb, "## Verification\n\n")
		if r.Verification.Passed {
			sb.WriteString("No searched content remains in the output text.\n")
		} else {
			sb.WriteString("Content still present in output text:\n\n")
			for _, item := range r.Verification.RemainingTerms {
				fmt.Fprintf(&sb, "- %s\n", item)
			}
		}
	}
	return sb.String()
}

// HTML renders the Markdown report to HTML.
func (r *Report) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(r.Markdown()), &buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML saves the HTML rendering.
func (r *Report) WriteHTML(path string) error {
	data, err := r.HTML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func formatDelta(d int64) string {
	if d > 0 {
		return fmt.Sprintf("-%s", humanize.Bytes(uint64(d)))
	}
	return fmt.Sprintf("+%s", humanize.Bytes(uint64(-d)))
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
