// Package plaintext provides text sources for verifying redacted output.
// The file-backed source uses ledongthuc/pdf (pure Go, no CGO), a parser
// with no write path and therefore no way to accidentally alter the file
// being verified. An engine-backed source serves documents that only exist
// inside a document engine, such as test fixtures.
package plaintext

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/wudi/pdfredact/engine"
)

// FileSource extracts plain text from documents on disk.
type FileSource struct{}

// Text reads the document at path and returns its concatenated page text.
// Unreadable pages are skipped; only a failure to open or parse the file
// is an error.
func (FileSource) Text(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

// EngineSource extracts text through a document engine.
type EngineSource struct {
	Engine engine.Engine
}

// Text opens the document through the engine and concatenates page text.
func (s EngineSource) Text(path string) (string, error) {
	eng := s.Engine
	if eng == nil {
		eng = engine.Default()
	}
	doc, err := eng.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.PageCount(); i++ {
		page, err := doc.Page(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(page.PlainText())
	}
	return sb.String(), nil
}
