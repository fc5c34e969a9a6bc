package detect

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TextSource extracts a document's plain text for verification.
type TextSource interface {
	Text(path string) (string, error)
}

// VerifyText re-runs detection's matching logic over already-extracted
// text and returns a descriptor for every term or pattern still present.
// Matching is case-insensitive over NFC-normalized text; invalid patterns
// are skipped, mirroring detection. An empty result means verified absent.
func VerifyText(text string, terms, patterns []string) []string {
	var remaining []string
	normalized := norm.NFC.String(text)
	lower := strings.ToLower(normalized)
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(norm.NFC.String(term))) {
			remaining = append(remaining, "term: "+term)
		}
	}
	for _, pat := range patterns {
		re, err := regexp.Compile("(?im)" + pat)
		if err != nil {
			continue
		}
		if re.MatchString(normalized) {
			remaining = append(remaining, "regex: "+pat)
		}
	}
	return remaining
}

// VerifyFile extracts the document's text through src and applies
// VerifyText. Extraction failure is returned as an error rather than being
// conflated with "content found".
func VerifyFile(src TextSource, path string, terms, patterns []string) ([]string, error) {
	if src == nil {
		return nil, fmt.Errorf("verify %s: nil text source", path)
	}
	text, err := src.Text(path)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", path, err)
	}
	return VerifyText(text, terms, patterns), nil
}
