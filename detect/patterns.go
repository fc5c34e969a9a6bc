package detect

import "sort"

// commonPatterns is the built-in table of PII detection patterns. It is
// fixed at process start and never mutated; accessors hand out copies so
// concurrent readers need no synchronization.
var commonPatterns = map[string]string{
	"ssn":          `\b\d{3}-\d{2}-\d{4}\b`,
	"ssn_nohyphen": `\b\d{9}\b`,
	"email":        `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
	"phone":        `\b\(?(\d{3})\)?[-.\s]?(\d{3})[-.\s]?(\d{4})\b`,
	"credit_card":  `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`,
	"ip_address":   `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`,
	"date":         `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`,
	"zip_code":     `\b\d{5}(?:-\d{4})?\b`,
}

// CommonPatterns returns a copy of the built-in PII pattern table, keyed by
// short name.
func CommonPatterns() map[string]string {
	out := make(map[string]string, len(commonPatterns))
	for k, v := range commonPatterns {
		out[k] = v
	}
	return out
}

// Pattern looks up a built-in pattern by name.
func Pattern(name string) (string, bool) {
	p, ok := commonPatterns[name]
	return p, ok
}

// PatternNames returns the built-in pattern names in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(commonPatterns))
	for name := range commonPatterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
