package detect

import (
	"regexp"
	"sort"
	"testing"
)

func TestCommonPatternsCompile(t *testing.T) {
	for name, pat := range CommonPatterns() {
		if _, err := regexp.Compile("(?im)" + pat); err != nil {
			t.Fatalf("pattern %q does not compile: %v", name, err)
		}
	}
}

func TestCommonPatternsHits(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"ssn", "SSN 123-45-6789 on file"},
		{"ssn_nohyphen", "id 123456789 recorded"},
		{"email", "contact alice@example.com now"},
		{"phone", "call (415) 555-0142 today"},
		{"credit_card", "card 4111-1111-1111-1111 charged"},
		{"ip_address", "from 192.168.1.10 last night"},
		{"date", "signed 03/14/2024 by both"},
		{"zip_code", "Portland OR 97205-1234"},
	}
	for _, tc := range cases {
		pat, ok := Pattern(tc.name)
		if !ok {
			t.Fatalf("Pattern(%q) missing", tc.name)
		}
		re := regexp.MustCompile("(?im)" + pat)
		if !re.MatchString(tc.text) {
			t.Errorf("%s: no match in %q", tc.name, tc.text)
		}
	}
}

func TestCommonPatternsReturnsCopy(t *testing.T) {
	m := CommonPatterns()
	m["ssn"] = "tampered"
	if got, _ := Pattern("ssn"); got == "tampered" {
		t.Fatal("CommonPatterns exposed internal table")
	}
}

func TestPatternNamesSorted(t *testing.T) {
	names := PatternNames()
	if len(names) != len(CommonPatterns()) {
		t.Fatalf("PatternNames returned %d names, want %d", len(names), len(CommonPatterns()))
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
}
