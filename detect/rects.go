package detect

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/wudi/pdfredact/geo"
)

// specRect mirrors one rectangle entry in a user rect-spec file.
type specRect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// LoadRectSpec reads user-supplied rectangles from a JSON file of the form
// {"1": [{"x0":72,"y0":540,"x1":320,"y1":565}, ...], "2": [...]}. Keys that
// are not positive integers are reported in the warnings slice and skipped;
// only an unreadable or unparsable file is an error.
func LoadRectSpec(path string) (map[int][]geo.Rect, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var raw map[string][]specRect
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse rect spec: %w", err)
	}
	out := make(map[int][]geo.Rect, len(raw))
	var warnings []string
	for key, entries := range raw {
		pageNo, err := strconv.Atoi(key)
		if err != nil || pageNo < 1 {
			warnings = append(warnings, fmt.Sprintf("rect spec key %q is not a page number, ignored", key))
			continue
		}
		rects := make([]geo.Rect, 0, len(entries))
		for _, e := range entries {
			rects = append(rects, geo.Rect{X0: e.X0, Y0: e.Y0, X1: e.X1, Y1: e.Y1})
		}
		out[pageNo] = rects
	}
	return out, warnings, nil
}
