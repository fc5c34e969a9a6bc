// Package geo provides the shared rectangle model for detection and
// redaction: page-coordinate rectangles, page-bounds clipping, and the
// greedy merge used to collapse overlapping or abutting regions before
// destructive edits.
package geo

import (
	"fmt"
	"math"

	"github.com/wudi/pdfredact/coords"
)

// MinClipArea is the smallest area (in square page units) a clipped
// rectangle may have and still be considered meaningful.
const MinClipArea = 1.0

// Rect is an axis-aligned rectangle in page coordinate space.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) String() string {
	return fmt.Sprintf("[%.2f %.2f %.2f %.2f]", r.X0, r.Y0, r.X1, r.Y1)
}

// Width returns x extent; negative for non-normalized rectangles.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns y extent; negative for non-normalized rectangles.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Area returns the rectangle's area, or 0 when degenerate.
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width() * r.Height()
}

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool { return r.X1 <= r.X0 || r.Y1 <= r.Y0 }

// Normalized returns the rectangle with corners swapped so X0 <= X1 and
// Y0 <= Y1.
func (r Rect) Normalized() Rect {
	if r.X0 > r.X1 {
		r.X0, r.X1 = r.X1, r.X0
	}
	if r.Y0 > r.Y1 {
		r.Y0, r.Y1 = r.Y1, r.Y0
	}
	return r
}

// Intersect returns the intersection of r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, o.X0),
		Y0: math.Max(r.Y0, o.Y0),
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
	}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

// Contains reports whether o lies entirely within r.
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// Transform maps the rectangle through m and returns the normalized
// bounding box of the four transformed corners.
func (r Rect) Transform(m coords.Matrix) Rect {
	corners := []coords.Point{
		{X: r.X0, Y: r.Y0},
		{X: r.X1, Y: r.Y0},
		{X: r.X0, Y: r.Y1},
		{X: r.X1, Y: r.Y1},
	}
	out := Rect{X0: math.Inf(1), Y0: math.Inf(1), X1: math.Inf(-1), Y1: math.Inf(-1)}
	for _, c := range corners {
		p := m.Transform(c)
		out.X0 = math.Min(out.X0, p.X)
		out.Y0 = math.Min(out.Y0, p.Y)
		out.X1 = math.Max(out.X1, p.X)
		out.Y1 = math.Max(out.Y1, p.Y)
	}
	return out
}

// Clip intersects r with the page bounds. The second return value is false
// when the intersection is empty or its area does not exceed MinClipArea,
// which guarantees every accepted rectangle lies fully inside its page and
// is large enough to act on.
func Clip(r, bounds Rect) (Rect, bool) {
	clipped := r.Normalized().Intersect(bounds.Normalized())
	if clipped.IsEmpty() || clipped.Area() <= MinClipArea {
		return Rect{}, false
	}
	return clipped, true
}
