package geo

import "sort"

// PageRects maps 1-based page numbers to the rectangles slated for
// redaction on that page. Detection keys every page of the document, even
// pages with no rectangles, so consumers can distinguish "no matches" from
// "page never examined".
type PageRects map[int][]Rect

// Add appends rectangles to a page's slice, creating the entry if needed.
func (p PageRects) Add(page int, rects ...Rect) {
	p[page] = append(p[page], rects...)
}

// Total returns the number of rectangles across all pages.
func (p PageRects) Total() int {
	n := 0
	for _, rects := range p {
		n += len(rects)
	}
	return n
}

// PagesWithRects returns the sorted page numbers that carry at least one
// rectangle.
func (p PageRects) PagesWithRects() []int {
	var pages []int
	for page, rects := range p {
		if len(rects) > 0 {
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)
	return pages
}

// Pages returns all keyed page numbers in ascending order.
func (p PageRects) Pages() []int {
	pages := make([]int, 0, len(p))
	for page := range p {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// Clone returns a deep copy.
func (p PageRects) Clone() PageRects {
	out := make(PageRects, len(p))
	for page, rects := range p {
		cp := make([]Rect, len(rects))
		copy(cp, rects)
		out[page] = cp
	}
	return out
}
