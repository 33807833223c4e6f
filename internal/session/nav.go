package session

import "github.com/dgallion1/pdfmark/internal/doctree"

// Navigator tracks the current page of a document.
type Navigator struct {
	current int // 0-based
	total   int
}

// NewNavigator starts at the first page.
func NewNavigator(total int) *Navigator {
	return &Navigator{total: total}
}

// Clamp pulls the current index into [0, total).
func (n *Navigator) Clamp() {
	if n.current < 0 {
		n.current = 0
	}
	if n.total > 0 && n.current >= n.total {
		n.current = n.total - 1
	}
}

// Current returns the clamped 0-based page index.
func (n *Navigator) Current() int {
	n.Clamp()
	return n.current
}

// Total returns the page count.
func (n *Navigator) Total() int {
	return n.total
}

// JumpTo moves to a 1-based page. Out of range pages leave the position
// unchanged and return an *InvalidRangeError.
func (n *Navigator) JumpTo(page int) error {
	if page < 1 || page > n.total {
		return &InvalidRangeError{Start: page, End: page, Total: n.total}
	}
	n.current = page - 1
	return nil
}

// Next advances one page. Callers disable it on the last page; an
// overshoot is corrected by the next read.
func (n *Navigator) Next() {
	n.current++
}

// Previous goes back one page.
func (n *Navigator) Previous() {
	n.current--
}

// HasNext reports whether a later page exists.
func (n *Navigator) HasNext() bool {
	return n.Current() < n.total-1
}

// HasPrevious reports whether an earlier page exists.
func (n *Navigator) HasPrevious() bool {
	return n.Current() > 0
}

// GoToEntry moves to the target page of an outline entry.
func (n *Navigator) GoToEntry(e doctree.TOCEntry) {
	n.current = e.Page - 1
}
