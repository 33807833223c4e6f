package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgallion1/pdfmark/internal/doctree"
)

// fakeDoc is a Document that records every conversion batch.
type fakeDoc struct {
	pages   int
	toc     []doctree.TOCEntry
	calls   [][]int
	failing map[int]bool
}

func (d *fakeDoc) PageCount() int          { return d.pages }
func (d *fakeDoc) TOC() []doctree.TOCEntry { return d.toc }

func (d *fakeDoc) converted(idx int) (n int) {
	for _, c := range d.calls {
		if slices.Contains(c, idx) {
			n++
		}
	}
	return n
}

func (d *fakeDoc) ConvertPages(_ context.Context, indices []int) ([]doctree.PageData, error) {
	d.calls = append(d.calls, slices.Clone(indices))
	for _, idx := range indices {
		if d.failing[idx] {
			return nil, errors.New("converter exploded")
		}
	}
	out := make([]doctree.PageData, len(indices))
	for i, idx := range indices {
		out[i] = doctree.PageData{
			Text: fmt.Sprintf("page %d text", idx+1),
			Meta: doctree.PageMeta{Page: idx + 1, Chars: 11},
		}
	}
	return out, nil
}

func opener(doc *fakeDoc) OpenFunc {
	return func([]byte) (Document, error) { return doc, nil }
}
