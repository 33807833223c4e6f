package parser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dgallion1/pdfmark/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// Document is an opened PDF. It serves page count, outline and page
// conversion for one uploaded file.
type Document struct {
	data   []byte
	reader *pdflib.Reader
	pages  int
	toc    []doctree.TOCEntry
	opts   Options
}

// Open parses data as a PDF and reads its outline.
func Open(data []byte, opts Options) (doc *Document, err error) {
	// The pdf library panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("cannot open pdf: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("cannot open pdf: %w", err)
	}
	n := reader.NumPage()
	if n == 0 {
		return nil, ErrEmptyDocument
	}

	doc = &Document{
		data:   data,
		reader: reader,
		pages:  n,
		opts:   opts,
	}
	doc.toc = readOutline(reader, n)
	return doc, nil
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.pages
}

// TOC returns the outline entries in document order.
func (d *Document) TOC() []doctree.TOCEntry {
	out := make([]doctree.TOCEntry, len(d.toc))
	copy(out, d.toc)
	return out
}

// ConvertPages converts the 0-based page indices to Markdown in one pass.
// The result is aligned with indices. Any failure fails the whole batch.
func (d *Document) ConvertPages(ctx context.Context, indices []int) ([]doctree.PageData, error) {
	out := make([]doctree.PageData, 0, len(indices))
	var fallback *pdftotext

	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if idx < 0 || idx >= d.pages {
			return nil, fmt.Errorf("page index %d out of range [0, %d)", idx, d.pages)
		}

		data, err := d.convertPage(idx + 1)
		if err != nil {
			return nil, fmt.Errorf("convert page %d: %w", idx+1, err)
		}

		if data.Meta.Chars == 0 && d.opts.FallbackPdftotext {
			if fallback == nil {
				fallback = &pdftotext{data: d.data}
				defer fallback.close()
			}
			text, ferr := fallback.page(ctx, idx+1)
			if ferr == nil && text != "" {
				data.Text = text
				data.Meta.Chars = len([]rune(text))
				data.Meta.Fallback = true
			}
		}
		out = append(out, data)
	}
	return out, nil
}

func (d *Document) convertPage(num int) (data doctree.PageData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read page content: %v", r)
		}
	}()

	page := d.reader.Page(num)
	data.Meta.Page = num
	if page.V.IsNull() {
		return data, nil
	}

	content := page.Content()
	md := pageMarkdown(content.Text)
	data.Text = md.text
	data.Meta.BodyFontSize = md.bodySize
	data.Meta.Headings = md.headings
	data.Meta.Chars = md.chars
	return data, nil
}
