package session

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgallion1/pdfmark/internal/doctree"
)

// ErrorPlaceholder is the text stored for pages whose conversion failed.
const ErrorPlaceholder = "Error loading page."

// Converter turns 0-based page indices into Markdown. The result is
// aligned positionally with the indices.
type Converter interface {
	ConvertPages(ctx context.Context, indices []int) ([]doctree.PageData, error)
}

// PageCache holds the converted pages of one document. Entries are never
// recomputed; a failed batch is cached as placeholders and not retried.
// It does no locking; the owning Session serializes access.
type PageCache struct {
	conv    Converter
	total   int
	entries map[int]doctree.PageEntry
	log     *slog.Logger
}

// NewPageCache returns an empty cache for a document of total pages.
func NewPageCache(conv Converter, total int, log *slog.Logger) *PageCache {
	if log == nil {
		log = slog.Default()
	}
	return &PageCache{
		conv:    conv,
		total:   total,
		entries: make(map[int]doctree.PageEntry),
		log:     log,
	}
}

// GetOrConvert returns an entry for every requested index, converting the
// missing ones in a single batched call. Out-of-range indices are ignored.
// When the batch fails its pages get placeholders and a *ConversionError
// is returned together with the entries.
func (c *PageCache) GetOrConvert(ctx context.Context, indices []int) (map[int]doctree.PageEntry, error) {
	result := make(map[int]doctree.PageEntry, len(indices))
	var missing []int
	for _, idx := range indices {
		if idx < 0 || idx >= c.total {
			continue
		}
		if e, ok := c.entries[idx]; ok {
			result[idx] = e
			continue
		}
		if !slices.Contains(missing, idx) {
			missing = append(missing, idx)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}
	slices.Sort(missing)

	pages, err := c.conv.ConvertPages(ctx, missing)
	if err != nil {
		c.log.Error("page conversion failed", "pages", humanPages(missing), "error", err)
		for _, idx := range missing {
			e := doctree.PageEntry{
				Index: idx,
				Text:  ErrorPlaceholder,
				Meta:  doctree.PageMeta{Page: idx + 1},
				Err:   err.Error(),
			}
			c.entries[idx] = e
			result[idx] = e
		}
		return result, &ConversionError{Pages: missing, Err: err}
	}

	for i, idx := range missing {
		e := doctree.PageEntry{Index: idx, Meta: doctree.PageMeta{Page: idx + 1}}
		if i < len(pages) {
			e.Text = pages[i].Text
			e.Meta = pages[i].Meta
		}
		c.entries[idx] = e
		result[idx] = e
	}
	c.log.Debug("pages converted", "pages", humanPages(missing))
	return result, nil
}

// Get returns a cached entry without converting.
func (c *PageCache) Get(idx int) (doctree.PageEntry, bool) {
	e, ok := c.entries[idx]
	return e, ok
}

// Len returns the number of cached entries.
func (c *PageCache) Len() int {
	return len(c.entries)
}

// Total returns the page count of the document.
func (c *PageCache) Total() int {
	return c.total
}

// Texts returns cached page texts in ascending page order.
func (c *PageCache) Texts() []doctree.Page {
	keys := make([]int, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pages := make([]doctree.Page, 0, len(keys))
	for _, k := range keys {
		pages = append(pages, doctree.Page{Number: k + 1, Text: c.entries[k].Text})
	}
	return pages
}

// Concat joins all cached page texts in ascending page order.
func (c *PageCache) Concat() string {
	pages := c.Texts()
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n\n")
}

// AllIndices returns every page index of the document.
func (c *PageCache) AllIndices() []int {
	out := make([]int, c.total)
	for i := range out {
		out[i] = i
	}
	return out
}
