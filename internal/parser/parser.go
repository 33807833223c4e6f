package parser

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrEmptyDocument is returned by Open for PDFs without pages.
var ErrEmptyDocument = errors.New("the PDF seems to be empty or invalid")

// Options controls how pages are converted to Markdown.
type Options struct {
	// FallbackPdftotext extracts a page with pdftotext when the text layer
	// yields nothing.
	FallbackPdftotext bool
}

// IsPDF reports whether the filename carries a .pdf extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
