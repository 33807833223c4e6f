package export

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pdfmark/internal/session"
)

// MarkdownFileName returns name with its extension replaced by ".md".
func MarkdownFileName(name string) string {
	return replaceExt(name, ".md")
}

// DocxFileName returns name with its extension replaced by ".docx".
func DocxFileName(name string) string {
	return replaceExt(name, ".docx")
}

func replaceExt(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "document"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// Markdown converts every page of the loaded document through the session
// cache and returns the texts joined in page order. Pages that fail keep
// their placeholder text; the *ConversionError is returned alongside.
func Markdown(ctx context.Context, sess *session.Session) (string, error) {
	if !sess.Loaded() {
		return "", session.ErrNoDocument
	}
	_, err := sess.Pages.GetOrConvert(ctx, sess.Pages.AllIndices())
	return sess.Pages.Concat(), err
}
