package doctree

// TOCEntry is one outline entry of an opened PDF.
type TOCEntry struct {
	Level int    `json:"level"` // Nesting level, 1 for top-level bookmarks
	Title string `json:"title"`
	Page  int    `json:"page"` // 1-based target page, -1 when unresolved
}

// PageMeta is the layout metadata the converter reports for a page.
type PageMeta struct {
	Page         int      `json:"page"` // 1-based
	BodyFontSize float64  `json:"body_font_size,omitempty"`
	Headings     []string `json:"headings,omitempty"`
	Chars        int      `json:"chars"`
	Fallback     bool     `json:"fallback,omitempty"` // Text came from pdftotext
}

// PageData is the converter output for a single page.
type PageData struct {
	Text string
	Meta PageMeta
}

// PageEntry is a cached page of a document session.
type PageEntry struct {
	Index int      `json:"index"` // 0-based
	Text  string   `json:"text"`
	Meta  PageMeta `json:"metadata"`
	Err   string   `json:"error,omitempty"` // Set on error placeholders
}

// Failed reports whether the entry is an error placeholder.
func (e PageEntry) Failed() bool {
	return e.Err != ""
}

// Page is page text ready for chunking.
type Page struct {
	Number int // 1-based
	Text   string
}

// Chunk is a run of consecutive pages (or part of one) sized for a prompt.
type Chunk struct {
	Text      string
	Index     int
	PageStart int
	PageEnd   int
}
