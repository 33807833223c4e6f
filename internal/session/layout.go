package session

import "fmt"

// Ratio is a width split between the PDF pane and the Markdown pane.
type Ratio struct {
	Label    string  `json:"label"`
	PDF      float64 `json:"pdf"`
	Markdown float64 `json:"markdown"`
}

// Ratios are the selectable presets, PDF-only to Markdown-only.
var Ratios = []Ratio{
	{Label: "2:0", PDF: 2, Markdown: 0},
	{Label: "1.5:0.5", PDF: 1.5, Markdown: 0.5},
	{Label: "1:1", PDF: 1, Markdown: 1},
	{Label: "0.5:1.5", PDF: 0.5, Markdown: 1.5},
	{Label: "0:2", PDF: 0, Markdown: 2},
}

// DefaultRatio is the even split.
var DefaultRatio = Ratios[2]

// ParseRatio looks up a preset by label.
func ParseRatio(label string) (Ratio, error) {
	for _, r := range Ratios {
		if r.Label == label {
			return r, nil
		}
	}
	return Ratio{}, fmt.Errorf("unknown width ratio %q", label)
}

// ShowPDF reports whether the PDF pane is visible.
func (r Ratio) ShowPDF() bool { return r.PDF > 0 }

// ShowMarkdown reports whether the Markdown pane is visible.
func (r Ratio) ShowMarkdown() bool { return r.Markdown > 0 }
