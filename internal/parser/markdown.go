package parser

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"
)

// Heading thresholds relative to the body font size.
var headingScales = []struct {
	scale  float64
	prefix string
}{
	{1.6, "# "},
	{1.3, "## "},
	{1.15, "### "},
}

type pageText struct {
	text     string
	bodySize float64
	headings []string
	chars    int
}

type glyphRow struct {
	y      float64
	size   float64 // largest glyph
	glyphs []pdflib.Text
}

// pageMarkdown lays glyphs out into rows and emits Markdown. Bold font
// runs become **strong** spans and rows set well above the body size
// become headings.
func pageMarkdown(glyphs []pdflib.Text) pageText {
	var out pageText
	if len(glyphs) == 0 {
		return out
	}
	out.bodySize = bodyFontSize(glyphs)
	rows := groupRows(glyphs, out.bodySize)

	var b strings.Builder
	var prev *glyphRow
	for i := range rows {
		row := &rows[i]
		prefix := headingPrefix(row.size, out.bodySize)
		var line string
		if prefix != "" {
			line = strings.TrimSpace(rowText(row.glyphs, false))
		} else {
			line = strings.TrimSpace(rowText(row.glyphs, true))
		}
		if line == "" {
			continue
		}

		if prev != nil {
			gap := prev.y - row.y
			lineHeight := math.Max(prev.size, row.size) * 1.2
			switch {
			case prefix != "" || headingPrefix(prev.size, out.bodySize) != "":
				b.WriteString("\n\n")
			case lineHeight > 0 && gap > lineHeight*1.5:
				b.WriteString("\n\n")
			default:
				b.WriteString("\n")
			}
		}
		if prefix != "" {
			out.headings = append(out.headings, line)
			b.WriteString(prefix)
		}
		b.WriteString(line)
		prev = row
	}

	out.text = b.String()
	out.chars = utf8.RuneCountInString(strings.TrimSpace(out.text))
	if out.chars == 0 {
		out.text = ""
	}
	return out
}

// bodyFontSize is the glyph size carrying the most characters.
func bodyFontSize(glyphs []pdflib.Text) float64 {
	counts := make(map[float64]int)
	for _, g := range glyphs {
		if strings.TrimSpace(g.S) == "" {
			continue
		}
		counts[math.Round(g.FontSize*2)/2] += utf8.RuneCountInString(g.S)
	}
	var best float64
	bestCount := -1
	for size, n := range counts {
		if n > bestCount || (n == bestCount && size < best) {
			best, bestCount = size, n
		}
	}
	return best
}

func headingPrefix(size, body float64) string {
	if body <= 0 {
		return ""
	}
	for _, h := range headingScales {
		if size >= body*h.scale {
			return h.prefix
		}
	}
	return ""
}

// groupRows buckets glyphs by baseline, top of the page first.
func groupRows(glyphs []pdflib.Text, body float64) []glyphRow {
	tolerance := body * 0.3
	if tolerance <= 0 {
		tolerance = 1
	}

	sorted := make([]pdflib.Text, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var rows []glyphRow
	for _, g := range sorted {
		n := len(rows)
		if n > 0 && math.Abs(rows[n-1].y-g.Y) <= tolerance {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			if strings.TrimSpace(g.S) != "" && g.FontSize > rows[n-1].size {
				rows[n-1].size = g.FontSize
			}
			continue
		}
		row := glyphRow{y: g.Y, glyphs: []pdflib.Text{g}}
		if strings.TrimSpace(g.S) != "" {
			row.size = g.FontSize
		}
		rows = append(rows, row)
	}

	for i := range rows {
		sort.SliceStable(rows[i].glyphs, func(a, b int) bool {
			return rows[i].glyphs[a].X < rows[i].glyphs[b].X
		})
	}
	return rows
}

// rowText joins glyphs left to right, inserting spaces at visual gaps.
func rowText(glyphs []pdflib.Text, markBold bool) string {
	var b strings.Builder
	var run strings.Builder
	runBold := false

	flushRun := func() {
		s := run.String()
		run.Reset()
		if s == "" {
			return
		}
		if !runBold || !markBold || strings.TrimSpace(s) == "" {
			b.WriteString(s)
			return
		}
		// Keep surrounding spaces outside the markers.
		trimmed := strings.TrimSpace(s)
		lead := s[:strings.Index(s, trimmed)]
		trail := s[len(lead)+len(trimmed):]
		b.WriteString(lead)
		b.WriteString("**")
		b.WriteString(trimmed)
		b.WriteString("**")
		b.WriteString(trail)
	}

	var prev *pdflib.Text
	for i := range glyphs {
		g := &glyphs[i]
		if prev != nil && needsSpace(prev, g) {
			run.WriteByte(' ')
		}
		bold := isBoldFont(g.Font)
		if strings.TrimSpace(g.S) != "" && bold != runBold {
			flushRun()
			runBold = bold
		}
		run.WriteString(g.S)
		prev = g
	}
	flushRun()
	return b.String()
}

func needsSpace(prev, cur *pdflib.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(cur.S, " ") {
		return false
	}
	size := math.Max(prev.FontSize, cur.FontSize)
	return cur.X-(prev.X+prev.W) > size*0.25
}

func isBoldFont(name string) bool {
	// Subset fonts are prefixed with a tag like "ABCDEF+".
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ToLower(name)
	for _, marker := range []string{"bold", "black", "heavy", "semibold", "demi"} {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}
