package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/pdfmark/internal/render"
)

// Heading run sizes in half-points, by level.
var headingSizes = map[int]string{1: "36", 2: "32", 3: "28"}

const bodyHeadingSize = "24"

var mdParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// WriteDocx renders markdown as a Word document: headings become bold runs
// sized by level, strong emphasis becomes bold, lists keep their markers.
func WriteDocx(w io.Writer, markdown string) error {
	src := []byte(render.Repair(markdown))
	root := mdParser.Parse(text.NewReader(src))

	b := &docxBuilder{doc: docx.New().WithDefaultTheme(), src: src}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		b.block(n, "", 0)
	}
	if _, err := b.doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

type runStyle struct {
	bold   bool
	italic bool
	code   bool
	size   string
}

type docxBuilder struct {
	doc *docx.Docx
	src []byte
}

func (b *docxBuilder) block(n ast.Node, prefix string, depth int) {
	switch n := n.(type) {
	case *ast.Heading:
		size, ok := headingSizes[n.Level]
		if !ok {
			size = bodyHeadingSize
		}
		p := b.doc.AddParagraph()
		b.inline(p, n, runStyle{bold: true, size: size})

	case *ast.Paragraph, *ast.TextBlock:
		p := b.doc.AddParagraph()
		b.run(p, prefix, runStyle{})
		b.inline(p, n, runStyle{})

	case *ast.List:
		i := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", i)
				i++
			}
			marker = strings.Repeat("    ", depth) + marker
			first := true
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				if _, nested := c.(*ast.List); nested {
					b.block(c, "", depth+1)
					continue
				}
				if first {
					b.block(c, marker, depth)
					first = false
				} else {
					b.block(c, strings.Repeat("    ", depth+1), depth)
				}
			}
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			line := strings.TrimRight(string(seg.Value(b.src)), "\r\n")
			p := b.doc.AddParagraph()
			b.run(p, line, runStyle{code: true})
		}

	case *east.Table:
		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			p := b.doc.AddParagraph()
			_, header := row.(*east.TableHeader)
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				if cell != row.FirstChild() {
					b.run(p, "\t", runStyle{})
				}
				b.inline(p, cell, runStyle{bold: header})
			}
		}

	case *ast.ThematicBreak, *ast.HTMLBlock:

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			b.block(c, prefix, depth)
		}
	}
}

func (b *docxBuilder) inline(p *docx.Paragraph, n ast.Node, st runStyle) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.run(p, string(c.Segment.Value(b.src)), st)
			switch {
			case c.HardLineBreak():
				b.run(p, "\n", st)
			case c.SoftLineBreak():
				b.run(p, " ", st)
			}
		case *ast.String:
			b.run(p, string(c.Value), st)
		case *ast.Emphasis:
			s := st
			if c.Level >= 2 {
				s.bold = true
			} else {
				s.italic = true
			}
			b.inline(p, c, s)
		case *ast.CodeSpan:
			s := st
			s.code = true
			b.inline(p, c, s)
		case *ast.AutoLink:
			b.run(p, string(c.URL(b.src)), st)
		case *ast.RawHTML:
		default:
			b.inline(p, c, st)
		}
	}
}

func (b *docxBuilder) run(p *docx.Paragraph, s string, st runStyle) {
	if s == "" {
		return
	}
	r := p.AddText(s)
	if st.bold {
		r.Bold()
	}
	if st.italic {
		r.Italic()
	}
	if st.size != "" {
		r.Size(st.size)
	}
	if st.code {
		r.Font("Courier New", "Courier New", "Courier New", "default")
	}
}
