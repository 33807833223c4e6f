package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Raw HTML in page Markdown is allowed through goldmark and then
// sanitized.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

var droppedElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Embed:    true,
	atom.Frame:    true,
	atom.Frameset: true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Base:     true,
	atom.Form:     true,
}

// ToHTML repairs and renders page Markdown to a sanitized HTML fragment.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Repair(markdown)), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return Sanitize(buf.String())
}

// Sanitize strips active content from an HTML fragment: script-like
// elements, event handler attributes and javascript: URLs.
func Sanitize(fragment string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var out bytes.Buffer
	for _, n := range nodes {
		if !clean(n) {
			continue
		}
		if err := html.Render(&out, n); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return out.String(), nil
}

// clean sanitizes n in place and reports whether it should be kept.
func clean(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return false
	case html.ElementNode:
		if droppedElements[n.DataAtom] {
			return false
		}
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if unsafeAttr(a) {
				continue
			}
			attrs = append(attrs, a)
		}
		n.Attr = attrs
	}

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !clean(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return true
}

func unsafeAttr(a html.Attribute) bool {
	key := strings.ToLower(a.Key)
	if strings.HasPrefix(key, "on") {
		return true
	}
	switch key {
	case "href", "src", "action", "formaction", "xlink:href":
		v := strings.ToLower(strings.TrimSpace(a.Val))
		v = strings.Join(strings.Fields(v), "")
		return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") ||
			(strings.HasPrefix(v, "data:") && !strings.HasPrefix(v, "data:image/"))
	}
	return false
}
