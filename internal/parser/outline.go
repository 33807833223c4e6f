package parser

import (
	"strings"

	"github.com/dgallion1/pdfmark/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// Guards against cyclic /Next or /Kids links in broken files.
const (
	maxOutlineEntries = 10000
	maxOutlineDepth   = 64
)

// readOutline flattens the /Outlines tree depth-first. Entries whose
// destination cannot be mapped to a page get page -1.
func readOutline(r *pdflib.Reader, numPages int) []doctree.TOCEntry {
	root := r.Trailer().Key("Root")
	outlines := root.Key("Outlines")
	if outlines.IsNull() {
		return nil
	}

	res := &destResolver{root: root, numPages: numPages}
	var toc []doctree.TOCEntry

	var walk func(item pdflib.Value, level int)
	walk = func(item pdflib.Value, level int) {
		if level > maxOutlineDepth {
			return
		}
		for ; !item.IsNull() && len(toc) < maxOutlineEntries; item = item.Key("Next") {
			toc = append(toc, doctree.TOCEntry{
				Level: level,
				Title: strings.TrimSpace(item.Key("Title").Text()),
				Page:  res.page(r, item),
			})
			walk(item.Key("First"), level+1)
		}
	}
	walk(outlines.Key("First"), 1)

	return toc
}

type destResolver struct {
	root     pdflib.Value
	numPages int
	pageKeys map[string]int
}

// page returns the 1-based target page of an outline item.
func (d *destResolver) page(r *pdflib.Reader, item pdflib.Value) int {
	dest := item.Key("Dest")
	if dest.IsNull() {
		action := item.Key("A")
		if action.Key("S").Name() != "GoTo" {
			return -1
		}
		dest = action.Key("D")
	}

	switch dest.Kind() {
	case pdflib.Name:
		dest = d.root.Key("Dests").Key(dest.Name())
	case pdflib.String:
		dest = lookupNameTree(d.root.Key("Names").Key("Dests"), dest.RawString(), 0)
	}
	if dest.Kind() == pdflib.Dict {
		dest = dest.Key("D")
	}
	if dest.Kind() != pdflib.Array || dest.Len() == 0 {
		return -1
	}

	target := dest.Index(0)
	switch target.Kind() {
	case pdflib.Integer:
		// Remote-style destinations carry a 0-based page number.
		n := int(target.Int64()) + 1
		if n < 1 || n > d.numPages {
			return -1
		}
		return n
	case pdflib.Dict:
		if d.pageKeys == nil {
			d.pageKeys = make(map[string]int, d.numPages)
			for i := 1; i <= d.numPages; i++ {
				d.pageKeys[r.Page(i).V.String()] = i
			}
		}
		if n, ok := d.pageKeys[target.String()]; ok {
			return n
		}
	}
	return -1
}

func lookupNameTree(node pdflib.Value, name string, depth int) pdflib.Value {
	if node.IsNull() || depth > maxOutlineDepth {
		return pdflib.Value{}
	}
	if names := node.Key("Names"); names.Kind() == pdflib.Array {
		for i := 0; i+1 < names.Len(); i += 2 {
			if names.Index(i).RawString() == name {
				return names.Index(i + 1)
			}
		}
	}
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		if v := lookupNameTree(kids.Index(i), name, depth+1); !v.IsNull() {
			return v
		}
	}
	return pdflib.Value{}
}
