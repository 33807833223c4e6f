package parser

import (
	"bytes"
	"fmt"
	"strings"
)

type testOutline struct {
	title    string
	page     int  // 1-based target page
	useA     bool // GoTo action instead of /Dest
	children []testOutline
}

// buildPDF assembles a minimal PDF whose pages carry the given content
// streams. F1 is Helvetica and F2 Helvetica-Bold, both with uniform widths.
func buildPDF(contents []string, outline []testOutline) []byte {
	var objs []string
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}

	catalog := add("")
	pagesObj := add("")
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))
	font := "<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>"
	f1 := add(fmt.Sprintf(font, "Helvetica", widths))
	f2 := add(fmt.Sprintf(font, "Helvetica-Bold", widths))

	var pageIDs []int
	for _, c := range contents {
		stream := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c))
		page := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R /F2 %d 0 R >> >> /Contents %d 0 R >>",
			pagesObj, f1, f2, stream))
		pageIDs = append(pageIDs, page)
	}

	var kids []string
	for _, id := range pageIDs {
		kids = append(kids, fmt.Sprintf("%d 0 R", id))
	}
	objs[pagesObj-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pageIDs))

	dest := func(page int) string {
		return fmt.Sprintf("[%d 0 R /Fit]", pageIDs[page-1])
	}

	var addItems func(items []testOutline, parent int) (first, last int)
	addItems = func(items []testOutline, parent int) (int, int) {
		ids := make([]int, len(items))
		for i := range items {
			ids[i] = add("")
		}
		for i, it := range items {
			var b strings.Builder
			fmt.Fprintf(&b, "<< /Title (%s) /Parent %d 0 R", it.title, parent)
			if it.useA {
				fmt.Fprintf(&b, " /A << /S /GoTo /D %s >>", dest(it.page))
			} else {
				fmt.Fprintf(&b, " /Dest %s", dest(it.page))
			}
			if i > 0 {
				fmt.Fprintf(&b, " /Prev %d 0 R", ids[i-1])
			}
			if i+1 < len(ids) {
				fmt.Fprintf(&b, " /Next %d 0 R", ids[i+1])
			}
			if len(it.children) > 0 {
				cf, cl := addItems(it.children, ids[i])
				fmt.Fprintf(&b, " /First %d 0 R /Last %d 0 R /Count %d", cf, cl, len(it.children))
			}
			b.WriteString(" >>")
			objs[ids[i]-1] = b.String()
		}
		if len(ids) == 0 {
			return 0, 0
		}
		return ids[0], ids[len(ids)-1]
	}

	if len(outline) > 0 {
		root := add("")
		first, last := addItems(outline, root)
		objs[root-1] = fmt.Sprintf("<< /Type /Outlines /First %d 0 R /Last %d 0 R /Count %d >>", first, last, len(outline))
		objs[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R /Outlines %d 0 R >>", pagesObj, root)
	} else {
		objs[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, catalog, xref)
	return buf.Bytes()
}

func textLine(font string, size, x, y int, s string) string {
	return fmt.Sprintf("BT /%s %d Tf %d %d Td (%s) Tj ET", font, size, x, y, s)
}
