package parser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// pdftotext shells out to poppler's pdftotext for pages without a usable
// text layer. The document is written to a temp file once per batch.
type pdftotext struct {
	data []byte
	path string
	err  error
}

func (p *pdftotext) page(ctx context.Context, num int) (string, error) {
	if p.path == "" && p.err == nil {
		p.path, p.err = writeTemp(p.data)
	}
	if p.err != nil {
		return "", p.err
	}

	n := strconv.Itoa(num)
	cmd := exec.CommandContext(ctx, "pdftotext", "-f", n, "-l", n, "-layout", p.path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return strings.TrimSpace(strings.TrimRight(string(out), "\f")), nil
}

func (p *pdftotext) close() {
	if p.path != "" {
		os.Remove(p.path)
	}
}

func writeTemp(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "pdfmark-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return tmp.Name(), nil
}
