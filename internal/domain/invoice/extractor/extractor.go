// Package extractor pulls per-page plain text out of invoice PDFs.
//
// It uses ledongthuc/pdf (pure Go, no CGO). Text is rebuilt row by row so
// line breaks survive for the downstream line parser; pages without readable
// text (scanned images, blank pages) are skipped.
package extractor

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads page text from PDF files on disk.
type PDFExtractor struct{}

// New creates a PDFExtractor.
func New() *PDFExtractor {
	return &PDFExtractor{}
}

// ExtractPages returns the plain text of each readable page in order,
// with one line per text row.
func (e *PDFExtractor) ExtractPages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := pageText(page)
		if err != nil {
			continue // skip unreadable pages
		}
		if text == "" {
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// pageText joins a page's text rows into newline-separated lines.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for _, word := range row.Content {
			if line.Len() > 0 {
				line.WriteString(" ")
			}
			line.WriteString(word.S)
		}
		trimmed := strings.TrimSpace(line.String())
		if trimmed == "" {
			continue
		}
		b.WriteString(trimmed)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}
