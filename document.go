// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSource abstracts the text-layer extractor the parser consumes. The
// production implementation reads PDFs; tests feed literal line slices.
type PageSource interface {
	Open(path string) (Document, error)
}

// Document is one open source document: an ordered sequence of pages, each an
// ordered sequence of raw text lines.
type Document interface {
	NumPages() int
	// PageLines returns the raw text lines of the 1-based page index in
	// reading order: left to right, top to bottom.
	PageLines(ctx context.Context, index int) ([]string, error)
	Close() error
}

// PDFSource opens the text layer of generated PDF quotes.
type PDFSource struct{}

func (PDFSource) Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &pdfDocument{f: f, r: r}, nil
}

type pdfDocument struct {
	f io.Closer
	r *pdf.Reader
}

func (d *pdfDocument) NumPages() int { return d.r.NumPage() }

func (d *pdfDocument) PageLines(ctx context.Context, index int) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	p := d.r.Page(index)
	if p.V.IsNull() {
		return nil, fmt.Errorf("null page %d", index)
	}
	return pageLines(p.Content().Text), nil
}

func (d *pdfDocument) Close() error { return d.f.Close() }

// pageLines reassembles positioned text fragments into reading-order lines:
// fragments sharing a baseline (within tolerance) form one line, lines are
// ordered top to bottom, fragments within a line left to right.
func pageLines(texts []pdf.Text) []string {
	const tolerance = 2.0

	type row struct {
		y     float64
		cells []pdf.Text
	}
	var rows []row

	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		placed := false
		for i := range rows {
			if abs(rows[i].y-t.Y) < tolerance {
				rows[i].cells = append(rows[i].cells, t)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, row{y: t.Y, cells: []pdf.Text{t}})
		}
	}

	// PDF Y grows upward; larger Y is higher on the page.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		sort.SliceStable(r.cells, func(i, j int) bool { return r.cells[i].X < r.cells[j].X })
		var b strings.Builder
		for i, c := range r.cells {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString(strings.TrimSpace(c.S))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// LinesSource serves pre-extracted page lines, one slice per page. Used by
// tests and by callers that already hold the text layer.
type LinesSource struct {
	Docs map[string][][]string
}

func (s LinesSource) Open(path string) (Document, error) {
	pages, ok := s.Docs[path]
	if !ok {
		return nil, fmt.Errorf("unknown document %q", path)
	}
	return &linesDocument{pages: pages}, nil
}

type linesDocument struct {
	pages [][]string
}

func (d *linesDocument) NumPages() int { return len(d.pages) }

func (d *linesDocument) PageLines(ctx context.Context, index int) ([]string, error) {
	if index < 1 || index > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", index)
	}
	return d.pages[index-1], nil
}

func (d *linesDocument) Close() error { return nil }
