// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/quotelab/quote-xtract/logger"
)

// Stats records diagnostic counters for one parse. The per-form counters exist
// for observability only; downstream rows are built from the items themselves.
type Stats struct {
	PagesScanned      int `json:"pages_scanned"`
	ItemsFound        int `json:"items_found"`
	InlineAnchors     int `json:"inline_anchors"`
	CombinedAnchors   int `json:"combined_anchors"`
	ThreeLineAnchors  int `json:"three_line_anchors"`
	WindowedAnchors   int `json:"windowed_anchors"`
	DroppedCandidates int `json:"dropped_candidates"`
}

var (
	// Price, quantity and sum all inline: "… 450 ₽ 1 450 ₽".
	reInlineAnchor = regexp.MustCompile(`(?i)(\d+(?: \d{3})*(?:[.,]\d{1,2})?)\s?(?:₽|руб\.?|р\.)\s(\d{1,4})\s(\d+(?: \d{3})*(?:[.,]\d{1,2})?)\s?(?:₽|руб\.?|р\.)$`)

	// Quantity and sum combined on one line: "2 3 000 ₽".
	reCombinedQtySum = regexp.MustCompile(`(?i)^(\d{1,4})\s(?:шт\.?\s)?(\d+(?: \d{3})*(?:[.,]\d{1,2})?)\s?(?:₽|руб\.?|р\.)$`)
)

type anchorForm int

const (
	formInline anchorForm = iota
	formCombined
	formThreeLine
	formWindowed
)

// anchorHit is one resolved anchor: the quantity, the name fragment found on
// the anchor line itself, any window lines folded back into the name, and the
// position where the scan resumes.
type anchorHit struct {
	form   anchorForm
	qty    int
	prefix string
	extra  []string
	next   int
}

// scanner performs the single forward pass over a document's pages. One
// scanner owns one parse: buffer, totals state and counters are not shared.
type scanner struct {
	cfg   *Config
	cls   *classifier
	agg   *aggregator
	stats Stats
}

func newScanner(cfg *Config) *scanner {
	return &scanner{cfg: cfg, cls: newClassifier(cfg), agg: newAggregator()}
}

// scanPage runs the per-page state machine: Scanning accumulates name
// fragments and resolves anchors; a totals marker flips the page into totals
// mode for its remainder.
func (s *scanner) scanPage(raw []string) {
	s.stats.PagesScanned++

	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if n := NormalizeLine(l); n != "" {
			lines = append(lines, n)
		}
	}

	var buf []string
	inTotals := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		prev := ""
		if i > 0 {
			prev = lines[i-1]
		}
		cl := s.cls.classify(line, prev)

		if inTotals {
			continue
		}

		switch cl {
		case classTotals, classProjectTotal:
			buf = nil
			inTotals = true
			logger.Debug(fmt.Sprintf("Totals boundary: line=%q", line), true)
			continue
		case classNoise, classHeader:
			continue
		}

		if hit, ok := s.resolveAnchor(lines, i); ok {
			// Source order: fragments accumulated before the anchor, then the
			// anchor line's own name fragment, then any window lines.
			parts := append([]string{}, buf...)
			if hit.prefix != "" {
				parts = append(parts, hit.prefix)
			}
			parts = append(parts, hit.extra...)
			name := s.cls.cleanName(parts)
			if name != "" && hit.qty >= 1 && hit.qty <= s.cfg.QuantityMax {
				s.agg.add(name, hit.qty)
				s.stats.ItemsFound++
				s.countForm(hit.form)
				logger.Debug(fmt.Sprintf("Item resolved: name=%q qty=%d form=%d", name, hit.qty, hit.form), true)
			} else {
				s.stats.DroppedCandidates++
				logger.Debug(fmt.Sprintf("Candidate dropped: name=%q qty=%d", name, hit.qty), true)
			}
			buf = nil
			i = hit.next - 1
			continue
		}

		// No anchor resolved here. Money-only lines reach this point only when
		// the lookahead window found no companions; they are folded into the
		// buffer like any other fragment so the scan cannot re-trigger on them.
		buf = append(buf, line)
	}
}

func (s *scanner) countForm(f anchorForm) {
	switch f {
	case formInline:
		s.stats.InlineAnchors++
	case formCombined:
		s.stats.CombinedAnchors++
	case formThreeLine:
		s.stats.ThreeLineAnchors++
	case formWindowed:
		s.stats.WindowedAnchors++
	}
}

// resolveAnchor tries the anchor sub-forms in priority order: fully inline,
// currency line plus combined qty+sum line, three-line embedded, then the
// bounded-window search from a money-only line. More specific shapes go first
// so loose lookahead forms cannot consume lines belonging to the next item.
func (s *scanner) resolveAnchor(lines []string, i int) (anchorHit, bool) {
	line := lines[i]

	if m := reInlineAnchor.FindStringSubmatchIndex(line); m != nil {
		qty := atoiSafe(line[m[4]:m[5]])
		prefix := strings.TrimSpace(line[:m[0]])
		return anchorHit{form: formInline, qty: qty, prefix: prefix, next: i + 1}, true
	}

	if !reCurrency.MatchString(line) {
		return anchorHit{}, false
	}

	if i+1 < len(lines) {
		if m := reCombinedQtySum.FindStringSubmatch(lines[i+1]); m != nil {
			return anchorHit{
				form:   formCombined,
				qty:    atoiSafe(m[1]),
				prefix: stripTrailingMoney(line),
				next:   i + 2,
			}, true
		}
	}

	if i+2 < len(lines) && reQtyLine.MatchString(lines[i+1]) && reMoneyOnly.MatchString(lines[i+2]) {
		// The third line only confirms the shape; its amount is never checked
		// against quantity times price.
		return anchorHit{
			form:   formThreeLine,
			qty:    atoiSafe(lines[i+1]),
			prefix: stripTrailingMoney(line),
			next:   i + 3,
		}, true
	}

	if reMoneyOnly.MatchString(line) {
		return s.resolveWindowed(lines, i)
	}

	return anchorHit{}, false
}

// resolveWindowed searches a bounded forward window from a money-only line for
// its companion quantity and sum. A combined qty+sum line anywhere in the
// window wins over a split integer/money pair. The window never crosses a
// totals marker.
func (s *scanner) resolveWindowed(lines []string, i int) (anchorHit, bool) {
	end := i + s.cfg.LookaheadWindow
	if end > len(lines)-1 {
		end = len(lines) - 1
	}
	for j := i + 1; j <= end; j++ {
		if reTotalsVocab.MatchString(lines[j]) {
			end = j - 1
			break
		}
	}

	// A thousands-grouped amount also matches the combined shape ("3 000 ₽"
	// reads as qty 3, sum 000). Inside the window a plain money line is a sum
	// candidate for the split pair, so only unambiguous combined lines count.
	for j := i + 1; j <= end; j++ {
		if reMoneyOnly.MatchString(lines[j]) {
			continue
		}
		if m := reCombinedQtySum.FindStringSubmatch(lines[j]); m != nil {
			return anchorHit{
				form:  formWindowed,
				qty:   atoiSafe(m[1]),
				extra: cloneLines(lines[i+1 : j]),
				next:  j + 1,
			}, true
		}
	}

	qtyAt := -1
	for j := i + 1; j <= end; j++ {
		if qtyAt < 0 {
			if reQtyLine.MatchString(lines[j]) {
				qtyAt = j
			}
			continue
		}
		if reCurrency.MatchString(lines[j]) {
			extra := cloneLines(lines[i+1 : qtyAt])
			extra = append(extra, lines[qtyAt+1:j]...)
			return anchorHit{
				form:  formWindowed,
				qty:   atoiSafe(lines[qtyAt]),
				extra: extra,
				next:  j + 1,
			}, true
		}
	}

	return anchorHit{}, false
}

func stripTrailingMoney(line string) string {
	return strings.TrimSpace(reTrailingMoney.ReplaceAllString(line, ""))
}

func cloneLines(s []string) []string {
	return append([]string{}, s...)
}

func atoiSafe(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
