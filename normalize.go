// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces = regexp.MustCompile(`\s+`)

	// Multiplication sign between digits: ×, Cyrillic х, Latin x.
	reMultSign = regexp.MustCompile(`(?i)(\d)\s*[xх×]\s*(\d)`)

	// Dimension with an explicit length unit, e.g. "607x14x405 мм". The trailing
	// group keeps the unit from swallowing the first letter of a following word
	// ("60х40 масло" must keep its dimension).
	reDimensionUnit = regexp.MustCompile(`(?i)\d+\s*[xх×]\s*\d+(?:\s*[xх×]\s*\d+)?\s*(?:мм|см|м)([^0-9a-zа-яё]|$)`)

	dashReplacer  = strings.NewReplacer("–", "-", "—", "-", "−", "-")
	quoteReplacer = strings.NewReplacer("«", "", "»", "", "„", "", "“", "", "”", "", "\"", "")
)

// NormalizeLine canonicalizes a raw text line: NFC form, non-breaking spaces
// converted to ordinary spaces, whitespace runs collapsed, ends trimmed.
// Pure and idempotent.
func NormalizeLine(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u2007', '\u202f':
			return ' '
		}
		return r
	}, s)
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeKey produces the lookup-matching key for a product name: lower-cased,
// dash and multiplication glyph variants unified, decorative quotes removed,
// dimension-with-unit substrings stripped. Used only for matching, never shown.
func NormalizeKey(s string) string {
	s = strings.ToLower(NormalizeLine(s))
	s = dashReplacer.Replace(s)
	s = reMultSign.ReplaceAllString(s, "${1}x${2}")
	s = quoteReplacer.Replace(s)
	s = reDimensionUnit.ReplaceAllString(s, "$1")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
