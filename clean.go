// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"regexp"
	"strings"
)

var (
	rePhotoPrefix = regexp.MustCompile(`(?i)^(?:фото|photo)[:.]?\s+`)

	// Some layouts place a long numeric identifier before the product name.
	reLeadingID = regexp.MustCompile(`^\d{6,}\s+`)

	reTrailingMoney = regexp.MustCompile(`(?i)\s*\d+(?: \d{3})*(?:[.,]\d{1,2})?\s?(?:₽|руб\.?|р\.)$`)
)

// cleanName turns an accumulated name buffer into a display name. Money-only,
// bare-integer, header and noise fragments are dropped; the rest is joined and
// stripped of label prefixes, long leading identifiers, trailing amounts and
// dimension-with-unit substrings. A bare "NxM" without a length unit stays:
// it can be the attribute that distinguishes one SKU from another.
func (c *classifier) cleanName(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if reMoneyOnly.MatchString(p) || reIntegerOnly.MatchString(p) {
			continue
		}
		if c.isHeader(p) || c.isNoise(p) || reTotalsVocab.MatchString(p) {
			continue
		}
		kept = append(kept, p)
	}
	name := strings.Join(kept, " ")
	name = rePhotoPrefix.ReplaceAllString(name, "")
	name = reLeadingID.ReplaceAllString(name, "")
	for {
		stripped := reTrailingMoney.ReplaceAllString(name, "")
		if stripped == name {
			break
		}
		name = stripped
	}
	name = reDimensionUnit.ReplaceAllString(name, "$1")
	name = reSpaces.ReplaceAllString(name, " ")
	return strings.Trim(name, " ,;:")
}
