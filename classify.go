// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// lineClass labels a normalized line. Classification order is significant:
// the scanner relies on first-match-wins semantics.
type lineClass int

const (
	classPlain lineClass = iota
	classNoise
	classHeader
	classTotals
	classProjectTotal
	classMoneyOnly
	classIntegerOnly
)

var (
	// Totals vocabulary is checked before the noise vocabulary so that a bare
	// "Итого" flips the page into totals mode instead of being skipped.
	reTotalsVocab = regexp.MustCompile(`(?i)^(итого|всего|общая стоимость|итоговая|к оплате)`)

	reNoiseVocab = regexp.MustCompile(`(?i)^(проект|скидка|доставка|самовывоз|монтаж|страница|стр\.|лист|адрес|тел\.|телефон|e-?mail|почта|сайт|www\.|менеджер|заказчик|покупатель|дата)`)

	reProjectCost = regexp.MustCompile(`(?i)стоимость\s+проекта`)

	reHeaderWord  = regexp.MustCompile(`(?i)(наименование|товар|фото|цена|кол-?во|количество|сумма|артикул|ед\.|изм\.)`)
	reHeaderStrip = regexp.MustCompile(`(?i)(наименование|товар|фото|цена|кол-?во|количество|сумма|артикул|ед\.|изм\.|шт\.?|руб\.?|₽|за|[.,:;/|()\s-]+)`)

	// Currency-formatted amount and nothing else, e.g. "1 500 ₽".
	reMoneyOnly = regexp.MustCompile(`(?i)^\d+(?: \d{3})*(?:[.,]\d{1,2})?\s?(?:₽|руб\.?|р\.)$`)

	// A line that is exactly a bare integer.
	reIntegerOnly = regexp.MustCompile(`^\d+$`)

	// A bare integer short enough to be a quantity.
	reQtyLine = regexp.MustCompile(`^\d{1,4}$`)

	reCurrency = regexp.MustCompile(`(?i)(₽|руб\.?|р\.)`)

	// Short decorative annotations placed next to item photos.
	reDimToken    = regexp.MustCompile(`(?i)^\d+\s*[xх×]\s*\d+(?:\s*[xх×]\s*\d+)?\s*(?:мм|см|м)?$`)
	reUnitToken   = regexp.MustCompile(`(?i)^(?:мм|см|м|м\.?п\.?|пог\.? ?м)$`)
	reWeightToken = regexp.MustCompile(`(?i)^\d+(?:[.,]\d+)?\s*(?:кг|гр?\.?)$`)
)

// classifier labels lines and owns the vocabulary shared with the name cleaner.
type classifier struct {
	grandTotal float64
}

func newClassifier(cfg *Config) *classifier {
	return &classifier{grandTotal: cfg.GrandTotalThreshold}
}

// classify returns exactly one label for a normalized line. prev is the
// immediately preceding normalized line on the page ("" at page start).
func (c *classifier) classify(line, prev string) lineClass {
	if line == "" {
		return classNoise
	}
	if reTotalsVocab.MatchString(line) {
		return classTotals
	}
	if reMoneyOnly.MatchString(line) {
		// A money-only line following "стоимость проекта", or one carrying an
		// implausibly large amount, is a project grand total rather than a
		// line-item sum.
		if reProjectCost.MatchString(prev) {
			return classProjectTotal
		}
		if c.grandTotal > 0 && moneyValue(line) >= c.grandTotal {
			return classProjectTotal
		}
		return classMoneyOnly
	}
	if c.isNoise(line) {
		return classNoise
	}
	if c.isHeader(line) {
		return classHeader
	}
	if reIntegerOnly.MatchString(line) {
		return classIntegerOnly
	}
	return classPlain
}

func (c *classifier) isNoise(line string) bool {
	if reNoiseVocab.MatchString(line) {
		return true
	}
	if utf8.RuneCountInString(line) <= 20 {
		if reDimToken.MatchString(line) || reUnitToken.MatchString(line) || reWeightToken.MatchString(line) {
			return true
		}
	}
	return false
}

// isHeader reports whether the line consists only of table-header vocabulary,
// possibly several column titles combined into one row.
func (c *classifier) isHeader(line string) bool {
	if !reHeaderWord.MatchString(line) {
		return false
	}
	rest := reHeaderStrip.ReplaceAllString(line, "")
	return strings.TrimSpace(rest) == ""
}

// moneyValue parses the numeric amount out of a currency-formatted line.
// Returns 0 when the line does not parse; amounts are never used for business
// logic, only for the grand-total heuristic.
func moneyValue(line string) float64 {
	s := reCurrency.ReplaceAllString(line, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
