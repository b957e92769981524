// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanPages(t *testing.T, cfg *Config, pages ...[]string) ([]Item, Stats) {
	t.Helper()
	s := newScanner(cfg)
	for _, pg := range pages {
		s.scanPage(pg)
	}
	return s.agg.items(), s.stats
}

func TestScanner_ThreeLineAnchor(t *testing.T) {
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"Стол", "1 500 ₽", "2", "3 000 ₽"})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Стол", Quantity: 2}, items[0])
	assert.Equal(t, 1, stats.ThreeLineAnchors)
	assert.Equal(t, 1, stats.ItemsFound)
}

func TestScanner_InlineAnchor(t *testing.T) {
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"Полка 300x200", "450 ₽ 1 450 ₽"})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Полка 300x200", Quantity: 1}, items[0])
	assert.Equal(t, 1, stats.InlineAnchors)
}

func TestScanner_CombinedAnchor(t *testing.T) {
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"Шкаф-купе", "1 500 ₽", "2 3 000 ₽"})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Шкаф-купе", Quantity: 2}, items[0])
	assert.Equal(t, 1, stats.CombinedAnchors)
}

func TestScanner_WindowedAnchor(t *testing.T) {
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"Стол", "1 500 ₽", "дуб", "белый", "2", "3 000 ₽"})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Стол дуб белый", Quantity: 2}, items[0])
	assert.Equal(t, 1, stats.WindowedAnchors)
}

func TestScanner_WindowedAnchorOutOfRange(t *testing.T) {
	// Companions beyond the lookahead window are not consumed; the money line
	// folds back into the buffer and nothing is emitted.
	cfg := NewDefaultConfig()
	cfg.LookaheadWindow = 2
	items, stats := scanPages(t, cfg,
		[]string{"Стол", "1 500 ₽", "дуб", "белый", "массив", "с ящиками", "2", "3 000 ₽"})

	assert.Empty(t, items)
	assert.Equal(t, 0, stats.ItemsFound)
}

func TestScanner_TotalsMode(t *testing.T) {
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"Итого", "50 000 ₽"})

	assert.Empty(t, items)
	assert.Equal(t, 1, stats.PagesScanned)
	assert.Equal(t, 0, stats.ItemsFound)
}

func TestScanner_TotalsModeSuppressesRestOfPage(t *testing.T) {
	items, _ := scanPages(t, NewDefaultConfig(),
		[]string{
			"Стол", "1 500 ₽", "2", "3 000 ₽",
			"Итого",
			"Полка", "450 ₽", "1", "450 ₽",
		})

	require.Len(t, items, 1)
	assert.Equal(t, "Стол", items[0].Name)
}

func TestScanner_TotalsModeResetsPerPage(t *testing.T) {
	items, _ := scanPages(t, NewDefaultConfig(),
		[]string{"Итого", "50 000 ₽"},
		[]string{"Полка", "450 ₽", "1", "450 ₽"})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Полка", Quantity: 1}, items[0])
}

func TestScanner_ProjectCostTotals(t *testing.T) {
	items, _ := scanPages(t, NewDefaultConfig(),
		[]string{"Стоимость проекта", "9 000 ₽", "Полка", "450 ₽", "1", "450 ₽"})

	// The money line after "стоимость проекта" is a grand total even below
	// the threshold; the page enters totals mode.
	assert.Empty(t, items)
}

func TestScanner_GrandTotalThreshold(t *testing.T) {
	page := []string{"Шкаф", "12 000 ₽", "2", "24 000 ₽"}

	items, _ := scanPages(t, NewDefaultConfig(), page)
	assert.Empty(t, items, "amount at default threshold reads as a grand total")

	cfg := NewDefaultConfig()
	cfg.GrandTotalThreshold = 1000000
	items, _ = scanPages(t, cfg, page)
	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Шкаф", Quantity: 2}, items[0])
}

func TestScanner_QuantityBounds(t *testing.T) {
	tests := []struct {
		name string
		qty  string
		want int // expected item count
	}{
		{"lower bound", "1", 1},
		{"upper bound", "500", 1},
		{"zero dropped", "0", 0},
		{"over limit dropped", "999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, stats := scanPages(t, NewDefaultConfig(),
				[]string{"Стол", "1 500 ₽", tt.qty, "3 000 ₽"})
			assert.Len(t, items, tt.want)
			if tt.want == 0 {
				assert.Equal(t, 1, stats.DroppedCandidates)
			}
		})
	}
}

func TestScanner_DroppedAnchorDoesNotRetrigger(t *testing.T) {
	// A malformed anchor clears the buffer and the scan continues past its
	// span; the following item is unaffected.
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{
			"Стол", "1 500 ₽", "999", "3 000 ₽",
			"Полка", "450 ₽", "1", "450 ₽",
		})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Полка", Quantity: 1}, items[0])
	assert.Equal(t, 1, stats.DroppedCandidates)
}

func TestScanner_MoneyFallbackFoldsIntoBuffer(t *testing.T) {
	// A price line with no companions in the window is not an anchor; it is
	// treated as part of the name and the scan moves on.
	items, _ := scanPages(t, NewDefaultConfig(),
		[]string{"Полка", "450 ₽", "настенная"})

	assert.Empty(t, items)
}

func TestScanner_AggregatesRepeatedNames(t *testing.T) {
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"Стол", "1 500 ₽", "2", "3 000 ₽"},
		[]string{"Стол", "1 500 ₽", "3", "4 500 ₽"})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Стол", Quantity: 5}, items[0])
	assert.Equal(t, 2, stats.ItemsFound, "two resolutions, one aggregated row")
}

func TestScanner_FirstSeenOrder(t *testing.T) {
	items, _ := scanPages(t, NewDefaultConfig(),
		[]string{
			"Стол", "1 500 ₽", "2", "3 000 ₽",
			"Полка", "450 ₽", "1", "450 ₽",
			"Стол", "1 500 ₽", "1", "1 500 ₽",
		})

	require.Len(t, items, 2)
	assert.Equal(t, Item{Name: "Стол", Quantity: 3}, items[0])
	assert.Equal(t, Item{Name: "Полка", Quantity: 1}, items[1])
}

func TestScanner_PageOrderPermutationInvariant(t *testing.T) {
	// Without cross-page totals ambiguity, page order changes insertion order
	// at most; the multiset of (name, quantity) pairs is identical.
	pageA := []string{"Стол", "1 500 ₽", "2", "3 000 ₽"}
	pageB := []string{"Полка", "450 ₽", "1", "450 ₽"}

	ab, _ := scanPages(t, NewDefaultConfig(), pageA, pageB)
	ba, _ := scanPages(t, NewDefaultConfig(), pageB, pageA)

	toMap := func(items []Item) map[string]int {
		m := map[string]int{}
		for _, it := range items {
			m[it.Name] = it.Quantity
		}
		return m
	}
	assert.Equal(t, toMap(ab), toMap(ba))
}

func TestScanner_SkipsNoiseAndHeaders(t *testing.T) {
	items, _ := scanPages(t, NewDefaultConfig(),
		[]string{
			"Наименование Цена Кол-во Сумма",
			"Стол",
			"600х400 мм",
			"Доставка по городу",
			"1 500 ₽", "2", "3 000 ₽",
		})

	require.Len(t, items, 1)
	assert.Equal(t, Item{Name: "Стол", Quantity: 2}, items[0])
}

func TestScanner_NameNeverEmpty(t *testing.T) {
	// An anchor with no usable name fragments emits nothing.
	items, stats := scanPages(t, NewDefaultConfig(),
		[]string{"1 500 ₽", "2", "3 000 ₽"})

	assert.Empty(t, items)
	assert.Equal(t, 1, stats.DroppedCandidates)
}

func TestAggregator(t *testing.T) {
	a := newAggregator()
	a.add("Стол", 2)
	a.add("Полка", 1)
	a.add("Стол", 3)

	assert.Equal(t, []Item{
		{Name: "Стол", Quantity: 5},
		{Name: "Полка", Quantity: 1},
	}, a.items())
}
