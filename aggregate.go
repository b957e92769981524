// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

// Item is one resolved line item. Article is attached after the scan by the
// lookup snapshot; it stays empty when no lookup table is loaded.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Article  string `json:"article,omitempty"`
}

// aggregator sums quantities per cleaned name, preserving first-seen order
// across the whole document. Quantities are only ever added, never overwritten.
type aggregator struct {
	order  []string
	totals map[string]int
}

func newAggregator() *aggregator {
	return &aggregator{totals: make(map[string]int)}
}

func (a *aggregator) add(name string, qty int) {
	if _, ok := a.totals[name]; !ok {
		a.order = append(a.order, name)
	}
	a.totals[name] += qty
}

func (a *aggregator) items() []Item {
	out := make([]Item, 0, len(a.order))
	for _, name := range a.order {
		out = append(out, Item{Name: name, Quantity: a.totals[name]})
	}
	return out
}
