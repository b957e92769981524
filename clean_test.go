// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	c := newClassifier(NewDefaultConfig())

	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{
			name:  "joins fragments",
			parts: []string{"Стол", "письменный"},
			want:  "Стол письменный",
		},
		{
			name:  "drops money and integer fragments",
			parts: []string{"Стол", "1 500 ₽", "2"},
			want:  "Стол",
		},
		{
			name:  "drops header remnants",
			parts: []string{"Наименование", "Шкаф-купе"},
			want:  "Шкаф-купе",
		},
		{
			name:  "drops noise fragments",
			parts: []string{"Доставка по городу", "Полка настенная"},
			want:  "Полка настенная",
		},
		{
			name:  "strips photo prefix",
			parts: []string{"Фото Комод на 4 ящика"},
			want:  "Комод на 4 ящика",
		},
		{
			name:  "strips long leading identifier",
			parts: []string{"10045782 Кровать односпальная"},
			want:  "Кровать односпальная",
		},
		{
			name:  "keeps short leading number",
			parts: []string{"3 полки в комплекте"},
			want:  "3 полки в комплекте",
		},
		{
			name:  "strips trailing amount left by mis-accumulation",
			parts: []string{"Стеллаж офисный 2 400 ₽"},
			want:  "Стеллаж офисный",
		},
		{
			name:  "strips stacked trailing amounts",
			parts: []string{"Стеллаж офисный 450 ₽ 2 400 ₽"},
			want:  "Стеллаж офисный",
		},
		{
			name:  "removes dimension with unit",
			parts: []string{"Тумба 607x14x405 мм белая"},
			want:  "Тумба белая",
		},
		{
			name:  "keeps bare dimension without unit",
			parts: []string{"Полка 300x200"},
			want:  "Полка 300x200",
		},
		{
			name:  "empty when nothing remains",
			parts: []string{"1 500 ₽", "2", "Итого"},
			want:  "",
		},
		{
			name:  "nil buffer",
			parts: nil,
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.cleanName(tt.parts))
		})
	}
}
