// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"encoding/csv"
	"io"
	"strconv"
)

var exportHeader = []string{"Наименование", "Количество", "Артикул"}

// WriteCSV writes resolved items as UTF-8 CSV. A byte order mark goes first so
// spreadsheet applications decode the Cyrillic header correctly.
func WriteCSV(w io.Writer, items []Item) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, it := range items {
		if err := cw.Write([]string{it.Name, strconv.Itoa(it.Quantity), it.Article}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
