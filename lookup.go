// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/quotelab/quote-xtract/logger"
	"github.com/xuri/excelize/v2"
)

// Lookup status values. Structural failures are reported here instead of being
// raised; parsing proceeds with an empty map and blank article codes.
const (
	StatusOK           = "ok"
	StatusEmpty        = "empty"
	StatusFileNotFound = "file_not_found"
	StatusNoSheet      = "no_sheet"
)

// Snapshot is an immutable article lookup map. It is built once per load and
// only ever read afterwards, so it is safe to share across concurrent parses.
type Snapshot struct {
	status  string
	entries map[string]string
}

func emptySnapshot(status string) *Snapshot {
	return &Snapshot{status: status, entries: map[string]string{}}
}

// Status reports the outcome of the load that produced this snapshot.
func (s *Snapshot) Status() string { return s.status }

// Len returns the number of usable lookup entries.
func (s *Snapshot) Len() int { return len(s.entries) }

// Article returns the article code for a resolved product name, matching by
// the key normalization of the name. Empty string when unknown.
func (s *Snapshot) Article(name string) string {
	return s.entries[NormalizeKey(name)]
}

// Store holds the current lookup snapshot. Reload builds a fresh snapshot and
// swaps the reference atomically; in-flight readers keep the snapshot they
// started with and never observe partial state.
type Store struct {
	articleHeader string
	cur           atomic.Pointer[Snapshot]
}

func NewStore(cfg *Config) *Store {
	st := &Store{articleHeader: cfg.ArticleHeader}
	st.cur.Store(emptySnapshot(StatusEmpty))
	return st
}

// Current returns the snapshot readers should use for the whole of one parse.
func (st *Store) Current() *Snapshot {
	return st.cur.Load()
}

// Reload loads the lookup table at path and publishes it as the new current
// snapshot. On failure the published snapshot is empty and carries the failure
// status; the previous entries are deliberately not kept.
func (st *Store) Reload(path string) *Snapshot {
	snap := st.load(path)
	st.cur.Store(snap)
	logger.Debug(fmt.Sprintf("Lookup reloaded: path=%s status=%s entries=%d", path, snap.status, len(snap.entries)), true)
	return snap
}

func (st *Store) load(path string) *Snapshot {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return emptySnapshot(StatusFileNotFound)
		}
		return emptySnapshot("cannot_open:" + err.Error())
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return st.loadXLSX(path)
	case ".csv":
		return st.loadCSV(path)
	default:
		return emptySnapshot("unsupported_format:" + ext)
	}
}

func (st *Store) loadXLSX(path string) *Snapshot {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return emptySnapshot("cannot_open:" + err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return emptySnapshot(StatusNoSheet)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return emptySnapshot("cannot_open:" + err.Error())
	}
	return st.buildSnapshot(rows)
}

func (st *Store) loadCSV(path string) *Snapshot {
	f, err := os.Open(path)
	if err != nil {
		return emptySnapshot("cannot_open:" + err.Error())
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return emptySnapshot("cannot_open:" + err.Error())
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return st.buildSnapshot(rows)
}

// buildSnapshot resolves the name and article columns by header vocabulary and
// keys every usable row by the normalized product name. Rows with an empty
// name or an empty or zero-valued article are excluded. The first occurrence
// of a key wins.
func (st *Store) buildSnapshot(rows [][]string) *Snapshot {
	if len(rows) < 2 {
		return emptySnapshot(StatusNoSheet)
	}
	header := rows[0]
	nameCol := findColumn(header, []string{"наимен", "товар", "name"}, 0)
	articleCol := findColumn(header, []string{strings.ToLower(st.articleHeader), "артикул", "article"}, 1)
	if nameCol < 0 || articleCol < 0 {
		return emptySnapshot(StatusNoSheet)
	}

	entries := make(map[string]string, len(rows)-1)
	for _, row := range rows[1:] {
		name := cell(row, nameCol)
		article := cell(row, articleCol)
		if name == "" || article == "" || isZeroValue(article) {
			continue
		}
		key := NormalizeKey(name)
		if key == "" {
			continue
		}
		if _, ok := entries[key]; !ok {
			entries[key] = article
		}
	}
	return &Snapshot{status: StatusOK, entries: entries}
}

// findColumn returns the index of the first header cell containing a candidate
// substring (case-insensitive), or fallback when the header names nothing and
// the row is wide enough. Candidates are tried in order: an earlier candidate
// anywhere in the row beats a later one.
func findColumn(header []string, candidates []string, fallback int) int {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		for i, h := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), c) {
				return i
			}
		}
	}
	if fallback < len(header) {
		return fallback
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isZeroValue(s string) bool {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return err == nil && v == 0
}
