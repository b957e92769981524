// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Counter persists named counters in a local SQLite database. Increments are
// serialized behind a mutex on top of an upsert, so concurrent conversions
// never lose counts the way a read-modify-write on a shared file does.
type Counter struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenCounter(path string) (*Counter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open counter db: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS counters (name TEXT PRIMARY KEY, value INTEGER NOT NULL DEFAULT 0)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("init counter db: %w", err)
	}
	return &Counter{db: db}, nil
}

// Add increments the named counter by delta and returns the new value.
func (c *Counter) Add(name string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.Exec(
		`INSERT INTO counters (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = value + excluded.value`, name, delta); err != nil {
		return 0, fmt.Errorf("increment counter %q: %w", name, err)
	}
	var v int64
	if err := c.db.QueryRow(`SELECT value FROM counters WHERE name = ?`, name).Scan(&v); err != nil {
		return 0, fmt.Errorf("read counter %q: %w", name, err)
	}
	return v, nil
}

// Value returns the named counter, zero when it has never been incremented.
func (c *Counter) Value(name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var v int64
	err := c.db.QueryRow(`SELECT COALESCE((SELECT value FROM counters WHERE name = ?), 0)`, name).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read counter %q: %w", name, err)
	}
	return v, nil
}

func (c *Counter) Close() error {
	return c.db.Close()
}
