// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/quotelab/quote-xtract/logger"
)

type ParsingMode string

const (
	Strict     ParsingMode = "strict"
	BestEffort ParsingMode = "best-effort"
)

type Config struct {
	MaxConcurrentDocs int           `validate:"min=1,max=10"`
	MaxWorkersPerDoc  int           `validate:"min=1,max=10"`
	WorkerTimeout     time.Duration `validate:"required"`
	ParsingMode       ParsingMode   `validate:"oneof=strict best-effort"`

	// QuantityMax bounds accepted quantities; candidates outside [1, QuantityMax]
	// are dropped without emitting an item.
	QuantityMax int `validate:"min=1"`

	// GrandTotalThreshold marks a standalone money line at or above this value
	// as a project grand total rather than a line-item sum.
	GrandTotalThreshold float64 `validate:"min=0"`

	// LookaheadWindow bounds the forward search for the quantity and sum lines
	// belonging to a detected price line.
	LookaheadWindow int `validate:"min=1,max=20"`

	// ArticleHeader is the lookup-table column holding article codes.
	ArticleHeader string

	DebugOn bool
	Logger  logger.LogFunc
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentDocs:   5,
		MaxWorkersPerDoc:    2,
		WorkerTimeout:       5 * time.Second,
		ParsingMode:         BestEffort,
		QuantityMax:         500,
		GrandTotalThreshold: 10000,
		LookaheadWindow:     9,
		ArticleHeader:       "Артикул",
		DebugOn:             false,
	}
}

func (cfg *Config) Validate() error {
	logger.Debug("Validating Config Object")
	validate := validator.New()
	return validate.Struct(cfg)
}
