// Copyright © 2026, Quotelab.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package xtract

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/quotelab/quote-xtract/logger"
	"golang.org/x/sync/semaphore"
)

// ErrNoItems reports a scan that resolved nothing on a document. In strict
// mode this crosses the boundary as an error with diagnostics attached to the
// returned Result; best-effort callers check Result.Empty instead.
var ErrNoItems = errors.New("no line items resolved")

// Processor defines the contract for extracting line items from a document.
type Processor interface {
	Parse(ctx context.Context, path string) (*Result, error)
	ParseLines(ctx context.Context, pages [][]string) (*Result, error)
}

// Result is one parse outcome: resolved items in first-seen order, diagnostic
// counters, and the status of the lookup snapshot used for article codes.
type Result struct {
	Items  []Item `json:"items"`
	Stats  Stats  `json:"stats"`
	Lookup string `json:"lookup,omitempty"`
}

// Empty reports a zero-results scan. Not a silent success: Stats stays
// populated so the caller can surface an anchor-pattern mismatch.
func (r *Result) Empty() bool { return len(r.Items) == 0 }

// PageStrategy defines how page extraction errors are handled
// (strict vs. best-effort).
type PageStrategy interface {
	PageLines(ctx context.Context, doc Document, index int) ([]string, error)
}

// StrictPages enforces strict extraction.
// If any page fails, the entire parse fails.
type StrictPages struct{}

func (StrictPages) PageLines(ctx context.Context, doc Document, index int) ([]string, error) {
	return doc.PageLines(ctx, index)
}

// BestEffortPages tolerates errors.
// If a page fails, it is scanned as empty.
type BestEffortPages struct{}

func (BestEffortPages) PageLines(ctx context.Context, doc Document, index int) ([]string, error) {
	lines, err := doc.PageLines(ctx, index)
	if err != nil {
		logger.Debug(fmt.Sprintf("BestEffortPages: failed to read page, ignoring error: page=%d err=%v", index, err), true)
		return nil, nil
	}
	return lines, nil
}

// processor manages document parsing with concurrency control and delegates
// page reads to the chosen PageStrategy. The scan itself is sequential; only
// page text extraction is parallel.
type processor struct {
	cfg   *Config
	sem   *semaphore.Weighted
	src   PageSource
	pages PageStrategy
	store *Store
}

// NewProcessor validates the config and creates a new processor. store may be
// nil, in which case article codes stay blank.
func NewProcessor(cfg *Config, store *Store) *processor {
	var pages PageStrategy
	switch cfg.ParsingMode {
	case Strict:
		pages = &StrictPages{}
	case BestEffort:
		pages = &BestEffortPages{}
	}

	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	if cfg.Logger != nil {
		logger.SetLogger(cfg.Logger)
	}

	logger.Debug(fmt.Sprintf("Processor initialized: parsing_mode=%v, max_concurrent_docs=%d, max_workers_per_doc=%d",
		cfg.ParsingMode, cfg.MaxConcurrentDocs, cfg.MaxWorkersPerDoc), true)

	return &processor{
		cfg:   cfg,
		sem:   semaphore.NewWeighted(int64(cfg.MaxConcurrentDocs)),
		src:   PDFSource{},
		pages: pages,
		store: store,
	}
}

// UseSource replaces the page source. Callers that already hold extracted
// text plug in a LinesSource here.
func (p *processor) UseSource(src PageSource) {
	p.src = src
}

// Parse extracts the document's text layer page by page and runs the line
// scan over every page in order.
func (p *processor) Parse(ctx context.Context, path string) (*Result, error) {
	logger.Debug(fmt.Sprintf("Starting parse: path=%s", path), true)

	if err := p.acquireSlot(ctx); err != nil {
		logger.Debug(fmt.Sprintf("Failed to acquire slot: err=%v", err), true)
		return nil, err
	}
	defer p.sem.Release(1)

	doc, err := p.src.Open(path)
	if err != nil {
		logger.Debug(fmt.Sprintf("Failed to open document: path=%s err=%v", path, err), true)
		return nil, err
	}
	defer doc.Close()

	total := doc.NumPages()
	logger.Debug(fmt.Sprintf("Total pages detected: path=%s pages=%d", path, total), true)

	pages, err := p.readPages(ctx, doc, total)
	if err != nil {
		return nil, err
	}

	return p.scanPages(ctx, pages)
}

// ParseLines runs the scan directly over pre-extracted page lines.
func (p *processor) ParseLines(ctx context.Context, pages [][]string) (*Result, error) {
	return p.scanPages(ctx, pages)
}

type pageResult struct {
	index int
	lines []string
	err   error
}

// readPages extracts every page's lines with a bounded worker pool and
// returns them in page order.
func (p *processor) readPages(ctx context.Context, doc Document, total int) ([][]string, error) {
	if total == 0 {
		return nil, nil
	}

	numWorkers := p.adjustWorkerCount(p.cfg.MaxWorkersPerDoc)
	logger.Debug(fmt.Sprintf("Starting workers: count=%d", numWorkers), true)

	jobs, results := make(chan int, total), make(chan pageResult, total)

	var wg sync.WaitGroup
	p.startWorkers(ctx, doc, jobs, results, numWorkers, &wg)
	p.feedJobs(ctx, total, jobs)
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	pages := make([][]string, total)
	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = fmt.Errorf("strict mode failed on page %d: %w", res.index, res.err)
		}
		if res.index >= 1 && res.index <= total {
			pages[res.index-1] = res.lines
		}
	}
	if firstErr != nil {
		logger.Debug(fmt.Sprintf("Strict mode error — stopping parse: err=%v", firstErr))
		return nil, firstErr
	}
	return pages, nil
}

func (p *processor) startWorkers(ctx context.Context, doc Document, jobs <-chan int, results chan<- pageResult, numWorkers int, wg *sync.WaitGroup) {
	for w := 1; w <= numWorkers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := range jobs {
				ctxPage, cancel := context.WithTimeout(ctx, p.cfg.WorkerTimeout)
				lines, err := p.pages.PageLines(ctxPage, doc, i)
				cancel()
				results <- pageResult{i, lines, err}
				if err != nil {
					logger.Debug(fmt.Sprintf("Worker: page read error: worker_id=%d page=%d err=%v", id, i, err), true)
				}
			}
		}(w)
	}
}

func (p *processor) feedJobs(ctx context.Context, total int, jobs chan<- int) error {
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			logger.Debug("Context cancelled while feeding jobs", true)
			return ctx.Err()
		case jobs <- i:
		}
	}
	return nil
}

func (p *processor) acquireSlot(ctx context.Context) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire slot: %w", err)
	}
	return nil
}

func (p *processor) adjustWorkerCount(maxWorkers int) int {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	if maxWorkers > runtime.NumCPU()/2 {
		maxWorkers = runtime.NumCPU()
	}
	return maxWorkers
}

// scanPages runs the sequential per-page scan and finalizes the result:
// article codes from the current lookup snapshot, zero-results surfaced.
func (p *processor) scanPages(ctx context.Context, pages [][]string) (*Result, error) {
	s := newScanner(p.cfg)
	for _, pg := range pages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		s.scanPage(pg)
	}

	res := &Result{Items: s.agg.items(), Stats: s.stats}

	if p.store != nil {
		snap := p.store.Current()
		res.Lookup = snap.Status()
		for i := range res.Items {
			res.Items[i].Article = snap.Article(res.Items[i].Name)
		}
	}

	logger.Debug(fmt.Sprintf("Parse completed: pages=%d items=%d dropped=%d",
		res.Stats.PagesScanned, len(res.Items), res.Stats.DroppedCandidates), true)

	if res.Empty() && p.cfg.ParsingMode == Strict {
		return res, fmt.Errorf("%w: pages=%d dropped=%d", ErrNoItems, res.Stats.PagesScanned, res.Stats.DroppedCandidates)
	}
	return res, nil
}
