// Package fetch pages a PageFetcher backward in time until a begin date is
// covered and merges the pages into one ascending Dataset.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"kline-data/internal/metrics"
	"kline-data/internal/model"
	"kline-data/internal/provider"
)

const (
	// DefaultPageSize is the number of bars requested per page. The first
	// request asks for twice as many.
	DefaultPageSize = 142

	// DefaultMaxStrikes is how many consecutive unchanged pages end the loop.
	DefaultMaxStrikes = 3
)

// ErrInvalidSymbol is returned for an empty symbol.
var ErrInvalidSymbol = errors.New("invalid symbol")

// Engine runs the fetch-merge-terminate loop against one PageFetcher.
type Engine struct {
	fetcher    provider.PageFetcher
	pageSize   int
	maxStrikes int
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets the bars requested per page (values < 1 are ignored).
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithMaxStrikes sets the consecutive unchanged pages tolerated (values < 1 are ignored).
func WithMaxStrikes(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxStrikes = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records page outcomes on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock replaces time.Now, which anchors the first request.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine fetching pages from f.
func New(f provider.PageFetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:    f,
		pageSize:   DefaultPageSize,
		maxStrikes: DefaultMaxStrikes,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PageSize returns the configured bars per page.
func (e *Engine) PageSize() int { return e.pageSize }

// FetchSeries pages backward from now until the earliest bar is at or before
// begin, or until maxStrikes consecutive pages bring nothing older. A page is
// a strike when the fetch failed, the page is empty, it repeats the previous
// page, or it leaves the earliest timestamp where it was. Transport failures
// never abort the loop; running out of upstream history before begin is not
// an error and returns what was collected.
func (e *Engine) FetchSeries(ctx context.Context, symbol, period string, begin time.Time) (*model.Dataset, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSymbol)
	}
	p, err := model.ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if begin.IsZero() {
		return nil, fmt.Errorf("%w: zero time", model.ErrInvalidBeginTime)
	}

	log := e.logger.With("source", e.fetcher.Name(), "symbol", symbol, "period", p)
	start := e.now()
	beginMs := begin.UnixMilli()
	anchor := start
	ds := model.NewDataset(symbol, p)

	var (
		last    model.Page
		strikes int
		calls   int
		reached bool
	)
	for strikes < e.maxStrikes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		count := e.pageSize
		if calls == 0 {
			count *= 2
		}
		w := provider.Window{Symbol: symbol, Anchor: anchor, Period: p, Count: -count}
		page, err := e.fetcher.FetchPage(ctx, w)
		calls++

		prevEarliest, hadBars := ds.Earliest()
		var outcome string
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			outcome = metrics.OutcomeFailure
			log.Warn("page fetch failed", "anchor", anchor.UnixMilli(), "count", w.Count, "error", err)
		case page.Len() == 0:
			outcome = metrics.OutcomeEmpty
		case page.Equal(last):
			outcome = metrics.OutcomeRepeated
		default:
			last = page
			ds.Merge(page)
			earliest, _ := ds.Earliest()
			if !hadBars || earliest < prevEarliest {
				outcome = metrics.OutcomeNew
			} else {
				outcome = metrics.OutcomeStale
			}
		}

		strike := outcome != metrics.OutcomeNew
		if strike {
			strikes++
		} else {
			strikes = 0
		}
		e.metrics.ObservePage(outcome, strike)
		log.Debug("page", "call", calls, "anchor", anchor.UnixMilli(), "count", w.Count,
			"rows", page.Len(), "outcome", outcome, "strikes", strikes, "bars", ds.Len())

		earliest, ok := ds.Earliest()
		if !ok {
			continue
		}
		if earliest <= beginMs {
			reached = true
			break
		}
		// The anchor only ever moves to older times.
		if t := time.UnixMilli(earliest); t.Before(anchor) {
			anchor = t
		}
	}

	elapsed := e.now().Sub(start)
	e.metrics.ObserveFetch(ds.Len(), elapsed)
	attrs := []any{"bars", ds.Len(), "calls", calls, "reached_begin", reached, "duration", elapsed}
	if earliest, ok := ds.Earliest(); ok {
		layout := time.DateOnly
		if p.Intraday() {
			layout = time.DateTime
		}
		attrs = append(attrs, "earliest", time.UnixMilli(earliest).In(begin.Location()).Format(layout))
	}
	if reached {
		log.Info("fetch done", attrs...)
	} else {
		log.Warn("fetch stopped before begin, upstream exhausted", attrs...)
	}
	return ds, nil
}
