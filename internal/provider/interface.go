package provider

import (
	"context"
	"time"

	"kline-data/internal/model"
)

// Direction tells the upstream which side of the anchor to page from.
type Direction string

const (
	Before Direction = "before"
	After  Direction = "after"
)

// Window describes one page request. A negative Count pages backward from
// Anchor, mirroring the upstream convention; the page size is |Count|.
type Window struct {
	Symbol string
	Anchor time.Time
	Period model.Period
	Count  int
}

// Direction derives the paging direction from the sign of Count.
func (w Window) Direction() Direction {
	if w.Count < 0 {
		return Before
	}
	return After
}

// Size returns the requested number of bars.
func (w Window) Size() int {
	if w.Count < 0 {
		return -w.Count
	}
	return w.Count
}

// PageFetcher performs one upstream call for a window. Implementations carry
// no pagination logic; any transport-level failure is reported as an error
// wrapping ErrTransport.
type PageFetcher interface {
	FetchPage(ctx context.Context, w Window) (model.Page, error)
	Name() string
}
