package model

import (
	"math"
	"time"
)

// TimestampColumn is the upstream column carrying the bar time (Unix milliseconds).
const TimestampColumn = "timestamp"

// Bar is one row of a price series. Values aligns with the Columns of the
// Page or Dataset that holds it; upstream nulls are stored as NaN.
type Bar struct {
	Timestamp int64 // Unix timestamp in milliseconds
	Values    []float64
}

// Time returns the bar timestamp in loc (UTC when loc is nil).
func (b Bar) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(b.Timestamp).In(loc)
}

func (b Bar) equal(o Bar) bool {
	if b.Timestamp != o.Timestamp || len(b.Values) != len(o.Values) {
		return false
	}
	for i, v := range b.Values {
		w := o.Values[i]
		if v == w || (math.IsNaN(v) && math.IsNaN(w)) {
			continue
		}
		return false
	}
	return true
}

// Page is the batch of bars returned by one upstream call, in whatever order
// the upstream delivered them.
type Page struct {
	Columns []string
	Bars    []Bar
}

// Len returns the number of bars in the page.
func (p Page) Len() int { return len(p.Bars) }

// Equal reports whether both pages carry the same columns and rows.
func (p Page) Equal(o Page) bool {
	if len(p.Columns) != len(o.Columns) || len(p.Bars) != len(o.Bars) {
		return false
	}
	for i, c := range p.Columns {
		if o.Columns[i] != c {
			return false
		}
	}
	for i, b := range p.Bars {
		if !b.equal(o.Bars[i]) {
			return false
		}
	}
	return true
}
