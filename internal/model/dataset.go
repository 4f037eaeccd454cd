package model

import (
	"math"
	"slices"
)

// Dataset is the merged series for one symbol and period: bars ascending by
// timestamp, no two bars sharing a timestamp.
type Dataset struct {
	Symbol  string
	Period  Period
	Columns []string
	Bars    []Bar
}

// NewDataset returns an empty dataset for symbol and period.
func NewDataset(symbol string, period Period) *Dataset {
	return &Dataset{Symbol: symbol, Period: period}
}

// Len returns the number of bars.
func (d *Dataset) Len() int { return len(d.Bars) }

// Empty reports whether the dataset holds no bars.
func (d *Dataset) Empty() bool { return len(d.Bars) == 0 }

// Earliest returns the oldest timestamp, or false when empty.
func (d *Dataset) Earliest() (int64, bool) {
	if len(d.Bars) == 0 {
		return 0, false
	}
	return d.Bars[0].Timestamp, true
}

// Latest returns the newest timestamp, or false when empty.
func (d *Dataset) Latest() (int64, bool) {
	if len(d.Bars) == 0 {
		return 0, false
	}
	return d.Bars[len(d.Bars)-1].Timestamp, true
}

// Column returns the index of name in Columns, or -1.
func (d *Dataset) Column(name string) int {
	return slices.Index(d.Columns, name)
}

// Merge unions the page into the dataset by timestamp and returns how many
// bars were added. Page columns are matched by name; columns the dataset has
// not seen yet are appended and earlier bars get NaN for them. When a
// timestamp is already present the existing bar is kept.
func (d *Dataset) Merge(p Page) int {
	if len(p.Bars) == 0 {
		return 0
	}
	idx := d.columnMapping(p.Columns)

	seen := make(map[int64]struct{}, len(d.Bars)+len(p.Bars))
	for _, b := range d.Bars {
		seen[b.Timestamp] = struct{}{}
	}

	added := 0
	for _, b := range p.Bars {
		if _, ok := seen[b.Timestamp]; ok {
			continue
		}
		seen[b.Timestamp] = struct{}{}
		vals := make([]float64, len(d.Columns))
		for i := range vals {
			vals[i] = math.NaN()
		}
		for i, v := range b.Values {
			if i < len(idx) {
				vals[idx[i]] = v
			}
		}
		d.Bars = append(d.Bars, Bar{Timestamp: b.Timestamp, Values: vals})
		added++
	}
	if added > 0 {
		slices.SortStableFunc(d.Bars, func(a, b Bar) int {
			switch {
			case a.Timestamp < b.Timestamp:
				return -1
			case a.Timestamp > b.Timestamp:
				return 1
			}
			return 0
		})
	}
	return added
}

// columnMapping maps each page column position to a dataset column position,
// growing the dataset columns as needed.
func (d *Dataset) columnMapping(cols []string) []int {
	idx := make([]int, len(cols))
	grown := false
	for i, c := range cols {
		j := d.Column(c)
		if j < 0 {
			d.Columns = append(d.Columns, c)
			j = len(d.Columns) - 1
			grown = true
		}
		idx[i] = j
	}
	if grown {
		for i := range d.Bars {
			for len(d.Bars[i].Values) < len(d.Columns) {
				d.Bars[i].Values = append(d.Bars[i].Values, math.NaN())
			}
		}
	}
	return idx
}
