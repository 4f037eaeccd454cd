package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidPeriod is returned for a bar granularity outside the supported set.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidBeginTime is returned when the begin time cannot be parsed.
	ErrInvalidBeginTime = errors.New("invalid begin time")
)

// Period is a bar granularity as the upstream names it.
type Period string

const (
	PeriodDay     Period = "day"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	Period120m    Period = "120m"
	Period60m     Period = "60m"
	Period30m     Period = "30m"
	Period15m     Period = "15m"
	Period5m      Period = "5m"
	Period1m      Period = "1m"
)

var periods = []Period{
	PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear,
	Period120m, Period60m, Period30m, Period15m, Period5m, Period1m,
}

// Periods returns every supported period.
func Periods() []Period {
	out := make([]Period, len(periods))
	copy(out, periods)
	return out
}

// ParsePeriod validates s against the supported periods.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range periods {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q (use: %s)", ErrInvalidPeriod, s, periodList())
}

// Intraday reports whether p is a minute-count period.
func (p Period) Intraday() bool {
	return strings.HasSuffix(string(p), "m")
}

func (p Period) String() string { return string(p) }

func periodList() string {
	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

var beginLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseBeginTime parses a calendar date-time in loc (local time when nil) or
// a raw Unix millisecond timestamp.
func ParseBeginTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidBeginTime)
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil && len(v) >= 10 {
		return time.UnixMilli(ms).In(loc), nil
	}
	for _, layout := range beginLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q (use: YYYY-MM-DD [HH:MM:SS] or epoch millis)", ErrInvalidBeginTime, s)
}
