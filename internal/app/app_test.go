package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kline-data/internal/fetch"
	"kline-data/internal/metrics"
	"kline-data/internal/model"
	"kline-data/internal/provider"
	"kline-data/internal/saver"
	"kline-data/internal/slogx"
)

// dailyFetcher returns two daily bars just before the anchor; history ends
// at floor.
type dailyFetcher struct {
	floor time.Time
	calls int
}

func (f *dailyFetcher) Name() string { return "daily" }

func (f *dailyFetcher) FetchPage(_ context.Context, w provider.Window) (model.Page, error) {
	f.calls++
	p := model.Page{Columns: []string{"open", "close"}}
	for i := 2; i >= 1; i-- {
		ts := w.Anchor.Add(-time.Duration(i) * 24 * time.Hour)
		if ts.Before(f.floor) {
			continue
		}
		p.Bars = append(p.Bars, model.Bar{Timestamp: ts.UnixMilli(), Values: []float64{1, 2}})
	}
	return p, nil
}

func testApp(t *testing.T, f provider.PageFetcher, now time.Time) *App {
	t.Helper()
	cfg := defaultConfig()
	cfg.Cookie = "abc"
	cfg.DataDir = t.TempDir()
	cfg.MetricsFile = filepath.Join(t.TempDir(), "kline.prom")
	cfg.loc = time.UTC

	logger := slogx.New(&bytes.Buffer{}, "debug")
	m := metrics.New()
	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Source:  "daily",
		Engine: fetch.New(f,
			fetch.WithLogger(logger),
			fetch.WithMetrics(m),
			fetch.WithClock(func() time.Time { return now }),
		),
	}
}

func TestRunWritesEveryFormat(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	a := testApp(t, &dailyFetcher{}, now)

	report, err := a.Run(context.Background(), Request{
		Symbol:  "AAPL",
		Period:  model.PeriodDay,
		Begin:   now.AddDate(0, 0, -5),
		Formats: []string{"csv", "npy", "parquet", "json"},
	})
	require.NoError(t, err)

	assert.True(t, report.ReachedBegin)
	assert.GreaterOrEqual(t, report.Bars, 5)
	require.Len(t, report.Files, 4)
	for _, ext := range []string{".csv", ".npy", ".parquet", ".json"} {
		_, err := os.Stat(filepath.Join(a.Config.DataDir, "AAPL-day"+ext))
		assert.NoError(t, err, ext)
	}

	data, err := os.ReadFile(filepath.Join(a.Config.DataDir, ReportFile))
	require.NoError(t, err)
	var saved RunReport
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.Equal(t, "AAPL", saved.Symbol)
	assert.Equal(t, "day", saved.Period)
	assert.Equal(t, report.Bars, saved.Bars)
	assert.Equal(t, "2024-03-10 00:00:00", saved.Begin)

	prom, err := os.ReadFile(a.Config.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "kline_pages_total")
}

func TestRunExhaustedHistory(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	f := &dailyFetcher{floor: now.AddDate(0, 0, -3)}
	a := testApp(t, f, now)

	report, err := a.Run(context.Background(), Request{
		Symbol:  "AAPL",
		Period:  model.PeriodDay,
		Begin:   now.AddDate(0, 0, -30),
		Formats: []string{"csv"},
		OutDir:  filepath.Join(t.TempDir(), "out"),
		Name:    "custom",
	})
	require.NoError(t, err)
	assert.False(t, report.ReachedBegin)
	assert.Equal(t, 3, report.Bars)
	assert.Equal(t, "2024-03-12 00:00:00", report.Earliest)
	assert.Equal(t, "2024-03-14 00:00:00", report.Latest)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "custom.csv", filepath.Base(report.Files[0]))
}

func TestRunInvalidFormatBeforeFetch(t *testing.T) {
	f := &dailyFetcher{}
	a := testApp(t, f, time.Now())

	_, err := a.Run(context.Background(), Request{
		Symbol:  "AAPL",
		Period:  model.PeriodDay,
		Begin:   time.Now().AddDate(0, 0, -5),
		Formats: []string{"csv", "xlsx"},
	})
	assert.ErrorIs(t, err, saver.ErrInvalidSaveFormat)
	assert.Zero(t, f.calls)

	_, err = a.Run(context.Background(), Request{Symbol: "AAPL", Period: model.PeriodDay, Begin: time.Now()})
	assert.ErrorIs(t, err, saver.ErrInvalidSaveFormat)
	assert.Zero(t, f.calls)
}

func TestRunLogsPageSize(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	a := testApp(t, &dailyFetcher{}, now)
	var buf bytes.Buffer
	a.Logger = slogx.New(&buf, "info")

	_, err := a.Run(context.Background(), Request{
		Symbol:  "AAPL",
		Period:  model.PeriodDay,
		Begin:   now.AddDate(0, 0, -2),
		Formats: []string{"csv"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "page_size=142")
}

func TestRequestFileName(t *testing.T) {
	assert.Equal(t, "SH600000-60m", Request{Symbol: "SH600000", Period: model.Period60m}.FileName())
	assert.Equal(t, "x", Request{Symbol: "SH600000", Name: "x"}.FileName())
}

func TestCreateFetcher(t *testing.T) {
	cfg := defaultConfig()
	cfg.Cookie = "abc"

	f, err := CreateFetcher(cfg, "XueQiu", nil)
	require.NoError(t, err)
	assert.Equal(t, "xueqiu", f.Name())

	_, err = CreateFetcher(cfg, "yahoo", nil)
	assert.ErrorContains(t, err, `unsupported source "yahoo"`)
}
