package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kline-data/internal/fetch"
	"kline-data/internal/metrics"
	"kline-data/internal/model"
	"kline-data/internal/saver"
)

// App holds the dependencies of one run, built by Wire.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Engine  *fetch.Engine
	Metrics *metrics.Metrics
	Source  Source
}

// Request is one fetch-and-save invocation.
type Request struct {
	Symbol  string
	Period  model.Period
	Begin   time.Time
	Formats []string
	OutDir  string // defaults to Config.DataDir
	Name    string // defaults to {symbol}-{period}
}

// FileName returns the output base name for the request.
func (r Request) FileName() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("%s-%s", r.Symbol, r.Period)
}

// Run fetches the series and writes it once per requested format. Savers
// are resolved before the first network call so a bad format fails fast.
func (a *App) Run(ctx context.Context, req Request) (*RunReport, error) {
	savers := make([]saver.Saver, 0, len(req.Formats))
	for _, f := range req.Formats {
		s, err := saver.New(f, a.Config.Loc())
		if err != nil {
			return nil, err
		}
		savers = append(savers, s)
	}
	if len(savers) == 0 {
		return nil, fmt.Errorf("%w: none given", saver.ErrInvalidSaveFormat)
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = a.Config.DataDir
	}

	a.Logger.Info("fetch start", "source", a.Source, "symbol", req.Symbol, "period", req.Period,
		"begin", req.Begin.Format(time.DateTime), "formats", req.Formats, "page_size", a.Engine.PageSize())
	ds, err := a.Engine.FetchSeries(ctx, req.Symbol, string(req.Period), req.Begin)
	if err != nil {
		return nil, err
	}

	report := &RunReport{
		Source: string(a.Source),
		Symbol: ds.Symbol,
		Period: string(ds.Period),
		Begin:  req.Begin.In(a.Config.Loc()).Format(time.DateTime),
		Bars:   ds.Len(),
	}
	if ts, ok := ds.Earliest(); ok {
		report.Earliest = time.UnixMilli(ts).In(a.Config.Loc()).Format(time.DateTime)
		report.ReachedBegin = ts <= req.Begin.UnixMilli()
	}
	if ts, ok := ds.Latest(); ok {
		report.Latest = time.UnixMilli(ts).In(a.Config.Loc()).Format(time.DateTime)
	}

	for _, s := range savers {
		path, err := saver.Write(s, ds, outDir, req.FileName())
		if err != nil {
			return nil, err
		}
		a.Logger.Info("saved", "format", s.Extension(), "path", path, "bars", ds.Len())
		report.Files = append(report.Files, path)
	}
	report.FinishedAt = time.Now()

	if p, err := writeRunReport(outDir, report); err != nil {
		a.Logger.Warn("could not write run report", "error", err)
	} else {
		a.Logger.Debug("run report saved", "path", p)
	}
	if a.Config.MetricsFile != "" {
		if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
			a.Logger.Warn("could not write metrics file", "path", a.Config.MetricsFile, "error", err)
		}
	}
	return report, nil
}
