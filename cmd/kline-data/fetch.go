package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/google/subcommands"

	"kline-data/internal/app"
	"kline-data/internal/model"
	"kline-data/internal/saver"
)

// formatList collects -format values; each value may itself be comma separated.
type formatList []string

func (l *formatList) String() string { return strings.Join(*l, ",") }

func (l *formatList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type fetchCmd struct {
	source     string
	symbol     string
	period     string
	begin      string
	configPath string
	outDir     string
	name       string
	formats    formatList
}

func (*fetchCmd) Name() string { return "fetch" }

func (*fetchCmd) Synopsis() string {
	return "fetch a kline series back to a begin date and save it"
}

func (*fetchCmd) Usage() string {
	return `fetch -symbol SYMBOL -begin "YYYY-MM-DD HH:MM:SS" [-period day] [-format npy] [-format csv,...]
      [-source xueqiu] [-config config.yaml] [-out DIR] [-name NAME]
  Page the upstream backward from now until begin is covered and write one file per format.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "xueqiu", "data source (xueqiu)")
	f.StringVar(&c.source, "src", "xueqiu", "alias for -source")
	f.StringVar(&c.symbol, "symbol", "", "instrument symbol, e.g. SH600000 (required)")
	f.StringVar(&c.period, "period", string(model.PeriodDay), "bar period: "+periodNames())
	f.StringVar(&c.begin, "begin", "", `earliest time to cover, "YYYY-MM-DD HH:MM:SS" (required)`)
	f.StringVar(&c.configPath, "config", app.DefaultConfigPath, "config file path")
	f.StringVar(&c.outDir, "out", "", "output directory (default: data_dir from config)")
	f.StringVar(&c.name, "name", "", "output file name without extension (default: SYMBOL-PERIOD)")
	f.Var(&c.formats, "format", "output format, repeatable or comma separated: "+strings.Join(saver.Formats(), ", ")+" (default npy)")
}

// request validates the flags that need no config or network.
func (c *fetchCmd) request() (app.Request, error) {
	if strings.TrimSpace(c.symbol) == "" {
		return app.Request{}, fmt.Errorf("-symbol is required")
	}
	if strings.TrimSpace(c.begin) == "" {
		return app.Request{}, fmt.Errorf("-begin is required")
	}
	if !slices.Contains(app.Sources(), strings.ToLower(strings.TrimSpace(c.source))) {
		return app.Request{}, fmt.Errorf("unsupported source %q (use: %s)", c.source, strings.Join(app.Sources(), ", "))
	}
	period, err := model.ParsePeriod(c.period)
	if err != nil {
		return app.Request{}, err
	}
	list := c.formats.String()
	if list == "" {
		list = "npy"
	}
	formats, err := saver.ParseFormats(list)
	if err != nil {
		return app.Request{}, err
	}
	return app.Request{
		Symbol:  strings.TrimSpace(c.symbol),
		Period:  period,
		Formats: formats,
		OutDir:  c.outDir,
		Name:    c.name,
	}, nil
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	req, err := c.request()
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		return subcommands.ExitUsageError
	}

	a, err := InitializeApp(app.ConfigPath(c.configPath), app.Source(strings.ToLower(c.source)))
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return subcommands.ExitFailure
	}

	req.Begin, err = model.ParseBeginTime(c.begin, a.Config.Loc())
	if err != nil {
		a.Logger.Error("invalid arguments", "error", err)
		return subcommands.ExitUsageError
	}

	report, err := a.Run(ctx, req)
	if err != nil {
		a.Logger.Error("fetch failed", "error", err)
		return subcommands.ExitFailure
	}
	a.Logger.Info("done", "bars", report.Bars, "earliest", report.Earliest, "latest", report.Latest,
		"reached_begin", report.ReachedBegin, "files", report.Files)
	return subcommands.ExitSuccess
}

type periodsCmd struct {
	out io.Writer
}

func (*periodsCmd) Name() string             { return "periods" }
func (*periodsCmd) Synopsis() string         { return "list supported bar periods" }
func (*periodsCmd) Usage() string            { return "periods\n  Print the supported bar periods, one per line.\n" }
func (*periodsCmd) SetFlags(_ *flag.FlagSet) {}

func (c *periodsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	for _, p := range model.Periods() {
		fmt.Fprintln(w, p)
	}
	return subcommands.ExitSuccess
}

func periodNames() string {
	names := make([]string, 0, len(model.Periods()))
	for _, p := range model.Periods() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
