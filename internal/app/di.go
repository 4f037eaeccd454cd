package app

import (
	"log/slog"

	"github.com/google/uuid"

	"kline-data/internal/fetch"
	"kline-data/internal/metrics"
	"kline-data/internal/provider"
	"kline-data/internal/slogx"
)

// ConfigPath is the config file location (for Wire).
type ConfigPath string

// Source is the upstream name selected on the command line (for Wire).
type Source string

// ProvideConfig loads config from the file and environment (for Wire).
func ProvideConfig(path ConfigPath) (*Config, error) {
	return LoadConfig(string(path))
}

// ProvideLogger creates the run logger tagged with a fresh run id and makes it
// the slog default (for Wire).
func ProvideLogger(cfg *Config) *slog.Logger {
	l := slogx.Stderr(cfg.LogLevel).With("run_id", uuid.NewString())
	slog.SetDefault(l)
	return l
}

// ProvideMetrics creates the run metrics (for Wire).
func ProvideMetrics() *metrics.Metrics {
	return metrics.New()
}

// ProvidePageFetcher creates the fetcher for the selected source (for Wire).
// Returns error if the source is not supported.
func ProvidePageFetcher(cfg *Config, src Source, logger *slog.Logger) (provider.PageFetcher, error) {
	return CreateFetcher(cfg, string(src), logger)
}

// ProvideEngine wires the pagination engine to the fetcher (for Wire).
func ProvideEngine(f provider.PageFetcher, cfg *Config, m *metrics.Metrics, logger *slog.Logger) *fetch.Engine {
	return fetch.New(f,
		fetch.WithPageSize(cfg.PageSize),
		fetch.WithLogger(logger),
		fetch.WithMetrics(m),
	)
}
