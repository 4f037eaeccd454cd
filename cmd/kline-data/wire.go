//go:build wireinject
// +build wireinject

package main

import (
	"kline-data/internal/app"

	"github.com/google/wire"
)

// InitializeApp builds the App (config, logger, metrics, fetcher, engine) via Wire.
func InitializeApp(path app.ConfigPath, source app.Source) (*app.App, error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		app.ProvideMetrics,
		app.ProvidePageFetcher,
		app.ProvideEngine,
		wire.Struct(new(app.App), "*"),
	)
	return nil, nil
}
