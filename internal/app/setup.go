package app

import (
	"fmt"
	"log/slog"
	"strings"

	"kline-data/internal/provider"
	"kline-data/internal/provider/xueqiu"
)

// Sources lists the upstreams a PageFetcher can be created for.
func Sources() []string {
	return []string{xueqiu.Name}
}

// CreateFetcher creates the PageFetcher for source (currently xueqiu only)
func CreateFetcher(cfg *Config, source string, logger *slog.Logger) (provider.PageFetcher, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case xueqiu.Name:
		return xueqiu.NewClient(cfg.XueqiuConfig(), logger), nil
	default:
		return nil, fmt.Errorf("unsupported source %q (use: %s)", source, strings.Join(Sources(), ", "))
	}
}
