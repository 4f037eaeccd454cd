package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // location names resolve without system zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"kline-data/internal/fetch"
	"kline-data/internal/provider/xueqiu"
)

// ErrConfigLoad is returned when the config file is missing, unreadable or invalid.
var ErrConfigLoad = errors.New("config load failure")

// DefaultConfigPath is used when no -config flag is given.
const DefaultConfigPath = "config.yaml"

// Config holds application configuration from the config file and env
type Config struct {
	Cookie      string        `yaml:"cookie" validate:"required"`
	UserAgent   string        `yaml:"user_agent"`
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	PageSize    int           `yaml:"page_size" validate:"gte=1,lte=5000"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	DataDir     string        `yaml:"data_dir" validate:"required"`
	LogLevel    string        `yaml:"log_level"` // debug | info | warn | error, anything else logs at info
	MetricsFile string        `yaml:"metrics_file"`
	Location    string        `yaml:"location"` // IANA zone for begin dates and CSV timestamps; empty = local

	loc *time.Location
}

func defaultConfig() *Config {
	return &Config{
		UserAgent: xueqiu.DefaultUserAgent,
		BaseURL:   xueqiu.DefaultBaseURL,
		PageSize:  fetch.DefaultPageSize,
		Timeout:   30 * time.Second,
		DataDir:   "data",
		LogLevel:  "info",
	}
}

// LoadConfig reads the YAML (or JSON) config at path, applies env overrides
// from the process and an optional .env file, and validates the result.
func LoadConfig(path string) (*Config, error) {
	// .env is optional, plain env vars work too
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := cfg.readFile(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}
	cfg.applyEnv()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigLoad, path, err)
	}
	loc, err := loadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigLoad, path, err)
	}
	cfg.loc = loc
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	for key, dst := range map[string]*string{
		"XUEQIU_COOKIE": &c.Cookie,
		"DATA_DIR":      &c.DataDir,
		"LOG_LEVEL":     &c.LogLevel,
		"METRICS_FILE":  &c.MetricsFile,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func loadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

// Loc returns the configured time zone.
func (c *Config) Loc() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// XueqiuConfig returns the adapter settings.
func (c *Config) XueqiuConfig() xueqiu.Config {
	return xueqiu.Config{
		BaseURL:   c.BaseURL,
		Cookie:    c.Cookie,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
	}
}
