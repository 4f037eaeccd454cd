package saver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kline-data/internal/model"
)

// ErrInvalidSaveFormat is returned for an output format with no Saver.
var ErrInvalidSaveFormat = errors.New("invalid save format")

// Saver writes a whole dataset to one file, overwriting whatever is there.
type Saver interface {
	Save(ds *model.Dataset, path string) error
	Extension() string
}

// Formats lists the supported output formats.
func Formats() []string {
	return []string{"npy", "parquet", "csv", "json"}
}

// New creates the Saver for format (npy, parquet, csv, json). loc is used to
// render timestamps in text formats; nil means local time.
func New(format string, loc *time.Location) (Saver, error) {
	if loc == nil {
		loc = time.Local
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "npy":
		return NPYSaver{}, nil
	case "parquet":
		return ParquetSaver{}, nil
	case "csv":
		return CSVSaver{Location: loc}, nil
	case "json":
		return JSONSaver{Location: loc}, nil
	default:
		return nil, fmt.Errorf("%w %q (use: %s)", ErrInvalidSaveFormat, format, strings.Join(Formats(), ", "))
	}
}

// ParseFormats splits a comma separated list, dropping blanks and duplicates.
// Every entry must be a supported format.
func ParseFormats(list string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(list, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if _, err := New(f, nil); err != nil {
			return nil, err
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none given (use: %s)", ErrInvalidSaveFormat, strings.Join(Formats(), ", "))
	}
	return out, nil
}

// Write saves ds as dir/name, creating dir when missing and appending the
// saver extension when name does not already end with it. It returns the
// written path.
func Write(s Saver, ds *model.Dataset, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dir, err)
	}
	ext := "." + s.Extension()
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	path := filepath.Join(dir, name)
	if err := s.Save(ds, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}
