package saver

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"kline-data/internal/model"
)

// CSVSaver writes a header row (timestamp, then the dataset columns) and one
// row per bar. The timestamp is rendered as a date-time in Location; NaN
// values are left empty.
type CSVSaver struct {
	Location *time.Location
}

func (CSVSaver) Extension() string { return "csv" }

func (s CSVSaver) Save(ds *model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)

	header := append([]string{model.TimestampColumn}, ds.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, b := range ds.Bars {
		record[0] = b.Time(s.Location).Format(time.DateTime)
		for i := range ds.Columns {
			record[i+1] = ""
			if i < len(b.Values) {
				record[i+1] = floatStr(b.Values[i])
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func floatStr(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
