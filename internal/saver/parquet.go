package saver

import (
	"fmt"
	"math"
	"os"

	"github.com/parquet-go/parquet-go"

	"kline-data/internal/model"
)

// ParquetSaver writes the dataset as a Parquet table. The schema is built
// from the dataset columns: a required millisecond timestamp plus one
// optional double per upstream field, NaN stored as null.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(ds *model.Dataset, path string) error {
	schema, index := parquetSchema(ds.Columns)
	tsIdx := index[model.TimestampColumn]

	rows := make([]parquet.Row, 0, len(ds.Bars))
	for _, b := range ds.Bars {
		row := make(parquet.Row, len(index))
		row[tsIdx] = parquet.Int64Value(b.Timestamp).Level(0, 0, tsIdx)
		for i, name := range ds.Columns {
			ci := index[name]
			v := math.NaN()
			if i < len(b.Values) {
				v = b.Values[i]
			}
			if math.IsNaN(v) {
				row[ci] = parquet.NullValue().Level(0, 0, ci)
			} else {
				row[ci] = parquet.DoubleValue(v).Level(0, 1, ci)
			}
		}
		rows = append(rows, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := parquet.NewWriter(f, schema)
	if _, err := w.WriteRows(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}

// parquetSchema returns the schema for cols and the leaf column index of
// every field, timestamp included. Group fields are ordered by the schema,
// not by cols, so positions are looked up rather than assumed.
func parquetSchema(cols []string) (*parquet.Schema, map[string]int) {
	group := parquet.Group{
		model.TimestampColumn: parquet.Timestamp(parquet.Millisecond),
	}
	for _, c := range cols {
		group[c] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
	}
	schema := parquet.NewSchema("kline", group)

	index := make(map[string]int, len(group))
	for i, path := range schema.Columns() {
		index[path[0]] = i
	}
	return schema, index
}
