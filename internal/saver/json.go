package saver

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"kline-data/internal/model"
)

// JSONSaver writes the dataset in the upstream column/item shape (indented),
// with NaN as null.
type JSONSaver struct {
	Location *time.Location
}

type jsonDataset struct {
	Symbol string       `json:"symbol"`
	Period string       `json:"period"`
	From   string       `json:"from,omitempty"`
	To     string       `json:"to,omitempty"`
	Column []string     `json:"column"`
	Item   [][]*float64 `json:"item"`
}

func (JSONSaver) Extension() string { return "json" }

func (s JSONSaver) Save(ds *model.Dataset, path string) error {
	out := jsonDataset{
		Symbol: ds.Symbol,
		Period: string(ds.Period),
		Column: append([]string{model.TimestampColumn}, ds.Columns...),
		Item:   make([][]*float64, 0, len(ds.Bars)),
	}
	if len(ds.Bars) > 0 {
		out.From = ds.Bars[0].Time(s.Location).Format(time.DateTime)
		out.To = ds.Bars[len(ds.Bars)-1].Time(s.Location).Format(time.DateTime)
	}
	for _, b := range ds.Bars {
		row := make([]*float64, 0, len(out.Column))
		ts := float64(b.Timestamp)
		row = append(row, &ts)
		for i := range ds.Columns {
			var v *float64
			if i < len(b.Values) && !math.IsNaN(b.Values[i]) {
				x := b.Values[i]
				v = &x
			}
			row = append(row, v)
		}
		out.Item = append(out.Item, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return f.Close()
}
