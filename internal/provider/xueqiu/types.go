package xueqiu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"kline-data/internal/model"
)

// KlineResponse is the body of the kline endpoint.
type KlineResponse struct {
	Data             KlineData `json:"data"`
	ErrorCode        int       `json:"error_code"`
	ErrorDescription string    `json:"error_description"`
}

// KlineData holds the column names and the row arrays.
type KlineData struct {
	Symbol string            `json:"symbol"`
	Column []string          `json:"column"`
	Item   [][]FlexibleFloat `json:"item"`
}

// FlexibleFloat parses a number, a numeric string or null (NaN). Any other
// scalar, such as a categorical "S" or a bool, also decodes to NaN and is
// flagged Text.
type FlexibleFloat struct {
	Value float64
	Text  bool
}

// UnmarshalJSON parses number, string, bool or null
func (f *FlexibleFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = FlexibleFloat{Value: math.NaN()}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil
		}
		if val, err := strconv.ParseFloat(str, 64); err == nil {
			f.Value = val
		} else {
			f.Text = true
		}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		f.Text = true
		return nil
	case '{', '[':
		return fmt.Errorf("cannot parse as float64: %s", string(data))
	}

	var floatVal float64
	if err := json.Unmarshal(data, &floatVal); err != nil {
		return fmt.Errorf("cannot parse as float64: %s", string(data))
	}
	f.Value = floatVal
	return nil
}

// Float64 returns the float64 value
func (f FlexibleFloat) Float64() float64 {
	return f.Value
}

// TextCells counts the non-numeric cells that decoded to NaN.
func (r KlineResponse) TextCells() int {
	n := 0
	for _, row := range r.Data.Item {
		for _, v := range row {
			if v.Text {
				n++
			}
		}
	}
	return n
}

// ToPage converts the response rows into a page. The timestamp column is
// lifted into Bar.Timestamp; the remaining columns keep their upstream order.
func (r KlineResponse) ToPage() (model.Page, error) {
	cols := r.Data.Column
	if len(r.Data.Item) == 0 {
		return model.Page{Columns: withoutTimestamp(cols)}, nil
	}
	tsIdx := -1
	for i, c := range cols {
		if c == model.TimestampColumn {
			tsIdx = i
			break
		}
	}
	if tsIdx < 0 {
		return model.Page{}, fmt.Errorf("response has no %q column", model.TimestampColumn)
	}

	page := model.Page{
		Columns: withoutTimestamp(cols),
		Bars:    make([]model.Bar, 0, len(r.Data.Item)),
	}
	for n, row := range r.Data.Item {
		if len(row) != len(cols) {
			return model.Page{}, fmt.Errorf("row %d has %d values, want %d", n, len(row), len(cols))
		}
		ts := row[tsIdx].Float64()
		if math.IsNaN(ts) || math.IsInf(ts, 0) {
			return model.Page{}, fmt.Errorf("row %d has no timestamp", n)
		}
		vals := make([]float64, 0, len(cols)-1)
		for i, v := range row {
			if i != tsIdx {
				vals = append(vals, v.Float64())
			}
		}
		page.Bars = append(page.Bars, model.Bar{Timestamp: int64(ts), Values: vals})
	}
	return page, nil
}

func withoutTimestamp(cols []string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != model.TimestampColumn {
			out = append(out, c)
		}
	}
	return out
}
