package saver

import (
	"encoding/csv"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"kline-data/internal/model"
)

func sampleDataset() *model.Dataset {
	return &model.Dataset{
		Symbol:  "AAPL",
		Period:  model.PeriodDay,
		Columns: []string{"open", "close", "pe"},
		Bars: []model.Bar{
			{Timestamp: time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), Values: []float64{170.5, 173.97, math.NaN()}},
			{Timestamp: time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC).UnixMilli(), Values: []float64{175.52, 177.57, 29.1}},
		},
	}
}

func TestNew(t *testing.T) {
	for _, f := range Formats() {
		s, err := New(f, time.UTC)
		require.NoError(t, err, f)
		assert.Equal(t, f, s.Extension())
	}
	s, err := New(" CSV ", nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", s.Extension())

	_, err = New("xlsx", nil)
	assert.ErrorIs(t, err, ErrInvalidSaveFormat)
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("npy, csv,,npy")
	require.NoError(t, err)
	assert.Equal(t, []string{"npy", "csv"}, got)

	_, err = ParseFormats("csv,bogus")
	assert.ErrorIs(t, err, ErrInvalidSaveFormat)

	_, err = ParseFormats(" , ")
	assert.ErrorIs(t, err, ErrInvalidSaveFormat)
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, err := New("csv", time.UTC)
	require.NoError(t, err)

	ds := sampleDataset()
	path, err := Write(s, ds, dir, "AAPL-day")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL-day.csv"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"timestamp", "open", "close", "pe"}, records[0])
	assert.Equal(t, []string{"2023-11-01 00:00:00", "170.5", "173.97", ""}, records[1])
	assert.Equal(t, []string{"2023-11-02 00:00:00", "175.52", "177.57", "29.1"}, records[2])
}

func TestWriteKeepsExtensionAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := CSVSaver{Location: time.UTC}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAPL-day.csv"), []byte("stale\nstale\nstale\nstale\n"), 0644))

	path, err := Write(s, sampleDataset(), dir, "AAPL-day.csv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "AAPL-day.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestWriteCSVLocation(t *testing.T) {
	cst := time.FixedZone("CST", 8*3600)
	path, err := Write(CSVSaver{Location: cst}, sampleDataset(), t.TempDir(), "x")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2023-11-01 08:00:00")
}

func TestWriteNPY(t *testing.T) {
	path, err := Write(NPYSaver{}, sampleDataset(), t.TempDir(), "AAPL-day")
	require.NoError(t, err)
	assert.Equal(t, ".npy", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var m mat.Dense
	require.NoError(t, npyio.Read(f, &m))
	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, float64(sampleDataset().Bars[0].Timestamp), m.At(0, 0))
	assert.Equal(t, 177.57, m.At(1, 2))
	assert.True(t, math.IsNaN(m.At(0, 3)))
}

func TestWriteNPYEmpty(t *testing.T) {
	ds := model.NewDataset("AAPL", model.PeriodDay)
	path, err := Write(NPYSaver{}, ds, t.TempDir(), "empty")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestWriteParquet(t *testing.T) {
	path, err := Write(ParquetSaver{}, sampleDataset(), t.TempDir(), "AAPL-day")
	require.NoError(t, err)
	assert.Equal(t, ".parquet", filepath.Ext(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	info, err := f.Stat()
	require.NoError(t, err)

	pf, err := parquet.OpenFile(f, info.Size())
	require.NoError(t, err)
	assert.EqualValues(t, 2, pf.NumRows())

	var names []string
	for _, col := range pf.Schema().Columns() {
		names = append(names, col[0])
	}
	assert.ElementsMatch(t, []string{"timestamp", "open", "close", "pe"}, names)
}

func TestParquetSchemaIndex(t *testing.T) {
	_, index := parquetSchema([]string{"volume", "close", "amount"})
	require.Len(t, index, 4)
	seen := make(map[int]bool)
	for _, i := range index {
		assert.False(t, seen[i])
		seen[i] = true
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 4)
	}
}

func TestWriteJSON(t *testing.T) {
	path, err := Write(JSONSaver{Location: time.UTC}, sampleDataset(), t.TempDir(), "AAPL-day")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out struct {
		Symbol string       `json:"symbol"`
		Period string       `json:"period"`
		From   string       `json:"from"`
		Column []string     `json:"column"`
		Item   [][]*float64 `json:"item"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "AAPL", out.Symbol)
	assert.Equal(t, "day", out.Period)
	assert.Equal(t, "2023-11-01 00:00:00", out.From)
	assert.Equal(t, []string{"timestamp", "open", "close", "pe"}, out.Column)
	require.Len(t, out.Item, 2)
	assert.Nil(t, out.Item[0][3])
	require.NotNil(t, out.Item[1][3])
	assert.Equal(t, 29.1, *out.Item[1][3])
}

func TestWriteCreateDirFails(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := Write(CSVSaver{}, sampleDataset(), filepath.Join(blocker, "sub"), "x")
	assert.Error(t, err)
}
