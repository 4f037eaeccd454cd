package saver

import (
	"math"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"kline-data/internal/model"
)

// NPYSaver writes the dataset as a NumPy float64 array of shape
// (bars, 1+columns): column 0 is the millisecond timestamp, the rest follow
// the dataset column order. Nulls are NaN.
type NPYSaver struct{}

func (NPYSaver) Extension() string { return "npy" }

func (NPYSaver) Save(ds *model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := npyio.Write(f, numericArray(ds)); err != nil {
		return err
	}
	return f.Close()
}

// numericArray lays the dataset out row-major. An empty dataset becomes an
// empty 1-d array since a gonum matrix cannot have zero rows.
func numericArray(ds *model.Dataset) any {
	if len(ds.Bars) == 0 {
		return []float64{}
	}
	width := 1 + len(ds.Columns)
	data := make([]float64, 0, len(ds.Bars)*width)
	for _, b := range ds.Bars {
		data = append(data, float64(b.Timestamp))
		for i := range ds.Columns {
			v := math.NaN()
			if i < len(b.Values) {
				v = b.Values[i]
			}
			data = append(data, v)
		}
	}
	return mat.NewDense(len(ds.Bars), width, data)
}
