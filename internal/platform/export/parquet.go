package export

import (
	"github.com/parquet-go/parquet-go"

	"intradaybar/internal/feature/intradaybar/domain/entity"
)

// ParquetSaver writes bars as a Parquet file with the Row schema.
type ParquetSaver struct{}

func (ParquetSaver) Extension() string { return "parquet" }

func (ParquetSaver) Save(bars []entity.Bar, path string) error {
	return parquet.WriteFile(path, toRows(bars))
}

// ReadParquet loads bars written by ParquetSaver.
func ReadParquet(path string) ([]entity.Bar, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, err
	}
	bars := make([]entity.Bar, 0, len(rows))
	for _, r := range rows {
		t, err := parseRowTime(r.Time)
		if err != nil {
			return nil, err
		}
		bars = append(bars, entity.Bar{
			Time:      t,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			NumEvents: r.NumEvents,
			Volume:    r.Volume,
		})
	}
	return bars, nil
}
