package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"intradaybar/internal/feature/intradaybar/domain/entity"
)

var csvHeader = []string{"time", "open", "high", "low", "close", "numEvents", "volume"}

// CSVSaver writes bars as CSV with a header row.
type CSVSaver struct{}

func (CSVSaver) Extension() string { return "csv" }

func (CSVSaver) Save(bars []entity.Bar, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range toRows(bars) {
		if err := w.Write([]string{
			r.Time,
			floatStr(r.Open),
			floatStr(r.High),
			floatStr(r.Low),
			floatStr(r.Close),
			strconv.FormatInt(r.NumEvents, 10),
			strconv.FormatInt(r.Volume, 10),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func floatStr(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
