// Package export writes fetched bars to csv, json or parquet files.
package export

import (
	"strings"
	"time"

	"intradaybar/internal/feature/intradaybar/domain/entity"
)

// TimeLayout is the datetime format written to exported files. Times are UTC.
const TimeLayout = "2006-01-02T15:04:05"

// BarSaver persists a list of bars to path.
type BarSaver interface {
	Save(bars []entity.Bar, path string) error
	Extension() string
}

// Row is the flat record written for one bar.
type Row struct {
	Time      string  `json:"time" parquet:"time"`
	Timestamp int64   `json:"timestamp" parquet:"timestamp"`
	Open      float64 `json:"open" parquet:"open"`
	High      float64 `json:"high" parquet:"high"`
	Low       float64 `json:"low" parquet:"low"`
	Close     float64 `json:"close" parquet:"close"`
	NumEvents int64   `json:"numEvents" parquet:"num_events"`
	Volume    int64   `json:"volume" parquet:"volume"`
}

func toRows(bars []entity.Bar) []Row {
	rows := make([]Row, 0, len(bars))
	for _, b := range bars {
		t := b.Time.UTC()
		rows = append(rows, Row{
			Time:      t.Format(TimeLayout),
			Timestamp: t.Unix(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			NumEvents: b.NumEvents,
			Volume:    b.Volume,
		})
	}
	return rows
}

// NewBarSaver returns the saver for format (csv, json, parquet), or nil if unsupported.
func NewBarSaver(format string) BarSaver {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVSaver{}
	case "json":
		return JSONSaver{}
	case "parquet":
		return ParquetSaver{}
	default:
		return nil
	}
}

// WithExtension appends the saver's extension to path unless it already ends with it.
func WithExtension(path string, s BarSaver) string {
	ext := "." + s.Extension()
	if strings.HasSuffix(strings.ToLower(path), ext) {
		return path
	}
	return path + ext
}

func parseRowTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}
