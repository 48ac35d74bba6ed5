// Package entity defines the domain models for the intraday bar feature.
package entity

import "time"

// Bar is one aggregated price/volume record for a fixed interval,
// as returned in the barTickData list of an IntradayBarRequest response.
type Bar struct {
	Time      time.Time // Start of the bar interval
	Open      float64   // Opening price
	High      float64   // Highest price during the interval
	Low       float64   // Lowest price during the interval
	Close     float64   // Closing price
	NumEvents int64     // Number of events (trades/quotes) aggregated into the bar
	Volume    int64     // Traded volume
}

// StoredBar is a Bar tagged with the query it was fetched for.
type StoredBar struct {
	Security  string // e.g. "IBM US Equity"
	EventType string // e.g. "TRADE", "BID", "ASK"
	Interval  int    // Bar length in minutes
	Bar
}

// BarQuery selects stored bars for one security/eventType/interval over [Start, End].
type BarQuery struct {
	Security  string
	EventType string
	Interval  int
	Start     time.Time
	End       time.Time
}
