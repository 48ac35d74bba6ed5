package entity

import (
	"fmt"
	"strings"
	"time"
)

// QueryOptions holds the caller-supplied parameters of an intraday bar query.
// Only the first element of Securities and EventTypes is used per request.
type QueryOptions struct {
	Securities        []string
	EventTypes        []string
	BarInterval       int // minutes
	StartDateTime     time.Time
	EndDateTime       time.Time
	GapFillInitialBar bool
}

// ForPair returns a copy of o narrowed to a single security and event type.
func (o QueryOptions) ForPair(security, eventType string) QueryOptions {
	o.Securities = []string{security}
	o.EventTypes = []string{eventType}
	return o
}

// DateTimeLayouts are the accepted input formats for start/end datetimes, tried in order.
var DateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseDateTime parses s with DateTimeLayouts. Values without a zone are UTC.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime %q (want YYYY-MM-DDTHH:MM[:SS])", s)
}
