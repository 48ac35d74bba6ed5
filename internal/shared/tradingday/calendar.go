// Package tradingday resolves exchange business days for default query windows.
package tradingday

import (
	"log/slog"
	"time"

	"github.com/scmhub/calendar"
)

// DefaultMIC is the exchange calendar used when none is configured (NYSE).
const DefaultMIC = "xnys"

// Calendar answers business-day questions for one exchange.
// With no exchange calendar loaded it treats Monday to Friday as business days.
type Calendar struct {
	cal *calendar.Calendar
}

// New loads the calendar for mic (ISO 10383, e.g. "xnys", "xlon").
// Unknown codes fall back to DefaultMIC, then to plain weekdays.
func New(mic string) *Calendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil && mic != DefaultMIC {
		slog.Warn("unknown exchange calendar, using default", "mic", mic, "default", DefaultMIC)
		cal = calendar.GetCalendar(DefaultMIC)
	}
	if cal == nil {
		slog.Warn("exchange calendar unavailable, using weekdays only")
	}
	return &Calendar{cal: cal}
}

// IsBusinessDay reports whether the exchange trades on the date of t.
func (c *Calendar) IsBusinessDay(t time.Time) bool {
	if c == nil || c.cal == nil {
		wd := t.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return c.cal.IsBusinessDay(t)
}

// Previous returns midnight UTC of the last business day strictly before the date of now (UTC).
func (c *Calendar) Previous(now time.Time) time.Time {
	now = now.UTC()
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	// Guard against a calendar with no business days at all.
	for i := 0; i < 14 && !c.IsBusinessDay(d.Add(12*time.Hour)); i++ {
		d = d.AddDate(0, 0, -1)
	}
	return d
}
