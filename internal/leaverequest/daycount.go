package leaverequest

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SelectorFull       = "FULL"
	SelectorFirstHalf  = "FIRST_HALF"
	SelectorSecondHalf = "SECOND_HALF"
)

var (
	oneDay  = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

// CalculateDays returns the number of leave days a date range consumes, in
// 0.5-day units. Half-day selectors are single-day by construction and always
// cost 0.5. A full-day range counts Monday through Friday inclusive, so a
// weekend-only range yields zero; callers must reject zero-day requests.
func CalculateDays(start, end time.Time, selector string) decimal.Decimal {
	if selector == SelectorFirstHalf || selector == SelectorSecondHalf {
		return halfDay
	}

	start = normalizeDate(start)
	end = normalizeDate(end)

	days := decimal.Zero
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			days = days.Add(oneDay)
		}
	}
	return days
}

// normalizeDate pins the time-of-day to noon UTC so day iteration cannot
// drift across DST boundaries.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}
