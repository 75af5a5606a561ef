package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/AdamDanklefsen/OptionsPricing-FD/calendar"
)

const dateLayout = "2006-01-02"

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	return t, nil
}

// Days returns the number of calendar days from start to end.
func Days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// MaturityFromDates converts a valuation/expiry date pair to a year fraction.
// An expiry before the valuation date is an error.
func MaturityFromDates(valuation, expiry string, convention DayCount) (float64, error) {
	v, e, err := parseRange(valuation, expiry)
	if err != nil {
		return 0, fmt.Errorf("MaturityFromDates: %w", err)
	}
	return YearFraction(v, e, convention)
}

// MaturityOnCalendar is MaturityFromDates with the expiry rolled back to the
// last business day of cal on or before it. BUS/252 counts business days of
// cal.
func MaturityOnCalendar(valuation, expiry string, convention DayCount, cal calendar.CalendarID) (float64, error) {
	v, e, err := parseRange(valuation, expiry)
	if err != nil {
		return 0, fmt.Errorf("MaturityOnCalendar: %w", err)
	}
	e = calendar.AdjustPreceding(cal, e)
	if e.Before(v) {
		e = v
	}
	return YearFractionOn(cal, v, e, convention)
}

func parseRange(valuation, expiry string) (time.Time, time.Time, error) {
	v, err := ParseDate(valuation)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("valuation date: %w", err)
	}
	e, err := ParseDate(expiry)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("expiry date: %w", err)
	}
	if e.Before(v) {
		return time.Time{}, time.Time{}, fmt.Errorf("expiry %s before valuation %s", expiry, valuation)
	}
	return v, e, nil
}
