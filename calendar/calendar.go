package calendar

import (
	"fmt"
	"strings"
	"time"
)

// CalendarID identifies a holiday calendar.
type CalendarID string

const (
	// WeekendsOnly treats every weekday as a business day.
	WeekendsOnly CalendarID = "WEEKENDS"
	// NYSE is the New York Stock Exchange trading calendar.
	NYSE CalendarID = "NYSE"
)

// ParseCalendar normalises a calendar name; "" and "NONE" mean WeekendsOnly.
func ParseCalendar(s string) (CalendarID, error) {
	switch c := CalendarID(strings.ToUpper(strings.TrimSpace(s))); c {
	case "", "NONE", WeekendsOnly:
		return WeekendsOnly, nil
	case NYSE, "US", "USD":
		return NYSE, nil
	default:
		return "", fmt.Errorf("ParseCalendar: unknown calendar %q", s)
	}
}

func isHoliday(cal CalendarID, t time.Time) bool {
	switch cal {
	case NYSE:
		return isNYSEHoliday(t)
	default:
		return false
	}
}

// IsBusinessDay checks weekends and holiday sets.
func IsBusinessDay(cal CalendarID, t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !isHoliday(cal, t)
}

// AdjustPreceding rolls t back to the nearest business day. Listed options
// expiring on a holiday expire on the prior trading day.
func AdjustPreceding(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// AdjustFollowing applies a simple Following convention (no month preservation).
func AdjustFollowing(cal CalendarID, t time.Time) time.Time {
	for !IsBusinessDay(cal, t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays advances n business days (n can be negative).
func AddBusinessDays(cal CalendarID, t time.Time, n int) time.Time {
	step := 1
	if n < 0 {
		step = -1
	}
	for n != 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(cal, t) {
			n -= step
		}
	}
	return t
}

// BusinessDaysBetween counts business days in (start, end]. It is negative
// when end is before start.
func BusinessDaysBetween(cal CalendarID, start, end time.Time) int {
	if end.Before(start) {
		return -BusinessDaysBetween(cal, end, start)
	}
	n := 0
	for t := start.AddDate(0, 0, 1); !t.After(end); t = t.AddDate(0, 0, 1) {
		if IsBusinessDay(cal, t) {
			n++
		}
	}
	return n
}
