package calendar

import "time"

// isNYSEHoliday applies the exchange's full-day closure rules. Fixed-date
// holidays on a Saturday are observed the Friday before and on a Sunday the
// Monday after, except New Year's Day, which is not moved back into December.
// One-off closures (national days of mourning, 2012 storm) are not listed.
func isNYSEHoliday(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	for _, h := range nyseHolidays(y) {
		if day.Equal(h) {
			return true
		}
	}
	return false
}

func nyseHolidays(year int) []time.Time {
	date := func(m time.Month, d int) time.Time { return time.Date(year, m, d, 0, 0, 0, 0, time.UTC) }

	holidays := []time.Time{
		nthWeekday(year, time.January, time.Monday, 3),    // Martin Luther King Jr. Day
		nthWeekday(year, time.February, time.Monday, 3),   // Washington's Birthday
		easter(year).AddDate(0, 0, -2),                    // Good Friday
		lastWeekday(year, time.May, time.Monday),          // Memorial Day
		observed(date(time.July, 4)),                      // Independence Day
		nthWeekday(year, time.September, time.Monday, 1),  // Labor Day
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
		observed(date(time.December, 25)),                 // Christmas
	}
	if ny := date(time.January, 1); ny.Weekday() == time.Sunday {
		holidays = append(holidays, ny.AddDate(0, 0, 1))
	} else {
		holidays = append(holidays, ny)
	}
	if year >= 2022 {
		holidays = append(holidays, observed(date(time.June, 19))) // Juneteenth
	}
	return holidays
}

func observed(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		return t.AddDate(0, 0, -1)
	case time.Sunday:
		return t.AddDate(0, 0, 1)
	default:
		return t
	}
}

// nthWeekday returns the n-th (1-based) weekday wd of the month.
func nthWeekday(year int, month time.Month, wd time.Weekday, n int) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+7*(n-1))
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// easter returns Easter Sunday (anonymous Gregorian algorithm).
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
