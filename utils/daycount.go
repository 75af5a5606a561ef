package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/AdamDanklefsen/OptionsPricing-FD/calendar"
)

// DayCount names a year-fraction convention for option maturities.
type DayCount string

const (
	Act360    DayCount = "ACT/360"
	Act365F   DayCount = "ACT/365F"
	ActAct    DayCount = "ACT/ACT"
	Thirty360 DayCount = "30/360"
	// Bus252 counts trading days over a 252-day year.
	Bus252 DayCount = "BUS/252"
)

const tradingDaysPerYear = 252.0

// ParseDayCount normalises a convention name; "" means ACT/365F.
func ParseDayCount(s string) (DayCount, error) {
	switch dc := DayCount(strings.ToUpper(strings.TrimSpace(s))); dc {
	case "":
		return Act365F, nil
	case Act360, Act365F, ActAct, Thirty360, Bus252:
		return dc, nil
	case "30E/360":
		return Thirty360, nil
	default:
		return "", fmt.Errorf("ParseDayCount: unsupported convention %q", s)
	}
}

// YearFraction computes the year fraction between two dates. BUS/252 counts
// weekdays only; use YearFractionOn for a holiday calendar.
//
// ACT/ACT here divides actual days by 365.25, which is the usual time axis
// for equity option maturities rather than the ISDA coupon convention.
func YearFraction(start, end time.Time, convention DayCount) (float64, error) {
	return YearFractionOn(calendar.WeekendsOnly, start, end, convention)
}

// YearFractionOn is YearFraction with business days taken from cal.
func YearFractionOn(cal calendar.CalendarID, start, end time.Time, convention DayCount) (float64, error) {
	days := Days(start, end)
	switch convention {
	case Bus252:
		return float64(calendar.BusinessDaysBetween(cal, start, end)) / tradingDaysPerYear, nil
	case Act360:
		return days / 360.0, nil
	case Act365F:
		return days / 365.0, nil
	case ActAct:
		return days / 365.25, nil
	case Thirty360:
		// 30E/360: day-of-month capped at 30
		d1 := start.Day()
		if d1 > 30 {
			d1 = 30
		}
		d2 := end.Day()
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0, nil
	default:
		return 0, fmt.Errorf("YearFraction: unsupported convention %q", convention)
	}
}
