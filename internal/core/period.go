package core

import "time"

// PeriodWindow returns the half-open date range [start, end) a period
// aggregation covers, anchored to ref's calendar date.
//
// Both granularities use the same convention: monthly runs from the first
// day of ref's month up to but excluding the first day of the next month;
// yearly runs from January 1 up to but excluding January 1 of the next
// year. A transaction dated December 31 is inside the yearly window, and
// one dated on the first of the following month is outside the monthly
// window.
func PeriodWindow(p Period, ref time.Time) (start, end Date, err error) {
	switch p {
	case Monthly:
		start = NewDate(ref.Year(), int(ref.Month()), 1)
		end = Date{Time: start.AddDate(0, 1, 0)}
	case Yearly:
		start = NewDate(ref.Year(), 1, 1)
		end = Date{Time: start.AddDate(1, 0, 0)}
	default:
		return Date{}, Date{}, ErrInvalidPeriod
	}
	return start, end, nil
}

// InWindow reports whether d falls inside the half-open range [start, end).
func InWindow(d, start, end Date) bool {
	return !d.Time.Before(start.Time) && d.Time.Before(end.Time)
}
