// Package calendar builds month and week grids and buckets tasks by the
// civil date their due instant falls on.
package calendar

import (
	"fmt"
	"time"
)

// Date is a civil date with no time of day or zone. Two Dates are equal iff
// their year, month and day are equal.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the current date in the local zone.
func Today() Date { return DateOf(time.Now()) }

// ToLocalDate converts an epoch-millisecond instant to a Date using the local
// zone in effect at call time.
func ToLocalDate(ms int64) Date {
	return ToDateIn(ms, time.Local)
}

// ToDateIn converts an epoch-millisecond instant to a Date in loc.
func ToDateIn(ms int64, loc *time.Location) Date {
	return DateOf(time.UnixMilli(ms).In(loc))
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Weekday returns 1 for Monday through 7 for Sunday.
func (d Date) Weekday() int {
	wd := int(d.time().Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// AddDays moves d by n days, crossing month and year ends.
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.time().Before(o.time()) }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.time().After(o.time()) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// YearMonth returns the month d belongs to.
func (d Date) YearMonth() YearMonth { return YearMonth{Year: d.Year, Month: d.Month} }

func (d Date) String() string { return d.time().Format(time.DateOnly) }

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// ThisMonth is the current month in the local zone.
func ThisMonth() YearMonth { return Today().YearMonth() }

// ParseYearMonth parses YYYY-MM.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// FirstDay is the 1st of the month.
func (ym YearMonth) FirstDay() Date { return Date{Year: ym.Year, Month: ym.Month, Day: 1} }

// LastDay is the final day of the month.
func (ym YearMonth) LastDay() Date { return Date{Year: ym.Year, Month: ym.Month, Day: ym.Len()} }

// Len is the number of days in the month.
func (ym YearMonth) Len() int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves ym by n months, crossing year ends.
func (ym YearMonth) AddMonths(n int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether d lies within [FirstDay, LastDay].
func (ym YearMonth) Contains(d Date) bool {
	return !d.Before(ym.FirstDay()) && !d.After(ym.LastDay())
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// Title renders the month for headings, e.g. "February 2024".
func (ym YearMonth) Title() string { return fmt.Sprintf("%s %d", ym.Month, ym.Year) }
