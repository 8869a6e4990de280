package calendar

// Day is one cell of a rendered grid.
type Day struct {
	Date           Date
	IsCurrentMonth bool
}

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayHeaders returns the column labels of a Monday-first grid.
func WeekdayHeaders() []string {
	out := make([]string, len(weekdayHeaders))
	copy(out, weekdayHeaders)
	return out
}

// MonthGrid returns the cells of a Monday-first month grid: the tail of the
// previous month, every day of ym, then the head of the next month up to the
// end of the last week. The result length is always a multiple of 7.
func MonthGrid(ym YearMonth) []Day {
	first := ym.FirstDay()
	leading := first.Weekday() - 1
	days := make([]Day, 0, 42)

	for i := leading; i >= 1; i-- {
		days = append(days, Day{Date: first.AddDays(-i)})
	}
	for d := 1; d <= ym.Len(); d++ {
		days = append(days, Day{Date: Date{Year: ym.Year, Month: ym.Month, Day: d}, IsCurrentMonth: true})
	}

	// A full last row needs no padding; without this check a whole extra week
	// would be appended.
	if rem := len(days) % 7; rem != 0 {
		next := ym.AddMonths(1)
		for d := 1; d <= 7-rem; d++ {
			days = append(days, Day{Date: Date{Year: next.Year, Month: next.Month, Day: d}})
		}
	}
	return days
}

// WeekGrid returns the Monday..Sunday week containing ref. IsCurrentMonth is
// relative to ref's month, not to the months the week spans.
func WeekGrid(ref Date) []Day {
	monday := ref.AddDays(-(ref.Weekday() - 1))
	days := make([]Day, 7)
	for i := range days {
		d := monday.AddDays(i)
		days[i] = Day{Date: d, IsCurrentMonth: d.Month == ref.Month}
	}
	return days
}

// Weeks splits a grid into rows of seven.
func Weeks(days []Day) [][]Day {
	var rows [][]Day
	for i := 0; i+7 <= len(days); i += 7 {
		rows = append(rows, days[i:i+7])
	}
	return rows
}
