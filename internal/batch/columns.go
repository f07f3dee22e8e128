package batch

import "fastymd/internal/civil"

// NullBool is a nullable boolean result.
type NullBool struct {
	Bool  bool
	Valid bool
}

// LeapYears reports for each year whether it is a leap year. Missing years
// stay missing.
func LeapYears(years []civil.Field) []NullBool {
	out := make([]NullBool, len(years))
	for i, y := range years {
		if y.Valid {
			out[i] = NullBool{Bool: civil.IsLeapYear(y.Value), Valid: true}
		}
	}
	return out
}

// Columns holds the civil fields of a column of day-counts.
type Columns struct {
	Year  []civil.Field
	Month []civil.Field
	Day   []civil.Field
}

// Decompose splits each day-count into year, month and day. Missing
// day-counts yield missing fields in all three columns.
func Decompose(days []civil.Field) Columns {
	cols := Columns{
		Year:  make([]civil.Field, len(days)),
		Month: make([]civil.Field, len(days)),
		Day:   make([]civil.Field, len(days)),
	}
	for i, z := range days {
		if !z.Valid {
			continue
		}
		d := civil.CivilFromDays(z.Value)
		cols.Year[i] = civil.Some(d.Year)
		cols.Month[i] = civil.Some(d.Month)
		cols.Day[i] = civil.Some(d.Day)
	}
	return cols
}

// Years returns the calendar year of each day-count.
func Years(days []civil.Field) []civil.Field {
	return mapDays(days, civil.YearFromDays)
}

// Months returns the calendar month of each day-count.
func Months(days []civil.Field) []civil.Field {
	return mapDays(days, civil.MonthFromDays)
}

// MonthDays returns the day of the month of each day-count.
func MonthDays(days []civil.Field) []civil.Field {
	return mapDays(days, civil.DayFromDays)
}

func mapDays(days []civil.Field, f func(int) int) []civil.Field {
	out := make([]civil.Field, len(days))
	for i, z := range days {
		if z.Valid {
			out[i] = civil.Some(f(z.Value))
		}
	}
	return out
}
