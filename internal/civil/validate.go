package civil

// Validate checks a (year, month, day) combination against the calendar.
//
// A missing field yields Missing. A month outside [1, 12] or a day outside
// [1, DaysInMonth(year, month)] yields Invalid. The year itself is not
// range-checked here; callers enforce [MinYear, MaxYear] as a hard failure.
func Validate(year, month, day Field) Status {
	if !year.Valid || !month.Valid || !day.Valid {
		return Missing
	}
	if month.Value < 1 || month.Value > 12 {
		return Invalid
	}
	if day.Value < 1 || day.Value > DaysInMonth(year.Value, month.Value) {
		return Invalid
	}
	return OK
}

// FromYMD validates a (year, month, day) combination and converts it to an
// epoch day-count.
func FromYMD(year, month, day Field) Result {
	if st := Validate(year, month, day); st != OK {
		return Result{Status: st}
	}
	return Days(DaysFromCivil(year.Value, month.Value, day.Value))
}

// InRange reports whether year lies within [MinYear, MaxYear].
func InRange(year int) bool {
	return year >= MinYear && year <= MaxYear
}
