package civil

// DaysFromCivil returns the number of days from 1970-01-01 to the given date.
//
// Month and day are not validated: out-of-range values produce a consistent
// but meaningless day-count. Use Validate or FromYMD for rejection semantics.
func DaysFromCivil(year, month, day int) int {
	// Eras run March to February so that the leap day is the last day of
	// the era year.
	y := year
	if month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400 // [0, 399]
	mp := month - 3
	if month <= 2 {
		mp = month + 9
	}
	doy := (153*mp+2)/5 + day - 1          // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy // [0, 146096]
	return era*daysPerEra + doe - EpochOffset
}

// CivilFromDays returns the civil date for an epoch day-count.
func CivilFromDays(z int) Date {
	y, doy := yearOfEra(z)
	mp := (5*doy + 2) / 153
	return Date{
		Year:  y + marchBasedCarry(mp),
		Month: calendarMonth(mp),
		Day:   doy - (153*mp+2)/5 + 1,
	}
}

// YearFromDays returns CivilFromDays(z).Year.
func YearFromDays(z int) int {
	y, doy := yearOfEra(z)
	return y + marchBasedCarry((5*doy+2)/153)
}

// MonthFromDays returns CivilFromDays(z).Month.
func MonthFromDays(z int) int {
	_, doy := yearOfEra(z)
	return calendarMonth((5*doy + 2) / 153)
}

// DayFromDays returns CivilFromDays(z).Day.
func DayFromDays(z int) int {
	_, doy := yearOfEra(z)
	mp := (5*doy + 2) / 153
	return doy - (153*mp+2)/5 + 1
}

// yearOfEra splits a day-count into the March-based year and the zero-based
// day within that year.
func yearOfEra(z int) (y, doy int) {
	z += EpochOffset
	era := floorDiv(z, daysPerEra)
	doe := z - era*daysPerEra                              // [0, 146096]
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365 // [0, 399]
	y = yoe + era*400
	doy = doe - (365*yoe + yoe/4 - yoe/100) // [0, 365]
	return y, doy
}

// calendarMonth maps a March-based month index [0, 11] to [1, 12].
func calendarMonth(mp int) int {
	if mp < 10 {
		return mp + 3
	}
	return mp - 9
}

// marchBasedCarry is 1 for January and February, which belong to the
// following calendar year.
func marchBasedCarry(mp int) int {
	if mp >= 10 {
		return 1
	}
	return 0
}

// floorDiv divides rounding toward negative infinity. Go's / truncates
// toward zero, which is wrong for dates before year 0.
func floorDiv(a, b int) int {
	if a >= 0 {
		return a / b
	}
	return (a - (b - 1)) / b
}
