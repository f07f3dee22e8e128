package civil

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian
// calendar. Negative years follow the same rule, so -4 and 0 are leap years.
//
// A year is a leap year when it is divisible by 4 and, if it is divisible by
// 25, also by 16. The & tests are floor-mod for negative years in two's
// complement and divisibility by 25 does not depend on sign.
func IsLeapYear(year int) bool {
	mask := 15 * b2i(year%25 == 0)
	return (year&3)|(year&mask) == 0
}

// DaysInMonth returns the length of month in year, or 0 when month is not in
// [1, 12].
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 {
		return 28 + b2i(IsLeapYear(year))
	}
	return monthLengths[month-1]
}

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
