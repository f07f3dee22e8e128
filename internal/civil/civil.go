// Package civil converts between epoch day-counts and proleptic Gregorian
// calendar dates.
//
// A day-count is the number of days since 1970-01-01 (negative before the
// epoch). A civil date is a (year, month, day) triple where year 0 is 1 BCE.
// The conversions follow Howard Hinnant's era decomposition and are exact far
// outside [MinYear, MaxYear]; the range is enforced only by the validated
// entry points of callers.
package civil

import (
	"fmt"
	"strconv"
)

const (
	// MaxYear is the largest year accepted by validated entry points.
	MaxYear = 9999
	// MinYear is the smallest year accepted by validated entry points.
	MinYear = -MaxYear

	// EpochOffset is the number of days from 0000-03-01 to 1970-01-01.
	EpochOffset = 719468

	daysPerEra = 146097
)

// Status tells whether a Result holds a day-count and, if not, why.
type Status uint8

const (
	// OK means the result holds a valid day-count.
	OK Status = iota
	// Missing means an input was absent. It never warrants a warning.
	Missing
	// Invalid means the input was present but failed validation or parsing.
	Invalid
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Missing:
		return "missing"
	case Invalid:
		return "invalid"
	default:
		return "status(" + strconv.Itoa(int(s)) + ")"
	}
}

// Field is a nullable integer input.
type Field struct {
	Value int
	Valid bool
}

// None is the missing Field.
var None = Field{}

// Some returns a present Field holding v.
func Some(v int) Field {
	return Field{Value: v, Valid: true}
}

func (f Field) String() string {
	if !f.Valid {
		return "NA"
	}
	return strconv.Itoa(f.Value)
}

// Result is an optional day-count. Days is meaningful only when Status is OK.
type Result struct {
	Days   int
	Status Status
}

// Days returns a successful Result.
func Days(z int) Result {
	return Result{Days: z, Status: OK}
}

// Valid reports whether r holds a day-count.
func (r Result) Valid() bool {
	return r.Status == OK
}

// Warn reports whether r failed in a way callers should warn about.
func (r Result) Warn() bool {
	return r.Status == Invalid
}

// Field converts r to a Field, dropping the reason for a missing value.
func (r Result) Field() Field {
	if r.Status != OK {
		return None
	}
	return Some(r.Days)
}

func (r Result) String() string {
	if r.Status != OK {
		return "NA"
	}
	return strconv.Itoa(r.Days)
}

// Date is a civil date in the proleptic Gregorian calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Days returns the epoch day-count of d. The date is not validated.
func (d Date) Days() int {
	return DaysFromCivil(d.Year, d.Month, d.Day)
}

// String returns the date in YYYY-MM-DD format, with a leading '-' for
// years before year 0.
func (d Date) String() string {
	if d.Year < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -d.Year, d.Month, d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
