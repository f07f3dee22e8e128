// Package dateparser turns date text into epoch day-counts.
package dateparser

import (
	"fmt"
	"regexp"
	"strconv"

	"fastymd/internal/civil"
)

// YearRangeError reports a year outside [civil.MinYear, civil.MaxYear].
// It is fatal for the whole batch the year belongs to.
type YearRangeError struct {
	Index int // Position of the offending element, or -1 when unknown
	Year  int
}

func (e *YearRangeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("years must be in the range [%d, %d]: year is %d", civil.MinYear, civil.MaxYear, e.Year)
	}
	return fmt.Sprintf("years must be in the range [%d, %d]. y[%d] is %d.", civil.MinYear, civil.MaxYear, e.Index, e.Year)
}

// Parse reads a year, a month and a day from text.
//
// Leading whitespace and an optional '-' sign are followed by the year
// digits. Any run of non-digits separates the year from the month and the
// month from the day. Month and day are range-checked digit by digit. When
// strict is set, only whitespace may follow the day.
//
// Text that does not describe a valid date yields a civil.Invalid result
// and a nil error. A year whose digits accumulate past civil.MaxYear
// returns a *YearRangeError; the check fires as soon as the running value
// passes the bound.
func Parse(text string, strict bool) (civil.Result, error) {
	c := cursor{s: text}
	invalid := civil.Result{Status: civil.Invalid}

	c.skipSpace()
	negative := c.accept('-')
	if !c.atDigit() {
		return invalid, nil
	}

	year := 0
	for c.atDigit() {
		year = year*10 + c.next()
		if year > civil.MaxYear {
			if negative {
				year = -year
			}
			return civil.Result{}, &YearRangeError{Index: -1, Year: year}
		}
	}
	if negative {
		year = -year
	}

	c.skipNonDigits()
	month := 0
	for c.atDigit() {
		month = month*10 + c.next()
		if month > 12 {
			return invalid, nil
		}
	}
	if month == 0 {
		return invalid, nil
	}

	c.skipNonDigits()
	last := civil.DaysInMonth(year, month)
	day := 0
	for c.atDigit() {
		day = day*10 + c.next()
		if day > last {
			return invalid, nil
		}
	}
	if day == 0 {
		return invalid, nil
	}

	c.skipSpace()
	if strict && !c.done() {
		return invalid, nil
	}
	return civil.Days(civil.DaysFromCivil(year, month, day)), nil
}

// cursor is the scan position over one input string.
type cursor struct {
	s   string
	pos int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.s)
}

func (c *cursor) atDigit() bool {
	return !c.done() && isDigit(c.s[c.pos])
}

// next consumes a digit and returns its value.
func (c *cursor) next() int {
	d := int(c.s[c.pos] - '0')
	c.pos++
	return d
}

func (c *cursor) accept(b byte) bool {
	if !c.done() && c.s[c.pos] == b {
		c.pos++
		return true
	}
	return false
}

func (c *cursor) skipSpace() {
	for !c.done() && isSpace(c.s[c.pos]) {
		c.pos++
	}
}

func (c *cursor) skipNonDigits() {
	for !c.done() && !isDigit(c.s[c.pos]) {
		c.pos++
	}
}

func isDigit(b byte) bool {
	return b-'0' < 10
}

// isSpace matches ' ', '\t', '\n', '\v', '\f' and '\r'.
func isSpace(b byte) bool {
	return b == ' ' || b-'\t' < 5
}

// DateParseErrorType represents the type of date parsing error.
type DateParseErrorType string

const (
	InvalidFormat DateParseErrorType = "INVALID_FORMAT"
	InvalidDate   DateParseErrorType = "INVALID_DATE"
)

// DateParseError represents an error that occurred during date parsing.
type DateParseError struct {
	Type   DateParseErrorType
	Reason string
}

func (e *DateParseError) Error() string {
	switch e.Type {
	case InvalidFormat:
		return "invalid date format: expected YYYY-MM-DD"
	case InvalidDate:
		return fmt.Sprintf("invalid date: %s", e.Reason)
	default:
		return fmt.Sprintf("date parse error: %s", e.Reason)
	}
}

// IsoDate represents a parsed ISO date with year, month, and day components.
type IsoDate struct {
	Year  int
	Month int
	Day   int
	Days  int // Epoch day-count
}

// isoDatePattern matches the YYYY-MM-DD format strictly.
var isoDatePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)

// SplitIsoDate checks the YYYY-MM-DD layout and returns the three fields
// without validating them against the calendar. Only a layout mismatch is
// an error.
func SplitIsoDate(segment string) (year, month, day int, err error) {
	matches := isoDatePattern.FindStringSubmatch(segment)
	if matches == nil {
		return 0, 0, 0, &DateParseError{Type: InvalidFormat}
	}
	year, _ = strconv.Atoi(matches[1])
	month, _ = strconv.Atoi(matches[2])
	day, _ = strconv.Atoi(matches[3])
	return year, month, day, nil
}

// ParseIsoDate parses a string in YYYY-MM-DD format and returns an IsoDate.
// Unlike Parse it insists on the exact layout and explains why a date is
// rejected.
func ParseIsoDate(segment string) (*IsoDate, error) {
	year, month, day, err := SplitIsoDate(segment)
	if err != nil {
		return nil, err
	}

	if month < 1 || month > 12 {
		return nil, &DateParseError{
			Type:   InvalidDate,
			Reason: fmt.Sprintf("month %02d is out of range (01-12)", month),
		}
	}

	maxDay := civil.DaysInMonth(year, month)
	if day < 1 || day > maxDay {
		return nil, &DateParseError{
			Type:   InvalidDate,
			Reason: fmt.Sprintf("day %02d is out of range for month %02d (01-%02d)", day, month, maxDay),
		}
	}

	return &IsoDate{
		Year:  year,
		Month: month,
		Day:   day,
		Days:  civil.DaysFromCivil(year, month, day),
	}, nil
}
