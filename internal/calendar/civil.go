// Package calendar provides the date, holiday, and month-grid calculations
// behind the year calendar.
//
// All values are plain civil dates in the proleptic Gregorian calendar.
// Nothing here knows about time zones; time.Time is only used internally
// for normalization and is always constructed in UTC.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Supported year range. The upper bound is what the four-digit text form
// (YYYY-MM-DD) can carry.
const (
	MinYear = 1
	MaxYear = 9999
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidYear is returned for years outside [MinYear, MaxYear].
	ErrInvalidYear = errors.New("invalid year")

	// ErrInvalidMonth is returned for months outside January..December.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDate is returned for days that do not exist in their month
	// or for text that is not a YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date")
)

// ValidateYear checks that year is inside the supported range.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d (supported range %d-%d)", ErrInvalidYear, year, MinYear, MaxYear)
	}
	return nil
}

// ValidateMonth checks that month is January..December.
func ValidateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: %d (want 1-12)", ErrInvalidMonth, int(month))
	}
	return nil
}

// =============================================================================
// Calendar Arithmetic
// =============================================================================

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in the given month (28-31).
// The month is not validated.
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// WeekdayOf returns the weekday of a date with Monday=0 through Sunday=6.
// Callers must pass a valid date.
func WeekdayOf(year int, month time.Month, day int) int {
	wd := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

// =============================================================================
// Date
// =============================================================================

// Date is a calendar date without time of day or zone.
// The zero value means "no date".
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns a validated date.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if err := ValidateYear(year); err != nil {
		return Date{}, err
	}
	if err := ValidateMonth(month); err != nil {
		return Date{}, err
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q, use YYYY-MM-DD", ErrInvalidDate, s)
	}
	d := DateOf(t)
	if err := ValidateYear(d.Year); err != nil {
		return Date{}, err
	}
	return d, nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Weekday returns Monday=0 through Sunday=6.
func (d Date) Weekday() int {
	return WeekdayOf(d.Year, d.Month, d.Day)
}

// IsWeekend reports whether the date is a Saturday or Sunday.
func (d Date) IsWeekend() bool {
	return d.Weekday() >= 5
}

// AddDays returns the date n days later (or earlier for negative n),
// rolling over month and year boundaries.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysSince returns the number of days from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

// Compare returns -1, 0 or +1 depending on calendar order.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d comes before other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// After reports whether d comes after other.
func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	if d.IsZero() {
		return []byte{}, nil
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
