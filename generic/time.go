package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar day in canonical YYYY-MM-DD form
// =============================================================================

// DateLayout is the canonical wire and storage format for a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time-of-day or zone.
//
// The zero value ("") means "no date". The zero-padded form sorts
// lexicographically in chronological order.
type Date string

// ParseDate validates s and returns it in canonical form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q (use YYYY-MM-DD)", s)}
	}
	return Date(t.Format(DateLayout)), nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Comparison
func (d Date) Before(other Date) bool        { return d < other }
func (d Date) After(other Date) bool         { return d > other }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return d <= other }
func (d Date) AfterOrEqual(other Date) bool  { return d >= other }

// Valid reports whether d is a real date in canonical YYYY-MM-DD form.
func (d Date) Valid() bool {
	parsed, err := ParseDate(string(d))
	return err == nil && parsed == d
}

func (d Date) IsZero() bool   { return d == "" }
func (d Date) String() string { return string(d) }

// Time returns midnight UTC of the date. Invalid dates yield the zero time.
func (d Date) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// AddDays returns the date n calendar days away.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysBetweenInclusive counts both endpoints: the same date is 1 day.
// Argument order does not matter.
func DaysBetweenInclusive(a, b Date) int {
	diff := int(b.Time().Sub(a.Time()).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff + 1
}

// =============================================================================
// CLOCK - Source of "today"
// =============================================================================

// Clock supplies the current instant. Today is derived on every call and
// never cached, so long-running processes roll over at midnight.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the local zone.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns At. Used by tests and demo scenarios.
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time { return c.At }

// FixedClockOn is a FixedClock at midday of the given date.
func FixedClockOn(d Date) FixedClock {
	return FixedClock{At: d.Time().Add(12 * time.Hour)}
}

// Today returns the current calendar date from the system clock.
func Today() Date {
	return TodayFrom(SystemClock{})
}

// TodayFrom returns the current calendar date according to c.
func TodayFrom(c Clock) Date {
	if c == nil {
		c = SystemClock{}
	}
	return DateOf(c.Now())
}
