package generic

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the closed interval [Start, End] of calendar dates.
//
// Examples:
//   - A closed sick leave: 2024-03-01 .. 2024-03-05 (5 days)
//   - The rolling window:  today-29 .. today (30 days)
type Period struct {
	Start Date
	End   Date
}

// TrailingPeriod returns the n dates ending at end (inclusive).
// n < 1 is treated as 1.
func TrailingPeriod(end Date, n int) Period {
	if n < 1 {
		n = 1
	}
	return Period{Start: end.AddDays(-(n - 1)), End: end}
}

// Validate returns ErrInvalidPeriod when End is before Start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Overlaps returns true if the two periods share at least one date.
func (p Period) Overlaps(other Period) bool {
	return p.Start.BeforeOrEqual(other.End) && other.Start.BeforeOrEqual(p.End)
}

// Days returns every date in the period, oldest first.
func (p Period) Days() []Date {
	if p.End.Before(p.Start) {
		return nil
	}
	days := make([]Date, 0, DaysBetweenInclusive(p.Start, p.End))
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len is the inclusive day count of the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetweenInclusive(p.Start, p.End)
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
