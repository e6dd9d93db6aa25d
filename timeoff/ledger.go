/*
ledger.go - Per-person leave ledger with single-active-period enforcement

PURPOSE:
  Holds one person's leave records in entry order and owns the rules for
  opening and closing absence periods.

INVARIANT:
  At most one record is active at today's date.

  A registration is rejected while any record covers today. This is the
  time-off analogue of "you cannot be off twice on the same day": a person
  is either at work or on exactly one kind of leave.

TRANSITIONS:
  at work  --RegisterLeave(open)-->     on leave (open)
  on leave --RegisterReturn(date)-->    at work (record closed, end inclusive)
  at work  --RegisterLeave(bounded)-->  on leave until end, then at work

  Parental leave is always bounded at creation. Sick and child-care leave
  may be open-ended.

END DATES:
  EndDate is the last day of absence. Returning on the start date yields a
  one-day record. Every day count in the package uses this convention.

ORDERING:
  Records keep insertion order, which is not necessarily date order:
  back-dated entries are appended at the end.

SEE ALSO:
  - record.go: LeaveRecord.IsActive
  - registry.go: persists after every successful ledger mutation
*/
package timeoff

import (
	"sort"

	"github.com/warp/absence-tracker/generic"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is one person's ordered leave history. The zero value is empty
// and ready to use.
type Ledger struct {
	records []LeaveRecord
}

// NewLedger wraps copies of existing records (e.g. after loading). The
// active-period invariant is only enforced on new writes.
func NewLedger(records ...LeaveRecord) Ledger {
	return Ledger{records: cloneRecords(records)}
}

// Records returns a copy of the history in insertion order.
func (l *Ledger) Records() []LeaveRecord {
	return cloneRecords(l.records)
}

// Len is the number of records.
func (l *Ledger) Len() int { return len(l.records) }

// clone returns an independent copy, end dates included.
func (l *Ledger) clone() Ledger {
	return NewLedger(l.records...)
}

// =============================================================================
// CORE OPERATIONS
// =============================================================================

// RegisterLeave opens a new absence period.
//
// Returns ConflictError if a record is active today, ValidationError if the
// request breaks a record invariant or is parental without an end date.
func (l *Ledger) RegisterLeave(req LeaveRequest, today generic.Date) (LeaveRecord, error) {
	if active, _, ok := l.activeAt(today, today); ok {
		return LeaveRecord{}, &ConflictError{Active: active}
	}
	if err := req.validate(); err != nil {
		return LeaveRecord{}, err
	}

	rec := req.toRecord()
	l.records = append(l.records, rec)
	return rec.clone(), nil
}

// RegisterReturn closes the record active today with returnDate as its
// last day of leave.
//
// Returns NotFoundError if nothing is active, ValidationError if the
// return precedes the start.
func (l *Ledger) RegisterReturn(returnDate, today generic.Date) (LeaveRecord, error) {
	active, idx, ok := l.activeAt(today, today)
	if !ok {
		return LeaveRecord{}, &generic.NotFoundError{Kind: "active leave"}
	}
	if returnDate.IsZero() {
		return LeaveRecord{}, generic.NewValidationError("return_date", "return date is required")
	}
	if !returnDate.Valid() {
		return LeaveRecord{}, generic.NewValidationError("return_date", "return date must be YYYY-MM-DD")
	}
	if returnDate.Before(active.StartDate) {
		return LeaveRecord{}, generic.NewValidationError("return_date", "return date cannot be earlier than the leave start date")
	}

	end := returnDate
	l.records[idx].EndDate = &end
	return l.records[idx].clone(), nil
}

// =============================================================================
// QUERIES
// =============================================================================

// CurrentStatus returns the record active today, or nil when at work.
func (l *Ledger) CurrentStatus(today generic.Date) *LeaveRecord {
	rec, _, ok := l.activeAt(today, today)
	if !ok {
		return nil
	}
	return &rec
}

// ActiveOn returns the record that was active on date, or nil.
func (l *Ledger) ActiveOn(date, today generic.Date) *LeaveRecord {
	rec, _, ok := l.activeAt(date, today)
	if !ok {
		return nil
	}
	return &rec
}

// Closed returns the records with an end date, most recently entered first.
func (l *Ledger) Closed() []LeaveRecord {
	var closed []LeaveRecord
	for i := len(l.records) - 1; i >= 0; i-- {
		if !l.records[i].IsOpen() {
			closed = append(closed, l.records[i].clone())
		}
	}
	return closed
}

// RecentClosed returns at most n closed records, most recent first.
func (l *Ledger) RecentClosed(n int) []LeaveRecord {
	closed := l.Closed()
	if n >= 0 && len(closed) > n {
		closed = closed[:n]
	}
	return closed
}

// TotalDays sums the inclusive durations of all records of type t.
func (l *Ledger) TotalDays(t LeaveType, today generic.Date) int {
	total := 0
	for _, r := range l.records {
		if r.Type == t {
			total += r.Days(today)
		}
	}
	return total
}

// Overlapping returns records whose effective range intersects p,
// ordered by start date.
func (l *Ledger) Overlapping(p generic.Period, today generic.Date) []LeaveRecord {
	var result []LeaveRecord
	for _, r := range l.records {
		rp := r.Period(today)
		if rp.Validate() != nil {
			continue
		}
		if rp.Overlaps(p) {
			result = append(result, r.clone())
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result
}

// activeAt finds the first record active on asOf in insertion order.
func (l *Ledger) activeAt(asOf, today generic.Date) (LeaveRecord, int, bool) {
	for i, r := range l.records {
		if r.IsActive(asOf, today) {
			return r.clone(), i, true
		}
	}
	return LeaveRecord{}, -1, false
}
