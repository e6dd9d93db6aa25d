package timeoff

import (
	"strings"

	"github.com/warp/absence-tracker/generic"
)

// =============================================================================
// LEAVE RECORD - One absence interval
// =============================================================================

// LeaveRecord is a single absence. A nil EndDate means the record is open:
// the person has not returned yet.
//
// INVARIANTS:
//   - EndDate, when set, is on or after StartDate
//   - Parental records are created with an EndDate
type LeaveRecord struct {
	Type      LeaveType
	StartDate generic.Date
	EndDate   *generic.Date
	Comment   string
}

// LeaveRequest is the input to Ledger.RegisterLeave.
type LeaveRequest struct {
	Type      LeaveType
	StartDate generic.Date
	EndDate   *generic.Date
	Comment   string
}

// IsOpen reports whether the record has no end date.
func (r LeaveRecord) IsOpen() bool { return r.EndDate == nil }

// IsActive reports whether the record covers asOf.
//
// An open record is active from its start up to today and never beyond:
// asking about a future date returns false even though the leave has no end.
func (r LeaveRecord) IsActive(asOf, today generic.Date) bool {
	if asOf.Before(r.StartDate) {
		return false
	}
	if r.EndDate == nil {
		return asOf.BeforeOrEqual(today)
	}
	return asOf.BeforeOrEqual(*r.EndDate)
}

// EffectiveEnd is EndDate, or today for an open record.
func (r LeaveRecord) EffectiveEnd(today generic.Date) generic.Date {
	if r.EndDate != nil {
		return *r.EndDate
	}
	return today
}

// Period is the record's effective [start, end] range as of today.
func (r LeaveRecord) Period(today generic.Date) generic.Period {
	return generic.Period{Start: r.StartDate, End: r.EffectiveEnd(today)}
}

// Days is the inclusive duration as of today. An open record whose start
// is still in the future has not used any days yet.
func (r LeaveRecord) Days(today generic.Date) int {
	end := r.EffectiveEnd(today)
	if end.Before(r.StartDate) {
		return 0
	}
	return generic.DaysBetweenInclusive(r.StartDate, end)
}

// clone copies r with its own EndDate.
func (r LeaveRecord) clone() LeaveRecord {
	if r.EndDate != nil {
		end := *r.EndDate
		r.EndDate = &end
	}
	return r
}

func cloneRecords(records []LeaveRecord) []LeaveRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]LeaveRecord, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}

// Validate checks the record-level invariants.
func (r LeaveRecord) Validate() error {
	if !r.Type.Valid() {
		return generic.NewValidationError("type", "unknown leave type")
	}
	if r.StartDate.IsZero() {
		return generic.NewValidationError("start_date", "start date is required")
	}
	if !r.StartDate.Valid() {
		return generic.NewValidationError("start_date", "start date must be YYYY-MM-DD")
	}
	if r.EndDate != nil && !r.EndDate.Valid() {
		return generic.NewValidationError("end_date", "end date must be YYYY-MM-DD")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		return generic.NewValidationError("end_date", "end date cannot be earlier than the start date")
	}
	return nil
}

func (req LeaveRequest) toRecord() LeaveRecord {
	rec := LeaveRecord{
		Type:      req.Type,
		StartDate: req.StartDate,
		Comment:   strings.TrimSpace(req.Comment),
	}
	if req.EndDate != nil {
		end := *req.EndDate
		rec.EndDate = &end
	}
	return rec
}

// validate checks creation-time rules on top of the record invariants.
func (req LeaveRequest) validate() error {
	rec := req.toRecord()
	if err := rec.Validate(); err != nil {
		return err
	}
	if req.Type.RequiresEndDate() && req.EndDate == nil {
		return generic.NewValidationError("end_date", req.Type.String()+" leave requires an end date")
	}
	return nil
}
