package timeoff_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/timeoff"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func d(s string) generic.Date { return generic.MustParseDate(s) }

func dp(s string) *generic.Date {
	date := d(s)
	return &date
}

func openReq(t timeoff.LeaveType, start string) timeoff.LeaveRequest {
	return timeoff.LeaveRequest{Type: t, StartDate: d(start)}
}

func boundedReq(t timeoff.LeaveType, start, end string) timeoff.LeaveRequest {
	return timeoff.LeaveRequest{Type: t, StartDate: d(start), EndDate: dp(end)}
}

// =============================================================================
// LEAVE RECORD
// =============================================================================

func TestLeaveRecord_IsActive_OpenRecord(t *testing.T) {
	// GIVEN: An open sick leave from March 1, today is March 10
	// THEN: Active between start and today, never outside

	rec := timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-01")}
	today := d("2024-03-10")

	assert.False(t, rec.IsActive(d("2024-02-29"), today), "before start")
	assert.True(t, rec.IsActive(d("2024-03-01"), today), "on start")
	assert.True(t, rec.IsActive(d("2024-03-10"), today), "on today")
	assert.False(t, rec.IsActive(d("2024-03-11"), today), "future date is not covered by an open record")
}

func TestLeaveRecord_IsActive_ClosedRecordIncludesEndDate(t *testing.T) {
	rec := timeoff.LeaveRecord{Type: timeoff.LeaveChildCare, StartDate: d("2024-03-01"), EndDate: dp("2024-03-05")}
	today := d("2024-06-01")

	assert.True(t, rec.IsActive(d("2024-03-05"), today))
	assert.False(t, rec.IsActive(d("2024-03-06"), today))
}

func TestLeaveRecord_IsActive_BoundedFutureRecordCoversFutureDates(t *testing.T) {
	// Parental leave booked ahead is active on its future dates.
	rec := timeoff.LeaveRecord{Type: timeoff.LeaveParental, StartDate: d("2024-05-01"), EndDate: dp("2024-08-31")}

	assert.True(t, rec.IsActive(d("2024-06-15"), d("2024-04-01")))
}

func TestLeaveRecord_Days(t *testing.T) {
	today := d("2024-03-10")

	closed := timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-01"), EndDate: dp("2024-03-05")}
	assert.Equal(t, 5, closed.Days(today))

	open := timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-08")}
	assert.Equal(t, 3, open.Days(today), "open record runs to today")

	future := timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-20")}
	assert.Equal(t, 0, future.Days(today), "open record starting later has used nothing")
}

func TestLeaveRecord_Validate(t *testing.T) {
	nonCanonicalEnd := generic.Date("2024-1-9")
	tests := []struct {
		name  string
		rec   timeoff.LeaveRecord
		field string
	}{
		{"unknown type", timeoff.LeaveRecord{Type: 0, StartDate: d("2024-01-01")}, "type"},
		{"missing start", timeoff.LeaveRecord{Type: timeoff.LeaveSick}, "start_date"},
		{"end before start", timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-01-05"), EndDate: dp("2024-01-04")}, "end_date"},
		{"non-canonical start", timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: generic.Date("2024-3-5")}, "start_date"},
		{"non-canonical end", timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-01-05"), EndDate: &nonCanonicalEnd}, "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			var vErr *generic.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	ok := timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-01-05"), EndDate: dp("2024-01-05")}
	assert.NoError(t, ok.Validate(), "one-day record is valid")
}

func TestLedger_RegisterLeave_RejectsNonCanonicalDate(t *testing.T) {
	var l timeoff.Ledger
	_, err := l.RegisterLeave(timeoff.LeaveRequest{Type: timeoff.LeaveSick, StartDate: generic.Date("2024-3-5")}, d("2024-03-10"))

	var vErr *generic.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "start_date", vErr.Field)
	assert.Zero(t, l.Len())
}

// =============================================================================
// LEAVE TYPE
// =============================================================================

func TestParseLeaveType_AcceptsAliases(t *testing.T) {
	for in, want := range map[string]timeoff.LeaveType{
		"sick":       timeoff.LeaveSick,
		"vab":        timeoff.LeaveChildCare,
		"child-care": timeoff.LeaveChildCare,
		"child_care": timeoff.LeaveChildCare,
		" Parental ": timeoff.LeaveParental,
	} {
		got, err := timeoff.ParseLeaveType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := timeoff.ParseLeaveType("vacation")
	assert.ErrorIs(t, err, generic.ErrValidation)
}

func TestLeaveType_WireValues(t *testing.T) {
	assert.Equal(t, "sick", timeoff.LeaveSick.String())
	assert.Equal(t, "vab", timeoff.LeaveChildCare.String())
	assert.Equal(t, "parental", timeoff.LeaveParental.String())

	_, err := timeoff.LeaveType(42).MarshalText()
	assert.Error(t, err)
}

// =============================================================================
// SINGLE-ACTIVE INVARIANT
// =============================================================================

func TestLedger_RegisterLeave_ConflictForEveryTypePair(t *testing.T) {
	// GIVEN: A person already on leave of type A
	// WHEN: Registering leave of type B (any B, including A)
	// THEN: ConflictError naming the blocking record

	today := d("2024-03-02")
	for _, first := range timeoff.AllLeaveTypes {
		for _, second := range timeoff.AllLeaveTypes {
			t.Run(fmt.Sprintf("%s_then_%s", first, second), func(t *testing.T) {
				var l timeoff.Ledger
				_, err := l.RegisterLeave(boundedReq(first, "2024-03-01", "2024-03-31"), today)
				require.NoError(t, err)

				_, err = l.RegisterLeave(boundedReq(second, "2024-03-02", "2024-03-10"), today)

				var conflict *timeoff.ConflictError
				require.ErrorAs(t, err, &conflict)
				assert.ErrorIs(t, err, generic.ErrConflict)
				assert.Equal(t, first, conflict.Active.Type)
				assert.Equal(t, 1, l.Len(), "rejected request leaves the ledger untouched")
			})
		}
	}
}

func TestLedger_RegisterLeave_ConflictCheckedBeforeValidation(t *testing.T) {
	today := d("2024-03-02")
	var l timeoff.Ledger
	_, err := l.RegisterLeave(openReq(timeoff.LeaveSick, "2024-03-01"), today)
	require.NoError(t, err)

	// Parental without end is invalid, but the active leave wins.
	_, err = l.RegisterLeave(openReq(timeoff.LeaveParental, "2024-03-02"), today)
	assert.ErrorIs(t, err, generic.ErrConflict)
}

func TestLedger_RegisterLeave_AllowedOnceEarlierLeaveEnded(t *testing.T) {
	today := d("2024-03-10")
	var l timeoff.Ledger
	_, err := l.RegisterLeave(boundedReq(timeoff.LeaveSick, "2024-03-01", "2024-03-05"), today)
	require.NoError(t, err)

	_, err = l.RegisterLeave(openReq(timeoff.LeaveChildCare, "2024-03-10"), today)
	require.NoError(t, err)
	assert.Equal(t, timeoff.LeaveChildCare, l.CurrentStatus(today).Type)
}

func TestLedger_RegisterLeave_ParentalRequiresEndDate(t *testing.T) {
	today := d("2024-03-01")
	var l timeoff.Ledger

	_, err := l.RegisterLeave(openReq(timeoff.LeaveParental, "2024-03-01"), today)
	var vErr *generic.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "end_date", vErr.Field)
	assert.Zero(t, l.Len())
}

func TestLedger_RegisterLeave_SickAndChildCareMayBeOpen(t *testing.T) {
	for _, lt := range []timeoff.LeaveType{timeoff.LeaveSick, timeoff.LeaveChildCare} {
		var l timeoff.Ledger
		rec, err := l.RegisterLeave(openReq(lt, "2024-03-01"), d("2024-03-01"))
		require.NoError(t, err, lt.String())
		assert.True(t, rec.IsOpen(), lt.String())
	}
}

func TestLedger_RegisterLeave_TrimsComment(t *testing.T) {
	var l timeoff.Ledger
	req := openReq(timeoff.LeaveSick, "2024-03-01")
	req.Comment = "  flu \n"

	rec, err := l.RegisterLeave(req, d("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, "flu", rec.Comment)
}

// =============================================================================
// RETURNS
// =============================================================================

func TestLedger_RegisterReturn_ClosesActiveRecord(t *testing.T) {
	today := d("2024-03-05")
	var l timeoff.Ledger
	_, err := l.RegisterLeave(openReq(timeoff.LeaveSick, "2024-03-01"), today)
	require.NoError(t, err)

	rec, err := l.RegisterReturn(d("2024-03-05"), today)
	require.NoError(t, err)

	require.NotNil(t, rec.EndDate)
	assert.Equal(t, d("2024-03-05"), *rec.EndDate)
	assert.Equal(t, 5, rec.Days(today))
	assert.Equal(t, rec, l.Records()[0], "stored record is closed too")
}

func TestLedger_RegisterReturn_OnStartDateIsOneDay(t *testing.T) {
	today := d("2024-03-01")
	var l timeoff.Ledger
	_, err := l.RegisterLeave(openReq(timeoff.LeaveSick, "2024-03-01"), today)
	require.NoError(t, err)

	rec, err := l.RegisterReturn(d("2024-03-01"), today)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Days(today))
}

func TestLedger_RegisterReturn_BeforeStartRejected(t *testing.T) {
	today := d("2024-03-05")
	var l timeoff.Ledger
	_, err := l.RegisterLeave(openReq(timeoff.LeaveSick, "2024-03-03"), today)
	require.NoError(t, err)

	_, err = l.RegisterReturn(d("2024-03-02"), today)
	assert.ErrorIs(t, err, generic.ErrValidation)
	assert.True(t, l.Records()[0].IsOpen(), "record stays open")
}

func TestLedger_RegisterReturn_RejectsNonCanonicalDate(t *testing.T) {
	l := timeoff.NewLedger()
	_, err := l.RegisterLeave(openReq(timeoff.LeaveSick, "2024-03-01"), d("2024-03-10"))
	require.NoError(t, err)

	_, err = l.RegisterReturn(generic.Date("2024-3-9"), d("2024-03-10"))
	assert.ErrorIs(t, err, generic.ErrValidation)
	assert.True(t, l.Records()[0].IsOpen())
}

func TestLedger_RegisterReturn_NothingActive(t *testing.T) {
	var l timeoff.Ledger
	_, err := l.RegisterReturn(d("2024-03-05"), d("2024-03-05"))
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestLedger_RegisterReturn_CanShortenBookedLeave(t *testing.T) {
	// Bounded child-care leave ending early.
	today := d("2024-03-03")
	var l timeoff.Ledger
	_, err := l.RegisterLeave(boundedReq(timeoff.LeaveChildCare, "2024-03-01", "2024-03-10"), today)
	require.NoError(t, err)

	rec, err := l.RegisterReturn(d("2024-03-03"), today)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Days(today))
}

// =============================================================================
// QUERIES
// =============================================================================

func TestLedger_RecentClosed_NewestFirstAndLimited(t *testing.T) {
	today := d("2024-06-01")
	l := timeoff.NewLedger(
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-01-01"), EndDate: dp("2024-01-02")},
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-02-01"), EndDate: dp("2024-02-02")},
		timeoff.LeaveRecord{Type: timeoff.LeaveChildCare, StartDate: d("2024-03-01"), EndDate: dp("2024-03-02")},
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-04-01"), EndDate: dp("2024-04-02")},
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-05-30")},
	)

	recent := l.RecentClosed(3)
	require.Len(t, recent, 3)
	assert.Equal(t, d("2024-04-01"), recent[0].StartDate)
	assert.Equal(t, d("2024-02-01"), recent[2].StartDate)
	assert.Equal(t, timeoff.LeaveSick, l.CurrentStatus(today).Type)
}

func TestLedger_TotalDays_PerType(t *testing.T) {
	today := d("2024-03-10")
	l := timeoff.NewLedger(
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-01"), EndDate: dp("2024-03-03")},
		timeoff.LeaveRecord{Type: timeoff.LeaveChildCare, StartDate: d("2024-03-04"), EndDate: dp("2024-03-04")},
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-09")},
	)

	assert.Equal(t, 5, l.TotalDays(timeoff.LeaveSick, today))
	assert.Equal(t, 1, l.TotalDays(timeoff.LeaveChildCare, today))
	assert.Equal(t, 0, l.TotalDays(timeoff.LeaveParental, today))
}

func TestLedger_Overlapping_SortedByStart(t *testing.T) {
	today := d("2024-03-31")
	l := timeoff.NewLedger(
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-03-20"), EndDate: dp("2024-03-22")},
		timeoff.LeaveRecord{Type: timeoff.LeaveSick, StartDate: d("2024-01-01"), EndDate: dp("2024-01-02")},
		timeoff.LeaveRecord{Type: timeoff.LeaveChildCare, StartDate: d("2024-03-01"), EndDate: dp("2024-03-03")},
	)

	got := l.Overlapping(generic.Period{Start: d("2024-03-01"), End: d("2024-03-31")}, today)
	require.Len(t, got, 2)
	assert.Equal(t, d("2024-03-01"), got[0].StartDate)
	assert.Equal(t, d("2024-03-20"), got[1].StartDate)
}

func TestLedger_Records_ReturnsCopy(t *testing.T) {
	var l timeoff.Ledger
	_, err := l.RegisterLeave(openReq(timeoff.LeaveSick, "2024-03-01"), d("2024-03-01"))
	require.NoError(t, err)

	recs := l.Records()
	recs[0].Comment = "tampered"
	assert.Empty(t, l.Records()[0].Comment)
}
