package timeoff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/timeoff"
)

func person(id, name, role string, records ...timeoff.LeaveRecord) timeoff.Person {
	return timeoff.Person{ID: id, Name: name, Role: role, Ledger: timeoff.NewLedger(records...)}
}

func closedRec(t timeoff.LeaveType, start, end string) timeoff.LeaveRecord {
	return timeoff.LeaveRecord{Type: t, StartDate: d(start), EndDate: dp(end)}
}

func openRec(t timeoff.LeaveType, start string) timeoff.LeaveRecord {
	return timeoff.LeaveRecord{Type: t, StartDate: d(start)}
}

// =============================================================================
// LEAVE COUNTS
// =============================================================================

func TestLeaveCounts_TalliesCurrentStatus(t *testing.T) {
	today := d("2024-03-10")
	people := []timeoff.Person{
		person("1", "A", "", openRec(timeoff.LeaveSick, "2024-03-08")),
		person("2", "B", "", closedRec(timeoff.LeaveChildCare, "2024-03-09", "2024-03-11")),
		person("3", "C", "", closedRec(timeoff.LeaveParental, "2024-01-01", "2024-06-30")),
		person("4", "D", "", closedRec(timeoff.LeaveSick, "2024-03-01", "2024-03-02")),
		person("5", "E", ""),
	}

	counts := timeoff.LeaveCounts(people, today)

	assert.Equal(t, 1, counts.ByType[timeoff.LeaveSick])
	assert.Equal(t, 1, counts.ByType[timeoff.LeaveChildCare])
	assert.Equal(t, 1, counts.ByType[timeoff.LeaveParental])
	assert.Equal(t, 3, counts.Total)
}

func TestLeaveCounts_EmptyHasEveryType(t *testing.T) {
	counts := timeoff.LeaveCounts(nil, d("2024-03-10"))

	assert.Len(t, counts.ByType, len(timeoff.AllLeaveTypes))
	assert.Zero(t, counts.Total)
}

// =============================================================================
// ROLLING WINDOW
// =============================================================================

func TestRollingWindow_NoRecords_AllZeroOverThirtyDays(t *testing.T) {
	// GIVEN: People without any leave
	// WHEN: Computing the default window
	// THEN: 30 dates ending today, every count zero

	today := d("2024-03-10")
	people := []timeoff.Person{person("1", "A", ""), person("2", "B", "")}

	window := timeoff.RollingWindow(people, today, 30)

	require.Len(t, window, 30)
	assert.Equal(t, d("2024-02-10"), window[0].Date)
	assert.Equal(t, today, window[29].Date)
	for _, day := range window {
		for _, lt := range timeoff.AllLeaveTypes {
			assert.Zero(t, day.Counts[lt], "%s %s", day.Date, lt)
		}
		assert.Zero(t, day.Total)
		assert.True(t, day.Share.IsZero())
	}
}

func TestRollingWindow_NonPositiveUsesDefault(t *testing.T) {
	window := timeoff.RollingWindow(nil, d("2024-03-10"), 0)
	assert.Len(t, window, timeoff.DefaultWindowDays)
}

func TestRollingWindow_OpenRecordCountsThroughToday(t *testing.T) {
	today := d("2024-03-10")
	people := []timeoff.Person{
		person("1", "A", "", openRec(timeoff.LeaveSick, "2024-03-08")),
		person("2", "B", "", closedRec(timeoff.LeaveChildCare, "2024-03-07", "2024-03-08")),
		person("3", "C", ""),
		person("4", "D", ""),
	}

	window := timeoff.RollingWindow(people, today, 5)
	require.Len(t, window, 5)

	byDate := make(map[generic.Date]timeoff.DailyOccupancy)
	for _, day := range window {
		byDate[day.Date] = day
	}

	assert.Zero(t, byDate[d("2024-03-06")].Total)
	assert.Equal(t, 1, byDate[d("2024-03-07")].Counts[timeoff.LeaveChildCare])
	assert.Equal(t, 2, byDate[d("2024-03-08")].Total)
	assert.Equal(t, "50", byDate[d("2024-03-08")].Share.String())
	assert.Equal(t, 1, byDate[d("2024-03-09")].Counts[timeoff.LeaveSick])
	assert.Equal(t, 1, byDate[d("2024-03-10")].Counts[timeoff.LeaveSick])
	assert.Equal(t, "25", byDate[d("2024-03-10")].Share.String())
}

// =============================================================================
// TOTALS
// =============================================================================

func TestTotalDaysPerPerson_SortedDescendingWithoutZeros(t *testing.T) {
	today := d("2024-03-31")
	people := []timeoff.Person{
		person("1", "A", "", closedRec(timeoff.LeaveSick, "2024-03-01", "2024-03-02")),
		person("2", "B", "", closedRec(timeoff.LeaveSick, "2024-03-01", "2024-03-05")),
		person("3", "C", "", closedRec(timeoff.LeaveChildCare, "2024-03-01", "2024-03-20")),
		person("4", "D", "", closedRec(timeoff.LeaveSick, "2024-03-10", "2024-03-11")),
	}

	totals := timeoff.TotalDaysPerPerson(people, timeoff.LeaveSick, today)

	require.Len(t, totals, 3)
	assert.Equal(t, "2", totals[0].PersonID)
	assert.Equal(t, 5, totals[0].Days)
	// Ties keep registry order.
	assert.Equal(t, "1", totals[1].PersonID)
	assert.Equal(t, "4", totals[2].PersonID)
}

func TestTotalDaysPerPerson_OpenRecordRunsToToday(t *testing.T) {
	people := []timeoff.Person{person("1", "A", "", openRec(timeoff.LeaveSick, "2024-03-01"))}

	totals := timeoff.TotalDaysPerPerson(people, timeoff.LeaveSick, d("2024-03-10"))
	require.Len(t, totals, 1)
	assert.Equal(t, 10, totals[0].Days)
}

func TestTotalDaysPerPerson_AllZeroSurfacesFirstPerson(t *testing.T) {
	people := []timeoff.Person{person("1", "A", ""), person("2", "B", "")}

	totals := timeoff.TotalDaysPerPerson(people, timeoff.LeaveParental, d("2024-03-10"))

	require.Len(t, totals, 1)
	assert.Equal(t, "1", totals[0].PersonID)
	assert.Zero(t, totals[0].Days)

	assert.Empty(t, timeoff.TotalDaysPerPerson(nil, timeoff.LeaveSick, d("2024-03-10")))
}

// =============================================================================
// ABSENCES & AVERAGES
// =============================================================================

func TestCurrentAbsences_LongestFirst(t *testing.T) {
	today := d("2024-03-10")
	people := []timeoff.Person{
		person("1", "A", "Ops", openRec(timeoff.LeaveSick, "2024-03-09")),
		person("2", "B", "Dev"),
		person("3", "C", "Dev", closedRec(timeoff.LeaveParental, "2024-02-01", "2024-05-01")),
	}

	out := timeoff.CurrentAbsences(people, today)

	require.Len(t, out, 2)
	assert.Equal(t, "3", out[0].PersonID)
	assert.Equal(t, 39, out[0].DaysSoFar)
	assert.Equal(t, "1", out[1].PersonID)
	assert.Equal(t, 2, out[1].DaysSoFar)
}

func TestAverageDurations_ClosedRecordsOnly(t *testing.T) {
	today := d("2024-03-31")
	people := []timeoff.Person{
		person("1", "A", "",
			closedRec(timeoff.LeaveSick, "2024-03-01", "2024-03-02"),
			closedRec(timeoff.LeaveSick, "2024-03-10", "2024-03-12"),
		),
		person("2", "B", "", openRec(timeoff.LeaveSick, "2024-03-20")),
	}

	avgs := timeoff.AverageDurations(people, today)
	require.Len(t, avgs, len(timeoff.AllLeaveTypes))

	assert.Equal(t, timeoff.LeaveSick, avgs[0].Type)
	assert.Equal(t, 2, avgs[0].Records)
	assert.Equal(t, "2.5", avgs[0].Mean.String())
	assert.True(t, avgs[1].Mean.IsZero())
}

func TestRegistry_StatsUseCurrentState(t *testing.T) {
	ctx := context.Background()
	reg := timeoff.NewRegistry(nil, timeoff.WithClock(generic.FixedClockOn(d("2024-03-10"))))
	p, err := reg.AddPerson(ctx, "Alice", "Engineer")
	require.NoError(t, err)
	_, err = reg.RegisterLeave(ctx, p.ID, openReq(timeoff.LeaveChildCare, "2024-03-09"))
	require.NoError(t, err)

	assert.Equal(t, 1, reg.LeaveCounts().ByType[timeoff.LeaveChildCare])
	assert.Len(t, reg.CurrentAbsences(), 1)
	assert.Equal(t, 2, reg.TotalDaysPerPerson(timeoff.LeaveChildCare)[0].Days)
	assert.Equal(t, 1, reg.RollingWindow(7)[6].Total)
}
