/*
stats.go - Derived metrics over the personnel list

PURPOSE:
  Read-only aggregates for dashboards: who is out right now, daily
  occupancy over a trailing window, cumulative days per person, and mean
  durations. Every function is pure over (people, today); the Registry
  wrappers only supply the current state and the clock.

DAY COUNTING:
  All durations use LeaveRecord.Days: inclusive of both ends, open records
  run to today. The rolling window and the totals therefore agree on how
  long any absence lasted.
*/
package timeoff

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/absence-tracker/generic"
)

// DefaultWindowDays is the rolling window length when none is given.
const DefaultWindowDays = 30

// =============================================================================
// RESULT TYPES
// =============================================================================

// Counts is the number of people currently on each leave type.
type Counts struct {
	ByType CountsByType
	Total  int
}

// DailyOccupancy is one date of the rolling window.
type DailyOccupancy struct {
	Date   generic.Date
	Counts CountsByType
	Total  int
	// Share is Total as a percentage of headcount, one decimal.
	Share decimal.Decimal
}

// PersonTotal is the cumulative days of one leave type for a person.
type PersonTotal struct {
	PersonID string
	Name     string
	Days     int
}

// Absence describes someone who is out today.
type Absence struct {
	PersonID  string
	Name      string
	Role      string
	Record    LeaveRecord
	DaysSoFar int
}

// AverageDuration is the mean length of closed records of one type.
type AverageDuration struct {
	Type    LeaveType
	Records int
	Mean    decimal.Decimal
}

// =============================================================================
// PURE FUNCTIONS
// =============================================================================

// LeaveCounts tallies the current status of every person.
func LeaveCounts(people []Person, today generic.Date) Counts {
	counts := Counts{ByType: newCountsByType()}
	for i := range people {
		if current := people[i].CurrentStatus(today); current != nil {
			counts.ByType[current.Type]++
			counts.Total++
		}
	}
	return counts
}

// RollingWindow returns one entry per date for the days dates ending at
// today, oldest first. days <= 0 uses DefaultWindowDays.
func RollingWindow(people []Person, today generic.Date, days int) []DailyOccupancy {
	if days <= 0 {
		days = DefaultWindowDays
	}

	dates := generic.TrailingPeriod(today, days).Days()
	window := make([]DailyOccupancy, 0, len(dates))
	for _, date := range dates {
		day := DailyOccupancy{Date: date, Counts: newCountsByType()}
		for i := range people {
			if rec := people[i].Ledger.ActiveOn(date, today); rec != nil {
				day.Counts[rec.Type]++
				day.Total++
			}
		}
		day.Share = generic.Percent(day.Total, len(people), 1)
		window = append(window, day)
	}
	return window
}

// TotalDaysPerPerson sums the days of type t for each person, largest
// first. People with no days are left out, except that a non-empty list
// always yields at least one entry.
func TotalDaysPerPerson(people []Person, t LeaveType, today generic.Date) []PersonTotal {
	var totals []PersonTotal
	for i := range people {
		days := people[i].Ledger.TotalDays(t, today)
		if days == 0 {
			continue
		}
		totals = append(totals, PersonTotal{PersonID: people[i].ID, Name: people[i].Name, Days: days})
	}

	if len(totals) == 0 && len(people) > 0 {
		return []PersonTotal{{PersonID: people[0].ID, Name: people[0].Name}}
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Days > totals[j].Days
	})
	return totals
}

// CurrentAbsences lists everyone on leave today, longest absence first.
func CurrentAbsences(people []Person, today generic.Date) []Absence {
	var out []Absence
	for i := range people {
		current := people[i].CurrentStatus(today)
		if current == nil {
			continue
		}
		out = append(out, Absence{
			PersonID:  people[i].ID,
			Name:      people[i].Name,
			Role:      people[i].Role,
			Record:    *current,
			DaysSoFar: generic.DaysBetweenInclusive(current.StartDate, today),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysSoFar > out[j].DaysSoFar
	})
	return out
}

// AverageDurations computes the mean closed-record length for every leave
// type, in AllLeaveTypes order. Open records are still running and are
// not counted.
func AverageDurations(people []Person, today generic.Date) []AverageDuration {
	sums := newCountsByType()
	records := newCountsByType()
	for i := range people {
		for _, rec := range people[i].Ledger.Closed() {
			sums[rec.Type] += rec.Days(today)
			records[rec.Type]++
		}
	}

	out := make([]AverageDuration, 0, len(AllLeaveTypes))
	for _, t := range AllLeaveTypes {
		out = append(out, AverageDuration{
			Type:    t,
			Records: records[t],
			Mean:    generic.Mean(sums[t], records[t], 1),
		})
	}
	return out
}

// =============================================================================
// REGISTRY WRAPPERS
// =============================================================================

func (r *Registry) LeaveCounts() Counts {
	return LeaveCounts(r.view(), r.Today())
}

func (r *Registry) RollingWindow(days int) []DailyOccupancy {
	return RollingWindow(r.view(), r.Today(), days)
}

func (r *Registry) TotalDaysPerPerson(t LeaveType) []PersonTotal {
	return TotalDaysPerPerson(r.view(), t, r.Today())
}

func (r *Registry) CurrentAbsences() []Absence {
	return CurrentAbsences(r.view(), r.Today())
}

func (r *Registry) AverageDurations() []AverageDuration {
	return AverageDurations(r.view(), r.Today())
}
