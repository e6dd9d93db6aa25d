/*
Package generic provides the domain-agnostic building blocks of the
absence tracker.

PURPOSE:
  This package knows nothing about people or leave types. It supplies
  day-granularity dates, inclusive periods, the error kinds every
  operation reports, the key-value persistence contract, and exact
  decimal ratios for reporting.

KEY CONCEPTS:
  - Date: canonical YYYY-MM-DD calendar date (time.go)
  - Clock: where "today" comes from (time.go)
  - Period: inclusive date range (period.go)
  - KVStore: persistence collaborator (store.go)
  - Error kinds: validation, conflict, not-found, persistence (errors.go)

DESIGN PRINCIPLES:
  1. Day granularity: no time-of-day ever reaches the domain
  2. Precision: ratios use decimal.Decimal, never float64
  3. No global state: clocks and stores are injected

SEE ALSO:
  - timeoff/: the leave-period state model built on these types
*/
package generic

import "github.com/shopspring/decimal"

// =============================================================================
// RATIOS - Exact arithmetic for reported shares and means
// =============================================================================

var hundred = decimal.NewFromInt(100)

// Percent returns part/whole*100 rounded to places decimals.
// A zero whole yields zero.
func Percent(part, whole int, places int32) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(places)
}

// Mean returns sum/count rounded to places decimals.
// A zero count yields zero.
func Mean(sum, count int, places int32) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(count))).
		Round(places)
}
