// Package timeoff implements the leave-period state model: leave records,
// the per-person ledger that keeps at most one period active, the personnel
// registry, and the read-only metrics computed over it.
package timeoff

import (
	"fmt"
	"strings"

	"github.com/warp/absence-tracker/generic"
)

// =============================================================================
// LEAVE TYPE - Closed set of absence kinds
// =============================================================================

// LeaveType is one of LeaveSick, LeaveChildCare or LeaveParental.
// Every switch over LeaveType in this package is exhaustive; adding a kind
// means adding it to AllLeaveTypes and to each switch.
type LeaveType int

const (
	LeaveSick LeaveType = iota + 1
	LeaveChildCare
	LeaveParental
)

// AllLeaveTypes lists every leave type in display order.
var AllLeaveTypes = []LeaveType{LeaveSick, LeaveChildCare, LeaveParental}

// Wire values. Child-care is stored as "vab" for compatibility with
// existing data.
const (
	wireSick      = "sick"
	wireChildCare = "vab"
	wireParental  = "parental"
)

func (t LeaveType) String() string {
	switch t {
	case LeaveSick:
		return wireSick
	case LeaveChildCare:
		return wireChildCare
	case LeaveParental:
		return wireParental
	default:
		return fmt.Sprintf("LeaveType(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared leave types.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveSick, LeaveChildCare, LeaveParental:
		return true
	default:
		return false
	}
}

// RequiresEndDate reports whether a new record of this type must be bounded.
func (t LeaveType) RequiresEndDate() bool {
	switch t {
	case LeaveParental:
		return true
	case LeaveSick, LeaveChildCare:
		return false
	default:
		return false
	}
}

// ParseLeaveType accepts the wire values plus "child-care"/"child_care".
func ParseLeaveType(s string) (LeaveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case wireSick:
		return LeaveSick, nil
	case wireChildCare, "child-care", "child_care":
		return LeaveChildCare, nil
	case wireParental:
		return LeaveParental, nil
	default:
		return 0, generic.NewValidationError("type", fmt.Sprintf("unknown leave type %q", s))
	}
}

func (t LeaveType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return []byte(t.String()), nil
}

func (t *LeaveType) UnmarshalText(b []byte) error {
	parsed, err := ParseLeaveType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// CountsByType holds one counter per leave type.
type CountsByType map[LeaveType]int

func newCountsByType() CountsByType {
	c := make(CountsByType, len(AllLeaveTypes))
	for _, t := range AllLeaveTypes {
		c[t] = 0
	}
	return c
}
