package timeoff

import (
	"fmt"

	"github.com/warp/absence-tracker/generic"
)

// ConflictError is returned when registering leave for someone who is
// already on leave. Active is the record that blocks the registration.
type ConflictError struct {
	PersonID string
	Active   LeaveRecord
}

func (e *ConflictError) Error() string {
	who := "person"
	if e.PersonID != "" {
		who = "person " + e.PersonID
	}
	return fmt.Sprintf("%s already has an active %s leave since %s; register a return first",
		who, e.Active.Type, e.Active.StartDate)
}

func (e *ConflictError) Unwrap() error { return generic.ErrConflict }
