package timeoff

import (
	"strings"

	"github.com/warp/absence-tracker/generic"
)

// Person is a member of staff and their leave history.
type Person struct {
	ID     string
	Name   string
	Role   string
	Ledger Ledger
}

// CurrentStatus is shorthand for p.Ledger.CurrentStatus.
func (p *Person) CurrentStatus(today generic.Date) *LeaveRecord {
	return p.Ledger.CurrentStatus(today)
}

// OnLeave reports whether p has a record active today.
func (p *Person) OnLeave(today generic.Date) bool {
	return p.CurrentStatus(today) != nil
}

func (p *Person) clone() Person {
	return Person{ID: p.ID, Name: p.Name, Role: p.Role, Ledger: p.Ledger.clone()}
}

// normalizePerson trims and validates name and role.
func normalizePerson(name, role string) (string, string, error) {
	name = strings.TrimSpace(name)
	role = strings.TrimSpace(role)
	if name == "" {
		return "", "", generic.NewValidationError("name", "name is required")
	}
	return name, role, nil
}
