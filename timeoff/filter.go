package timeoff

import (
	"sort"
	"strings"

	"github.com/warp/absence-tracker/generic"
)

// Special filter values.
const (
	FilterAll    = "all"
	FilterAtWork = "at-work"
)

// Filter narrows the personnel list. All three predicates must match.
//
//   - Search: case-insensitive substring of name or role; empty matches all
//   - Status: "all"/empty, "at-work" (no active record), or a leave type
//   - Role:   "all"/empty, or an exact match on the trimmed role
type Filter struct {
	Search string
	Status string
	Role   string
}

// Filter returns copies of the people matching f, in insertion order.
func (r *Registry) Filter(f Filter) ([]Person, error) {
	matched, err := FilterPeople(r.view(), f, r.Today())
	if err != nil {
		return nil, err
	}
	out := make([]Person, len(matched))
	for i := range matched {
		out[i] = matched[i].clone()
	}
	return out, nil
}

// FilterPeople applies f to people as of today. An unknown Status value
// is a ValidationError.
func FilterPeople(people []Person, f Filter, today generic.Date) ([]Person, error) {
	statusAll, atWork, leaveType, err := parseStatusFilter(f.Status)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	role := strings.TrimSpace(f.Role)
	roleAll := role == "" || role == FilterAll
	noRolesAtAll := len(DistinctRoles(people)) == 0

	var result []Person
	for _, p := range people {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Role), search) {
			continue
		}

		if !statusAll {
			current := p.CurrentStatus(today)
			if atWork && current != nil {
				continue
			}
			if !atWork && (current == nil || current.Type != leaveType) {
				continue
			}
		}

		if !roleAll {
			personRole := strings.TrimSpace(p.Role)
			// People without a role only show up when nobody has one.
			if personRole != role && !(personRole == "" && noRolesAtAll) {
				continue
			}
		}

		result = append(result, p)
	}
	return result, nil
}

func parseStatusFilter(s string) (all, atWork bool, t LeaveType, err error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", FilterAll:
		return true, false, 0, nil
	case FilterAtWork:
		return false, true, 0, nil
	}
	t, err = ParseLeaveType(s)
	if err != nil {
		return false, false, 0, generic.NewValidationError("status", "unknown status filter "+s)
	}
	return false, false, t, nil
}

// DistinctRoles collects the non-empty trimmed roles into a sorted set.
func DistinctRoles(people []Person) []string {
	seen := make(map[string]struct{})
	for _, p := range people {
		if role := strings.TrimSpace(p.Role); role != "" {
			seen[role] = struct{}{}
		}
	}
	roles := make([]string, 0, len(seen))
	for role := range seen {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
