/*
codec.go - JSON shape of the persisted personnel list

FORMAT:
  [
    {
      "id": "…", "name": "Alice", "role": "Engineer",
      "leaveHistory": [
        {"type": "sick", "startDate": "2024-03-01", "endDate": "2024-03-05", "comment": ""},
        {"type": "vab",  "startDate": "2024-04-02", "endDate": null,         "comment": "flu"}
      ]
    }
  ]

MIGRATION:
  Older payloads predate leave types:
  - records without "type" are sick leave
  - the history was stored under "sicknessRecords"
  decodePeople reports whether either rewrite happened so the caller can
  save the upgraded form straight away.
*/
package timeoff

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/warp/absence-tracker/generic"
)

// ErrCorruptData is returned when the stored payload cannot be decoded.
var ErrCorruptData = errors.New("corrupt personnel data")

type personJSON struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Role            string       `json:"role"`
	LeaveHistory    []recordJSON `json:"leaveHistory"`
	SicknessRecords []recordJSON `json:"sicknessRecords,omitempty"`
}

type recordJSON struct {
	Type      string  `json:"type,omitempty"`
	StartDate string  `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Comment   string  `json:"comment"`
}

func encodePeople(people []*Person) ([]byte, error) {
	out := make([]personJSON, 0, len(people))
	for _, p := range people {
		pj := personJSON{
			ID:           p.ID,
			Name:         p.Name,
			Role:         p.Role,
			LeaveHistory: make([]recordJSON, 0, p.Ledger.Len()),
		}
		for _, r := range p.Ledger.records {
			rj := recordJSON{
				Type:      r.Type.String(),
				StartDate: r.StartDate.String(),
				Comment:   r.Comment,
			}
			if r.EndDate != nil {
				end := r.EndDate.String()
				rj.EndDate = &end
			}
			pj.LeaveHistory = append(pj.LeaveHistory, rj)
		}
		out = append(out, pj)
	}
	return json.Marshal(out)
}

// decodePeople parses a stored payload. migrated is true when legacy
// fields were rewritten.
func decodePeople(data []byte) (people []*Person, migrated bool, err error) {
	var raw []personJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}

	people = make([]*Person, 0, len(raw))
	for i, pj := range raw {
		history := pj.LeaveHistory
		if history == nil && pj.SicknessRecords != nil {
			history = pj.SicknessRecords
			migrated = true
		}

		records := make([]LeaveRecord, 0, len(history))
		for j, rj := range history {
			rec, backfilled, err := decodeRecord(rj)
			if err != nil {
				return nil, false, fmt.Errorf("%w: person %d record %d: %v", ErrCorruptData, i, j, err)
			}
			migrated = migrated || backfilled
			records = append(records, rec)
		}

		if pj.ID == "" {
			return nil, false, fmt.Errorf("%w: person %d has no id", ErrCorruptData, i)
		}
		people = append(people, &Person{
			ID:     pj.ID,
			Name:   pj.Name,
			Role:   pj.Role,
			Ledger: NewLedger(records...),
		})
	}
	return people, migrated, nil
}

func decodeRecord(rj recordJSON) (LeaveRecord, bool, error) {
	var (
		rec        LeaveRecord
		backfilled bool
		err        error
	)

	if rj.Type == "" {
		rec.Type = LeaveSick
		backfilled = true
	} else if rec.Type, err = ParseLeaveType(rj.Type); err != nil {
		return rec, false, err
	}

	if rec.StartDate, err = generic.ParseDate(rj.StartDate); err != nil {
		return rec, false, err
	}
	if rj.EndDate != nil {
		end, err := generic.ParseDate(*rj.EndDate)
		if err != nil {
			return rec, false, err
		}
		rec.EndDate = &end
	}
	rec.Comment = rj.Comment
	return rec, backfilled, nil
}
