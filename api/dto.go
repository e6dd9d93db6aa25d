/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract: dates are YYYY-MM-DD
  strings, leave types their wire values, and ratios decimal strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/timeoff"
)

// =============================================================================
// PEOPLE
// =============================================================================

// PersonDTO is a person with their current status.
type PersonDTO struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Role    string          `json:"role"`
	OnLeave bool            `json:"on_leave"`
	Status  *LeaveRecordDTO `json:"status,omitempty"`
}

// PersonDetailDTO adds the most recent closed records.
type PersonDetailDTO struct {
	PersonDTO
	RecentHistory []LeaveRecordDTO `json:"recent_history"`
}

type CreatePersonRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type UpdatePersonRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// =============================================================================
// LEAVE
// =============================================================================

// LeaveRecordDTO is one leave record. Days counts both ends; open records
// run to today.
type LeaveRecordDTO struct {
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Comment   string  `json:"comment"`
	Open      bool    `json:"open"`
	Days      int     `json:"days"`
}

type RegisterLeaveRequest struct {
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date,omitempty"`
	Comment   string  `json:"comment"`
}

type RegisterReturnRequest struct {
	ReturnDate string `json:"return_date"`
}

// HistoryResponse is a person's full ledger in entry order.
type HistoryResponse struct {
	PersonID string           `json:"person_id"`
	Records  []LeaveRecordDTO `json:"records"`
}

// =============================================================================
// STATS
// =============================================================================

type CountsDTO struct {
	ByType map[string]int `json:"by_type"`
	Total  int            `json:"total"`
}

type DailyOccupancyDTO struct {
	Date   string          `json:"date"`
	ByType map[string]int  `json:"by_type"`
	Total  int             `json:"total"`
	Share  decimal.Decimal `json:"share"`
}

type PersonTotalDTO struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name"`
	Days     int    `json:"days"`
}

type AbsenceDTO struct {
	PersonID  string  `json:"person_id"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Type      string  `json:"type"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	DaysSoFar int     `json:"days_so_far"`
}

type AverageDurationDTO struct {
	Type    string          `json:"type"`
	Records int             `json:"records"`
	Mean    decimal.Decimal `json:"mean"`
}

// =============================================================================
// ADMIN / SCENARIOS
// =============================================================================

type FlushResponse struct {
	People int  `json:"people"`
	Dirty  bool `json:"dirty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Dirty  bool   `json:"dirty"`
	Today  string `json:"today"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the body of every non-2xx response. Data carries the
// entity of a mutation that was applied in memory but could not be saved.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Field   string `json:"field,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toPersonDTO(p timeoff.Person, today generic.Date) PersonDTO {
	dto := PersonDTO{ID: p.ID, Name: p.Name, Role: p.Role}
	if current := p.CurrentStatus(today); current != nil {
		rec := toRecordDTO(*current, today)
		dto.Status = &rec
		dto.OnLeave = true
	}
	return dto
}

func toRecordDTO(r timeoff.LeaveRecord, today generic.Date) LeaveRecordDTO {
	return LeaveRecordDTO{
		Type:      r.Type.String(),
		StartDate: r.StartDate.String(),
		EndDate:   dateString(r.EndDate),
		Comment:   r.Comment,
		Open:      r.IsOpen(),
		Days:      r.Days(today),
	}
}

func toRecordDTOs(records []timeoff.LeaveRecord, today generic.Date) []LeaveRecordDTO {
	out := make([]LeaveRecordDTO, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordDTO(r, today))
	}
	return out
}

func toCountsMap(c timeoff.CountsByType) map[string]int {
	out := make(map[string]int, len(c))
	for t, n := range c {
		out[t.String()] = n
	}
	return out
}

func dateString(d *generic.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
