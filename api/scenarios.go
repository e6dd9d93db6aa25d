/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the registry with realistic
	data for demos. Every date is relative to today, so the dashboards
	always have something current to show.

AVAILABLE SCENARIOS:

	small-team:    Five people, one off sick, one on parental leave
	flu-season:    A wave of sick and child-care leave over the last month
	parental-wave: Several long bounded parental periods

HOW SCENARIOS WORK:
 1. Reset the registry (clears the stored list too)
 2. Add each person
 3. Register their leave oldest first, closing past periods

Scenarios go through the public registry operations, so they obey the
same rules as any client: a person's still-active period must come last.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "flu-season"}

NOTE:

	Scenarios reset all data. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Registry handlers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/timeoff"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// leaveSpec is a leave period in days relative to today. A nil end leaves
// the period open.
type leaveSpec struct {
	leaveType timeoff.LeaveType
	start     int
	end       *int
	comment   string
}

type personSpec struct {
	name   string
	role   string
	leaves []leaveSpec
}

type scenario struct {
	ScenarioDTO
	people []personSpec
}

func days(n int) *int { return &n }

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "small-team",
			Name:        "Small Team",
			Description: "Five people: one off sick since two days, one on parental leave, some past absences",
		},
		people: []personSpec{
			{name: "Alice Andersson", role: "Engineer", leaves: []leaveSpec{
				{timeoff.LeaveSick, -40, days(-37), "flu"},
				{timeoff.LeaveSick, -2, nil, ""},
			}},
			{name: "Bob Berg", role: "Engineer", leaves: []leaveSpec{
				{timeoff.LeaveChildCare, -9, days(-8), "kid with fever"},
			}},
			{name: "Carla Dahl", role: "Designer", leaves: []leaveSpec{
				{timeoff.LeaveParental, -30, days(120), ""},
			}},
			{name: "David Ek", role: "Manager"},
			{name: "Eva Falk", role: "Designer", leaves: []leaveSpec{
				{timeoff.LeaveSick, -20, days(-20), "migraine"},
			}},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "flu-season",
			Name:        "Flu Season",
			Description: "Overlapping sick and child-care periods across the last 30 days",
		},
		people: []personSpec{
			{name: "Frida Gran", role: "Support", leaves: []leaveSpec{
				{timeoff.LeaveSick, -28, days(-24), ""},
				{timeoff.LeaveSick, -6, nil, "relapse"},
			}},
			{name: "Gustav Holm", role: "Support", leaves: []leaveSpec{
				{timeoff.LeaveChildCare, -25, days(-23), ""},
				{timeoff.LeaveChildCare, -12, days(-10), ""},
			}},
			{name: "Hanna Ivarsson", role: "Engineer", leaves: []leaveSpec{
				{timeoff.LeaveSick, -21, days(-15), "fever"},
			}},
			{name: "Isak Jonsson", role: "Engineer", leaves: []leaveSpec{
				{timeoff.LeaveSick, -18, days(-16), ""},
				{timeoff.LeaveChildCare, -1, nil, ""},
			}},
			{name: "Julia Karlsson", role: "Sales", leaves: []leaveSpec{
				{timeoff.LeaveSick, -14, days(-7), ""},
			}},
			{name: "Karl Lind", role: "Sales", leaves: []leaveSpec{
				{timeoff.LeaveSick, -9, days(-9), ""},
				{timeoff.LeaveSick, -3, nil, ""},
			}},
			{name: "Lena Moberg", role: "Sales"},
			{name: "Magnus Nord", role: "Engineer"},
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "parental-wave",
			Name:        "Parental Wave",
			Description: "Long bounded parental periods, past, current and booked ahead",
		},
		people: []personSpec{
			{name: "Nora Olsson", role: "Engineer", leaves: []leaveSpec{
				{timeoff.LeaveParental, -300, days(-120), "first child"},
			}},
			{name: "Oskar Persson", role: "Engineer", leaves: []leaveSpec{
				{timeoff.LeaveParental, -60, days(30), ""},
			}},
			{name: "Petra Qvist", role: "Designer", leaves: []leaveSpec{
				{timeoff.LeaveChildCare, -50, days(-49), ""},
				{timeoff.LeaveParental, -10, days(170), ""},
			}},
			{name: "Rasmus Sund", role: "Manager"},
		},
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario replaces all data with a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	s, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := loadScenario(r.Context(), h.registry, s); err != nil {
		if generic.IsPersistence(err) {
			// Fully loaded in memory, only the save is pending.
			h.currentScenario = s.ID
		}
		h.writeDomainError(w, fmt.Errorf("load scenario %s: %w", s.ID, err))
		return
	}
	h.currentScenario = s.ID

	h.logger.Info().Str("scenario", s.ID).Int("people", h.registry.Len()).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": s.ID})
}

// ResetData empties the registry and the store.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := h.registry.Reset(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

// loadScenario replays the scenario into reg. Save failures do not stop
// the replay: the whole scenario is applied in memory and saved by one
// final flush, whose error is returned.
func loadScenario(ctx context.Context, reg *timeoff.Registry, s scenario) error {
	unsaved := false
	keepGoing := func(err error) bool {
		if generic.IsPersistence(err) {
			unsaved = true
			return true
		}
		return false
	}

	if err := reg.Reset(ctx); err != nil && !keepGoing(err) {
		return err
	}

	today := reg.Today()
	for _, ps := range s.people {
		p, err := reg.AddPerson(ctx, ps.name, ps.role)
		if err != nil && !keepGoing(err) {
			return err
		}
		for _, ls := range ps.leaves {
			req := timeoff.LeaveRequest{
				Type:      ls.leaveType,
				StartDate: today.AddDays(ls.start),
				Comment:   ls.comment,
			}
			if ls.end != nil {
				end := today.AddDays(*ls.end)
				req.EndDate = &end
			}
			if _, err := reg.RegisterLeave(ctx, p.ID, req); err != nil && !keepGoing(err) {
				return fmt.Errorf("%s: %w", ps.name, err)
			}
		}
	}

	if unsaved {
		return reg.Flush(ctx)
	}
	return nil
}
