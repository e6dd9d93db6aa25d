/*
handlers.go - HTTP API handlers for the absence tracker

PURPOSE:
  Exposes the personnel registry and its metrics via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the
  timeoff package.

ENDPOINTS:
  People:
    GET    /api/people                  List, filtered by ?search=&status=&role=
    POST   /api/people                  Add a person
    GET    /api/people/{id}             Person, current status, recent history
    PUT    /api/people/{id}             Rename / change role
    DELETE /api/people/{id}             Remove a person and their history
    GET    /api/people/{id}/history     Full ledger with day counts

  Leave:
    POST   /api/people/{id}/leave       Register a leave period
    POST   /api/people/{id}/return      Register a return

  Stats:
    GET    /api/roles                   Distinct roles
    GET    /api/stats/counts            People out now, per type
    GET    /api/stats/rolling?days=30   Daily occupancy
    GET    /api/stats/totals?type=sick  Days per person
    GET    /api/stats/absences          Who is out, longest first
    GET    /api/stats/averages          Mean closed duration per type

  Admin:
    POST   /api/admin/flush             Re-save the in-memory state

CONCURRENCY:
  The registry is single-actor. Every handler takes h.mu for its whole
  duration, so requests are applied one at a time.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Person not found, or no active leave to return from
  - 409: Leave registered while already on leave
  - 503: Store unavailable; the change IS applied in memory
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/timeoff"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// recentHistoryLimit is how many closed records the person view shows.
const recentHistoryLimit = 3

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	mu       sync.Mutex
	registry *timeoff.Registry
	logger   zerolog.Logger

	// StoreName and StoreHealth feed /healthz. StoreHealth may be nil.
	StoreName   string
	StoreHealth func(ctx context.Context) error

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a handler around the registry.
func NewHandler(registry *timeoff.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		logger:    logger,
		StoreName: "unknown",
	}
}

// FlushIfDirty re-saves the registry when the last save failed. It takes
// the handler lock, so it is safe to call from a background goroutine.
func (h *Handler) FlushIfDirty(ctx context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.registry.Dirty() {
		return false, nil
	}
	return true, h.registry.Flush(ctx)
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPeople returns the people matching the query filters.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	q := r.URL.Query()
	people, err := h.registry.Filter(timeoff.Filter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Role:   q.Get("role"),
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	today := h.registry.Today()
	dtos := make([]PersonDTO, 0, len(people))
	for _, p := range people {
		dtos = append(dtos, toPersonDTO(p, today))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson adds a person.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.registry.AddPerson(r.Context(), req.Name, req.Role)
	if err != nil {
		h.writeMutationError(w, err, toPersonDTO(p, h.registry.Today()))
		return
	}
	writeJSON(w, http.StatusCreated, toPersonDTO(p, h.registry.Today()))
}

// GetPerson returns a person with current status and recent history.
func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.registry.FindByID(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	today := h.registry.Today()
	writeJSON(w, http.StatusOK, PersonDetailDTO{
		PersonDTO:     toPersonDTO(p, today),
		RecentHistory: toRecordDTOs(p.Ledger.RecentClosed(recentHistoryLimit), today),
	})
}

// UpdatePerson changes name and role.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdatePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.registry.UpdatePerson(r.Context(), id, req.Name, req.Role)
	if err != nil {
		h.writeMutationError(w, err, toPersonDTO(p, h.registry.Today()))
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(p, h.registry.Today()))
}

// DeletePerson removes a person and their history.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.registry.DeletePerson(r.Context(), id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory returns the full ledger in entry order.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.Lock()
	defer h.mu.Unlock()

	p, err := h.registry.FindByID(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{
		PersonID: p.ID,
		Records:  toRecordDTOs(p.Ledger.Records(), h.registry.Today()),
	})
}

// ListRoles returns the distinct roles for the role filter.
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, h.registry.DistinctRoles())
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// RegisterLeave opens a leave period.
func (h *Handler) RegisterLeave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RegisterLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Unknown person and conflict are reported before malformed input,
	// in the same order the registry checks them.
	p, err := h.registry.FindByID(id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if active := p.CurrentStatus(h.registry.Today()); active != nil {
		h.writeDomainError(w, &timeoff.ConflictError{PersonID: id, Active: *active})
		return
	}

	leaveReq, err := parseLeaveRequest(req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	rec, err := h.registry.RegisterLeave(r.Context(), id, leaveReq)
	if err != nil {
		h.writeMutationError(w, err, toRecordDTO(rec, h.registry.Today()))
		return
	}
	writeJSON(w, http.StatusCreated, toRecordDTO(rec, h.registry.Today()))
}

// RegisterReturn closes the active leave period.
func (h *Handler) RegisterReturn(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RegisterReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	returnDate, err := generic.ParseDate(req.ReturnDate)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := h.registry.RegisterReturn(r.Context(), id, returnDate)
	if err != nil {
		h.writeMutationError(w, err, toRecordDTO(rec, h.registry.Today()))
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec, h.registry.Today()))
}

func parseLeaveRequest(req RegisterLeaveRequest) (timeoff.LeaveRequest, error) {
	leaveType, err := timeoff.ParseLeaveType(req.Type)
	if err != nil {
		return timeoff.LeaveRequest{}, err
	}
	start, err := generic.ParseDate(req.StartDate)
	if err != nil {
		return timeoff.LeaveRequest{}, generic.NewValidationError("start_date", "start date must be YYYY-MM-DD")
	}

	out := timeoff.LeaveRequest{Type: leaveType, StartDate: start, Comment: req.Comment}
	if req.EndDate != nil && *req.EndDate != "" {
		end, err := generic.ParseDate(*req.EndDate)
		if err != nil {
			return timeoff.LeaveRequest{}, generic.NewValidationError("end_date", "end date must be YYYY-MM-DD")
		}
		out.EndDate = &end
	}
	return out, nil
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

// GetCounts returns how many people are out now, per leave type.
func (h *Handler) GetCounts(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	counts := h.registry.LeaveCounts()
	writeJSON(w, http.StatusOK, CountsDTO{ByType: toCountsMap(counts.ByType), Total: counts.Total})
}

// GetRollingWindow returns daily occupancy, oldest first.
func (h *Handler) GetRollingWindow(w http.ResponseWriter, r *http.Request) {
	days := timeoff.DefaultWindowDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 366", err)
			return
		}
		days = n
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	window := h.registry.RollingWindow(days)
	dtos := make([]DailyOccupancyDTO, 0, len(window))
	for _, day := range window {
		dtos = append(dtos, DailyOccupancyDTO{
			Date:   day.Date.String(),
			ByType: toCountsMap(day.Counts),
			Total:  day.Total,
			Share:  day.Share,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetTotals returns cumulative days per person for one leave type.
func (h *Handler) GetTotals(w http.ResponseWriter, r *http.Request) {
	leaveType := timeoff.LeaveSick
	if v := r.URL.Query().Get("type"); v != "" {
		parsed, err := timeoff.ParseLeaveType(v)
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		leaveType = parsed
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	totals := h.registry.TotalDaysPerPerson(leaveType)
	dtos := make([]PersonTotalDTO, 0, len(totals))
	for _, t := range totals {
		dtos = append(dtos, PersonTotalDTO{PersonID: t.PersonID, Name: t.Name, Days: t.Days})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAbsences lists who is out today.
func (h *Handler) GetAbsences(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	absences := h.registry.CurrentAbsences()
	dtos := make([]AbsenceDTO, 0, len(absences))
	for _, a := range absences {
		dtos = append(dtos, AbsenceDTO{
			PersonID:  a.PersonID,
			Name:      a.Name,
			Role:      a.Role,
			Type:      a.Record.Type.String(),
			StartDate: a.Record.StartDate.String(),
			EndDate:   dateString(a.Record.EndDate),
			DaysSoFar: a.DaysSoFar,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAverages returns the mean closed duration per leave type.
func (h *Handler) GetAverages(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	avgs := h.registry.AverageDurations()
	dtos := make([]AverageDurationDTO, 0, len(avgs))
	for _, a := range avgs {
		dtos = append(dtos, AverageDurationDTO{Type: a.Type.String(), Records: a.Records, Mean: a.Mean})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Flush re-saves the current state, healing a failed save.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.registry.Flush(r.Context()); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FlushResponse{People: h.registry.Len(), Dirty: h.registry.Dirty()})
}

// Health reports store reachability and whether unsaved changes exist.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	resp := HealthResponse{
		Status: "ok",
		Store:  h.StoreName,
		Dirty:  h.registry.Dirty(),
		Today:  h.registry.Today().String(),
	}
	h.mu.Unlock()

	status := http.StatusOK
	if h.StoreHealth != nil {
		if err := h.StoreHealth(r.Context()); err != nil {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

const persistenceMessage = "Storage unavailable: the change is applied in memory but not yet saved"

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeMutationError is writeDomainError for mutations. A failed save still
// applied the change, so the 503 body carries the resulting entity.
func (h *Handler) writeMutationError(w http.ResponseWriter, err error, applied any) {
	if !generic.IsPersistence(err) {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
		Error:   persistenceMessage,
		Details: err.Error(),
		Data:    applied,
	})
}

// writeDomainError maps the error kinds of the generic package to HTTP.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var vErr *generic.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: vErr.Message, Field: vErr.Field})
	case errors.Is(err, generic.ErrValidation):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, generic.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, generic.ErrConflict):
		writeError(w, http.StatusConflict, "Already on leave", err)
	case errors.Is(err, generic.ErrPersistence):
		writeError(w, http.StatusServiceUnavailable, persistenceMessage, err)
	default:
		h.logger.Error().Err(err).Msg("unhandled error")
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
