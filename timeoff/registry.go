/*
registry.go - Personnel registry: the single owner of all people

PURPOSE:
  Holds every Person and is the only entry point for mutations. Each
  mutation runs validate -> mutate -> persist to completion before
  returning.

OWNERSHIP:
  The registry owns its people exclusively. Accessors return deep copies;
  nothing outside this package can reach the live ledgers.

CONCURRENCY:
  None. A Registry is driven by one logical actor. The HTTP layer
  serializes calls (see api.Handler).

PERSISTENCE FAILURES:
  The in-memory state is the source of truth. When a save fails the
  mutation is NOT rolled back: the operation returns its normal result
  together with a *generic.PersistenceError and the registry is marked
  dirty. The next successful save (any later mutation, or Flush) writes
  the full current state and clears the flag.

LOADING:
  Load replaces the in-memory state with the stored list. Legacy records
  are upgraded and written back immediately. If the store fails or the
  payload is corrupt the registry starts empty.

SEE ALSO:
  - ledger.go: per-person leave rules
  - stats.go: read-only metrics over the registry
  - filter.go: search and filtering
*/
package timeoff

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/metrics"
)

// Persister loads and saves the full personnel list.
type Persister interface {
	Load(ctx context.Context) ([]*Person, bool, error)
	Save(ctx context.Context, people []*Person) error
	Clear(ctx context.Context) error
}

var _ Persister = (*Repository)(nil)

// Registry is the collection of people and their ledgers.
type Registry struct {
	people  []*Person
	persist Persister
	clock   generic.Clock
	logger  zerolog.Logger
	metrics *metrics.Metrics
	newID   func() string
	dirty   bool
}

type Option func(r *Registry)

// WithClock sets where "today" comes from.
func WithClock(c generic.Clock) Option {
	return func(r *Registry) {
		r.clock = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithIDGenerator replaces the UUID generator, e.g. for stable test ids.
func WithIDGenerator(fn func() string) Option {
	return func(r *Registry) {
		r.newID = fn
	}
}

// NewRegistry creates an empty registry. persist may be nil for a
// registry that never touches storage.
func NewRegistry(persist Persister, opts ...Option) *Registry {
	r := &Registry{
		persist: persist,
		clock:   generic.SystemClock{},
		logger:  zerolog.Nop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Today is the current calendar date according to the registry's clock.
func (r *Registry) Today() generic.Date {
	return generic.TodayFrom(r.clock)
}

// =============================================================================
// LOADING & PERSISTENCE
// =============================================================================

// Load replaces the in-memory state with the stored list.
func (r *Registry) Load(ctx context.Context) error {
	people, migrated, err := r.loadFromStore(ctx)
	if err != nil {
		r.people = nil
		r.dirty = false
		r.recordPersistenceFailure("load")
		r.logger.Error().Err(err).Msg("failed to load personnel data, starting with empty records")
		r.refreshGauges()
		return err
	}

	r.people = people
	r.dirty = false
	r.logger.Info().Int("people", len(people)).Msg("personnel data loaded")

	if migrated {
		r.logger.Info().Msg("legacy leave records migrated, saving upgraded form")
		return r.save(ctx)
	}
	r.refreshGauges()
	return nil
}

func (r *Registry) loadFromStore(ctx context.Context) ([]*Person, bool, error) {
	if r.persist == nil {
		return nil, false, nil
	}
	return r.persist.Load(ctx)
}

// Flush writes the current state, healing a previous failed save.
func (r *Registry) Flush(ctx context.Context) error {
	return r.save(ctx)
}

// Dirty reports whether the last save failed.
func (r *Registry) Dirty() bool {
	return r.dirty
}

// Reset drops every person and removes the stored list.
func (r *Registry) Reset(ctx context.Context) error {
	r.people = nil
	r.dirty = false
	r.refreshGauges()
	if r.persist == nil {
		return nil
	}
	if err := r.persist.Clear(ctx); err != nil {
		r.dirty = true
		r.recordPersistenceFailure("delete")
		r.logger.Error().Err(err).Msg("failed to clear personnel data")
		return err
	}
	r.logger.Info().Msg("registry reset")
	return nil
}

func (r *Registry) save(ctx context.Context) error {
	r.refreshGauges()
	if r.persist == nil {
		return nil
	}
	if err := r.persist.Save(ctx, r.people); err != nil {
		r.dirty = true
		r.recordPersistenceFailure("save")
		r.logger.Error().Err(err).Int("people", len(r.people)).
			Msg("failed to save personnel data; in-memory state kept")
		return err
	}
	r.dirty = false
	return nil
}

// =============================================================================
// PERSON CRUD
// =============================================================================

// AddPerson creates a person with a fresh id.
func (r *Registry) AddPerson(ctx context.Context, name, role string) (Person, error) {
	name, role, err := normalizePerson(name, role)
	if err != nil {
		r.reject("add_person", err)
		return Person{}, err
	}

	p := &Person{ID: r.newID(), Name: name, Role: role}
	r.people = append(r.people, p)

	if r.metrics != nil {
		r.metrics.IncrementPeopleCreated()
	}
	r.logger.Info().Str("person_id", p.ID).Str("role", role).Msg("person added")

	return p.clone(), r.save(ctx)
}

// UpdatePerson changes name and role in place. The ledger is untouched.
func (r *Registry) UpdatePerson(ctx context.Context, id, name, role string) (Person, error) {
	p, _, err := r.find(id)
	if err != nil {
		r.reject("update_person", err)
		return Person{}, err
	}
	name, role, err = normalizePerson(name, role)
	if err != nil {
		r.reject("update_person", err)
		return Person{}, err
	}

	p.Name = name
	p.Role = role
	r.logger.Info().Str("person_id", id).Msg("person updated")

	return p.clone(), r.save(ctx)
}

// DeletePerson removes the person and their entire leave history.
func (r *Registry) DeletePerson(ctx context.Context, id string) error {
	_, idx, err := r.find(id)
	if err != nil {
		r.reject("delete_person", err)
		return err
	}

	r.people = append(r.people[:idx], r.people[idx+1:]...)

	if r.metrics != nil {
		r.metrics.IncrementPeopleDeleted()
	}
	r.logger.Info().Str("person_id", id).Msg("person deleted")

	return r.save(ctx)
}

// FindByID returns a copy of the person.
func (r *Registry) FindByID(id string) (Person, error) {
	p, _, err := r.find(id)
	if err != nil {
		return Person{}, err
	}
	return p.clone(), nil
}

// All returns copies of every person in insertion order.
func (r *Registry) All() []Person {
	out := make([]Person, len(r.people))
	for i, p := range r.people {
		out[i] = p.clone()
	}
	return out
}

// Len is the number of people.
func (r *Registry) Len() int { return len(r.people) }

// DistinctRoles returns the non-empty roles, sorted.
func (r *Registry) DistinctRoles() []string {
	return DistinctRoles(r.view())
}

// view is a shallow read-only copy for the pure query functions.
func (r *Registry) view() []Person {
	out := make([]Person, len(r.people))
	for i, p := range r.people {
		out[i] = *p
	}
	return out
}

func (r *Registry) find(id string) (*Person, int, error) {
	for i, p := range r.people {
		if p.ID == id {
			return p, i, nil
		}
	}
	return nil, -1, &generic.NotFoundError{Kind: "person", ID: id}
}

// =============================================================================
// LEAVE OPERATIONS
// =============================================================================

// RegisterLeave opens a leave period for the person.
func (r *Registry) RegisterLeave(ctx context.Context, personID string, req LeaveRequest) (LeaveRecord, error) {
	p, _, err := r.find(personID)
	if err != nil {
		r.reject("register_leave", err)
		return LeaveRecord{}, err
	}

	rec, err := p.Ledger.RegisterLeave(req, r.Today())
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			conflict.PersonID = personID
		}
		r.reject("register_leave", err)
		return LeaveRecord{}, err
	}

	if r.metrics != nil {
		r.metrics.IncrementLeaveRegistered(rec.Type.String())
	}
	r.logger.Info().
		Str("person_id", personID).
		Stringer("type", rec.Type).
		Str("start_date", rec.StartDate.String()).
		Bool("open", rec.IsOpen()).
		Msg("leave registered")

	return rec, r.save(ctx)
}

// RegisterReturn closes the person's active leave period.
func (r *Registry) RegisterReturn(ctx context.Context, personID string, returnDate generic.Date) (LeaveRecord, error) {
	p, _, err := r.find(personID)
	if err != nil {
		r.reject("register_return", err)
		return LeaveRecord{}, err
	}

	rec, err := p.Ledger.RegisterReturn(returnDate, r.Today())
	if err != nil {
		var nf *generic.NotFoundError
		if errors.As(err, &nf) {
			nf.ID = personID
		}
		r.reject("register_return", err)
		return LeaveRecord{}, err
	}

	if r.metrics != nil {
		r.metrics.IncrementReturnsRegistered(rec.Type.String())
	}
	r.logger.Info().
		Str("person_id", personID).
		Stringer("type", rec.Type).
		Str("end_date", returnDate.String()).
		Int("days", rec.Days(r.Today())).
		Msg("return registered")

	return rec, r.save(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func (r *Registry) reject(operation string, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, generic.ErrValidation):
		reason = "validation"
	case errors.Is(err, generic.ErrConflict):
		reason = "conflict"
	case errors.Is(err, generic.ErrNotFound):
		reason = "not_found"
	}
	if r.metrics != nil {
		r.metrics.IncrementRejected(operation, reason)
	}
	r.logger.Debug().Err(err).Str("operation", operation).Str("reason", reason).Msg("operation rejected")
}

func (r *Registry) recordPersistenceFailure(op string) {
	if r.metrics != nil {
		r.metrics.IncrementPersistenceFailure(op)
	}
}

func (r *Registry) refreshGauges() {
	if r.metrics == nil {
		return
	}
	counts := LeaveCounts(r.view(), r.Today())
	byType := make(map[string]int, len(counts.ByType))
	for t, n := range counts.ByType {
		byType[t.String()] = n
	}
	r.metrics.SetOnLeave(byType, len(r.people))
}
