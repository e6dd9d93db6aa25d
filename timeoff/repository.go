package timeoff

import (
	"context"
	"errors"

	"github.com/warp/absence-tracker/generic"
)

// StorageKey is the key under which the whole personnel list is stored.
const StorageKey = "personnelData"

// Repository reads and writes the personnel list as a single JSON value.
type Repository struct {
	store generic.KVStore
	key   string
}

// NewRepository stores under StorageKey.
func NewRepository(store generic.KVStore) *Repository {
	return &Repository{store: store, key: StorageKey}
}

// Load returns the stored people. An absent key is an empty list.
// migrated reports whether legacy records were upgraded in the result.
//
// Store failures and undecodable payloads come back as *generic.PersistenceError.
func (r *Repository) Load(ctx context.Context) (people []*Person, migrated bool, err error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, generic.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &generic.PersistenceError{Op: "load", Err: err}
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	people, migrated, err = decodePeople(data)
	if err != nil {
		return nil, false, &generic.PersistenceError{Op: "decode", Err: err}
	}
	return people, migrated, nil
}

// Save replaces the stored list.
func (r *Repository) Save(ctx context.Context, people []*Person) error {
	data, err := encodePeople(people)
	if err != nil {
		return &generic.PersistenceError{Op: "encode", Err: err}
	}
	if err := r.store.Put(ctx, r.key, data); err != nil {
		return &generic.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Clear removes the stored list.
func (r *Repository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil {
		return &generic.PersistenceError{Op: "delete", Err: err}
	}
	return nil
}
