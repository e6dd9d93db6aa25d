/*
store.go - Persistence contract

PURPOSE:
  The core never talks to a database. It reads and writes opaque byte
  values under string keys through KVStore; the drivers decide where the
  bytes live.

IMPLEMENTATIONS:
  - generic/store/memory.go: In-memory for tests and dev
  - store/sqlite/sqlite.go:  Single-table SQLite
  - store/redis/redis.go:    Redis strings
  - store/breaker/breaker.go: Circuit-breaker decorator for any of the above

SEMANTICS:
  - Put replaces the value atomically; readers never observe a partial write.
  - Get returns ErrKeyNotFound (possibly wrapped) for an absent key.
  - Delete of an absent key is not an error.

SEE ALSO:
  - timeoff/repository.go: Encodes the personnel list into one key
*/
package generic

import "context"

//go:generate mockgen -source=store.go -destination=mocks/store.go -package=mocks KVStore

// KVStore is the key-value persistence collaborator.
type KVStore interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Removing an absent key succeeds.
	Delete(ctx context.Context, key string) error
}
