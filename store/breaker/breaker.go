// Package breaker wraps a KVStore in a circuit breaker so a dead backend
// fails fast instead of stalling every mutation on its timeout.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/warp/absence-tracker/generic"
)

// Settings tune the breaker. Zero values take the defaults below.
type Settings struct {
	Name                string
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

const (
	defaultMaxRequests         = 3
	defaultInterval            = 10 * time.Second
	defaultTimeout             = 10 * time.Second
	defaultConsecutiveFailures = 3
)

// Store is a generic.KVStore guarded by a circuit breaker.
type Store struct {
	next generic.KVStore
	cb   *gobreaker.CircuitBreaker
}

var _ generic.KVStore = (*Store)(nil)

// New wraps next. A missing key is a normal answer and never trips the
// breaker; any other error counts as a failure.
func New(next generic.KVStore, s Settings, logger zerolog.Logger) *Store {
	if s.Name == "" {
		s.Name = "kvstore"
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = defaultMaxRequests
	}
	if s.Interval == 0 {
		s.Interval = defaultInterval
	}
	if s.Timeout == 0 {
		s.Timeout = defaultTimeout
	}
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = defaultConsecutiveFailures
	}
	threshold := s.ConsecutiveFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, generic.ErrKeyNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Stringer("from", from).Stringer("to", to).
				Msg("circuit breaker state changed")
		},
	})

	return &Store{next: next, cb: cb}
}

// State exposes the breaker state for health reporting.
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Get(ctx, key)
	})
	if err != nil {
		return nil, translate(err)
	}
	return out.([]byte), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Put(ctx, key, value)
	})
	return translate(err)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Delete(ctx, key)
	})
	return translate(err)
}

func translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", generic.ErrCircuitOpen, err)
	}
	return err
}
