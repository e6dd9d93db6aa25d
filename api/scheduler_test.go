package api

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/warp/absence-tracker/generic"
	"github.com/warp/absence-tracker/generic/mocks"
	"github.com/warp/absence-tracker/generic/store"
	"github.com/warp/absence-tracker/timeoff"
)

func TestFlushScheduler_CleanRegistryIsNoop(t *testing.T) {
	s := newTestServer(t, store.NewMemory())
	fs := NewFlushScheduler(s.handler, zerolog.Nop())

	attempted, ok := fs.CheckAndFlush(context.Background())
	assert.False(t, attempted)
	assert.True(t, ok)
}

func TestFlushScheduler_HealsDirtyRegistry(t *testing.T) {
	// GIVEN: A save failed twice, then the store recovers
	// WHEN: The scheduler checks three times
	// THEN: The second check still fails, the third clears the dirty flag

	ctrl := gomock.NewController(t)
	kv := mocks.NewMockKVStore(ctrl)
	gomock.InOrder(
		kv.EXPECT().Put(gomock.Any(), timeoff.StorageKey, gomock.Any()).Return(errors.New("timeout")).Times(2),
		kv.EXPECT().Put(gomock.Any(), timeoff.StorageKey, gomock.Any()).Return(nil),
	)
	reg := timeoff.NewRegistry(
		timeoff.NewRepository(kv),
		timeoff.WithClock(generic.FixedClockOn(generic.MustParseDate(testToday))),
	)
	h := NewHandler(reg, zerolog.Nop())
	fs := NewFlushScheduler(h, zerolog.Nop())

	_, err := reg.AddPerson(context.Background(), "Alice", "")
	require.ErrorIs(t, err, generic.ErrPersistence)
	require.True(t, reg.Dirty())

	attempted, ok := fs.CheckAndFlush(context.Background())
	assert.True(t, attempted)
	assert.False(t, ok)
	assert.True(t, reg.Dirty())

	attempted, ok = fs.CheckAndFlush(context.Background())
	assert.True(t, attempted)
	assert.True(t, ok)
	assert.False(t, reg.Dirty())
}

func TestFlushScheduler_StartStop(t *testing.T) {
	s := newTestServer(t, store.NewMemory())
	fs := NewFlushScheduler(s.handler, zerolog.Nop())
	fs.CheckInterval = 10 * time.Millisecond

	fs.Start()
	fs.Start()
	time.Sleep(30 * time.Millisecond)
	fs.Stop()
	fs.Stop()
}

func TestFlushScheduler_DisabledDoesNotStart(t *testing.T) {
	s := newTestServer(t, store.NewMemory())
	fs := NewFlushScheduler(s.handler, zerolog.Nop())
	fs.Enabled = false

	fs.Start()
	assert.Nil(t, fs.ticker)
}
