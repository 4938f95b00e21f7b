package timer

import (
	"context"
	"docdot_backend/pkg/logger"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func shortConfig() Config {
	return Config{
		Study:          3 * time.Second,
		ShortBreak:     2 * time.Second,
		LongBreak:      4 * time.Second,
		LongBreakEvery: 4,
	}
}

func TestDriver_TransitionSavesAndStops(t *testing.T) {
	store := NewMemoryStore()

	var mu sync.Mutex
	var got []Transition
	d := NewDriver("u1", New(shortConfig()), store,
		WithInterval(time.Millisecond),
		WithTransitionFunc(func(userID string, tr Transition, _ State) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "u1", userID)
			got = append(got, tr)
		}),
	)

	d.Start(context.Background())

	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop after the study phase ended")
	}

	mu.Lock()
	require.Len(t, got, 1)
	assert.Equal(t, ShortBreak, got[0].To)
	mu.Unlock()

	saved, err := store.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, ShortBreak, saved.Phase)
	assert.False(t, saved.Running)
	assert.False(t, d.Running())
}

func TestDriver_AutoStartKeepsRunning(t *testing.T) {
	cfg := shortConfig()
	cfg.AutoStart = true
	store := NewMemoryStore()
	d := NewDriver("u1", New(cfg), store, WithInterval(time.Millisecond))

	d.Start(context.Background())
	require.Eventually(t, func() bool {
		return d.State().Session >= 3
	}, 2*time.Second, 5*time.Millisecond)

	d.Stop()
	assert.False(t, d.Running())
}

func TestDriver_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDriver("u1", New(DefaultConfig()), nil, WithInterval(time.Millisecond))

	d.Start(ctx)
	assert.True(t, d.Running())
	cancel()

	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("driver ignored context cancellation")
	}
}

func TestDriver_StopIsIdempotent(t *testing.T) {
	d := NewDriver("u1", New(DefaultConfig()), nil, WithInterval(time.Millisecond))
	d.Stop()

	d.Start(context.Background())
	d.Start(context.Background())
	d.Stop()
	d.Stop()
	assert.False(t, d.Running())
}

func TestDriver_DoPauses(t *testing.T) {
	d := NewDriver("u1", New(DefaultConfig()), nil, WithInterval(time.Millisecond))
	d.Start(context.Background())
	d.Stop()

	s := d.Do(func(tm *Timer) { tm.Pause() })
	assert.False(t, s.Running)
	assert.Less(t, s.Remaining, 25*time.Minute+time.Second)
	assert.False(t, s.UpdatedAt.IsZero())
}

type failingStore struct{ saves atomic.Int32 }

func (f *failingStore) Load(context.Context, string) (*State, error) { return nil, nil }
func (f *failingStore) Delete(context.Context, string) error         { return nil }
func (f *failingStore) Save(context.Context, string, *State) error {
	f.saves.Add(1)
	return errors.New("redis: connection refused")
}

func TestDriver_SaveFailureIsLoggedAndReported(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	store := &failingStore{}
	var transitions atomic.Int32
	d := NewDriver("u1", New(shortConfig()), store,
		WithInterval(time.Millisecond),
		WithTransitionFunc(func(string, Transition, State) { transitions.Add(1) }),
	)

	d.Start(context.Background())
	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop after the study phase ended")
	}

	assert.Equal(t, int32(1), store.saves.Load())
	assert.Equal(t, int32(1), transitions.Load())
	assert.Equal(t, ShortBreak, d.State().Phase)

	entries := logs.FilterMessage("Failed to save timer state").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "short_break", fields["phase"])
}

func TestDriver_TickStampsUpdatedAt(t *testing.T) {
	var mu sync.Mutex
	clock := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	d := NewDriver("u1", New(DefaultConfig()), nil, WithInterval(time.Millisecond), WithClock(now))
	d.Start(context.Background())
	defer d.Stop()

	mu.Lock()
	clock = clock.Add(time.Minute)
	mu.Unlock()

	require.Eventually(t, func() bool {
		return d.State().UpdatedAt.Equal(now())
	}, 2*time.Second, time.Millisecond)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s, err := store.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, store.Save(ctx, "u1", &State{Phase: Study, Session: 2}))
	s, err = store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Session)

	require.NoError(t, store.Delete(ctx, "u1"))
	s, _ = store.Load(ctx, "u1")
	assert.Nil(t, s)
}
