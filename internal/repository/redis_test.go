package repository

import (
	"context"
	"docdot_backend/internal/ranking"
	"docdot_backend/internal/timer"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestTimerStore(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewTimerStore(rdb)
	ctx := context.Background()

	st, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, st)

	saved := &timer.State{Phase: timer.LongBreak, Remaining: 14*time.Minute + 5*time.Second, Running: true, Session: 5, TotalStudyMinutes: 100}
	require.NoError(t, store.Save(ctx, "u1", saved))
	assert.Equal(t, timerTTL, mr.TTL(timerPrefix+"u1"))

	st, err = store.Load(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, timer.LongBreak, st.Phase)
	assert.Equal(t, saved.Remaining, st.Remaining)
	assert.True(t, st.Running)
	assert.Equal(t, 5, st.Session)
	assert.Equal(t, 100, st.TotalStudyMinutes)

	require.NoError(t, store.Delete(ctx, "u1"))
	st, err = store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestTimerStore_CorruptValue(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, mr.Set(timerPrefix+"u1", "{not json"))

	_, err := NewTimerStore(rdb).Load(context.Background(), "u1")
	assert.Error(t, err)
}

func TestLeaderboardCache(t *testing.T) {
	mr, rdb := newRedis(t)
	cache := NewLeaderboardCache(rdb, 30*time.Second)
	ctx := context.Background()

	key := LeaderboardKey(ranking.Weekly, "anatomy", 10)
	assert.Equal(t, "leaderboard:weekly:anatomy:10", key)

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	entries := []ranking.Entry{{Rank: 1, UserID: "a", XP: 90}, {Rank: 2, UserID: "b", XP: 40}}
	require.NoError(t, cache.Set(ctx, key, entries))
	require.NoError(t, cache.Set(ctx, LeaderboardKey(ranking.AllTime, "", 10), entries[:1]))
	require.NoError(t, mr.Set("timer:u1", "{}"))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entries, got)
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("timer:u1"), "only leaderboard keys are dropped")

	require.NoError(t, cache.Invalidate(ctx))
}
