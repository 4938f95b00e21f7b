package repository

import (
	"context"
	"docdot_backend/internal/ranking"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const leaderboardPrefix = "leaderboard:"

// LeaderboardCache stores ranked pages in redis for a short TTL.
type LeaderboardCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{Client: client, TTL: ttl}
}

func LeaderboardKey(w ranking.Window, category string, limit int) string {
	return fmt.Sprintf("%s%s:%s:%d", leaderboardPrefix, w, category, limit)
}

// Get reports a miss with ok=false and a nil error.
func (c *LeaderboardCache) Get(ctx context.Context, key string) ([]ranking.Entry, bool, error) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []ranking.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, key string, entries []ranking.Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, key, data, c.TTL).Err()
}

// Invalidate drops every cached leaderboard page.
func (c *LeaderboardCache) Invalidate(ctx context.Context) error {
	iter := c.Client.Scan(ctx, 0, leaderboardPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Client.Del(ctx, keys...).Err()
}
