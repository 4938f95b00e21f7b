package repository

import (
	"context"
	"docdot_backend/internal/timer"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	timerPrefix = "timer:"
	timerTTL    = 7 * 24 * time.Hour
)

// TimerStore keeps each user's study timer in redis so it survives restarts and
// is shared between devices.
type TimerStore struct {
	Client *redis.Client
}

func NewTimerStore(client *redis.Client) *TimerStore {
	return &TimerStore{Client: client}
}

func (s *TimerStore) Load(ctx context.Context, userID string) (*timer.State, error) {
	data, err := s.Client.Get(ctx, timerPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st timer.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *TimerStore) Save(ctx context.Context, userID string, st *timer.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, timerPrefix+userID, data, timerTTL).Err()
}

func (s *TimerStore) Delete(ctx context.Context, userID string) error {
	return s.Client.Del(ctx, timerPrefix+userID).Err()
}
