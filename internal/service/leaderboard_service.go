package service

import (
	"context"
	"docdot_backend/internal/config"
	"docdot_backend/internal/model"
	"docdot_backend/internal/ranking"
	"docdot_backend/internal/repository"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

type LeaderboardStore interface {
	ListUserStats(ctx context.Context) ([]model.UserStat, error)
	ListCategoryStats(ctx context.Context, category string) ([]model.CategoryStat, error)
}

type UserLookup interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
}

type LeaderboardCache interface {
	Get(ctx context.Context, key string) ([]ranking.Entry, bool, error)
	Set(ctx context.Context, key string, entries []ranking.Entry) error
	Invalidate(ctx context.Context) error
}

type LeaderboardService struct {
	Stats LeaderboardStore
	Users UserLookup
	// Cache is optional.
	Cache LeaderboardCache
	now   func() time.Time

	mu  sync.RWMutex
	cfg config.LeaderboardConfig
}

func NewLeaderboardService(stats LeaderboardStore, users UserLookup, cache LeaderboardCache, cfg config.LeaderboardConfig) *LeaderboardService {
	return &LeaderboardService{Stats: stats, Users: users, Cache: cache, cfg: cfg, now: time.Now}
}

func (s *LeaderboardService) UpdateConfig(cfg config.LeaderboardConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Limit clamps a requested page size to the configured bounds.
func (s *LeaderboardService) Limit(requested int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if requested <= 0 {
		return s.cfg.DefaultLimit
	}
	if requested > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return requested
}

// Leaderboard returns the top entries for the time frame, optionally restricted
// to one question category.
func (s *LeaderboardService) Leaderboard(ctx context.Context, timeFrame, category string, limit int) ([]ranking.Entry, error) {
	window, category, err := parseScope(timeFrame, category)
	if err != nil {
		return nil, err
	}
	limit = s.Limit(limit)

	key := repository.LeaderboardKey(window, category, limit)
	if s.Cache != nil {
		entries, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			logger.Log.Warn("Leaderboard cache read failed", zap.Error(err))
		} else if ok {
			monitoring.RecordLeaderboardQuery(string(window), true)
			return entries, nil
		}
	}
	monitoring.RecordLeaderboardQuery(string(window), false)

	stats, err := s.load(ctx, category)
	if err != nil {
		return nil, err
	}

	entries := ranking.Rank(stats, ranking.Options{Window: window, Category: category, Limit: limit})
	if err := s.attachNames(ctx, entries); err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, entries); err != nil {
			logger.Log.Warn("Leaderboard cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// UserRank finds one user's position. ok is false when the user has no stats in
// the requested scope.
func (s *LeaderboardService) UserRank(ctx context.Context, userID, timeFrame, category string) (ranking.Entry, bool, error) {
	window, category, err := parseScope(timeFrame, category)
	if err != nil {
		return ranking.Entry{}, false, err
	}

	stats, err := s.load(ctx, category)
	if err != nil {
		return ranking.Entry{}, false, err
	}

	entry, ok := ranking.Position(stats, userID, ranking.Options{Window: window, Category: category})
	return entry, ok, nil
}

// parseScope validates a board request. Category XP is only kept as a lifetime
// total, so a category board cannot be weekly or monthly.
func parseScope(timeFrame, category string) (ranking.Window, string, error) {
	window, err := ranking.ParseWindow(timeFrame)
	if err != nil {
		return "", "", err
	}
	category = strings.TrimSpace(category)
	if category != "" && window != ranking.AllTime {
		return "", "", util.ErrCategoryWindow
	}
	return window, category, nil
}

// Invalidate drops cached pages after stats change.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("Leaderboard cache invalidation failed", zap.Error(err))
	}
}

// load returns stats rows ready for ranking. Window counters from an earlier
// week or month read as zero even if the reset job has not run yet. For a
// category, the category's XP, accuracy and question count stand in for the
// totals.
func (s *LeaderboardService) load(ctx context.Context, category string) ([]model.UserStat, error) {
	stats, err := s.Stats.ListUserStats(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range stats {
		ranking.RollWindows(&stats[i], now)
	}
	if category == "" {
		return stats, nil
	}

	byUser := make(map[string]*model.UserStat, len(stats))
	for i := range stats {
		byUser[stats[i].UserID] = &stats[i]
	}

	catStats, err := s.Stats.ListCategoryStats(ctx, category)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserStat, 0, len(catStats))
	for _, cs := range catStats {
		row := model.UserStat{UserID: cs.UserID, CurrentLevel: 1}
		if base, ok := byUser[cs.UserID]; ok {
			row = *base
		}
		row.TotalXP = cs.XPEarned
		row.AverageScore = cs.Accuracy
		row.TotalQuestions = cs.QuestionsAnswered
		out = append(out, row)
	}
	return out, nil
}

func (s *LeaderboardService) attachNames(ctx context.Context, entries []ranking.Entry) error {
	if s.Users == nil || len(entries) == 0 {
		return nil
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	users, err := s.Users.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range entries {
		if u, ok := users[entries[i].UserID]; ok {
			entries[i].DisplayName = u.DisplayName()
		} else {
			entries[i].DisplayName = "Anonymous"
		}
	}
	return nil
}
