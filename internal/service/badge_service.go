package service

import (
	"context"
	"docdot_backend/internal/badge"
	"docdot_backend/internal/model"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

type BadgeStore interface {
	ListBadges(ctx context.Context) ([]model.Badge, error)
	EarnedBadges(ctx context.Context, userID string) (map[uint]model.UserBadge, error)
	Unlock(ctx context.Context, userID string, b model.Badge, progress int, at time.Time) (bool, error)
	UnreadNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []uint) (int64, error)
}

type UserStatReader interface {
	GetUserStat(ctx context.Context, userID string) (*model.UserStat, error)
}

type BadgeService struct {
	Badges BadgeStore
	Stats  UserStatReader
	Events EventPublisher
	now    func() time.Time

	// Leaderboard is invalidated when unlocks add XP.
	Leaderboard *LeaderboardService

	mu      sync.RWMutex
	catalog []model.Badge
}

func NewBadgeService(badges BadgeStore, stats UserStatReader) *BadgeService {
	return &BadgeService{Badges: badges, Stats: stats, now: time.Now}
}

// Catalog is loaded once; the table only changes through migrations.
func (s *BadgeService) Catalog(ctx context.Context) ([]model.Badge, error) {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()
	if catalog != nil {
		return catalog, nil
	}

	catalog, err := s.Badges.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load badge catalog: %w", err)
	}
	s.mu.Lock()
	s.catalog = catalog
	s.mu.Unlock()
	return catalog, nil
}

// BadgeList is the response of the badges endpoint.
type BadgeList struct {
	Earned    []badge.View `json:"earned"`
	Available []badge.View `json:"available"`
}

func (s *BadgeService) ListForUser(ctx context.Context, userID string) (*BadgeList, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	stat, err := s.Stats.GetUserStat(ctx, userID)
	if err != nil {
		return nil, err
	}
	earnedRows, err := s.Badges.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := badge.Evaluate(stat, catalog, earnedSet(earnedRows))
	earned, available := badge.Split(res.Statuses)
	return &BadgeList{Earned: earned, Available: available}, nil
}

// Check unlocks every badge the user's current stats qualify for. XP rewards can
// qualify the user for further xp or level badges, so evaluation repeats until
// nothing new unlocks. It returns the unlocked badges and the final stats.
func (s *BadgeService) Check(ctx context.Context, userID string) ([]model.Badge, *model.UserStat, error) {
	catalog, err := s.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	earnedRows, err := s.Badges.EarnedBadges(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	earned := earnedSet(earnedRows)

	var unlocked []model.Badge
	for round := 0; round <= len(catalog); round++ {
		stat, err := s.Stats.GetUserStat(ctx, userID)
		if err != nil {
			return unlocked, nil, err
		}

		res := badge.Evaluate(stat, catalog, earned)
		if len(res.Unlocked) == 0 {
			s.afterUnlock(ctx, unlocked)
			return unlocked, stat, nil
		}

		for _, b := range res.Unlocked {
			ok, err := s.Badges.Unlock(ctx, userID, b, badge.Progress(stat, b.RequirementType), s.now())
			if err != nil {
				return unlocked, nil, fmt.Errorf("unlock badge %s: %w", b.Code, err)
			}
			earned[b.ID] = true
			if !ok {
				continue
			}
			unlocked = append(unlocked, b)
			monitoring.RecordBadgeUnlocked(string(b.Tier))
			logger.Log.Info("Badge unlocked",
				zap.String("user_id", userID),
				zap.String("badge", b.Code),
				zap.Int("xp_reward", b.XPReward),
			)
			if s.Events != nil {
				s.Events.PublishUser(userID, Event{Type: EventBadgeUnlocked, Data: Views([]model.Badge{b})[0]})
			}
		}
	}

	s.afterUnlock(ctx, unlocked)
	stat, err := s.Stats.GetUserStat(ctx, userID)
	return unlocked, stat, err
}

func (s *BadgeService) afterUnlock(ctx context.Context, unlocked []model.Badge) {
	if s.Leaderboard == nil || len(unlocked) == 0 {
		return
	}
	for _, b := range unlocked {
		if b.XPReward > 0 {
			s.Leaderboard.Invalidate(ctx)
			return
		}
	}
}

func (s *BadgeService) Notifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return s.Badges.UnreadNotifications(ctx, userID, limit)
}

func (s *BadgeService) MarkRead(ctx context.Context, userID string, ids []uint) (int64, error) {
	return s.Badges.MarkRead(ctx, userID, ids)
}

func earnedSet(rows map[uint]model.UserBadge) map[uint]bool {
	set := make(map[uint]bool, len(rows))
	for id := range rows {
		set[id] = true
	}
	return set
}

// Views converts unlocked badges to their client representation.
func Views(badges []model.Badge) []badge.View {
	out := make([]badge.View, 0, len(badges))
	for _, b := range badges {
		out = append(out, badge.Status{Badge: b, Progress: b.Requirement, Earned: true}.View())
	}
	return out
}
