package repository

import (
	"context"
	"docdot_backend/internal/model"
	"docdot_backend/internal/ranking"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BadgeRepository struct {
	DB *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *BadgeRepository {
	return &BadgeRepository{DB: db}
}

func (r *BadgeRepository) ListBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.DB.WithContext(ctx).Order("category, requirement").Find(&badges).Error
	return badges, err
}

// EarnedBadges returns the user's badges keyed by badge id.
func (r *BadgeRepository) EarnedBadges(ctx context.Context, userID string) (map[uint]model.UserBadge, error) {
	var rows []model.UserBadge
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]model.UserBadge, len(rows))
	for _, ub := range rows {
		out[ub.BadgeID] = ub
	}
	return out, nil
}

// Unlock records the badge as earned, credits its XP reward and creates the
// notification. It returns false without changes when the user already has it.
func (r *BadgeRepository) Unlock(ctx context.Context, userID string, b model.Badge, progress int, at time.Time) (bool, error) {
	unlocked := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ub := model.UserBadge{
			UserID:   userID,
			BadgeID:  b.ID,
			Progress: progress,
			XPReward: b.XPReward,
			EarnedAt: at,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ub)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		err := tx.Model(&model.UserStat{}).
			Where("user_id = ?", userID).
			Updates(rewardUpdates(b.XPReward, at)).Error
		if err != nil {
			return err
		}

		badgeID := b.ID
		n := model.Notification{
			UserID:     userID,
			BadgeID:    &badgeID,
			Message:    fmt.Sprintf("You unlocked the %s badge!", b.Name),
			XPEarned:   b.XPReward,
			BadgeName:  b.Name,
			BadgeIcon:  b.Icon,
			BadgeColor: b.Color,
			CreatedAt:  at,
		}
		if err := tx.Create(&n).Error; err != nil {
			return err
		}

		unlocked = true
		return nil
	})
	return unlocked, err
}

// rewardUpdates credits xp in a single UPDATE. A weekly or monthly total left
// over from an earlier period is replaced rather than added to, and its period
// start moves forward, so the reward never lands on a stale window.
func rewardUpdates(xp int, at time.Time) map[string]interface{} {
	ws, ms := ranking.WeekStart(at), ranking.MonthStart(at)
	return map[string]interface{}{
		"total_xp":      gorm.Expr("total_xp + ?", xp),
		"weekly_xp":     gorm.Expr("CASE WHEN week_start < ? THEN ? ELSE weekly_xp + ? END", ws, xp, xp),
		"week_start":    gorm.Expr("CASE WHEN week_start < ? THEN ? ELSE week_start END", ws, ws),
		"monthly_xp":    gorm.Expr("CASE WHEN month_start < ? THEN ? ELSE monthly_xp + ? END", ms, xp, xp),
		"month_start":   gorm.Expr("CASE WHEN month_start < ? THEN ? ELSE month_start END", ms, ms),
		"current_level": gorm.Expr("(total_xp + ?) / 1000 + 1", xp),
		"total_badges":  gorm.Expr("total_badges + 1"),
	}
}

func (r *BadgeRepository) UnreadNotifications(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	var list []model.Notification
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND read = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// MarkRead marks the given notifications read, or all of the user's when ids is empty.
func (r *BadgeRepository) MarkRead(ctx context.Context, userID string, ids []uint) (int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.Notification{}).Where("user_id = ? AND read = ?", userID, false)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	res := q.Update("read", true)
	return res.RowsAffected, res.Error
}
