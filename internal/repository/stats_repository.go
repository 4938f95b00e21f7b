package repository

import (
	"context"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRecord holds the rows one quiz submission touches. They are loaded under
// a row lock so that concurrent submissions by the same user apply in sequence.
type AttemptRecord struct {
	Stat     *model.UserStat
	Category *model.CategoryStat
	Daily    *model.DailyStat
}

type StatsRepository struct {
	DB *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{DB: db}
}

func (r *StatsRepository) GetUserStat(ctx context.Context, userID string) (*model.UserStat, error) {
	var stat model.UserStat
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStatsNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

// ListUserStats returns every stats row. Leaderboards sort in memory.
func (r *StatsRepository) ListUserStats(ctx context.Context) ([]model.UserStat, error) {
	var stats []model.UserStat
	err := r.DB.WithContext(ctx).Find(&stats).Error
	return stats, err
}

// ListCategoryStats returns all users' stats for one category.
func (r *StatsRepository) ListCategoryStats(ctx context.Context, category string) ([]model.CategoryStat, error) {
	var stats []model.CategoryStat
	err := r.DB.WithContext(ctx).Where("category = ?", category).Find(&stats).Error
	return stats, err
}

func (r *StatsRepository) GetCategoryStats(ctx context.Context, userID string) ([]model.CategoryStat, error) {
	var stats []model.CategoryStat
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("xp_earned DESC").
		Find(&stats).Error
	return stats, err
}

// GetDailyStats returns rows with date >= since (YYYY-MM-DD), oldest first.
func (r *StatsRepository) GetDailyStats(ctx context.Context, userID, since string) ([]model.DailyStat, error) {
	var stats []model.DailyStat
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&stats).Error
	return stats, err
}

func (r *StatsRepository) ListAttempts(ctx context.Context, userID string, limit int) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("attempted_at DESC").
		Limit(limit).
		Find(&attempts).Error
	return attempts, err
}

// ApplyAttempt stores attempt and lets apply update the locked stat rows, all in
// one transaction. Missing rows are created empty before apply sees them.
func (r *StatsRepository) ApplyAttempt(ctx context.Context, attempt *model.QuizAttempt, apply func(*AttemptRecord) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := lockRecord(tx, attempt.UserID, attempt.Category, attempt.AttemptedAt.UTC().Format(util.DateFormat))
		if err != nil {
			return err
		}

		if err := apply(rec); err != nil {
			return err
		}

		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		if err := tx.Save(rec.Stat).Error; err != nil {
			return err
		}
		if rec.Category != nil {
			if err := tx.Save(rec.Category).Error; err != nil {
				return err
			}
		}
		return tx.Save(rec.Daily).Error
	})
}

// AddStudyTime credits finished timer sessions to the user's totals and today's row.
func (r *StatsRepository) AddStudyTime(ctx context.Context, userID string, minutes int, at time.Time) (*model.UserStat, error) {
	var stat *model.UserStat
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := lockRecord(tx, userID, "", at.UTC().Format(util.DateFormat))
		if err != nil {
			return err
		}
		rec.Stat.TotalStudyTime += minutes
		rec.Daily.StudyTime += minutes
		if err := tx.Save(rec.Stat).Error; err != nil {
			return err
		}
		stat = rec.Stat
		return tx.Save(rec.Daily).Error
	})
	return stat, err
}

// ResetExpiredWindows zeroes weekly and monthly XP left over from earlier periods.
func (r *StatsRepository) ResetExpiredWindows(ctx context.Context, weekStart, monthStart time.Time) (int64, error) {
	db := r.DB.WithContext(ctx).Model(&model.UserStat{})

	weekly := db.Where("week_start < ?", weekStart).
		Updates(map[string]interface{}{"weekly_xp": 0, "week_start": weekStart})
	if weekly.Error != nil {
		return 0, weekly.Error
	}

	monthly := r.DB.WithContext(ctx).Model(&model.UserStat{}).
		Where("month_start < ?", monthStart).
		Updates(map[string]interface{}{"monthly_xp": 0, "month_start": monthStart})
	if monthly.Error != nil {
		return weekly.RowsAffected, monthly.Error
	}
	return weekly.RowsAffected + monthly.RowsAffected, nil
}

func lockRecord(tx *gorm.DB, userID, category, date string) (*AttemptRecord, error) {
	rec := &AttemptRecord{}

	stat := model.UserStat{UserID: userID, CurrentLevel: 1}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stat).Error; err != nil {
		return nil, err
	}
	rec.Stat = &model.UserStat{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(rec.Stat).Error; err != nil {
		return nil, err
	}

	if category != "" {
		cat := model.CategoryStat{UserID: userID, Category: category}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&cat).Error; err != nil {
			return nil, err
		}
		rec.Category = &model.CategoryStat{}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND category = ?", userID, category).First(rec.Category).Error; err != nil {
			return nil, err
		}
	}

	daily := model.DailyStat{UserID: userID, Date: date, Categories: []string{}}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&daily).Error; err != nil {
		return nil, err
	}
	rec.Daily = &model.DailyStat{}
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND date = ?", userID, date).First(rec.Daily).Error; err != nil {
		return nil, err
	}

	return rec, nil
}
