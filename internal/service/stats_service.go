package service

import (
	"context"
	"docdot_backend/internal/badge"
	"docdot_backend/internal/model"
	"docdot_backend/internal/ranking"
	"docdot_backend/internal/repository"
	"docdot_backend/internal/util"
	"docdot_backend/pkg/logger"
	"docdot_backend/pkg/monitoring"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// XP awarded for a correct answer, by difficulty.
var difficultyXP = map[model.Difficulty]int{
	model.DifficultyEasy:   5,
	model.DifficultyMedium: 10,
	model.DifficultyHard:   15,
}

type StatsStore interface {
	GetUserStat(ctx context.Context, userID string) (*model.UserStat, error)
	GetCategoryStats(ctx context.Context, userID string) ([]model.CategoryStat, error)
	GetDailyStats(ctx context.Context, userID, since string) ([]model.DailyStat, error)
	ListAttempts(ctx context.Context, userID string, limit int) ([]model.QuizAttempt, error)
	ApplyAttempt(ctx context.Context, attempt *model.QuizAttempt, apply func(*repository.AttemptRecord) error) error
	AddStudyTime(ctx context.Context, userID string, minutes int, at time.Time) (*model.UserStat, error)
}

type StatsService struct {
	Stats       StatsStore
	Badges      *BadgeService
	Leaderboard *LeaderboardService
	now         func() time.Time
}

func NewStatsService(stats StatsStore, badges *BadgeService, leaderboard *LeaderboardService) *StatsService {
	return &StatsService{Stats: stats, Badges: badges, Leaderboard: leaderboard, now: time.Now}
}

// SubmitAttemptRequest is one answered question sent by the client.
type SubmitAttemptRequest struct {
	Category           string `json:"category" binding:"required"`
	QuestionIdentifier string `json:"questionIdentifier"`
	SelectedAnswer     string `json:"selectedAnswer" binding:"required"`
	CorrectAnswer      string `json:"correctAnswer" binding:"required"`
	IsCorrect          *bool  `json:"isCorrect"`
	TimeSpent          int    `json:"timeSpent" binding:"min=0"`
	Difficulty         string `json:"difficulty"`
}

type SubmitAttemptResult struct {
	Attempt        *model.QuizAttempt `json:"attempt"`
	Stats          *model.UserStat    `json:"stats"`
	XPEarned       int                `json:"xpEarned"`
	LevelUp        bool               `json:"levelUp"`
	UnlockedBadges []badge.View       `json:"unlockedBadges"`
}

// XPFor returns the XP a correct answer of the given difficulty earns.
func XPFor(d model.Difficulty) int {
	return difficultyXP[d]
}

func parseDifficulty(s string) (model.Difficulty, error) {
	d := model.Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return model.DifficultyMedium, nil
	}
	if _, ok := difficultyXP[d]; !ok {
		return "", fmt.Errorf("%w: unknown difficulty %q", util.ErrInvalidAttempt, s)
	}
	return d, nil
}

// SubmitAttempt records an answer, updates every aggregate it feeds and unlocks
// any badges the new totals reach.
func (s *StatsService) SubmitAttempt(ctx context.Context, userID string, req SubmitAttemptRequest) (*SubmitAttemptResult, error) {
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" || strings.TrimSpace(req.SelectedAnswer) == "" || strings.TrimSpace(req.CorrectAnswer) == "" || req.TimeSpent < 0 {
		return nil, util.ErrInvalidAttempt
	}
	difficulty, err := parseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}

	correct := strings.EqualFold(strings.TrimSpace(req.SelectedAnswer), strings.TrimSpace(req.CorrectAnswer))
	if req.IsCorrect != nil {
		correct = *req.IsCorrect
	}

	now := s.now()
	attempt := &model.QuizAttempt{
		UserID:             userID,
		QuestionIdentifier: req.QuestionIdentifier,
		Category:           req.Category,
		SelectedAnswer:     req.SelectedAnswer,
		CorrectAnswer:      req.CorrectAnswer,
		IsCorrect:          correct,
		TimeSpent:          req.TimeSpent,
		Difficulty:         difficulty,
		AttemptedAt:        now,
	}
	if correct {
		attempt.XPEarned = XPFor(difficulty)
	}

	var levelBefore, levelAfter int
	var stat model.UserStat
	err = s.Stats.ApplyAttempt(ctx, attempt, func(rec *repository.AttemptRecord) error {
		levelBefore = rec.Stat.CurrentLevel
		ApplyAttempt(rec, attempt, now)
		levelAfter = rec.Stat.CurrentLevel
		stat = *rec.Stat
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record quiz attempt: %w", err)
	}
	monitoring.RecordQuizAttempt(correct)

	result := &SubmitAttemptResult{
		Attempt:        attempt,
		Stats:          &stat,
		XPEarned:       attempt.XPEarned,
		UnlockedBadges: []badge.View{},
	}

	if s.Badges != nil {
		unlocked, updated, err := s.Badges.Check(ctx, userID)
		if err != nil {
			// The attempt is already stored; the next check will catch up.
			logger.Log.Error("Badge evaluation failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			result.UnlockedBadges = Views(unlocked)
			for _, b := range unlocked {
				result.XPEarned += b.XPReward
			}
			if updated != nil {
				result.Stats = updated
				levelAfter = updated.CurrentLevel
			}
		}
	}
	result.LevelUp = levelAfter > levelBefore

	if s.Leaderboard != nil {
		s.Leaderboard.Invalidate(ctx)
	}
	return result, nil
}

// ApplyAttempt folds one attempt into the locked stat rows.
func ApplyAttempt(rec *repository.AttemptRecord, a *model.QuizAttempt, now time.Time) {
	minutes := (a.TimeSpent + 30) / 60

	st := rec.Stat
	ranking.RollWindows(st, now)
	st.TotalQuestions++
	if a.IsCorrect {
		st.CorrectAnswers++
	}
	st.AverageScore = ranking.Accuracy(st.CorrectAnswers, st.TotalQuestions)
	st.TotalXP += a.XPEarned
	st.WeeklyXP += a.XPEarned
	st.MonthlyXP += a.XPEarned
	st.CurrentLevel = ranking.Level(st.TotalXP)
	st.TotalStudyTime += minutes
	UpdateStreak(st, now)

	if cs := rec.Category; cs != nil {
		cs.QuestionsAnswered++
		if a.IsCorrect {
			cs.CorrectAnswers++
		}
		cs.Accuracy = ranking.Accuracy(cs.CorrectAnswers, cs.QuestionsAnswered)
		cs.XPEarned += a.XPEarned
		cs.AverageTime = (cs.AverageTime*(cs.QuestionsAnswered-1) + a.TimeSpent) / cs.QuestionsAnswered
		cs.LastAttempted = now
	}

	if ds := rec.Daily; ds != nil {
		ds.QuestionsAnswered++
		if a.IsCorrect {
			ds.CorrectAnswers++
		}
		ds.XPEarned += a.XPEarned
		ds.StudyTime += minutes
		if !slices.Contains(ds.Categories, a.Category) {
			ds.Categories = append(ds.Categories, a.Category)
		}
	}
}

// UpdateStreak counts consecutive UTC days with at least one answer.
func UpdateStreak(st *model.UserStat, now time.Time) {
	today := now.UTC().Truncate(24 * time.Hour)
	if st.LastStudyDate == nil {
		st.CurrentStreak = 1
	} else {
		last := st.LastStudyDate.UTC().Truncate(24 * time.Hour)
		switch days := int(today.Sub(last) / (24 * time.Hour)); {
		case days <= 0:
			if st.CurrentStreak == 0 {
				st.CurrentStreak = 1
			}
		case days == 1:
			st.CurrentStreak++
		default:
			st.CurrentStreak = 1
		}
	}
	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	t := now
	st.LastStudyDate = &t
}

// UserStatsView adds the XP at which the next level starts.
type UserStatsView struct {
	*model.UserStat
	NextLevelXP int `json:"nextLevelXP"`
}

func (s *StatsService) UserStats(ctx context.Context, userID string) (*UserStatsView, error) {
	st, err := s.Stats.GetUserStat(ctx, userID)
	if err != nil {
		return nil, err
	}
	ranking.RollWindows(st, s.now())
	return &UserStatsView{UserStat: st, NextLevelXP: ranking.NextLevelXP(st.CurrentLevel)}, nil
}

func (s *StatsService) CategoryStats(ctx context.Context, userID string) ([]model.CategoryStat, error) {
	return s.Stats.GetCategoryStats(ctx, userID)
}

// DailyStats returns the last days days, including today, with missing days
// filled with zero rows so charts get a continuous series.
func (s *StatsService) DailyStats(ctx context.Context, userID string, days int) ([]model.DailyStat, error) {
	if days <= 0 {
		days = 7
	}
	if days > 365 {
		days = 365
	}
	today := s.now().UTC()
	since := today.AddDate(0, 0, -(days - 1)).Format(util.DateFormat)

	rows, err := s.Stats.GetDailyStats(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]model.DailyStat, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}

	out := make([]model.DailyStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(util.DateFormat)
		row, ok := byDate[date]
		if !ok {
			row = model.DailyStat{UserID: userID, Date: date, Categories: []string{}}
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *StatsService) RecentAttempts(ctx context.Context, userID string, limit int) ([]model.QuizAttempt, error) {
	return s.Stats.ListAttempts(ctx, userID, limit)
}

// AddStudyTime credits completed timer sessions and re-checks time badges.
func (s *StatsService) AddStudyTime(ctx context.Context, userID string, minutes int) error {
	if minutes <= 0 {
		return nil
	}
	if _, err := s.Stats.AddStudyTime(ctx, userID, minutes, s.now()); err != nil {
		return fmt.Errorf("add study time: %w", err)
	}
	if s.Badges != nil {
		if _, _, err := s.Badges.Check(ctx, userID); err != nil {
			logger.Log.Error("Badge evaluation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}
