package model

import "time"

// UserStat is the per-user aggregate updated after each quiz submission.
// Rank is informational only; leaderboards recompute order on every read.
// swagger:model UserStat
type UserStat struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID         string     `gorm:"uniqueIndex;type:text;not null" json:"userId"`
	TotalQuestions int        `gorm:"default:0" json:"totalQuestions"`
	CorrectAnswers int        `gorm:"default:0" json:"correctAnswers"`
	AverageScore   int        `gorm:"default:0" json:"averageScore"`  // percent
	CurrentStreak  int        `gorm:"default:0" json:"currentStreak"` // days
	LongestStreak  int        `gorm:"default:0" json:"longestStreak"`
	TotalXP        int        `gorm:"column:total_xp;default:0;index" json:"totalXP"`
	WeeklyXP       int        `gorm:"column:weekly_xp;default:0" json:"weeklyXP"`
	MonthlyXP      int        `gorm:"column:monthly_xp;default:0" json:"monthlyXP"`
	WeekStart      time.Time  `json:"-"`
	MonthStart     time.Time  `json:"-"`
	CurrentLevel   int        `gorm:"default:1" json:"currentLevel"`
	TotalStudyTime int        `gorm:"default:0" json:"totalStudyTime"` // minutes
	TotalBadges    int        `gorm:"default:0" json:"totalBadges"`
	LastStudyDate  *time.Time `json:"lastStudyDate,omitempty"`
	Rank           int        `gorm:"default:0" json:"rank"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (UserStat) TableName() string {
	return "user_stats"
}

// CategoryStat tracks performance within one question category.
type CategoryStat struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID            string    `gorm:"uniqueIndex:idx_category_stats_user_category;type:text;not null" json:"userId"`
	Category          string    `gorm:"uniqueIndex:idx_category_stats_user_category;not null" json:"category"`
	QuestionsAnswered int       `gorm:"default:0" json:"questionsAnswered"`
	CorrectAnswers    int       `gorm:"default:0" json:"correctAnswers"`
	Accuracy          int       `gorm:"default:0" json:"accuracy"`
	XPEarned          int       `gorm:"column:xp_earned;default:0" json:"xpEarned"`
	AverageTime       int       `gorm:"default:0" json:"averageTime"` // seconds per question
	LastAttempted     time.Time `json:"lastAttempted"`
}

func (CategoryStat) TableName() string {
	return "category_stats"
}

// DailyStat is one row per user per calendar day (YYYY-MM-DD).
type DailyStat struct {
	ID                uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID            string    `gorm:"uniqueIndex:idx_daily_stats_user_date;type:text;not null" json:"userId"`
	Date              string    `gorm:"uniqueIndex:idx_daily_stats_user_date;size:10;not null" json:"date"`
	QuestionsAnswered int       `gorm:"default:0" json:"questionsAnswered"`
	CorrectAnswers    int       `gorm:"default:0" json:"correctAnswers"`
	XPEarned          int       `gorm:"column:xp_earned;default:0" json:"xpEarned"`
	StudyTime         int       `gorm:"default:0" json:"studyTime"` // minutes
	Categories        []string  `gorm:"serializer:json" json:"categories"`
	CreatedAt         time.Time `json:"createdAt"`
}

func (DailyStat) TableName() string {
	return "daily_stats"
}
