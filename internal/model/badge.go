package model

import "time"

type BadgeTier string

const (
	TierBronze   BadgeTier = "bronze"
	TierSilver   BadgeTier = "silver"
	TierGold     BadgeTier = "gold"
	TierPlatinum BadgeTier = "platinum"
	TierDiamond  BadgeTier = "diamond"
)

// RequirementType names the UserStat field a badge threshold is compared against.
type RequirementType string

const (
	RequirementQuestions RequirementType = "questions"
	RequirementCorrect   RequirementType = "correct"
	RequirementAccuracy  RequirementType = "accuracy"
	RequirementStreak    RequirementType = "streak"
	RequirementXP        RequirementType = "xp"
	RequirementLevel     RequirementType = "level"
	RequirementStudyTime RequirementType = "study_time"
)

// Badge is an entry of the static achievement catalog.
// swagger:model Badge
type Badge struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Code            string          `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `gorm:"not null" json:"description"`
	Icon            string          `gorm:"size:64" json:"icon"`
	Category        string          `gorm:"size:32;not null" json:"category"` // performance, streak, mastery, time, special
	Tier            BadgeTier       `gorm:"size:16;default:'bronze'" json:"tier"`
	Requirement     int             `gorm:"not null" json:"requirement"`
	RequirementType RequirementType `gorm:"size:32;not null" json:"requirementType"`
	XPReward        int             `gorm:"column:xp_reward;default:0" json:"xpReward"`
	Color           string          `gorm:"size:16;default:'#3B82F6'" json:"color"`
	IsSecret        bool            `gorm:"default:false" json:"isSecret"`
	CreatedAt       time.Time       `json:"createdAt"`
}

func (Badge) TableName() string {
	return "badges"
}

// UserBadge marks a badge as earned. The unique index makes unlocking idempotent.
type UserBadge struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   string    `gorm:"uniqueIndex:idx_user_badges_user_badge;type:text;not null" json:"userId"`
	BadgeID  uint      `gorm:"uniqueIndex:idx_user_badges_user_badge;not null" json:"badgeId"`
	Progress int       `gorm:"default:0" json:"progress"`
	XPReward int       `gorm:"column:xp_reward;default:0" json:"xpReward"`
	EarnedAt time.Time `json:"earnedAt"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
