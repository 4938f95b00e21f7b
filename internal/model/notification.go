package model

import "time"

// Notification is created when a badge unlocks; clients poll for unread ones.
// swagger:model Notification
type Notification struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     string    `gorm:"index:idx_notifications_user_read;type:text;not null" json:"userId"`
	BadgeID    *uint     `json:"badge_id,omitempty"`
	Message    string    `gorm:"not null" json:"message"`
	XPEarned   int       `gorm:"column:xp_earned;default:0" json:"xp_earned"`
	BadgeName  string    `json:"badge_name,omitempty"`
	BadgeIcon  string    `json:"badge_icon,omitempty"`
	BadgeColor string    `json:"badge_color,omitempty"`
	Read       bool      `gorm:"index:idx_notifications_user_read;default:false" json:"read"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
