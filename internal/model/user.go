package model

import (
	"strings"
	"time"
)

// User mirrors a Supabase Auth identity. ID is the Supabase user id (the token "sub").
// swagger:model User
type User struct {
	ID               string    `gorm:"primaryKey;type:text" json:"id"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName        string    `json:"firstName"`
	LastName         string    `json:"lastName"`
	FullName         string    `json:"fullName"`
	Specialization   string    `json:"specialization"`
	Institution      string    `json:"institution"`
	ProfileCompleted bool      `gorm:"default:false" json:"profileCompleted"`
	SubscriptionTier string    `gorm:"default:'free'" json:"subscriptionTier"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName prefers the full name, then first/last, then the mailbox part of the email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
