package model

import "time"

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// AISession groups one tutoring conversation.
// swagger:model AISession
type AISession struct {
	UUIDBase
	UserID        string     `gorm:"index;type:text;not null" json:"userId"`
	SessionType   string     `gorm:"size:32;default:'tutor'" json:"sessionType"` // tutor, quiz_explanation, study_help
	Title         string     `json:"title"`
	Topic         string     `json:"topic,omitempty"`
	TotalMessages int        `gorm:"default:0" json:"totalMessages"`
	TokensUsed    int        `gorm:"default:0" json:"tokensUsed"`
	EndedAt       *time.Time `json:"endedAt,omitempty"`
}

func (AISession) TableName() string {
	return "ai_sessions"
}

// AIChat is one message inside an AISession.
type AIChat struct {
	UUIDBase
	SessionID string `gorm:"index:idx_ai_chats_session_created;type:uuid;not null" json:"sessionId"`
	UserID    string `gorm:"type:text;not null" json:"userId"`
	Role      string `gorm:"size:16;not null" json:"role"`
	Content   string `gorm:"type:text;not null" json:"content"`
	Failed    bool   `gorm:"default:false" json:"failed,omitempty"`
}

func (AIChat) TableName() string {
	return "ai_chats"
}
