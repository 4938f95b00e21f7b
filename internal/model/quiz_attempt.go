package model

import "time"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuizAttempt records one answered question.
// swagger:model QuizAttempt
type QuizAttempt struct {
	ID                 uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID             string     `gorm:"index:idx_quiz_attempts_user_time;type:text;not null" json:"userId"`
	QuestionIdentifier string     `json:"questionIdentifier,omitempty"`
	Category           string     `gorm:"not null" json:"category"`
	SelectedAnswer     string     `gorm:"not null" json:"selectedAnswer"`
	CorrectAnswer      string     `gorm:"not null" json:"correctAnswer"`
	IsCorrect          bool       `gorm:"not null" json:"isCorrect"`
	TimeSpent          int        `gorm:"default:0" json:"timeSpent"` // seconds
	Difficulty         Difficulty `gorm:"default:'medium'" json:"difficulty"`
	XPEarned           int        `gorm:"column:xp_earned;default:0" json:"xpEarned"`
	AttemptedAt        time.Time  `gorm:"index:idx_quiz_attempts_user_time" json:"attemptedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
