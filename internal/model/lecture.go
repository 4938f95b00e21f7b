package model

import "time"

type LectureStatus string

const (
	LectureUploaded   LectureStatus = "uploaded"
	LectureProcessing LectureStatus = "processing"
	LectureCompleted  LectureStatus = "completed"
	LectureFailed     LectureStatus = "failed"
)

// Lecture is a recorded class moving through record → transcribe → summarize → store.
// swagger:model Lecture
type Lecture struct {
	UUIDBase
	UserID       string        `gorm:"index;type:text;not null" json:"userId"`
	Title        string        `gorm:"not null" json:"title"`
	Module       string        `json:"module"`
	Topic        string        `json:"topic"`
	AudioKey     string        `json:"-"`
	AudioURL     string        `json:"audioUrl"`
	MimeType     string        `json:"mimeType"`
	Duration     float64       `json:"duration"` // seconds
	Status       LectureStatus `gorm:"size:16;default:'uploaded';index" json:"status"`
	Progress     int           `gorm:"default:0" json:"progress"`
	ErrorMessage string        `json:"errorMessage,omitempty"`
	Transcript   string        `gorm:"type:text" json:"transcript,omitempty"`
	Notes        string        `gorm:"type:text" json:"notes,omitempty"`
	Summary      string        `gorm:"type:text" json:"summary,omitempty"`
	KeyPoints    []string      `gorm:"serializer:json" json:"keyPoints,omitempty"`
	ProcessedAt  *time.Time    `json:"processedAt,omitempty"`
}

func (Lecture) TableName() string {
	return "lectures"
}

// LectureProcessingLog is appended by the worker at every pipeline step.
type LectureProcessingLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LectureID string    `gorm:"index;type:uuid;not null" json:"lectureId"`
	Step      string    `gorm:"size:32;not null" json:"step"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	Message   string    `json:"message,omitempty"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
}

func (LectureProcessingLog) TableName() string {
	return "lecture_processing_logs"
}
