package util

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrStatsNotFound     = errors.New("user has no stats yet")
	ErrInvalidAttempt    = errors.New("missing required fields for quiz attempt")
	ErrInvalidWindow     = errors.New("invalid leaderboard time frame")
	ErrCategoryWindow    = errors.New("category leaderboards are all-time only")
	ErrInvalidTimerEvent = errors.New("invalid timer action")
	ErrSessionNotFound   = errors.New("tutor session not found")
	ErrEmptyMessage      = errors.New("message content is required")
	ErrLectureNotFound   = errors.New("lecture not found")
	ErrInvalidAudio      = errors.New("unsupported audio file")
	ErrQueueFull         = errors.New("processing queue is full, try again later")
	ErrInvalidLecture    = errors.New("lecture title is required")
	ErrFileTooLarge      = errors.New("uploaded file is too large")
	ErrLectureBusy       = errors.New("lecture is already being processed")

	ErrInvalidDifficulty    = errors.New("difficulty must be easy, medium, hard or all")
	ErrInvalidQuestionCount = errors.New("count must not be negative")
)
