package repository

import (
	"context"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type LectureRepository struct {
	DB *gorm.DB
}

func NewLectureRepository(db *gorm.DB) *LectureRepository {
	return &LectureRepository{DB: db}
}

func (r *LectureRepository) Create(ctx context.Context, l *model.Lecture) error {
	return r.DB.WithContext(ctx).Create(l).Error
}

// Get returns the lecture. An empty userID skips the ownership check, which only
// the background worker does.
func (r *LectureRepository) Get(ctx context.Context, userID, id string) (*model.Lecture, error) {
	q := r.DB.WithContext(ctx).Where("id = ?", id)
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	var l model.Lecture
	err := q.First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrLectureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LectureRepository) List(ctx context.Context, userID string, limit int) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.DB.WithContext(ctx).
		Omit("transcript", "notes").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&lectures).Error
	return lectures, err
}

// ListByStatus is used at startup to requeue work interrupted by a restart.
func (r *LectureRepository) ListByStatus(ctx context.Context, statuses ...model.LectureStatus) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&lectures).Error
	return lectures, err
}

func (r *LectureRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.DB.WithContext(ctx).Model(&model.Lecture{}).Where("id = ?", id).Updates(fields).Error
}

func (r *LectureRepository) AppendLog(ctx context.Context, log *model.LectureProcessingLog) error {
	return r.DB.WithContext(ctx).Create(log).Error
}

func (r *LectureRepository) Logs(ctx context.Context, lectureID string) ([]model.LectureProcessingLog, error) {
	var logs []model.LectureProcessingLog
	err := r.DB.WithContext(ctx).
		Where("lecture_id = ?", lectureID).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}
