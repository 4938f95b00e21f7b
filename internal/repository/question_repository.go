package repository

import (
	"context"
	"docdot_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) CountByCategory(ctx context.Context) ([]model.CategoryCount, error) {
	var rows []model.CategoryCount
	err := r.DB.WithContext(ctx).Model(&model.Question{}).
		Select("category, count(*) AS total").
		Group("category").
		Order("category").
		Scan(&rows).Error
	return rows, err
}

// ListQuestions filters the bank. Empty filters match everything. A positive
// count returns that many questions in random order, otherwise all of them by id.
func (r *QuestionRepository) ListQuestions(ctx context.Context, category string, difficulty model.Difficulty, count int) ([]model.Question, error) {
	q := r.DB.WithContext(ctx).Model(&model.Question{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	if count > 0 {
		q = q.Order("random()").Limit(count)
	} else {
		q = q.Order("id")
	}

	var list []model.Question
	err := q.Find(&list).Error
	return list, err
}
