package repository

import (
	"context"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

type TutorRepository struct {
	DB *gorm.DB
}

func NewTutorRepository(db *gorm.DB) *TutorRepository {
	return &TutorRepository{DB: db}
}

func (r *TutorRepository) CreateSession(ctx context.Context, s *model.AISession) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *TutorRepository) ListSessions(ctx context.Context, userID string, limit int) ([]model.AISession, error) {
	var sessions []model.AISession
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// GetSession only returns sessions owned by userID.
func (r *TutorRepository) GetSession(ctx context.Context, userID, id string) (*model.AISession, error) {
	var s model.AISession
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListMessages returns the latest limit messages in chronological order.
func (r *TutorRepository) ListMessages(ctx context.Context, sessionID string, limit int) ([]model.AIChat, error) {
	var msgs []model.AIChat
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// AddMessages stores a batch of messages and bumps the session counters.
func (r *TutorRepository) AddMessages(ctx context.Context, sessionID string, tokens int, msgs ...*model.AIChat) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range msgs {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.AISession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"total_messages": gorm.Expr("total_messages + ?", len(msgs)),
				"tokens_used":    gorm.Expr("tokens_used + ?", tokens),
			}).Error
	})
}

func (r *TutorRepository) EndSession(ctx context.Context, userID, id string) error {
	res := r.DB.WithContext(ctx).Model(&model.AISession{}).
		Where("id = ? AND user_id = ? AND ended_at IS NULL", id, userID).
		Update("ended_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrSessionNotFound
	}
	return nil
}
