package repository

import (
	"context"
	"docdot_backend/internal/model"
	"docdot_backend/internal/util"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// EnsureUser creates the user and an empty stats row on first sight, and keeps the
// email in sync with the identity provider afterwards.
func (r *UserRepository) EnsureUser(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
		}).Create(user).Error
		if err != nil {
			return err
		}

		stat := model.UserStat{UserID: user.ID, CurrentLevel: 1}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&stat).Error
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users found, keyed by id. Missing ids are skipped.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	out := make(map[string]*model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []model.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

// UpdateProfile writes the editable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"first_name":        user.FirstName,
			"last_name":         user.LastName,
			"full_name":         user.FullName,
			"specialization":    user.Specialization,
			"institution":       user.Institution,
			"profile_completed": user.ProfileCompleted,
		}).Error
}
