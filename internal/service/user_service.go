package service

import (
	"context"
	"docdot_backend/internal/model"
	"strings"
	"sync"
)

type UserStore interface {
	EnsureUser(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
}

// UserService provisions users the first time their token is seen.
type UserService struct {
	UserRepo UserStore

	// known holds id -> email for users provisioned by this process.
	known sync.Map
}

func NewUserService(userRepo UserStore) *UserService {
	return &UserService{UserRepo: userRepo}
}

// Ensure creates the user row and an empty stats row on first sight. Later calls
// hit the database only when the email in the token changed.
func (s *UserService) Ensure(ctx context.Context, id, email string) error {
	if v, ok := s.known.Load(id); ok && v.(string) == email {
		return nil
	}
	if err := s.UserRepo.EnsureUser(ctx, &model.User{ID: id, Email: email}); err != nil {
		return err
	}
	s.known.Store(id, email)
	return nil
}

func (s *UserService) Profile(ctx context.Context, id string) (*model.User, error) {
	return s.UserRepo.FindByID(ctx, id)
}

type UpdateProfileRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	FullName       string `json:"fullName"`
	Specialization string `json:"specialization"`
	Institution    string `json:"institution"`
}

// UpdateProfile marks the profile completed once a name and specialization are set.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.FullName = strings.TrimSpace(req.FullName)
	if user.FullName == "" {
		user.FullName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	user.Specialization = strings.TrimSpace(req.Specialization)
	user.Institution = strings.TrimSpace(req.Institution)
	user.ProfileCompleted = user.FullName != "" && user.Specialization != ""

	if err := s.UserRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
