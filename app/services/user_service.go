package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// UpdateUserInput changes the caller's profile. Empty fields are left as they
// are; a non-empty Password is re-hashed.
type UpdateUserInput struct {
	Name     string `json:"name" validate:"nullable,max=255"`
	Email    string `json:"email" validate:"nullable,email,max=191"`
	Password string `json:"password" validate:"nullable,min=6,max=72"`
}

type UserService struct {
	users *repositories.UserRepository
}

func NewUserService(users *repositories.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Update(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Email != "" {
		taken, err := s.users.EmailTaken(ctx, in.Email, user.ID)
		if err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		user.Email = models.NormalizeEmail(in.Email)
	}
	if in.Password != "" {
		if err := user.SetPassword(in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		if orm.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
