package services

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=191"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Signup creates a customer account and signs the caller in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	taken, err := s.users.EmailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user, err := models.NewUser(in.Name, in.Email, in.Password, auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if orm.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !user.CheckPassword(in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Me loads the account behind a session.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if orm.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
