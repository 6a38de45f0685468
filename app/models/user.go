package models

import (
	"errors"
	"strings"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

var ErrWeakPassword = errors.New("password must be at least 6 characters")

// User is an account. Password always holds a bcrypt hash and is never
// serialized.
type User struct {
	Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:user" json:"role"`
}

// NewUser builds a user with the password already hashed. Saving a User never
// hashes implicitly; password changes go through SetPassword.
func NewUser(name, email, password, role string) (*User, error) {
	if role == "" {
		role = auth.RoleUser
	}
	u := &User{
		Name:  strings.TrimSpace(name),
		Email: NormalizeEmail(email),
		Role:  role,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash.
func (u *User) SetPassword(plain string) error {
	if len(plain) < 6 {
		return ErrWeakPassword
	}
	hash, err := auth.HashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return auth.CheckPassword(u.Password, plain)
}

func (u *User) IsAdmin() bool { return u.Role == auth.RoleAdmin }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
