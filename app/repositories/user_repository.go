package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) query(ctx context.Context) *orm.Query {
	return orm.Use(r.db).WithContext(ctx)
}

// FindByEmail looks up a user by their (normalized) email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.query(ctx).Model(&models.User{}).Where("email = ?", models.NormalizeEmail(email)).First(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.query(ctx).Model(&models.User{}).Where("id = ?", id).First(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user already owns email.
func (r *UserRepository) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	n, err := r.query(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", models.NormalizeEmail(email), exceptID).
		Count()
	return n > 0, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.query(ctx).Create(user)
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.query(ctx).Save(user)
}
