package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the ADMIN_EMAIL account, or promotes it if it already
// exists. Nothing happens when ADMIN_EMAIL or ADMIN_PASSWORD is unset.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	email := models.NormalizeEmail(config.Get("ADMIN_EMAIL", ""))
	password := config.Get("ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		logger.WithCtx(ctx).Warn("seeders: ADMIN_EMAIL or ADMIN_PASSWORD unset, skipping admin")
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Role == auth.RoleAdmin {
			return nil
		}
		return db.Model(&existing).Update("role", auth.RoleAdmin).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	admin, err := models.NewUser("Administrator", email, password, auth.RoleAdmin)
	if err != nil {
		return err
	}
	return db.Create(admin).Error
}
