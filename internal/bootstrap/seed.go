package bootstrap

import (
	"errors"

	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/pkg/password"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const devAdminPassword = "admin123"

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.StudentProfile{},
		&entity.CompanyProfile{},
		&entity.Job{},
		&entity.Application{},
		&entity.Notification{},
	)
}

// SeedAdminUser creates the only ADMIN account; public registration cannot.
// An empty plain password is allowed only in development.
func SeedAdminUser(db *gorm.DB, email, plain string, development bool) error {
	if plain == "" {
		if !development {
			return errors.New("ADMIN_PASSWORD is required to seed the admin account")
		}
		plain = devAdminPassword
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug().Str("email", email).Msg("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	admin := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashed,
		Role:         entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	ev := log.Info().Str("email", email)
	if plain == devAdminPassword {
		ev = ev.Str("password", devAdminPassword)
	}
	ev.Msg("admin user seeded")
	return nil
}
