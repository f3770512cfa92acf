package config

import (
	"errors"
	"fmt"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/password"
	"replate-api/internal/pkg/validation"

	"gorm.io/gorm"
)

// ErrAdminCredentialsMissing is returned when ADMIN_EMAIL or ADMIN_PASSWORD is unset
var ErrAdminCredentialsMissing = errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")

// Seeder handles database seeding. Admin accounts cannot self-register, so
// this is the only way one is created.
type Seeder struct {
	db    *gorm.DB
	admin AdminConfig
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, admin AdminConfig) *Seeder {
	return &Seeder{db: db, admin: admin}
}

// SeedAdmin creates the configured admin account. It reports false when the
// account already exists.
func (s *Seeder) SeedAdmin() (bool, error) {
	email := validation.NormalizeEmail(s.admin.Email)
	if email == "" || s.admin.Password == "" {
		return false, ErrAdminCredentialsMissing
	}
	if !validation.IsValidEmail(email) {
		return false, fmt.Errorf("ADMIN_EMAIL %q is not a valid email", email)
	}
	if err := validation.DefaultPasswordPolicy.Check(s.admin.Password); err != nil {
		return false, fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}

	var existing models.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Role != "admin" {
			return false, fmt.Errorf("%s is registered as %s, not admin", email, existing.Role)
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, err
	}

	hashed, err := password.Hash(s.admin.Password)
	if err != nil {
		return false, err
	}

	admin := &models.User{
		Email:      email,
		Password:   hashed,
		Name:       s.admin.Name,
		Role:       "admin",
		IsVerified: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return false, err
	}

	logger.Info("admin user created", "user_id", admin.ID, "email", admin.Email)
	return true, nil
}
