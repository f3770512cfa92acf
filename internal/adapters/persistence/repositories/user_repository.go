package repositories

import (
	"context"

	"replate-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by normalized email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByGoogleID gets a user by linked Google subject
func (r *userRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// LinkGoogle attaches a Google subject and marks the email verified
func (r *userRepository) LinkGoogle(ctx context.Context, id uint, googleID string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"google_id":   googleID,
			"is_verified": true,
		}).Error
}

func (r *userRepository) BumpEmailTokenVersion(ctx context.Context, id uint) (int, error) {
	return r.bump(ctx, id, "email_token_version")
}

func (r *userRepository) BumpResetTokenVersion(ctx context.Context, id uint) (int, error) {
	return r.bump(ctx, id, "reset_token_version")
}

func (r *userRepository) bump(ctx context.Context, id uint, column string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("user_id = ?", id).
			UpdateColumn(column, gorm.Expr(column+" + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.User{}).
			Where("user_id = ?", id).
			Select(column).
			Scan(&version).Error
	})
	return version, err
}

// MarkVerified flips the verified flag exactly once
func (r *userRepository) MarkVerified(ctx context.Context, id uint, version int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND email_token_version = ? AND is_verified = ?", id, version, false).
		Update("is_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// ResetPassword swaps the hash and bumps the reset counter so the token is spent
func (r *userRepository) ResetPassword(ctx context.Context, id uint, hash string, version int) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND reset_token_version = ?", id, version).
		Updates(map[string]interface{}{
			"password":            hash,
			"reset_token_version": gorm.Expr("reset_token_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}
