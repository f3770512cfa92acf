package repositories

import (
	"context"
	"errors"
	"time"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/core/domain"
)

// ErrStale is returned by conditional writes whose guard no longer holds
var ErrStale = errors.New("row changed concurrently")

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	LinkGoogle(ctx context.Context, id uint, googleID string) error
	// BumpEmailTokenVersion increments and returns the verification counter
	BumpEmailTokenVersion(ctx context.Context, id uint) (int, error)
	// BumpResetTokenVersion increments and returns the reset counter
	BumpResetTokenVersion(ctx context.Context, id uint) (int, error)
	// MarkVerified flips is_verified when the verification counter still
	// equals version. Returns ErrStale when nothing matched.
	MarkVerified(ctx context.Context, id uint, version int) error
	// ResetPassword replaces the hash and consumes the reset counter when it
	// still equals version. Returns ErrStale when nothing matched.
	ResetPassword(ctx context.Context, id uint, hash string, version int) error
}

// StoreRepository defines store repository interface
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id uint) (*models.Store, error)
	GetByMerchantID(ctx context.Context, merchantID uint) (*models.Store, error)
	GetWithMerchant(ctx context.Context, id uint) (*models.StoreWithMerchant, error)
	ExistsByMerchantID(ctx context.Context, merchantID uint) (bool, error)
	List(ctx context.Context, filter StoreFilter) ([]models.StoreWithMerchant, error)
	UpdateVerification(ctx context.Context, id uint, update VerificationUpdate) error
	// ApproveIfPending activates a pending store. Returns ErrStale when the
	// store is missing or no longer pending.
	ApproveIfPending(ctx context.Context, id, adminID uint, at time.Time) error
	// DeleteWithOwner removes a pending store, its products and its owning
	// account in one transaction. Returns ErrStale when the store is missing
	// or no longer pending.
	DeleteWithOwner(ctx context.Context, id, merchantID uint) error
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
	StoreStats(ctx context.Context, id uint) (*models.StoreStats, error)
	// ReferencedURLs returns every upload URL still stored on a row
	ReferencedURLs(ctx context.Context) (map[string]struct{}, error)
}

// ProductRepository defines product repository interface
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	CreateBatch(ctx context.Context, products []*models.Product) error
	GetForStore(ctx context.Context, id, storeID uint) (*models.Product, error)
	ListByStore(ctx context.Context, storeID uint, offset, limit int) ([]*models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	DeleteForStore(ctx context.Context, id, storeID uint) (bool, error)
	ToggleActive(ctx context.Context, id, storeID uint) (*models.Product, error)
}

// StoreFilter selects and orders the admin store listing
type StoreFilter struct {
	Status      *domain.ApprovalStatus
	OldestFirst bool
}

// VerificationUpdate is what onboarding step 3 writes. Nil URLs leave the
// column untouched.
type VerificationUpdate struct {
	BankAccountNumber string
	QrisImageURL      *string
	IDCardImageURL    *string
}
