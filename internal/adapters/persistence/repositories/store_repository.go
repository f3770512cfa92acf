package repositories

import (
	"context"
	"time"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/core/domain"

	"gorm.io/gorm"
)

const storeWithMerchantColumns = `s.*,
	u.name AS merchant_name,
	u.email AS merchant_email,
	u.phone AS merchant_phone,
	u.is_verified AS merchant_verified`

// storeRepository implements StoreRepository interface
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a new store repository
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// Create inserts a store. A second store for the same merchant fails with
// gorm.ErrDuplicatedKey through the unique index on merchant_id.
func (r *storeRepository) Create(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

// GetByID gets a store by ID
func (r *storeRepository) GetByID(ctx context.Context, id uint) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("store_id = ?", id).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

// GetByMerchantID gets the store owned by a merchant
func (r *storeRepository) GetByMerchantID(ctx context.Context, merchantID uint) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).Where("merchant_id = ?", merchantID).First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("stores s").
		Select(storeWithMerchantColumns).
		Joins("INNER JOIN users u ON s.merchant_id = u.user_id")
}

// GetWithMerchant gets a store joined with its owner
func (r *storeRepository) GetWithMerchant(ctx context.Context, id uint) (*models.StoreWithMerchant, error) {
	var rows []models.StoreWithMerchant
	if err := r.joined(ctx).Where("s.store_id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ExistsByMerchantID checks whether a merchant already owns a store
func (r *storeRepository) ExistsByMerchantID(ctx context.Context, merchantID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Store{}).Where("merchant_id = ?", merchantID).Count(&count).Error
	return count > 0, err
}

// List returns stores joined with their owners
func (r *storeRepository) List(ctx context.Context, filter StoreFilter) ([]models.StoreWithMerchant, error) {
	query := r.joined(ctx)
	if filter.Status != nil {
		query = query.Where("s.approval_status = ?", string(*filter.Status))
	}
	if filter.OldestFirst {
		query = query.Order("s.created_at ASC").Order("s.store_id ASC")
	} else {
		query = query.Order("s.created_at DESC").Order("s.store_id DESC")
	}

	rows := make([]models.StoreWithMerchant, 0)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateVerification writes bank and document fields
func (r *storeRepository) UpdateVerification(ctx context.Context, id uint, update VerificationUpdate) error {
	fields := map[string]interface{}{
		"bank_account_number": update.BankAccountNumber,
	}
	if update.QrisImageURL != nil {
		fields["qris_image_url"] = *update.QrisImageURL
	}
	if update.IDCardImageURL != nil {
		fields["id_card_image_url"] = *update.IDCardImageURL
	}

	res := r.db.WithContext(ctx).Model(&models.Store{}).Where("store_id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ApproveIfPending performs the pending→approved transition as one write
func (r *storeRepository) ApproveIfPending(ctx context.Context, id, adminID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("store_id = ? AND approval_status = ?", id, string(domain.ApprovalPending)).
		Updates(map[string]interface{}{
			"approval_status": string(domain.ApprovalApproved),
			"is_active":       true,
			"approved_at":     at,
			"approved_by":     adminID,
			"admin_notes":     gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStale
	}
	return nil
}

// DeleteWithOwner deletes a pending store, its products and the merchant.
// The status flip claims the row so a concurrent approve cannot interleave.
func (r *storeRepository) DeleteWithOwner(ctx context.Context, id, merchantID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Store{}).
			Where("store_id = ? AND merchant_id = ? AND approval_status = ?",
				id, merchantID, string(domain.ApprovalPending)).
			Update("approval_status", string(domain.ApprovalRejected))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}

		if err := tx.Where("store_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.Store{}).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", merchantID).Delete(&models.User{}).Error
	})
}

// PlatformStats computes all admin counters in a single statement
func (r *storeRepository) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = ?) AS total_customers,
			(SELECT COUNT(*) FROM users WHERE role = ?) AS total_merchants,
			(SELECT COUNT(*) FROM stores) AS total_stores,
			(SELECT COUNT(*) FROM stores WHERE approval_status = ?) AS pending_stores,
			(SELECT COUNT(*) FROM stores WHERE approval_status = ?) AS approved_stores,
			(SELECT COUNT(*) FROM stores WHERE approval_status = ?) AS rejected_stores`,
		string(domain.RoleCustomer),
		string(domain.RoleMerchant),
		string(domain.ApprovalPending),
		string(domain.ApprovalApproved),
		string(domain.ApprovalRejected),
	).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// StoreStats computes the merchant dashboard counters
func (r *storeRepository) StoreStats(ctx context.Context, id uint) (*models.StoreStats, error) {
	var stats models.StoreStats
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM products WHERE store_id = s.store_id) AS total_products,
			(SELECT COUNT(*) FROM products WHERE store_id = s.store_id AND is_active = ?) AS active_products,
			COALESCE(s.average_rating, 0) AS average_rating,
			COALESCE(s.total_ratings, 0) AS total_ratings
		FROM stores s
		WHERE s.store_id = ?`, true, id).Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReferencedURLs collects every upload URL held by stores and products
func (r *storeRepository) ReferencedURLs(ctx context.Context) (map[string]struct{}, error) {
	refs := make(map[string]struct{})

	var stores []models.Store
	if err := r.db.WithContext(ctx).
		Select("logo_url", "banner_url", "qris_image_url", "id_card_image_url").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	for _, s := range stores {
		for _, u := range []*string{s.LogoURL, s.BannerURL, s.QrisImageURL, s.IDCardImageURL} {
			if u != nil && *u != "" {
				refs[*u] = struct{}{}
			}
		}
	}

	var images []string
	if err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("image_url IS NOT NULL").
		Pluck("image_url", &images).Error; err != nil {
		return nil, err
	}
	for _, u := range images {
		if u != "" {
			refs[u] = struct{}{}
		}
	}
	return refs, nil
}
