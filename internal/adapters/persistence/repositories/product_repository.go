package repositories

import (
	"context"

	"replate-api/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// productRepository implements ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new product
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// CreateBatch inserts all products or none
func (r *productRepository) CreateBatch(ctx context.Context, products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(products, 100).Error
	})
}

// GetForStore gets a product owned by the given store
func (r *productRepository) GetForStore(ctx context.Context, id, storeID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND store_id = ?", id, storeID).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByStore lists a store's products, newest first
func (r *productRepository) ListByStore(ctx context.Context, storeID uint, offset, limit int) ([]*models.Product, int64, error) {
	var products []*models.Product
	var total int64

	base := r.db.WithContext(ctx).Model(&models.Product{}).Where("store_id = ?", storeID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").Order("product_id DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update saves all product fields
func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// DeleteForStore deletes a product if the store owns it
func (r *productRepository) DeleteForStore(ctx context.Context, id, storeID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND store_id = ?", id, storeID).
		Delete(&models.Product{})
	return res.RowsAffected > 0, res.Error
}

// ToggleActive flips is_active in place and returns the updated row
func (r *productRepository) ToggleActive(ctx context.Context, id, storeID uint) (*models.Product, error) {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("product_id = ? AND store_id = ?", id, storeID).
		UpdateColumn("is_active", gorm.Expr("NOT is_active"))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetForStore(ctx, id, storeID)
}
