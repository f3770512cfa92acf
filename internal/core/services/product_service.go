package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/core/domain"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Product errors
var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductService manages a merchant's catalogue. Every call is scoped to the
// store owned by the calling merchant.
type ProductService struct {
	storeRepo   repositories.StoreRepository
	productRepo repositories.ProductRepository
}

// NewProductService creates a new product service
func NewProductService(storeRepo repositories.StoreRepository, productRepo repositories.ProductRepository) *ProductService {
	return &ProductService{
		storeRepo:   storeRepo,
		productRepo: productRepo,
	}
}

// ProductInput carries product fields. Nil fields are left untouched on update.
type ProductInput struct {
	Name            *string
	Description     *string
	Category        *string
	OriginalPrice   *float64
	DiscountedPrice *float64
	Stock           *int
	ImageURL        *string
	AvailableFrom   *time.Time
	AvailableUntil  *time.Time
}

func (in *ProductInput) empty() bool {
	return in.Name == nil && in.Description == nil && in.Category == nil &&
		in.OriginalPrice == nil && in.DiscountedPrice == nil && in.Stock == nil &&
		in.ImageURL == nil && in.AvailableFrom == nil && in.AvailableUntil == nil
}

// apply copies the set fields onto p
func (in *ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		p.Category = strings.TrimSpace(*in.Category)
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = *in.OriginalPrice
	}
	if in.DiscountedPrice != nil {
		p.DiscountedPrice = *in.DiscountedPrice
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.ImageURL != nil {
		if url := strings.TrimSpace(*in.ImageURL); url != "" {
			p.ImageURL = &url
		} else {
			p.ImageURL = nil
		}
	}
	if in.AvailableFrom != nil {
		p.AvailableFrom = in.AvailableFrom
	}
	if in.AvailableUntil != nil {
		p.AvailableUntil = in.AvailableUntil
	}
}

// validateProduct checks a fully populated product
func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return domain.NewValidationError("Product name is required")
	case p.OriginalPrice < 0 || p.DiscountedPrice < 0:
		return domain.NewValidationError("Prices cannot be negative")
	case p.OriginalPrice == 0:
		return domain.NewValidationError("Original price is required")
	case p.DiscountedPrice > p.OriginalPrice:
		return domain.NewValidationError("Discounted price cannot be higher than original price")
	case p.Stock < 0:
		return domain.NewValidationError("Stock cannot be negative")
	case p.AvailableFrom != nil && p.AvailableUntil != nil && p.AvailableUntil.Before(*p.AvailableFrom):
		return domain.NewValidationError("Available until must be after available from")
	}
	return nil
}

// Create adds a product to the merchant's store
func (s *ProductService) Create(ctx context.Context, merchantID uint, input *ProductInput) (*models.Product, error) {
	if input.Name == nil || input.OriginalPrice == nil || input.DiscountedPrice == nil || input.Stock == nil {
		return nil, domain.NewValidationError("Name, original price, discounted price and stock are required")
	}

	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	product := &models.Product{StoreID: store.ID, IsActive: true}
	input.apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	logger.Info("product created", "store_id", store.ID, "product_id", product.ID)
	return product, nil
}

// List returns one page of the merchant's products, newest first
func (s *ProductService) List(ctx context.Context, merchantID uint, params *pagination.Params) (*pagination.Response, error) {
	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.ListByStore(ctx, store.ID, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*models.Product{}
	}
	return pagination.NewResponse(products, params, total), nil
}

// Get returns one of the merchant's products
func (s *ProductService) Get(ctx context.Context, merchantID, productID uint) (*models.Product, error) {
	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, productID, store.ID)
}

// Update applies a partial change and re-derives the discount
func (s *ProductService) Update(ctx context.Context, merchantID, productID uint, input *ProductInput) (*models.Product, error) {
	if input.empty() {
		return nil, domain.NewValidationError("No fields to update")
	}

	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	product, err := s.get(ctx, productID, store.ID)
	if err != nil {
		return nil, err
	}

	input.apply(product)
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes one of the merchant's products
func (s *ProductService) Delete(ctx context.Context, merchantID, productID uint) error {
	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return err
	}

	deleted, err := s.productRepo.DeleteForStore(ctx, productID, store.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrProductNotFound
	}

	logger.Info("product deleted", "store_id", store.ID, "product_id", productID)
	return nil
}

// ToggleActive flips the product's visibility
func (s *ProductService) ToggleActive(ctx context.Context, merchantID, productID uint) (*models.Product, error) {
	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.ToggleActive(ctx, productID, store.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) get(ctx context.Context, productID, storeID uint) (*models.Product, error) {
	product, err := s.productRepo.GetForStore(ctx, productID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) storeFor(ctx context.Context, merchantID uint) (*models.Store, error) {
	store, err := s.storeRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}
