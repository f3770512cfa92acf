package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/adapters/storage"
	"replate-api/internal/core/domain"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/metrics"
	"replate-api/internal/pkg/validation"

	"gorm.io/gorm"
)

// Onboarding errors
var (
	ErrNotMerchant   = errors.New("account is not a merchant")
	ErrStoreExists   = errors.New("merchant already has a store")
	ErrStoreNotFound = errors.New("store not found")
	ErrStoreReviewed = errors.New("store has already been reviewed")
)

// OnboardingService drives merchant steps 2 and 3 and the merchant store views
type OnboardingService struct {
	userRepo  repositories.UserRepository
	storeRepo repositories.StoreRepository
	files     storage.FileStore
	auth      *AuthService
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(
	userRepo repositories.UserRepository,
	storeRepo repositories.StoreRepository,
	files storage.FileStore,
	auth *AuthService,
	m *metrics.Metrics,
) *OnboardingService {
	return &OnboardingService{
		userRepo:  userRepo,
		storeRepo: storeRepo,
		files:     files,
		auth:      auth,
		metrics:   m,
		now:       time.Now,
	}
}

// StoreInfoInput is onboarding step 2
type StoreInfoInput struct {
	StoreName      string
	Description    string
	Address        string
	City           string
	Latitude       *float64
	Longitude      *float64
	Phone          string
	OperatingHours string
}

func (in *StoreInfoInput) normalize() {
	in.StoreName = strings.TrimSpace(in.StoreName)
	in.Description = strings.TrimSpace(in.Description)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.Phone = strings.TrimSpace(in.Phone)
	in.OperatingHours = strings.TrimSpace(in.OperatingHours)
}

func (in *StoreInfoInput) validate() error {
	if in.StoreName == "" || in.Address == "" || in.City == "" ||
		in.Latitude == nil || in.Longitude == nil ||
		in.Phone == "" || in.OperatingHours == "" {
		return domain.NewValidationError("Store name, address, city, latitude, longitude, phone and operating hours are required")
	}
	if *in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180 {
		return domain.NewValidationError("Invalid coordinates")
	}
	if !validation.IsValidPhone(in.Phone) {
		return domain.NewValidationError("Invalid phone number format")
	}
	return nil
}

// VerificationInput is onboarding step 3. Either image may be nil.
type VerificationInput struct {
	BankAccountNumber string
	QrisImage         *Upload
	IDCardImage       *Upload
}

// VerificationResult reports the updated store and whether the merchant
// still has to confirm their email.
type VerificationResult struct {
	Store             *models.Store `json:"store"`
	NeedsVerification bool          `json:"needsVerification"`
	EmailSent         bool          `json:"emailSent"`
}

// SubmitStoreInfo creates the merchant's pending store
func (s *OnboardingService) SubmitStoreInfo(ctx context.Context, merchantID uint, input *StoreInfoInput) (*models.Store, error) {
	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.requireMerchant(ctx, merchantID); err != nil {
		return nil, err
	}

	current, err := s.storeRepo.GetByMerchantID(ctx, merchantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if !domain.CanTransition(domain.StageFor(snapshotOf(current)), domain.EventSubmitStoreInfo) {
		return nil, ErrStoreExists
	}

	store := &models.Store{
		MerchantID:     merchantID,
		StoreName:      input.StoreName,
		Description:    input.Description,
		Address:        input.Address,
		City:           input.City,
		Latitude:       *input.Latitude,
		Longitude:      *input.Longitude,
		Phone:          input.Phone,
		OperatingHours: input.OperatingHours,
		IsActive:       false,
		ApprovalStatus: string(domain.ApprovalPending),
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrStoreExists
		}
		return nil, err
	}

	s.metrics.StoreTransition(string(domain.EventSubmitStoreInfo))
	logger.Info("store info submitted", "merchant_id", merchantID, "store_id", store.ID)
	return store, nil
}

// SubmitVerification attaches bank details and documents to the store.
// Files saved during a failed submission are removed again.
func (s *OnboardingService) SubmitVerification(ctx context.Context, merchantID uint, input *VerificationInput) (*VerificationResult, error) {
	bank := strings.TrimSpace(input.BankAccountNumber)
	if bank == "" {
		return nil, domain.NewValidationError("Bank account number is required")
	}
	for _, up := range []*Upload{input.QrisImage, input.IDCardImage} {
		if up == nil {
			continue
		}
		if err := up.Validate(); err != nil {
			return nil, err
		}
	}

	user, err := s.requireMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	store, err := s.storeRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !domain.CanTransition(domain.StageFor(snapshotOf(store)), domain.EventSubmitVerification) {
		return nil, ErrStoreReviewed
	}

	batch := &uploadBatch{files: s.files}
	update := repositories.VerificationUpdate{BankAccountNumber: bank}
	var replaced []string
	now := s.now()

	if input.QrisImage != nil {
		url, err := batch.save(ctx, input.QrisImage, now)
		if err != nil {
			batch.rollback(ctx)
			return nil, err
		}
		update.QrisImageURL = &url
		if store.QrisImageURL != nil {
			replaced = append(replaced, *store.QrisImageURL)
		}
	}
	if input.IDCardImage != nil {
		url, err := batch.save(ctx, input.IDCardImage, now)
		if err != nil {
			batch.rollback(ctx)
			return nil, err
		}
		update.IDCardImageURL = &url
		if store.IDCardImageURL != nil {
			replaced = append(replaced, *store.IDCardImageURL)
		}
	}

	if err := s.storeRepo.UpdateVerification(ctx, store.ID, update); err != nil {
		batch.rollback(ctx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	for _, url := range replaced {
		deleteQuietly(ctx, s.files, url)
	}

	updated, err := s.storeRepo.GetByID(ctx, store.ID)
	if err != nil {
		return nil, err
	}

	result := &VerificationResult{Store: updated, NeedsVerification: !user.IsVerified}
	if result.NeedsVerification {
		result.EmailSent = s.auth.SendVerificationEmail(ctx, user) == nil
	}

	s.metrics.StoreTransition(string(domain.EventSubmitVerification))
	logger.Info("verification submitted",
		"merchant_id", merchantID,
		"store_id", store.ID,
		"qris", update.QrisImageURL != nil,
		"id_card", update.IDCardImageURL != nil,
	)
	return result, nil
}

// GetMerchantStore returns the merchant's store
func (s *OnboardingService) GetMerchantStore(ctx context.Context, merchantID uint) (*models.Store, error) {
	store, err := s.storeRepo.GetByMerchantID(ctx, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

// GetMerchantStoreStats returns the merchant dashboard counters
func (s *OnboardingService) GetMerchantStoreStats(ctx context.Context, merchantID uint) (*models.StoreStats, error) {
	store, err := s.GetMerchantStore(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	return s.storeRepo.StoreStats(ctx, store.ID)
}

func (s *OnboardingService) requireMerchant(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if user.Role != string(domain.RoleMerchant) {
		return nil, ErrNotMerchant
	}
	return user, nil
}

func deleteQuietly(ctx context.Context, files storage.FileStore, url string) {
	if err := files.Delete(ctx, url); err != nil {
		logger.Warn("upload cleanup failed", "url", url, "error", err)
	}
}
