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

	"gorm.io/gorm"
)

// Admin review errors
var (
	ErrAlreadyApproved = errors.New("store is already approved")
)

// MinRejectionReasonLength is the shortest accepted rejection note
const MinRejectionReasonLength = 10

// AdminService reviews merchant store applications
type AdminService struct {
	storeRepo repositories.StoreRepository
	notifier  *NotificationService
	files     storage.FileStore
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(
	storeRepo repositories.StoreRepository,
	notifier *NotificationService,
	files storage.FileStore,
	m *metrics.Metrics,
) *AdminService {
	return &AdminService{
		storeRepo: storeRepo,
		notifier:  notifier,
		files:     files,
		metrics:   m,
		now:       time.Now,
	}
}

// StoreList is a store listing with its size
type StoreList struct {
	Stores []models.StoreWithMerchant `json:"stores"`
	Count  int                        `json:"count"`
}

// ApproveResult is returned by Approve
type ApproveResult struct {
	Store     *models.StoreWithMerchant `json:"store"`
	EmailSent bool                      `json:"emailSent"`
}

// RejectResult describes the store that was removed
type RejectResult struct {
	DeletedStoreID  uint   `json:"deletedStoreId"`
	StoreName       string `json:"storeName"`
	MerchantEmail   string `json:"merchantEmail"`
	RejectionReason string `json:"rejectionReason"`
	EmailSent       bool   `json:"emailSent"`
}

// ListPending returns stores awaiting review, oldest first
func (s *AdminService) ListPending(ctx context.Context) (*StoreList, error) {
	status := domain.ApprovalPending
	return s.list(ctx, repositories.StoreFilter{Status: &status, OldestFirst: true})
}

// ListAll returns every store, newest first, optionally filtered by status
func (s *AdminService) ListAll(ctx context.Context, status string) (*StoreList, error) {
	filter := repositories.StoreFilter{}
	if status = strings.TrimSpace(status); status != "" {
		parsed, ok := domain.ParseApprovalStatus(status)
		if !ok {
			return nil, domain.NewValidationError("Invalid status filter. Use pending, approved or rejected")
		}
		filter.Status = &parsed
	}
	return s.list(ctx, filter)
}

func (s *AdminService) list(ctx context.Context, filter repositories.StoreFilter) (*StoreList, error) {
	stores, err := s.storeRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []models.StoreWithMerchant{}
	}
	return &StoreList{Stores: stores, Count: len(stores)}, nil
}

// Approve activates a pending store. Only one concurrent approval can win.
func (s *AdminService) Approve(ctx context.Context, storeID, adminID uint) (*ApproveResult, error) {
	if err := s.storeRepo.ApproveIfPending(ctx, storeID, adminID, s.now()); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return nil, s.explainStale(ctx, storeID)
		}
		return nil, err
	}

	store, err := s.storeRepo.GetWithMerchant(ctx, storeID)
	if err != nil {
		return nil, err
	}

	emailSent := s.notifier.SendStoreApproved(ctx, store.MerchantEmail, store.MerchantName, store.StoreName) == nil

	s.metrics.StoreTransition(string(domain.EventApprove))
	logger.Info("store approved", "store_id", storeID, "admin_id", adminID, "email_sent", emailSent)

	return &ApproveResult{Store: store, EmailSent: emailSent}, nil
}

// Reject notifies the merchant, then deletes the pending store together with
// its owner account in one transaction.
func (s *AdminService) Reject(ctx context.Context, storeID, adminID uint, reason string) (*RejectResult, error) {
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) < MinRejectionReasonLength {
		return nil, domain.NewValidationError("Please provide a detailed reason for rejection (minimum 10 characters)")
	}

	store, err := s.storeRepo.GetWithMerchant(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if store.ApprovalStatus != string(domain.ApprovalPending) {
		return nil, ErrAlreadyApproved
	}

	// the merchant must hear about it while the address still exists
	emailSent := s.notifier.SendStoreRejected(ctx, store.MerchantEmail, store.MerchantName, store.StoreName, reason) == nil

	if err := s.storeRepo.DeleteWithOwner(ctx, store.ID, store.MerchantID); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			logger.Warn("store changed during rejection", "store_id", storeID, "email_sent", emailSent)
			return nil, s.explainStale(ctx, storeID)
		}
		return nil, err
	}

	for _, url := range []*string{store.LogoURL, store.BannerURL, store.QrisImageURL, store.IDCardImageURL} {
		if url != nil && *url != "" {
			deleteQuietly(ctx, s.files, *url)
		}
	}

	s.metrics.StoreTransition(string(domain.EventReject))
	logger.Info("store rejected and deleted",
		"store_id", storeID,
		"merchant_id", store.MerchantID,
		"admin_id", adminID,
		"email_sent", emailSent,
	)

	return &RejectResult{
		DeletedStoreID:  store.ID,
		StoreName:       store.StoreName,
		MerchantEmail:   store.MerchantEmail,
		RejectionReason: reason,
		EmailSent:       emailSent,
	}, nil
}

// Stats returns the platform counters
func (s *AdminService) Stats(ctx context.Context) (*models.PlatformStats, error) {
	return s.storeRepo.PlatformStats(ctx)
}

// explainStale re-reads a store whose conditional write matched nothing
func (s *AdminService) explainStale(ctx context.Context, storeID uint) error {
	if _, err := s.storeRepo.GetByID(ctx, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}
	return ErrAlreadyApproved
}
