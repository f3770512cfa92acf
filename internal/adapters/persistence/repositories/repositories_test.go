package repositories

import (
	"context"
	"testing"
	"time"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/core/domain"
	"replate-api/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string { return &s }

func seedMerchant(t *testing.T, db *gorm.DB, email string) (*models.User, *models.Store) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: email, Password: "x", Name: "Baker", Role: string(domain.RoleMerchant)}
	require.NoError(t, NewUserRepository(db).Create(ctx, user))

	store := &models.Store{
		MerchantID:     user.ID,
		StoreName:      "Roti " + email,
		Address:        "Jl. Merdeka 1",
		City:           "Bandung",
		Latitude:       -6.9,
		Longitude:      107.6,
		Phone:          "081234567890",
		OperatingHours: "08:00-20:00",
		ApprovalStatus: string(domain.ApprovalPending),
	}
	require.NoError(t, NewStoreRepository(db).Create(ctx, store))
	return user, store
}

func TestUserRepository_TokenVersions(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", Password: "old", Name: "A", Role: "customer"}
	require.NoError(t, repo.Create(ctx, user))

	v1, err := repo.BumpEmailTokenVersion(ctx, user.ID)
	require.NoError(t, err)
	v2, err := repo.BumpEmailTokenVersion(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, v1+1, v2)

	// superseded version cannot verify
	assert.ErrorIs(t, repo.MarkVerified(ctx, user.ID, v1), ErrStale)
	require.NoError(t, repo.MarkVerified(ctx, user.ID, v2))
	assert.ErrorIs(t, repo.MarkVerified(ctx, user.ID, v2), ErrStale)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	_, err = repo.BumpResetTokenVersion(ctx, 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ResetPasswordIsSingleUse(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "a@x.com", Password: "old", Name: "A", Role: "customer"}
	require.NoError(t, repo.Create(ctx, user))

	v, err := repo.BumpResetTokenVersion(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, repo.ResetPassword(ctx, user.ID, "new", v))
	assert.ErrorIs(t, repo.ResetPassword(ctx, user.ID, "newer", v), ErrStale)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Password)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Email: "a@x.com", Password: "x", Name: "A", Role: "customer"}))
	err := repo.Create(ctx, &models.User{Email: "a@x.com", Password: "y", Name: "B", Role: "customer"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	exists, err := repo.ExistsByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_LinkGoogle(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Email: "g@x.com", Password: "x", Name: "G", Role: "customer"}
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.LinkGoogle(ctx, user.ID, "google-sub-1"))

	got, err := repo.GetByGoogleID(ctx, "google-sub-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.IsVerified)
}

func TestStoreRepository_OneStorePerMerchant(t *testing.T) {
	db := testutil.NewDB(t)
	user, _ := seedMerchant(t, db, "m@x.com")

	err := NewStoreRepository(db).Create(context.Background(), &models.Store{
		MerchantID: user.ID, StoreName: "Second", Address: "a", City: "c",
		Phone: "0812345678", OperatingHours: "x", ApprovalStatus: "pending",
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestStoreRepository_ApproveIfPending(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()
	_, store := seedMerchant(t, db, "m@x.com")

	require.NoError(t, repo.ApproveIfPending(ctx, store.ID, 7, time.Now()))
	assert.ErrorIs(t, repo.ApproveIfPending(ctx, store.ID, 8, time.Now()), ErrStale)
	assert.ErrorIs(t, repo.ApproveIfPending(ctx, 9999, 8, time.Now()), ErrStale)

	got, err := repo.GetByID(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", got.ApprovalStatus)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.ApprovedBy)
	assert.Equal(t, uint(7), *got.ApprovedBy)
	assert.NotNil(t, got.ApprovedAt)
	assert.Nil(t, got.AdminNotes)
}

func TestStoreRepository_DeleteWithOwner(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()
	user, store := seedMerchant(t, db, "m@x.com")

	require.NoError(t, NewProductRepository(db).Create(ctx, &models.Product{
		StoreID: store.ID, Name: "Croissant", OriginalPrice: 20000, DiscountedPrice: 10000, Stock: 3,
	}))

	require.NoError(t, repo.DeleteWithOwner(ctx, store.ID, user.ID))

	_, err := repo.GetByID(ctx, store.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = NewUserRepository(db).GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Count(&products).Error)
	assert.Zero(t, products)

	assert.ErrorIs(t, repo.DeleteWithOwner(ctx, store.ID, user.ID), ErrStale)
}

func TestStoreRepository_DeleteWithOwnerSkipsApproved(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()
	user, store := seedMerchant(t, db, "m@x.com")
	require.NoError(t, repo.ApproveIfPending(ctx, store.ID, 1, time.Now()))

	assert.ErrorIs(t, repo.DeleteWithOwner(ctx, store.ID, user.ID), ErrStale)

	_, err := NewUserRepository(db).GetByID(ctx, user.ID)
	assert.NoError(t, err, "owner must survive a refused delete")
}

func TestStoreRepository_ListAndStats(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()

	_, first := seedMerchant(t, db, "one@x.com")
	_, second := seedMerchant(t, db, "two@x.com")
	require.NoError(t, repo.ApproveIfPending(ctx, second.ID, 1, time.Now()))
	require.NoError(t, NewUserRepository(db).Create(ctx, &models.User{Email: "c@x.com", Password: "x", Name: "C", Role: "customer"}))

	pending := domain.ApprovalPending
	rows, err := repo.List(ctx, StoreFilter{Status: &pending, OldestFirst: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first.ID, rows[0].ID)
	assert.Equal(t, "one@x.com", rows[0].MerchantEmail)
	assert.Equal(t, "Baker", rows[0].MerchantName)

	all, err := repo.List(ctx, StoreFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	stats, err := repo.PlatformStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PlatformStats{
		TotalCustomers: 1,
		TotalMerchants: 2,
		TotalStores:    2,
		PendingStores:  1,
		ApprovedStores: 1,
	}, *stats)
}

func TestStoreRepository_VerificationAndReferences(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStoreRepository(db)
	ctx := context.Background()
	_, store := seedMerchant(t, db, "m@x.com")

	require.NoError(t, repo.UpdateVerification(ctx, store.ID, VerificationUpdate{
		BankAccountNumber: "1234567890123",
		QrisImageURL:      strPtr("/uploads/qrisImage-1.png"),
	}))
	assert.ErrorIs(t, repo.UpdateVerification(ctx, 9999, VerificationUpdate{BankAccountNumber: "1"}), gorm.ErrRecordNotFound)

	got, err := repo.GetWithMerchant(ctx, store.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BankAccountNumber)
	assert.Equal(t, "1234567890123", *got.BankAccountNumber)
	assert.Nil(t, got.IDCardImageURL)

	require.NoError(t, NewProductRepository(db).Create(ctx, &models.Product{
		StoreID: store.ID, Name: "Bagel", OriginalPrice: 10, DiscountedPrice: 5, ImageURL: strPtr("/uploads/p.png"),
	}))

	refs, err := repo.ReferencedURLs(ctx)
	require.NoError(t, err)
	assert.Contains(t, refs, "/uploads/qrisImage-1.png")
	assert.Contains(t, refs, "/uploads/p.png")
	assert.Len(t, refs, 2)
}

func TestStoreRepository_StoreStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	_, store := seedMerchant(t, db, "m@x.com")
	products := NewProductRepository(db)

	require.NoError(t, products.Create(ctx, &models.Product{StoreID: store.ID, Name: "A", OriginalPrice: 10, DiscountedPrice: 5}))
	p := &models.Product{StoreID: store.ID, Name: "B", OriginalPrice: 10, DiscountedPrice: 5}
	require.NoError(t, products.Create(ctx, p))
	_, err := products.ToggleActive(ctx, p.ID, store.ID)
	require.NoError(t, err)

	stats, err := NewStoreRepository(db).StoreStats(ctx, store.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.ActiveProducts)
}

func TestProductRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	_, store := seedMerchant(t, db, "m@x.com")
	_, other := seedMerchant(t, db, "other@x.com")

	p := &models.Product{StoreID: store.ID, Name: "Donut", OriginalPrice: 15000, DiscountedPrice: 10000, Stock: 4}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, 33, p.DiscountPercentage)
	assert.True(t, p.IsActive)

	_, err := repo.GetForStore(ctx, p.ID, other.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	toggled, err := repo.ToggleActive(ctx, p.ID, store.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	p.DiscountedPrice = 7500
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.GetForStore(ctx, p.ID, store.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.DiscountPercentage)

	require.NoError(t, repo.CreateBatch(ctx, []*models.Product{
		{StoreID: store.ID, Name: "Bun", OriginalPrice: 5000, DiscountedPrice: 2500},
		{StoreID: store.ID, Name: "Tart", OriginalPrice: 8000, DiscountedPrice: 6000},
	}))

	list, total, err := repo.ListByStore(ctx, store.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, list, 2)

	deleted, err := repo.DeleteForStore(ctx, p.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	deleted, err = repo.DeleteForStore(ctx, p.ID, store.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
