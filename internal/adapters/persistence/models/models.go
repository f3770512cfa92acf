package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts
// ============================================================

// User represents users table
type User struct {
	ID                uint      `gorm:"column:user_id;primaryKey" json:"user_id"`
	Email             string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password          string    `gorm:"size:255;not null" json:"-"`
	Name              string    `gorm:"size:255;not null" json:"name"`
	Phone             string    `gorm:"size:20" json:"phone"`
	Role              string    `gorm:"size:20;not null;default:'customer';index" json:"role"`
	IsVerified        bool      `gorm:"default:false" json:"is_verified"`
	GoogleID          *string   `gorm:"uniqueIndex;size:255" json:"google_id,omitempty"`
	EmailTokenVersion int       `gorm:"not null;default:0" json:"-"`
	ResetTokenVersion int       `gorm:"not null;default:0" json:"-"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID         uint      `json:"user_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	HasGoogle  bool      `json:"has_google"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToResponse strips credentials and token counters
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		HasGoogle:  u.GoogleID != nil,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ============================================================
// Stores
// ============================================================

// Store represents stores table
type Store struct {
	ID                uint       `gorm:"column:store_id;primaryKey" json:"store_id"`
	MerchantID        uint       `gorm:"uniqueIndex;not null" json:"merchant_id"`
	StoreName         string     `gorm:"size:255;not null" json:"store_name"`
	Description       string     `gorm:"type:text" json:"description"`
	Address           string     `gorm:"type:text;not null" json:"address"`
	City              string     `gorm:"size:100;not null" json:"city"`
	Latitude          float64    `gorm:"not null" json:"latitude"`
	Longitude         float64    `gorm:"not null" json:"longitude"`
	Phone             string     `gorm:"size:20;not null" json:"phone"`
	OperatingHours    string     `gorm:"size:255;not null" json:"operating_hours"`
	LogoURL           *string    `gorm:"size:500" json:"logo_url"`
	BannerURL         *string    `gorm:"size:500" json:"banner_url"`
	BankAccountNumber *string    `gorm:"size:50" json:"bank_account_number"`
	QrisImageURL      *string    `gorm:"size:500" json:"qris_image_url"`
	IDCardImageURL    *string    `gorm:"size:500" json:"id_card_image_url"`
	IsActive          bool       `gorm:"default:false" json:"is_active"`
	ApprovalStatus    string     `gorm:"size:20;not null;default:'pending';index" json:"approval_status"`
	AdminNotes        *string    `gorm:"type:text" json:"admin_notes"`
	ApprovedAt        *time.Time `json:"approved_at"`
	ApprovedBy        *uint      `json:"approved_by"`
	AverageRating     float64    `gorm:"default:0" json:"average_rating"`
	TotalRatings      int        `gorm:"default:0" json:"total_ratings"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Merchant *User `gorm:"foreignKey:MerchantID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreWithMerchant is a store joined with its owning account
type StoreWithMerchant struct {
	Store
	MerchantName     string `json:"merchant_name"`
	MerchantEmail    string `json:"merchant_email"`
	MerchantPhone    string `json:"merchant_phone"`
	MerchantVerified bool   `json:"merchant_verified"`
}

// PlatformStats are the admin dashboard counters
type PlatformStats struct {
	TotalCustomers int64 `json:"total_customers"`
	TotalMerchants int64 `json:"total_merchants"`
	TotalStores    int64 `json:"total_stores"`
	PendingStores  int64 `json:"pending_stores"`
	ApprovedStores int64 `json:"approved_stores"`
	RejectedStores int64 `json:"rejected_stores"`
}

// StoreStats are the merchant dashboard counters
type StoreStats struct {
	TotalProducts  int64   `json:"total_products"`
	ActiveProducts int64   `json:"active_products"`
	AverageRating  float64 `json:"average_rating"`
	TotalRatings   int     `json:"total_ratings"`
}

// ============================================================
// Products
// ============================================================

// Product represents products table
type Product struct {
	ID                 uint       `gorm:"column:product_id;primaryKey" json:"product_id"`
	StoreID            uint       `gorm:"index;not null" json:"store_id"`
	Name               string     `gorm:"size:255;not null" json:"name"`
	Description        string     `gorm:"type:text" json:"description"`
	Category           string     `gorm:"size:100" json:"category"`
	OriginalPrice      float64    `gorm:"not null" json:"original_price"`
	DiscountedPrice    float64    `gorm:"not null" json:"discounted_price"`
	DiscountPercentage int        `gorm:"not null;default:0" json:"discount_percentage"`
	Stock              int        `gorm:"not null;default:0" json:"stock"`
	ImageURL           *string    `gorm:"size:500" json:"image_url"`
	AvailableFrom      *time.Time `json:"available_from"`
	AvailableUntil     *time.Time `json:"available_until"`
	IsActive           bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedAt          time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Store *Store `gorm:"foreignKey:StoreID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// DiscountPercent is round((original-discounted)/original*100); zero when
// the original price is zero.
func DiscountPercent(original, discounted float64) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round((original - discounted) / original * 100))
}

// BeforeSave keeps the derived discount in sync with the prices
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.DiscountPercentage = DiscountPercent(p.OriginalPrice, p.DiscountedPrice)
	return nil
}

// AutoMigrate creates or updates every table, parents first
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Store{},
		&Product{},
	)
}
