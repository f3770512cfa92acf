package domain

// Role represents user role in the system
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleAdmin:
		return true
	}
	return false
}

// ApprovalStatus is the admin review state of a store
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	// ApprovalRejected is accepted as a list filter only. Rejected stores are
	// deleted, so no row carries it.
	ApprovalRejected ApprovalStatus = "rejected"
)

// ParseApprovalStatus validates a status filter coming from a query string
func ParseApprovalStatus(s string) (ApprovalStatus, bool) {
	switch ApprovalStatus(s) {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return ApprovalStatus(s), true
	}
	return "", false
}

// GoogleMode selects whether Google sign-in may create an account
type GoogleMode string

const (
	GoogleModeSignIn   GoogleMode = "signin"
	GoogleModeRegister GoogleMode = "register"
)
