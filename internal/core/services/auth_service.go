package services

import (
	"context"
	"errors"
	"strings"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/adapters/persistence/repositories"
	"replate-api/internal/config"
	"replate-api/internal/core/domain"
	"replate-api/internal/pkg/jwt"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/metrics"
	"replate-api/internal/pkg/password"
	"replate-api/internal/pkg/validation"

	"gorm.io/gorm"
)

// Auth errors
var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrAlreadyVerified     = errors.New("email already verified")
	ErrTokenExpired        = errors.New("token expired")
	ErrInvalidToken        = errors.New("invalid token")
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
	ErrGoogleDisabled      = errors.New("google sign-in is not configured")
	ErrGoogleTokenInvalid  = errors.New("google credential rejected")
)

// AuthService owns the account lifecycle
type AuthService struct {
	userRepo  repositories.UserRepository
	storeRepo repositories.StoreRepository
	notifier  *NotificationService
	google    GoogleVerifier
	cfg       *config.Config
	policy    validation.PasswordPolicy
	metrics   *metrics.Metrics
}

// NewAuthService creates a new auth service. A nil google verifier disables
// Google sign-in.
func NewAuthService(
	userRepo repositories.UserRepository,
	storeRepo repositories.StoreRepository,
	notifier *NotificationService,
	google GoogleVerifier,
	cfg *config.Config,
	m *metrics.Metrics,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		storeRepo: storeRepo,
		notifier:  notifier,
		google:    google,
		cfg:       cfg,
		policy: validation.PasswordPolicy{
			MinLength:    cfg.Password.MinLength,
			RequireMixed: cfg.Password.RequireMixed,
		},
		metrics: m,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Role            domain.Role
}

// AuthResult is returned by register and login
type AuthResult struct {
	User      *models.UserResponse `json:"user"`
	Token     string               `json:"token"`
	EmailSent bool                 `json:"emailSent"`
}

// GoogleResult is returned by Google sign-in
type GoogleResult struct {
	User      *models.UserResponse `json:"user"`
	Token     string               `json:"token"`
	IsNewUser bool                 `json:"isNewUser"`
}

// ProfileResult is the signed-in account, plus store state for merchants
type ProfileResult struct {
	User            *models.UserResponse   `json:"user"`
	Store           *models.Store          `json:"store,omitempty"`
	OnboardingStage domain.OnboardingStage `json:"onboardingStage,omitempty"`
}

// Register creates a customer or merchant account and mails a verification link
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	if input.Role != domain.RoleCustomer && input.Role != domain.RoleMerchant {
		return nil, domain.NewValidationError("Invalid role")
	}

	email := validation.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if err := s.validateRegistration(name, email, phone, input.Password, input.ConfirmPassword); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.metrics.AuthEvent("register", "conflict")
		return nil, ErrEmailTaken
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		Name:     name,
		Phone:    phone,
		Role:     string(input.Role),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.metrics.AuthEvent("register", "conflict")
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return nil, err
	}

	emailSent := s.SendVerificationEmail(ctx, user) == nil

	s.metrics.AuthEvent("register", "success")
	logger.Info("user registered", "user_id", user.ID, "role", user.Role, "email_sent", emailSent)

	return &AuthResult{
		User:      user.ToResponse(),
		Token:     token,
		EmailSent: emailSent,
	}, nil
}

func (s *AuthService) validateRegistration(name, email, phone, pw, confirm string) error {
	if name == "" || email == "" || pw == "" || confirm == "" {
		return domain.NewValidationError("Name, email, password and password confirmation are required")
	}
	if !validation.IsValidEmail(email) {
		return domain.NewValidationError("Invalid email format")
	}
	if !validation.IsValidPhone(phone) {
		return domain.NewValidationError("Invalid phone number format")
	}
	if err := s.policy.Check(pw); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if !validation.PasswordsMatch(pw, confirm) {
		return domain.NewValidationError("Passwords do not match")
	}
	return nil
}

// Login authenticates by email and password
func (s *AuthService) Login(ctx context.Context, email, pw string) (*AuthResult, error) {
	email = validation.NormalizeEmail(email)
	if email == "" || pw == "" {
		return nil, domain.NewValidationError("Email and password are required")
	}

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			s.metrics.AuthEvent("login", "not_found")
		}
		return nil, err
	}

	if !password.Verify(pw, user.Password) {
		s.metrics.AuthEvent("login", "bad_password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		s.metrics.AuthEvent("login", "unverified")
		return nil, ErrEmailNotVerified
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthEvent("login", "success")
	logger.Info("user logged in", "user_id", user.ID, "role", user.Role)

	return &AuthResult{User: user.ToResponse(), Token: token}, nil
}

// VerifyEmail redeems an email verification token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*models.UserResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.NewValidationError("Verification token is required")
	}

	claims, err := s.redeem(token, jwt.PurposeEmailVerification)
	if err != nil {
		return nil, err
	}

	user, err := s.getByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if claims.Version != user.EmailTokenVersion {
		return nil, ErrInvalidToken
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID, claims.Version); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	user.IsVerified = true

	s.metrics.AuthEvent("verify_email", "success")
	logger.Info("email verified", "user_id", user.ID)

	return user.ToResponse(), nil
}

// ResendVerification issues a fresh verification token, superseding older ones
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("Email is required")
	}

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	if err := s.SendVerificationEmail(ctx, user); err != nil {
		return errors.Join(ErrEmailDeliveryFailed, err)
	}
	return nil
}

// SendVerificationEmail bumps the verification counter, signs a token carrying
// the new value and mails it.
func (s *AuthService) SendVerificationEmail(ctx context.Context, user *models.User) error {
	version, err := s.userRepo.BumpEmailTokenVersion(ctx, user.ID)
	if err != nil {
		logger.Error("bump verification version failed", "user_id", user.ID, "error", err)
		return err
	}
	user.EmailTokenVersion = version

	token, err := jwt.Generate(subjectOf(user, version), jwt.PurposeEmailVerification, s.cfg.JWT.Secret, s.cfg.VerifyTTL())
	if err != nil {
		return err
	}
	return s.notifier.SendVerification(ctx, user.Email, user.Name, token, domain.Role(user.Role), s.cfg.VerifyTTL())
}

// ForgotPassword mails a single-use reset link
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return domain.NewValidationError("Email is required")
	}

	user, err := s.getByEmail(ctx, email)
	if err != nil {
		return err
	}

	version, err := s.userRepo.BumpResetTokenVersion(ctx, user.ID)
	if err != nil {
		return err
	}

	token, err := jwt.Generate(subjectOf(user, version), jwt.PurposePasswordReset, s.cfg.JWT.Secret, s.cfg.ResetTTL())
	if err != nil {
		return err
	}

	if err := s.notifier.SendPasswordReset(ctx, user.Email, user.Name, token, s.cfg.ResetTTL()); err != nil {
		return errors.Join(ErrEmailDeliveryFailed, err)
	}

	s.metrics.AuthEvent("forgot_password", "success")
	return nil
}

// ResetPassword redeems a reset token and replaces the password hash
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirm string) error {
	if strings.TrimSpace(token) == "" || newPassword == "" || confirm == "" {
		return domain.NewValidationError("Token, new password and confirmation are required")
	}
	if err := s.policy.Check(newPassword); err != nil {
		return domain.NewValidationError(err.Error())
	}
	if !validation.PasswordsMatch(newPassword, confirm) {
		return domain.NewValidationError("Passwords do not match")
	}

	claims, err := s.redeem(token, jwt.PurposePasswordReset)
	if err != nil {
		return err
	}

	user, err := s.getByID(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if claims.Version != user.ResetTokenVersion {
		return ErrInvalidToken
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.ResetPassword(ctx, user.ID, hash, claims.Version); err != nil {
		if errors.Is(err, repositories.ErrStale) {
			return ErrInvalidToken
		}
		return err
	}

	s.metrics.AuthEvent("reset_password", "success")
	logger.Info("password reset", "user_id", user.ID)
	return nil
}

// GoogleSignIn verifies a Google ID token and signs the account in,
// creating a customer when mode is register.
func (s *AuthService) GoogleSignIn(ctx context.Context, credential string, mode domain.GoogleMode) (*GoogleResult, error) {
	if s.google == nil {
		return nil, ErrGoogleDisabled
	}
	if strings.TrimSpace(credential) == "" {
		return nil, domain.NewValidationError("Google credential is required")
	}
	if mode == "" {
		mode = domain.GoogleModeSignIn
	}
	if mode != domain.GoogleModeSignIn && mode != domain.GoogleModeRegister {
		return nil, domain.NewValidationError("Invalid mode")
	}

	identity, err := s.google.Verify(ctx, credential)
	if err != nil {
		s.metrics.AuthEvent("google", "rejected")
		logger.Warn("google credential rejected", "error", err)
		return nil, ErrGoogleTokenInvalid
	}
	email := validation.NormalizeEmail(identity.Email)

	user, err := s.userRepo.GetByGoogleID(ctx, identity.Subject)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if user == nil {
		user, err = s.userRepo.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	isNew := false
	switch {
	case user == nil && mode == domain.GoogleModeSignIn:
		s.metrics.AuthEvent("google", "not_found")
		return nil, ErrAccountNotFound
	case user == nil:
		user, err = s.createGoogleUser(ctx, identity, email)
		if err != nil {
			return nil, err
		}
		isNew = true
	case user.GoogleID != nil && *user.GoogleID != identity.Subject:
		return nil, ErrEmailTaken
	case user.GoogleID == nil || !user.IsVerified:
		if err := s.userRepo.LinkGoogle(ctx, user.ID, identity.Subject); err != nil {
			return nil, err
		}
		subject := identity.Subject
		user.GoogleID = &subject
		user.IsVerified = true
	}

	token, err := s.sessionToken(user)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthEvent("google", "success")
	logger.Info("google sign-in", "user_id", user.ID, "new_user", isNew)

	return &GoogleResult{User: user.ToResponse(), Token: token, IsNewUser: isNew}, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, identity *GoogleIdentity, email string) (*models.User, error) {
	hash, err := password.Unusable()
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	subject := identity.Subject

	user := &models.User{
		Email:      email,
		Password:   hash,
		Name:       name,
		Role:       string(domain.RoleCustomer),
		IsVerified: true,
		GoogleID:   &subject,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the account and, for merchants, its store and stage
func (s *AuthService) Profile(ctx context.Context, userID uint) (*ProfileResult, error) {
	user, err := s.getByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ProfileResult{User: user.ToResponse()}
	if user.Role != string(domain.RoleMerchant) {
		return result, nil
	}

	store, err := s.storeRepo.GetByMerchantID(ctx, user.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if store != nil {
		result.Store = store
	}
	result.OnboardingStage = domain.StageFor(snapshotOf(store))
	return result, nil
}

// redeem validates a single-purpose token and maps failures to service errors
func (s *AuthService) redeem(token string, purpose jwt.Purpose) (*jwt.Claims, error) {
	claims, err := jwt.Validate(token, s.cfg.JWT.Secret, purpose)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) sessionToken(user *models.User) (string, error) {
	return jwt.Generate(subjectOf(user, 0), jwt.PurposeSession, s.cfg.JWT.Secret, s.cfg.SessionTTL())
}

func (s *AuthService) getByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) getByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return user, nil
}

func subjectOf(user *models.User, version int) jwt.Subject {
	return jwt.Subject{UserID: user.ID, Email: user.Email, Role: user.Role, Version: version}
}

func snapshotOf(store *models.Store) *domain.StoreSnapshot {
	if store == nil {
		return nil
	}
	snap := &domain.StoreSnapshot{ApprovalStatus: domain.ApprovalStatus(store.ApprovalStatus)}
	if store.BankAccountNumber != nil {
		snap.BankAccountNumber = *store.BankAccountNumber
	}
	return snap
}
