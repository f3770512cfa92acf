package handlers

import (
	"errors"
	"strings"

	"replate-api/internal/core/domain"
	"replate-api/internal/core/services"
	"replate-api/internal/pkg/response"
	"replate-api/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles registration, login and account token endpoints
type AuthHandler struct {
	authService *services.AuthService
	validate    *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, validate *validation.Validator) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validate,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	Email           string `json:"email" validate:"required,replate_email,max=255"`
	Phone           string `json:"phone" validate:"id_phone"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// GoogleRequest carries a Google ID token from the browser sign-in button
type GoogleRequest struct {
	Credential string `json:"credential" validate:"required"`
	Mode       string `json:"mode" validate:"omitempty,oneof=signin register"`
}

// TokenRequest carries an emailed verification token
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// EmailRequest names the account an email should be sent to
type EmailRequest struct {
	Email string `json:"email" validate:"required,replate_email"`
}

// ResetPasswordRequest redeems a reset token with a new password
type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

// RegisterUser handles customer registration
// @Summary Register customer
// @Description Create a customer account and send a verification email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/register/user [post]
func (h *AuthHandler) RegisterUser(c *fiber.Ctx) error {
	return h.register(c, domain.RoleCustomer, "Registration successful. Please check your email to verify your account.")
}

// RegisterMerchant handles merchant registration, the first onboarding step
// @Summary Register merchant
// @Description Create a merchant account. The store is submitted in the following steps.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/register/store/merchant [post]
func (h *AuthHandler) RegisterMerchant(c *fiber.Ctx) error {
	return h.register(c, domain.RoleMerchant, "Merchant account created. Continue with your store information.")
}

func (h *AuthHandler) register(c *fiber.Ctx, role domain.Role, message string) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.Register(c.Context(), &services.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            role,
	})
	if err != nil {
		return respondError(c, err, "Failed to register user")
	}

	return response.Created(c, message, result)
}

// Login handles email and password login
// @Summary Login
// @Description Authenticate a verified account and return a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotVerified) {
			return response.ErrorWithData(c, fiber.StatusForbidden, "Please verify your email before logging in", fiber.Map{
				"needsVerification": true,
				"email":             validation.NormalizeEmail(req.Email),
			})
		}
		return respondError(c, err, "Failed to login")
	}

	return response.Success(c, "Login successful", result)
}

// GoogleSignIn handles sign-in and registration with a Google ID token
// @Summary Google sign-in
// @Description Verify a Google ID token, then sign in or create a customer account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body GoogleRequest true "Google credential"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/auth/google [post]
func (h *AuthHandler) GoogleSignIn(c *fiber.Ctx) error {
	var req GoogleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.authService.GoogleSignIn(c.Context(), req.Credential, domain.GoogleMode(req.Mode))
	if err != nil {
		return respondError(c, err, "Google sign-in failed")
	}

	if result.IsNewUser {
		return response.Created(c, "Account created with Google", result)
	}
	return response.Success(c, "Login successful", result)
}

// Profile returns the signed-in account
// @Summary Current account
// @Description Get the signed-in account. Merchants also get their store and onboarding stage.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/auth/profile [get]
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.authService.Profile(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", result)
}

// VerifyEmail redeems an email verification token
// @Summary Verify email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body TokenRequest true "Verification token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	user, err := h.authService.VerifyEmail(c.Context(), strings.TrimSpace(req.Token))
	if err != nil {
		return respondError(c, err, "Failed to verify email")
	}

	return response.Success(c, "Email verified successfully", fiber.Map{"user": user})
}

// ResendVerification mails a fresh verification link
// @Summary Resend verification email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body EmailRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/auth/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.authService.ResendVerification(c.Context(), req.Email); err != nil {
		return respondError(c, err, "Failed to resend verification email")
	}

	return response.Success(c, "Verification email sent. Please check your inbox.", nil)
}

// ForgotPassword mails a password reset link
// @Summary Forgot password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body EmailRequest true "Account email"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		return respondError(c, err, "Failed to process password reset")
	}

	return response.Success(c, "Password reset link sent. Please check your email.", nil)
}

// ResetPassword redeems a reset token
// @Summary Reset password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	err := h.authService.ResetPassword(c.Context(), strings.TrimSpace(req.Token), req.NewPassword, req.ConfirmPassword)
	if err != nil {
		return respondError(c, err, "Failed to reset password")
	}

	return response.Success(c, "Password reset successfully. You can now log in.", nil)
}
