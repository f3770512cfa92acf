package handlers

import (
	"errors"

	"replate-api/internal/core/domain"
	"replate-api/internal/core/services"
	"replate-api/internal/pkg/logger"
	"replate-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors onto the response envelope. Anything it
// does not recognise is logged and answered with fallback as a 500.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	if msg, ok := domain.AsValidation(err); ok {
		return response.BadRequest(c, msg)
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return response.Conflict(c, "Email already registered")
	case errors.Is(err, services.ErrAccountNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, services.ErrEmailNotVerified):
		return response.Forbidden(c, "Please verify your email before logging in")
	case errors.Is(err, services.ErrAlreadyVerified):
		return response.BadRequest(c, "Email is already verified")
	case errors.Is(err, services.ErrTokenExpired):
		return response.BadRequest(c, "Token has expired. Please request a new one")
	case errors.Is(err, services.ErrInvalidToken):
		return response.BadRequest(c, "Invalid or already used token")
	case errors.Is(err, services.ErrEmailDeliveryFailed):
		logger.Error("email delivery failed", "path", c.Path(), "error", err)
		return response.InternalServerError(c, "Failed to send email. Please try again later")
	case errors.Is(err, services.ErrGoogleDisabled):
		return response.ServiceUnavailable(c, "Google sign-in is not available")
	case errors.Is(err, services.ErrGoogleTokenInvalid):
		return response.Unauthorized(c, "Invalid Google credential")
	case errors.Is(err, services.ErrNotMerchant):
		return response.Forbidden(c, "Only merchant accounts can manage a store")
	case errors.Is(err, services.ErrStoreExists):
		return response.Conflict(c, "Store already exists for this merchant")
	case errors.Is(err, services.ErrStoreReviewed):
		return response.Conflict(c, "Store has already been reviewed")
	case errors.Is(err, services.ErrStoreNotFound):
		return response.NotFound(c, "Store not found")
	case errors.Is(err, services.ErrAlreadyApproved):
		return response.BadRequest(c, "Store is already approved")
	case errors.Is(err, services.ErrProductNotFound):
		return response.NotFound(c, "Product not found")
	default:
		logger.Error(fallback, "method", c.Method(), "path", c.Path(), "error", err)
		return response.InternalServerError(c, fallback)
	}
}

// currentUserID reads the account id placed by AuthMiddleware
func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
