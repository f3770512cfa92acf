package handlers

import (
	"replate-api/internal/core/services"
	"replate-api/internal/pkg/response"
	"replate-api/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the store review endpoints
type AdminHandler struct {
	adminService *services.AdminService
	validate     *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *services.AdminService, validate *validation.Validator) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		validate:     validate,
	}
}

// RejectRequest carries the reason shown to the merchant
type RejectRequest struct {
	AdminNotes string `json:"adminNotes" validate:"required"`
}

// ListPendingStores returns stores awaiting review
// @Summary List pending stores
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/admin/stores/pending [get]
func (h *AdminHandler) ListPendingStores(c *fiber.Ctx) error {
	list, err := h.adminService.ListPending(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to get pending stores")
	}

	return response.Success(c, "Pending stores retrieved successfully", list)
}

// ListStores returns all stores, optionally filtered by status
// @Summary List stores
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/admin/stores [get]
func (h *AdminHandler) ListStores(c *fiber.Ctx) error {
	list, err := h.adminService.ListAll(c.Context(), c.Query("status"))
	if err != nil {
		return respondError(c, err, "Failed to get stores")
	}

	return response.Success(c, "Stores retrieved successfully", list)
}

// ApproveStore approves a pending store
// @Summary Approve store
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Store ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/admin/stores/{id}/approve [patch]
func (h *AdminHandler) ApproveStore(c *fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	storeID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid store ID")
	}

	result, err := h.adminService.Approve(c.Context(), storeID, adminID)
	if err != nil {
		return respondError(c, err, "Failed to approve store")
	}

	return response.Success(c, "Store approved successfully", result)
}

// RejectStore rejects a pending store and removes it with its merchant
// @Summary Reject store
// @Description Rejection deletes the store and the merchant account after notifying the merchant
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Store ID"
// @Param body body RejectRequest true "Rejection reason (at least 10 characters)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/admin/stores/{id}/reject [patch]
func (h *AdminHandler) RejectStore(c *fiber.Ctx) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	storeID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid store ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, "Rejection reason is required")
	}

	result, err := h.adminService.Reject(c.Context(), storeID, adminID, req.AdminNotes)
	if err != nil {
		return respondError(c, err, "Failed to reject store")
	}

	return response.Success(c, "Store rejected and merchant account removed", result)
}

// Stats returns the platform counters
// @Summary Platform statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.Context())
	if err != nil {
		return respondError(c, err, "Failed to get statistics")
	}

	return response.Success(c, "Statistics retrieved successfully", stats)
}
