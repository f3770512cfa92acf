package handlers

import (
	"mime/multipart"
	"strings"

	"replate-api/internal/core/services"
	"replate-api/internal/pkg/response"
	"replate-api/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// StoreHandler handles merchant onboarding and the merchant's store views
type StoreHandler struct {
	onboardingService *services.OnboardingService
	validate          *validation.Validator
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(onboardingService *services.OnboardingService, validate *validation.Validator) *StoreHandler {
	return &StoreHandler{
		onboardingService: onboardingService,
		validate:          validate,
	}
}

// StoreInfoRequest represents onboarding store information
type StoreInfoRequest struct {
	StoreName      string   `json:"storeName" validate:"required,max=255"`
	Description    string   `json:"description"`
	Address        string   `json:"address" validate:"required"`
	City           string   `json:"city" validate:"required,max=100"`
	Latitude       *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Phone          string   `json:"phone" validate:"required,id_phone"`
	OperatingHours string   `json:"operatingHours" validate:"required"`
}

// SubmitStoreInfo creates the merchant's store
// @Summary Submit store information
// @Description Onboarding step 2: create the merchant's store, pending admin review
// @Tags Onboarding
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StoreInfoRequest true "Store information"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/register/store/info [post]
func (h *StoreHandler) SubmitStoreInfo(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req StoreInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	req.StoreName = strings.TrimSpace(req.StoreName)
	req.Address = strings.TrimSpace(req.Address)
	req.City = strings.TrimSpace(req.City)
	req.Phone = strings.TrimSpace(req.Phone)
	req.OperatingHours = strings.TrimSpace(req.OperatingHours)
	if err := h.validate.Struct(&req); err != nil {
		return response.BadRequest(c, err.Error())
	}

	store, err := h.onboardingService.SubmitStoreInfo(c.Context(), userID, &services.StoreInfoInput{
		StoreName:      req.StoreName,
		Description:    req.Description,
		Address:        req.Address,
		City:           req.City,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Phone:          req.Phone,
		OperatingHours: req.OperatingHours,
	})
	if err != nil {
		return respondError(c, err, "Failed to save store information")
	}

	return response.Created(c, "Store information saved. Continue with verification.", fiber.Map{"store": store})
}

// SubmitVerification stores the payout and identity documents
// @Summary Submit store verification
// @Description Onboarding step 3: bank account number plus optional QRIS and ID card images (jpeg, png, gif; 5MB each)
// @Tags Onboarding
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param bankAccountNumber formData string true "Bank account number"
// @Param qrisImage formData file false "QRIS image"
// @Param idCardImage formData file false "ID card image"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/auth/register/store/verification [post]
func (h *StoreHandler) SubmitVerification(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.VerificationInput{
		BankAccountNumber: strings.TrimSpace(c.FormValue("bankAccountNumber")),
	}
	if input.BankAccountNumber == "" {
		return response.BadRequest(c, "Bank account number is required")
	}

	var files []multipart.File
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	form, err := c.MultipartForm()
	if err == nil {
		for field, target := range map[string]**services.Upload{
			"qrisImage":   &input.QrisImage,
			"idCardImage": &input.IDCardImage,
		} {
			headers := form.File[field]
			if len(headers) == 0 {
				continue
			}
			upload, f, err := openUpload(field, headers[0])
			if err != nil {
				return response.BadRequest(c, "Failed to read uploaded file")
			}
			files = append(files, f)
			*target = upload
		}
	}

	result, err := h.onboardingService.SubmitVerification(c.Context(), userID, input)
	if err != nil {
		return respondError(c, err, "Failed to save verification documents")
	}

	message := "Verification submitted. Your store is awaiting admin review."
	if result.NeedsVerification {
		message = "Verification submitted. Please verify your email while your store awaits admin review."
	}
	return response.Success(c, message, result)
}

// GetStore returns the merchant's store
// @Summary Get my store
// @Tags Merchant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/store [get]
func (h *StoreHandler) GetStore(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	store, err := h.onboardingService.GetMerchantStore(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get store")
	}

	return response.Success(c, "Store retrieved successfully", fiber.Map{"store": store})
}

// GetStoreStats returns the merchant dashboard counters
// @Summary Get my store statistics
// @Tags Merchant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/store/stats [get]
func (h *StoreHandler) GetStoreStats(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.onboardingService.GetMerchantStoreStats(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "Failed to get store statistics")
	}

	return response.Success(c, "Store statistics retrieved successfully", stats)
}

// openUpload turns a multipart file header into a service upload. The caller
// closes the returned file.
func openUpload(field string, fh *multipart.FileHeader) (*services.Upload, multipart.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Reader:      f,
	}, f, nil
}
