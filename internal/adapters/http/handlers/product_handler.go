package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"replate-api/internal/core/services"
	"replate-api/internal/pkg/pagination"
	"replate-api/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles the merchant product catalogue
type ProductHandler struct {
	productService *services.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductRequest is used for both create and partial update. Omitted fields
// are left unchanged on update.
type ProductRequest struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	Category        *string    `json:"category"`
	OriginalPrice   *float64   `json:"original_price"`
	DiscountedPrice *float64   `json:"discounted_price"`
	Stock           *int       `json:"stock"`
	ImageURL        *string    `json:"image_url"`
	AvailableFrom   *time.Time `json:"available_from"`
	AvailableUntil  *time.Time `json:"available_until"`
}

func (r *ProductRequest) toInput() *services.ProductInput {
	return &services.ProductInput{
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		OriginalPrice:   r.OriginalPrice,
		DiscountedPrice: r.DiscountedPrice,
		Stock:           r.Stock,
		ImageURL:        r.ImageURL,
		AvailableFrom:   r.AvailableFrom,
		AvailableUntil:  r.AvailableUntil,
	}
}

// List returns the merchant's products
// @Summary List my products
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	page, err := h.productService.List(c.Context(), userID, pagination.GetParams(c))
	if err != nil {
		return respondError(c, err, "Failed to get products")
	}

	return response.Success(c, "Products retrieved successfully", page)
}

// Create adds a product
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProductRequest true "Product"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.productService.Create(c.Context(), userID, req.toInput())
	if err != nil {
		return respondError(c, err, "Failed to create product")
	}

	return response.Created(c, "Product created successfully", fiber.Map{"product": product})
}

// Get returns one product
// @Summary Get product
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/products/{id} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.productService.Get(c.Context(), userID, productID)
	if err != nil {
		return respondError(c, err, "Failed to get product")
	}

	return response.Success(c, "Product retrieved successfully", fiber.Map{"product": product})
}

// Update changes a product
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param body body ProductRequest true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/products/{id} [patch]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	product, err := h.productService.Update(c.Context(), userID, productID, req.toInput())
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}

	return response.Success(c, "Product updated successfully", fiber.Map{"product": product})
}

// Delete removes a product
// @Summary Delete product
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}

	if err := h.productService.Delete(c.Context(), userID, productID); err != nil {
		return respondError(c, err, "Failed to delete product")
	}

	return response.Success(c, "Product deleted successfully", nil)
}

// Toggle flips a product between active and hidden
// @Summary Toggle product visibility
// @Tags Products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/merchant/products/{id}/toggle [patch]
func (h *ProductHandler) Toggle(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	productID, ok := paramID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.productService.ToggleActive(c.Context(), userID, productID)
	if err != nil {
		return respondError(c, err, "Failed to update product")
	}

	message := "Product hidden"
	if product.IsActive {
		message = "Product activated"
	}
	return response.Success(c, message, fiber.Map{"product": product})
}

// Import creates products from an uploaded xlsx workbook
// @Summary Import products
// @Description Upload an .xlsx file with the template's header row. Either every row is imported or none.
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Workbook (.xlsx)"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/merchant/products/import [post]
func (h *ProductHandler) Import(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Excel file is required")
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return response.BadRequest(c, "Only .xlsx files are supported")
	}

	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer f.Close()

	result, err := h.productService.ImportXLSX(c.Context(), userID, f)
	if err != nil {
		return respondError(c, err, "Failed to import products")
	}
	if len(result.Errors) > 0 {
		return response.ErrorWithData(c, fiber.StatusBadRequest, "Some rows are invalid. Nothing was imported.", result)
	}

	return response.Created(c, "Products imported successfully", result)
}

// ImportTemplate downloads an empty import workbook
// @Summary Download import template
// @Tags Products
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /api/merchant/products/import/template [get]
func (h *ProductHandler) ImportTemplate(c *fiber.Ctx) error {
	data, err := services.ImportTemplate()
	if err != nil {
		return respondError(c, err, "Failed to build template")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="replate-products.xlsx"`)
	return c.Send(data)
}
