package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"replate-api/internal/adapters/persistence/models"
	"replate-api/internal/core/domain"
	"replate-api/internal/pkg/logger"

	"github.com/xuri/excelize/v2"
)

// MaxImportRows caps a single spreadsheet import
const MaxImportRows = 1000

// ImportColumns is the header row of the product import template
var ImportColumns = []string{
	"name", "description", "category", "original_price", "discounted_price",
	"stock", "image_url", "available_from", "available_until",
}

var importTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// RowError points at a spreadsheet row that could not be imported
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the outcome of a spreadsheet import. Nothing is written
// when Errors is non-empty.
type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
}

// ImportXLSX reads products from the first sheet of an xlsx workbook and
// inserts them all or none.
func (s *ProductService) ImportXLSX(ctx context.Context, merchantID uint, r io.Reader) (*ImportResult, error) {
	store, err := s.storeFor(ctx, merchantID)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.NewValidationError("Invalid Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.NewValidationError("Workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, domain.NewValidationError("Workbook has no product rows")
	}
	if len(rows)-1 > MaxImportRows {
		return nil, domain.NewValidationError(fmt.Sprintf("At most %d products can be imported at once", MaxImportRows))
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	products := make([]*models.Product, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			continue
		}
		product, err := parseProductRow(row, index)
		if err == nil {
			product.StoreID = store.ID
			err = validateProduct(product)
		}
		if err != nil {
			msg, _ := domain.AsValidation(err)
			if msg == "" {
				msg = err.Error()
			}
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: msg})
			continue
		}
		products = append(products, product)
	}

	if len(result.Errors) > 0 {
		return result, nil
	}
	if err := s.productRepo.CreateBatch(ctx, products); err != nil {
		return nil, err
	}

	result.Imported = len(products)
	logger.Info("products imported", "store_id", store.ID, "count", result.Imported)
	return result, nil
}

// ImportTemplate renders an empty workbook with the expected header row
func ImportTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(ImportColumns))
	for i, col := range ImportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	example := []interface{}{"Croissant", "Butter croissant", "Pastry", 25000, 12500, 10, "", "", ""}
	if err := f.SetSheetRow(sheet, "A2", &example); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			index[key] = i
		}
	}
	for _, required := range []string{"name", "original_price", "discounted_price", "stock"} {
		if _, ok := index[required]; !ok {
			return nil, domain.NewValidationError(fmt.Sprintf("Missing column: %s", required))
		}
	}
	return index, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseProductRow(row []string, index map[string]int) (*models.Product, error) {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	original, err := parseNumber(cell("original_price"), "original_price")
	if err != nil {
		return nil, err
	}
	discounted, err := parseNumber(cell("discounted_price"), "discounted_price")
	if err != nil {
		return nil, err
	}
	stock, err := strconv.Atoi(cell("stock"))
	if err != nil {
		return nil, domain.NewValidationError("stock must be a whole number")
	}

	p := &models.Product{
		Name:            cell("name"),
		Description:     cell("description"),
		Category:        cell("category"),
		OriginalPrice:   original,
		DiscountedPrice: discounted,
		Stock:           stock,
		IsActive:        true,
	}
	if url := cell("image_url"); url != "" {
		p.ImageURL = &url
	}
	if p.AvailableFrom, err = parseOptionalTime(cell("available_from"), "available_from"); err != nil {
		return nil, err
	}
	if p.AvailableUntil, err = parseOptionalTime(cell("available_until"), "available_until"); err != nil {
		return nil, err
	}
	return p, nil
}

func parseNumber(s, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, domain.NewValidationError(column + " must be a number")
	}
	return v, nil
}

func parseOptionalTime(s, column string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range importTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, domain.NewValidationError(column + " must be a date (YYYY-MM-DD or RFC 3339)")
}
