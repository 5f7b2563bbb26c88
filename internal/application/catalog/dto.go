package catalog

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
	SortOrder   int    `json:"sort_order"`
}

// CategoryListFilter represents filter options for the category list
type CategoryListFilter struct {
	Search   string `form:"search"`
	IsActive *bool  `form:"is_active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) *CategoryResponse {
	return &CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// NutritionRequest carries label values per 100 g or 100 ml
type NutritionRequest struct {
	Form          string          `json:"form" binding:"required,oneof=solid liquid"`
	EnergyKcal    decimal.Decimal `json:"energy_kcal"`
	SodiumMg      decimal.Decimal `json:"sodium_mg"`
	SugarG        decimal.Decimal `json:"sugar_g"`
	SaturatedFatG decimal.Decimal `json:"saturated_fat_g"`
	TransFatG     decimal.Decimal `json:"trans_fat_g"`
}

// ToDomain converts the request to domain nutrition facts
func (r NutritionRequest) ToDomain() *catalog.NutritionFacts {
	return &catalog.NutritionFacts{
		Form:          catalog.NutritionForm(r.Form),
		EnergyKcal:    r.EnergyKcal,
		SodiumMg:      r.SodiumMg,
		SugarG:        r.SugarG,
		SaturatedFatG: r.SaturatedFatG,
		TransFatG:     r.TransFatG,
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code        string            `json:"code" binding:"required,min=1,max=50"`
	Name        string            `json:"name" binding:"required,min=1,max=200"`
	Description string            `json:"description" binding:"max=2000"`
	CategoryID  *uuid.UUID        `json:"category_id"`
	Unit        string            `json:"unit" binding:"required,oneof=unidad kg g l ml paquete"`
	Price       decimal.Decimal   `json:"price" binding:"required"`
	Stock       int               `json:"stock" binding:"min=0"`
	MinStock    int               `json:"min_stock" binding:"min=0"`
	Nutrition   *NutritionRequest `json:"nutrition"`
}

// UpdateProductRequest replaces a product's descriptive fields
type UpdateProductRequest struct {
	Name        string     `json:"name" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Unit        string     `json:"unit" binding:"required,oneof=unidad kg g l ml paquete"`
	MinStock    int        `json:"min_stock" binding:"min=0"`
}

// UpdatePriceRequest changes the selling price
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// AdjustStockRequest applies a signed stock correction
type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=active inactive"`
	CategoryID *uuid.UUID `form:"category_id"`
	LowStock   bool       `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LabelSheetRequest selects the products to print
type LabelSheetRequest struct {
	ProductIDs []uuid.UUID `json:"product_ids" binding:"required,min=1,max=200"`
}

// NutritionResponse echoes the stored nutrition facts
type NutritionResponse struct {
	Form          string          `json:"form"`
	EnergyKcal    decimal.Decimal `json:"energy_kcal"`
	SodiumMg      decimal.Decimal `json:"sodium_mg"`
	SugarG        decimal.Decimal `json:"sugar_g"`
	SaturatedFatG decimal.Decimal `json:"saturated_fat_g"`
	TransFatG     decimal.Decimal `json:"trans_fat_g"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID                `json:"id"`
	Code        string                   `json:"code"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	CategoryID  *uuid.UUID               `json:"category_id"`
	Unit        string                   `json:"unit"`
	Price       decimal.Decimal          `json:"price"`
	Stock       int                      `json:"stock"`
	MinStock    int                      `json:"min_stock"`
	IsLowStock  bool                     `json:"is_low_stock"`
	Status      string                   `json:"status"`
	QRCode      string                   `json:"qr_code"`
	HasImage    bool                     `json:"has_image"`
	Nutrition   *NutritionResponse       `json:"nutrition,omitempty"`
	Octagons    []catalog.OctagonWarning `json:"octagons"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	Version     int                      `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) *ProductResponse {
	resp := &ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Unit:        p.Unit,
		Price:       p.Price,
		Stock:       p.Stock,
		MinStock:    p.MinStock,
		IsLowStock:  p.IsLowStock(),
		Status:      string(p.Status),
		QRCode:      p.QRCode,
		HasImage:    p.ImageKey != "",
		Octagons:    p.OctagonWarnings(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.Version,
	}
	if n := p.Nutrition; n != nil {
		resp.Nutrition = &NutritionResponse{
			Form:          string(n.Form),
			EnergyKcal:    n.EnergyKcal,
			SodiumMg:      n.SodiumMg,
			SugarG:        n.SugarG,
			SaturatedFatG: n.SaturatedFatG,
			TransFatG:     n.TransFatG,
		}
	}
	return resp
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = *ToProductResponse(&products[i])
	}
	return responses
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = *ToCategoryResponse(&categories[i])
	}
	return responses
}

// ImageResponse points at a product image
type ImageResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
