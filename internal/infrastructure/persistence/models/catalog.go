package models

import (
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(500)"`
	SortOrder   int    `gorm:"not null;default:0"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		SortOrder:         m.SortOrder,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
	m.SortOrder = c.SortOrder
	m.IsActive = c.IsActive
}

// UpdateColumns lists the mutable columns written by a versioned update
func (m *CategoryModel) UpdateColumns() map[string]any {
	return map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"sort_order":  m.SortOrder,
		"is_active":   m.IsActive,
		"version":     m.Version,
		"updated_at":  m.UpdatedAt,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
// Nutrition values live in nullable columns; NutritionForm is empty when
// the product carries no nutrition label.
type ProductModel struct {
	AggregateModel
	Code          string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string                `gorm:"type:varchar(200);not null"`
	Description   string                `gorm:"type:text"`
	CategoryID    *uuid.UUID            `gorm:"type:uuid;index"`
	Unit          string                `gorm:"type:varchar(20);not null"`
	Price         decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Stock         int                   `gorm:"not null;default:0"`
	MinStock      int                   `gorm:"not null;default:0"`
	Status        catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ImageKey      string                `gorm:"type:varchar(300)"`
	QRCode        string                `gorm:"column:qr_code;type:varchar(32);not null;uniqueIndex"`
	NutritionForm string                `gorm:"type:varchar(10)"`
	EnergyKcal    decimal.NullDecimal   `gorm:"type:decimal(10,2)"`
	SodiumMg      decimal.NullDecimal   `gorm:"type:decimal(10,2)"`
	SugarG        decimal.NullDecimal   `gorm:"type:decimal(10,2)"`
	SaturatedFatG decimal.NullDecimal   `gorm:"type:decimal(10,2)"`
	TransFatG     decimal.NullDecimal   `gorm:"type:decimal(10,2)"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		Unit:              m.Unit,
		Price:             m.Price,
		Stock:             m.Stock,
		MinStock:          m.MinStock,
		Status:            m.Status,
		ImageKey:          m.ImageKey,
		QRCode:            m.QRCode,
	}
	if m.NutritionForm != "" {
		p.Nutrition = &catalog.NutritionFacts{
			Form:          catalog.NutritionForm(m.NutritionForm),
			EnergyKcal:    m.EnergyKcal.Decimal,
			SodiumMg:      m.SodiumMg.Decimal,
			SugarG:        m.SugarG.Decimal,
			SaturatedFatG: m.SaturatedFatG.Decimal,
			TransFatG:     m.TransFatG.Decimal,
		}
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Code = p.Code
	m.Name = p.Name
	m.Description = p.Description
	m.CategoryID = p.CategoryID
	m.Unit = p.Unit
	m.Price = p.Price
	m.Stock = p.Stock
	m.MinStock = p.MinStock
	m.Status = p.Status
	m.ImageKey = p.ImageKey
	m.QRCode = p.QRCode

	if n := p.Nutrition; n != nil {
		m.NutritionForm = string(n.Form)
		m.EnergyKcal = decimal.NewNullDecimal(n.EnergyKcal)
		m.SodiumMg = decimal.NewNullDecimal(n.SodiumMg)
		m.SugarG = decimal.NewNullDecimal(n.SugarG)
		m.SaturatedFatG = decimal.NewNullDecimal(n.SaturatedFatG)
		m.TransFatG = decimal.NewNullDecimal(n.TransFatG)
	} else {
		m.NutritionForm = ""
		m.EnergyKcal = decimal.NullDecimal{}
		m.SodiumMg = decimal.NullDecimal{}
		m.SugarG = decimal.NullDecimal{}
		m.SaturatedFatG = decimal.NullDecimal{}
		m.TransFatG = decimal.NullDecimal{}
	}
}

// UpdateColumns lists the mutable columns written by a versioned update
func (m *ProductModel) UpdateColumns() map[string]any {
	return map[string]any{
		"code":            m.Code,
		"name":            m.Name,
		"description":     m.Description,
		"category_id":     m.CategoryID,
		"unit":            m.Unit,
		"price":           m.Price,
		"stock":           m.Stock,
		"min_stock":       m.MinStock,
		"status":          m.Status,
		"image_key":       m.ImageKey,
		"qr_code":         m.QRCode,
		"nutrition_form":  m.NutritionForm,
		"energy_kcal":     m.EnergyKcal,
		"sodium_mg":       m.SodiumMg,
		"sugar_g":         m.SugarG,
		"saturated_fat_g": m.SaturatedFatG,
		"trans_fat_g":     m.TransFatG,
		"version":         m.Version,
		"updated_at":      m.UpdatedAt,
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
