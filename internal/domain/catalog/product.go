package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// QRCodePrefix prefixes every product QR token
const QRCodePrefix = "PMP-"

// Units accepted for products
var validUnits = map[string]bool{
	"unidad":  true,
	"kg":      true,
	"g":       true,
	"l":       true,
	"ml":      true,
	"paquete": true,
}

var productCodePattern = regexp.MustCompile(`^[A-Z0-9_-]+$`)

// Product is a sellable item carrying a scannable QR tag.
// It is the aggregate root of the catalog.
type Product struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	CategoryID  *uuid.UUID
	Unit        string
	Price       decimal.Decimal
	Stock       int
	MinStock    int
	Status      ProductStatus
	ImageKey    string
	QRCode      string
	Nutrition   *NutritionFacts
}

// NewProduct creates a new active product with a fresh QR token
func NewProduct(code, name, unit string, price decimal.Decimal) (*Product, error) {
	code = normalizeProductCode(code)
	name = strings.TrimSpace(name)
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Unit:              unit,
		Price:             price.Round(2),
		Status:            ProductStatusActive,
		QRCode:            NewQRCodeToken(),
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// NewQRCodeToken generates a new random QR token
func NewQRCodeToken() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return QRCodePrefix + strings.ToUpper(raw[:12])
}

// NormalizeQRCode upper-cases and trims a scanned token
func NormalizeQRCode(token string) string {
	return strings.ToUpper(strings.TrimSpace(token))
}

// Update updates the product's descriptive fields
func (p *Product) Update(name, description, unit string, categoryID *uuid.UUID, minStock int) error {
	name = strings.TrimSpace(name)
	if err := validateProductName(name); err != nil {
		return err
	}
	if err := validateUnit(unit); err != nil {
		return err
	}
	if minStock < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock cannot be negative")
	}

	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.Unit = unit
	p.CategoryID = categoryID
	p.MinStock = minStock
	p.IncrementVersion()
	return nil
}

// SetPrice changes the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if err := validatePrice(price); err != nil {
		return err
	}
	p.Price = price.Round(2)
	p.IncrementVersion()
	return nil
}

// AdjustStock applies a signed stock correction
func (p *Product) AdjustStock(delta int) error {
	if delta == 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Stock adjustment cannot be zero")
	}
	if p.Stock+delta < 0 {
		return shared.ErrInsufficientStock
	}
	p.Stock += delta
	p.IncrementVersion()
	p.checkLowStock()
	return nil
}

// DecreaseStock removes sold units
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return p.AdjustStock(-quantity)
}

// IncreaseStock returns or receives units
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	return p.AdjustStock(quantity)
}

// HasStock reports whether quantity units are available
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// IsLowStock reports whether stock is at or under the configured minimum
func (p *Product) IsLowStock() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}

func (p *Product) checkLowStock() {
	if p.IsLowStock() {
		p.AddDomainEvent(NewProductStockLowEvent(p))
	}
}

// SetImage records the storage key of the product photo and returns the
// previous key so the caller can delete the old object.
func (p *Product) SetImage(key string) (previous string) {
	previous = p.ImageKey
	p.ImageKey = key
	p.IncrementVersion()
	return previous
}

// ClearImage removes the product photo reference
func (p *Product) ClearImage() (previous string, err error) {
	if p.ImageKey == "" {
		return "", shared.NewDomainError("NO_IMAGE", "Product has no image")
	}
	previous = p.ImageKey
	p.ImageKey = ""
	p.IncrementVersion()
	return previous, nil
}

// RegenerateQRCode replaces the QR token, invalidating printed labels
func (p *Product) RegenerateQRCode() string {
	p.QRCode = NewQRCodeToken()
	p.IncrementVersion()
	return p.QRCode
}

// SetNutrition replaces the nutrition facts; nil clears them
func (p *Product) SetNutrition(n *NutritionFacts) error {
	if n != nil {
		if err := n.Validate(); err != nil {
			return err
		}
	}
	p.Nutrition = n
	p.IncrementVersion()
	return nil
}

// OctagonWarnings returns the front-of-pack warnings for the product
func (p *Product) OctagonWarnings() []OctagonWarning {
	if p.Nutrition == nil {
		return []OctagonWarning{}
	}
	return p.Nutrition.Octagons()
}

// Activate makes the product sellable
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.Status = ProductStatusActive
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from sale
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = ProductStatusInactive
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

func normalizeProductCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	if !productCodePattern.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Product code can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

func validateProductName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if !validUnits[unit] {
		return shared.NewDomainError("INVALID_UNIT", "Unit must be one of: unidad, kg, g, l, ml, paquete")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return shared.NewDomainError("INVALID_PRICE", "Price must be greater than zero")
	}
	return nil
}
