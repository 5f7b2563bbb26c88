package shopping

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/catalog"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartSessionRequest opens a shopping session. Leaving Budget empty and
// SkipBudget false defers the decision to the budget prompt.
type StartSessionRequest struct {
	Budget     *decimal.Decimal `json:"budget"`
	SkipBudget bool             `json:"skip_budget"`
}

// ConfigureBudgetRequest records the shopper's budget decision; a null
// budget means shopping without one.
type ConfigureBudgetRequest struct {
	Budget *decimal.Decimal `json:"budget"`
}

// ScanRequest adds the product behind a QR token
type ScanRequest struct {
	QRCode   string `json:"qr_code" binding:"required,max=64"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1,max=999"`
}

// AddItemRequest adds a product picked from the catalog
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"omitempty,min=1,max=999"`
}

// UpdateQuantityRequest sets a line quantity; zero removes the line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=999"`
}

// CartLineResponse is one cart line
type CartLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartResponse is the session summary returned by every cart operation
type CartResponse struct {
	SessionID            uuid.UUID              `json:"session_id"`
	Items                []CartLineResponse     `json:"items"`
	Total                decimal.Decimal        `json:"total"`
	ItemCount            int                    `json:"item_count"`
	Budget               shopping.BudgetSummary `json:"budget"`
	RequiresBudgetPrompt bool                   `json:"requires_budget_prompt"`
	BudgetExpiresAt      *time.Time             `json:"budget_expires_at"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// ToCartResponse converts a cart, evaluating the budget window at now
func ToCartResponse(c *shopping.Cart, now time.Time) *CartResponse {
	items := make([]CartLineResponse, len(c.Items))
	for i, item := range c.Items {
		items[i] = CartLineResponse{
			ProductID: item.ProductID,
			Code:      item.Code,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
			AddedAt:   item.AddedAt,
		}
	}
	return &CartResponse{
		SessionID:            c.ID,
		Items:                items,
		Total:                c.Total(),
		ItemCount:            c.ItemCount(),
		Budget:               c.Budget(),
		RequiresBudgetPrompt: c.RequiresBudgetPrompt(now),
		BudgetExpiresAt:      c.BudgetExpiresAt(),
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}

// ScannedProduct describes the product a scan resolved to
type ScannedProduct struct {
	ID       uuid.UUID                `json:"id"`
	Code     string                   `json:"code"`
	Name     string                   `json:"name"`
	Unit     string                   `json:"unit"`
	Price    decimal.Decimal          `json:"price"`
	Stock    int                      `json:"stock"`
	HasImage bool                     `json:"has_image"`
	Octagons []catalog.OctagonWarning `json:"octagons"`
}

// ScanResponse pairs the scanned product with the updated cart
type ScanResponse struct {
	Product ScannedProduct `json:"product"`
	Cart    *CartResponse  `json:"cart"`
}

func toScannedProduct(p *catalog.Product) ScannedProduct {
	return ScannedProduct{
		ID:       p.ID,
		Code:     p.Code,
		Name:     p.Name,
		Unit:     p.Unit,
		Price:    p.Price,
		Stock:    p.Stock,
		HasImage: p.ImageKey != "",
		Octagons: p.OctagonWarnings(),
	}
}
