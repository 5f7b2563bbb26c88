package shopping

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBudgetWindow is how long a budget decision stays valid
const DefaultBudgetWindow = time.Hour

// MaxLineQuantity caps the quantity of a single cart line
const MaxLineQuantity = 999

// Cart errors
var (
	ErrSessionNotFound      = shared.NewDomainError("SESSION_NOT_FOUND", "Shopping session not found or expired")
	ErrItemNotInCart        = shared.NewDomainError("ITEM_NOT_IN_CART", "Product is not in the cart")
	ErrCartEmpty            = shared.NewDomainError("CART_EMPTY", "Cart has no items")
	ErrInvalidBudget        = shared.NewDomainError("INVALID_BUDGET", "Budget must be greater than zero")
	ErrInvalidQuantity      = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be between 1 and 999")
	ErrBudgetPromptRequired = shared.NewDomainError("BUDGET_PROMPT_REQUIRED", "Budget must be configured before adding products")
)

// ProductSnapshot is the product data copied into a cart line
type ProductSnapshot struct {
	ID        uuid.UUID
	Code      string
	Name      string
	UnitPrice decimal.Decimal
}

// CartItem is one product line of the cart
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
}

// LineTotal returns unit price times quantity
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a shopper's session: the scanned items and the optional budget.
// Serialized as JSON into the session store.
type Cart struct {
	ID                 uuid.UUID        `json:"id"`
	Items              []CartItem       `json:"items"`
	BudgetAmount       *decimal.Decimal `json:"budget,omitempty"`
	BudgetConfigured   bool             `json:"budget_configured"`
	BudgetConfiguredAt *time.Time       `json:"budget_configured_at,omitempty"`
	BudgetWindow       time.Duration    `json:"budget_window"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewCart creates an empty cart with no budget decision
func NewCart(now time.Time, window time.Duration) *Cart {
	if window <= 0 {
		window = DefaultBudgetWindow
	}
	return &Cart{
		ID:           uuid.New(),
		Items:        []CartItem{},
		BudgetWindow: window,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ConfigureBudget records the shopper's budget decision and restarts the
// budget window. A nil budget means the shopper chose not to use one.
func (c *Cart) ConfigureBudget(budget *decimal.Decimal, now time.Time) error {
	if budget != nil {
		b := budget.Round(2)
		if !b.IsPositive() {
			return ErrInvalidBudget
		}
		c.BudgetAmount = &b
	} else {
		c.BudgetAmount = nil
	}
	c.BudgetConfigured = true
	c.BudgetConfiguredAt = &now
	c.UpdatedAt = now
	return nil
}

// BudgetExpiresAt returns when the current budget decision lapses, or nil
// when no decision has been made.
func (c *Cart) BudgetExpiresAt() *time.Time {
	if !c.BudgetConfigured || c.BudgetConfiguredAt == nil {
		return nil
	}
	exp := c.BudgetConfiguredAt.Add(c.window())
	return &exp
}

// RequiresBudgetPrompt reports whether the shopper has to (re)configure the budget
func (c *Cart) RequiresBudgetPrompt(now time.Time) bool {
	exp := c.BudgetExpiresAt()
	if exp == nil {
		return true
	}
	return !now.Before(*exp)
}

// AddItem adds quantity units of the product, merging with an existing line
func (c *Cart) AddItem(p ProductSnapshot, quantity int, now time.Time) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if idx := c.indexOf(p.ID); idx >= 0 {
		merged := c.Items[idx].Quantity + quantity
		if merged > MaxLineQuantity {
			return ErrInvalidQuantity
		}
		c.Items[idx].Quantity = merged
		c.Items[idx].UnitPrice = p.UnitPrice
		c.Items[idx].Name = p.Name
		c.UpdatedAt = now
		return nil
	}
	if quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	c.Items = append(c.Items, CartItem{
		ProductID: p.ID,
		Code:      p.Code,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  quantity,
		AddedAt:   now,
	})
	c.UpdatedAt = now
	return nil
}

// SetQuantity replaces the quantity of a line; zero removes it
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int, now time.Time) error {
	if quantity == 0 {
		return c.RemoveItem(productID, now)
	}
	if quantity < 0 || quantity > MaxLineQuantity {
		return ErrInvalidQuantity
	}
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotInCart
	}
	c.Items[idx].Quantity = quantity
	c.UpdatedAt = now
	return nil
}

// RemoveItem drops the product line
func (c *Cart) RemoveItem(productID uuid.UUID, now time.Time) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotInCart
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.UpdatedAt = now
	return nil
}

// Clear removes every line but keeps the budget decision
func (c *Cart) Clear(now time.Time) {
	c.Items = []CartItem{}
	c.UpdatedAt = now
}

// Item returns the line for the product, if any
func (c *Cart) Item(productID uuid.UUID) (CartItem, bool) {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.Items[idx], true
	}
	return CartItem{}, false
}

// Total returns the sum of all line totals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount returns the number of units in the cart
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Budget evaluates the cart total against the configured budget
func (c *Cart) Budget() BudgetSummary {
	return EvaluateBudget(c.Total(), c.BudgetAmount)
}

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) window() time.Duration {
	if c.BudgetWindow <= 0 {
		return DefaultBudgetWindow
	}
	return c.BudgetWindow
}
