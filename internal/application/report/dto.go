package report

import (
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardResponse is the admin home screen
type DashboardResponse struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Today       TodaySummary     `json:"today"`
	LastWeek    []DailySalesItem `json:"last_week"`
	Products    ProductCounts    `json:"products"`
	TopProducts []TopProductItem `json:"top_products"`
	Budgets     BudgetBreakdown  `json:"budgets"`
}

// TodaySummary covers tickets issued since local midnight
type TodaySummary struct {
	Date          string          `json:"date"`
	TicketCount   int64           `json:"ticket_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	ItemsSold     int64           `json:"items_sold"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// DailySalesItem is one day of the weekly chart
type DailySalesItem struct {
	Date        string          `json:"date"`
	TicketCount int64           `json:"ticket_count"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// ProductCounts summarizes the catalog
type ProductCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	LowStock int64 `json:"low_stock"`
}

// TopProductItem is a best seller of the day
type TopProductItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// BudgetBreakdown counts today's tickets by budget outcome
type BudgetBreakdown struct {
	None     int64 `json:"none"`
	Healthy  int64 `json:"healthy"`
	Warning  int64 `json:"warning"`
	Exceeded int64 `json:"exceeded"`
}

func toDailySalesItems(days []ticket.DailySales) []DailySalesItem {
	items := make([]DailySalesItem, len(days))
	for i, d := range days {
		items[i] = DailySalesItem{
			Date:        d.Date,
			TicketCount: d.TicketCount,
			Revenue:     d.Revenue.Round(2),
		}
	}
	return items
}

func toTopProductItems(products []ticket.TopProduct) []TopProductItem {
	items := make([]TopProductItem, len(products))
	for i, p := range products {
		items[i] = TopProductItem{
			ProductID:   p.ProductID,
			ProductCode: p.ProductCode,
			ProductName: p.ProductName,
			Quantity:    p.Quantity,
			Revenue:     p.Revenue,
		}
	}
	return items
}
