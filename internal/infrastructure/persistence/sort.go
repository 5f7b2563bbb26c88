package persistence

import (
	"strings"

	"gorm.io/gorm"
)

// sortSpec whitelists the ORDER BY columns of one table. Keys are the
// names clients send in order_by, values the SQL columns.
type sortSpec struct {
	columns  map[string]string
	fallback string
	// natural is used when the client asks for no ordering at all
	natural string
}

// clause returns a safe ORDER BY clause. Unknown fields sort by the
// fallback column and anything but "asc" sorts descending.
func (s sortSpec) clause(orderBy, orderDir string) string {
	column, ok := s.columns[strings.ToLower(strings.TrimSpace(orderBy))]
	if !ok {
		column = s.fallback
	}
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return column + " ASC"
	}
	return column + " DESC"
}

func (s sortSpec) apply(query *gorm.DB, orderBy, orderDir string) *gorm.DB {
	if orderBy == "" {
		return query.Order(s.natural)
	}
	return query.Order(s.clause(orderBy, orderDir))
}

var productSort = sortSpec{
	columns: map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"code":       "code",
		"name":       "name",
		"price":      "price",
		"stock":      "stock",
		"min_stock":  "min_stock",
		"status":     "status",
	},
	fallback: "name",
	natural:  "name ASC",
}

var categorySort = sortSpec{
	columns: map[string]string{
		"created_at": "created_at",
		"name":       "name",
		"sort_order": "sort_order",
		"is_active":  "is_active",
	},
	fallback: "sort_order",
	natural:  "sort_order ASC, name ASC",
}

var ticketSort = sortSpec{
	columns: map[string]string{
		"created_at":    "created_at",
		"issued_at":     "issued_at",
		"number":        "ticket_number",
		"ticket_number": "ticket_number",
		"total":         "total",
		"item_count":    "item_count",
		"status":        "status",
		"budget_status": "budget_status",
	},
	fallback: "issued_at",
	natural:  "issued_at DESC",
}
