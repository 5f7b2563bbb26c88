package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shared"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/shopping"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/domain/ticket"
	"github.com/dNogueira300/pimpos-smart-tag-system-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormTicketRepository implements ticket.Repository using GORM
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GormTicketRepository
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create inserts a ticket and its items. Both the ticket number and the
// session are unique; either clash surfaces as ticket.ErrDuplicateNumber
// and checkout tells them apart with ExistsBySession on its retry.
func (r *GormTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	err := conn(ctx, r.db).Create(models.TicketModelFromDomain(t)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ticket.ErrDuplicateNumber
	}
	if err != nil {
		return err
	}
	t.MarkStored()
	return nil
}

// FindByID finds a ticket with its items
func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*ticket.Ticket, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds a ticket by its number
func (r *GormTicketRepository) FindByNumber(ctx context.Context, number string) (*ticket.Ticket, error) {
	return r.findOne(ctx, "ticket_number = ?", strings.ToUpper(strings.TrimSpace(number)))
}

func (r *GormTicketRepository) findOne(ctx context.Context, cond string, arg any) (*ticket.Ticket, error) {
	var model models.TicketModel
	err := conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("line_no ASC") }).
		Where(cond, arg).
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists tickets without their items
func (r *GormTicketRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ticket.Ticket, error) {
	var rows []models.TicketModel
	query := r.applyFilter(conn(ctx, r.db).Model(&models.TicketModel{}), filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	tickets := make([]ticket.Ticket, 0, len(rows))
	for i := range rows {
		tickets = append(tickets, *rows[i].ToDomain())
	}
	return tickets, nil
}

// Count counts tickets matching the filter
func (r *GormTicketRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(conn(ctx, r.db).Model(&models.TicketModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update persists status, notes and cancellation fields while the row
// still holds the version the ticket was read at. Lines are immutable.
func (r *GormTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	err := updateVersioned(conn(ctx, r.db), &models.TicketModel{}, t.ID, t.StoredVersion(), map[string]any{
		"status":        t.Status,
		"notes":         t.Notes,
		"cancelled_at":  t.CancelledAt,
		"cancel_reason": t.CancelReason,
		"version":       t.Version,
		"updated_at":    t.UpdatedAt,
	})
	if err != nil {
		return err
	}
	t.MarkStored()
	return nil
}

// Delete removes a ticket and its items
func (r *GormTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.Where("ticket_id = ?", id).Delete(&models.TicketItemModel{}).Error; err != nil {
		return err
	}

	return touched(db.Delete(&models.TicketModel{}, "id = ?", id))
}

// LastNumberWithPrefix returns the highest ticket number starting with prefix.
// Longer numbers sort first so the sequence keeps growing past its padding.
func (r *GormTicketRepository) LastNumberWithPrefix(ctx context.Context, prefix string) (string, error) {
	var numbers []string
	if err := conn(ctx, r.db).Model(&models.TicketModel{}).
		Where("ticket_number LIKE ?", prefix+"%").
		Order("LENGTH(ticket_number) DESC, ticket_number DESC").
		Limit(1).
		Pluck("ticket_number", &numbers).Error; err != nil {
		return "", err
	}
	if len(numbers) == 0 {
		return "", nil
	}
	return numbers[0], nil
}

// ExistsByNumber checks if a ticket number is taken
func (r *GormTicketRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.TicketModel{}).
		Where("ticket_number = ?", number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsBySession checks if the shopping session already has a ticket
func (r *GormTicketRepository) ExistsBySession(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&models.TicketModel{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// issuedBetween scopes a query to issued tickets in [from, to)
func issuedBetween(from, to time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tickets.status = ? AND tickets.issued_at >= ? AND tickets.issued_at < ?",
			ticket.TicketStatusIssued, from, to)
	}
}

// SalesSummary aggregates issued tickets in [from, to)
func (r *GormTicketRepository) SalesSummary(ctx context.Context, from, to time.Time) (ticket.SalesSummary, error) {
	var row struct {
		TicketCount int64
		Revenue     decimal.Decimal
		ItemsSold   int64
	}
	err := conn(ctx, r.db).Model(&models.TicketModel{}).
		Scopes(issuedBetween(from, to)).
		Select("COUNT(*) AS ticket_count, COALESCE(SUM(total), 0) AS revenue, COALESCE(SUM(item_count), 0) AS items_sold").
		Scan(&row).Error
	if err != nil {
		return ticket.SalesSummary{}, err
	}
	return ticket.SalesSummary{
		TicketCount: row.TicketCount,
		Revenue:     row.Revenue.Round(2),
		ItemsSold:   row.ItemsSold,
	}, nil
}

// DailySales groups issued tickets by calendar day in loc.
// Every day of the range is present, with zeros when nothing was sold.
func (r *GormTicketRepository) DailySales(ctx context.Context, from, to time.Time, loc *time.Location) ([]ticket.DailySales, error) {
	if loc == nil {
		loc = time.UTC
	}

	var rows []struct {
		IssuedAt time.Time
		Total    decimal.Decimal
	}
	err := conn(ctx, r.db).Model(&models.TicketModel{}).
		Scopes(issuedBetween(from, to)).
		Select("issued_at, total").
		Order("issued_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	const layout = "2006-01-02"
	byDay := make(map[string]*ticket.DailySales)
	series := make([]ticket.DailySales, 0)

	start := from.In(loc)
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		series = append(series, ticket.DailySales{Date: day.Format(layout), Revenue: decimal.Zero})
	}
	for i := range series {
		byDay[series[i].Date] = &series[i]
	}

	for _, row := range rows {
		entry, ok := byDay[row.IssuedAt.In(loc).Format(layout)]
		if !ok {
			continue
		}
		entry.TicketCount++
		entry.Revenue = entry.Revenue.Add(row.Total)
	}
	return series, nil
}

// TopProducts returns the best sellers by quantity in [from, to)
func (r *GormTicketRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ticket.TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []struct {
		ProductID   uuid.UUID
		ProductCode string
		ProductName string
		Quantity    int64
		Revenue     decimal.Decimal
	}
	err := conn(ctx, r.db).Table("ticket_items").
		Joins("JOIN tickets ON tickets.id = ticket_items.ticket_id").
		Scopes(issuedBetween(from, to)).
		Select("ticket_items.product_id AS product_id, " +
			"MAX(ticket_items.product_code) AS product_code, " +
			"MAX(ticket_items.product_name) AS product_name, " +
			"SUM(ticket_items.quantity) AS quantity, " +
			"SUM(ticket_items.line_total) AS revenue").
		Group("ticket_items.product_id").
		Order("quantity DESC, revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	products := make([]ticket.TopProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, ticket.TopProduct{
			ProductID:   row.ProductID,
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			Quantity:    row.Quantity,
			Revenue:     row.Revenue.Round(2),
		})
	}
	return products, nil
}

// BudgetBreakdown counts issued tickets in [from, to) per budget status
func (r *GormTicketRepository) BudgetBreakdown(ctx context.Context, from, to time.Time) (map[shopping.BudgetStatus]int64, error) {
	var rows []struct {
		BudgetStatus shopping.BudgetStatus
		Count        int64
	}
	err := conn(ctx, r.db).Model(&models.TicketModel{}).
		Scopes(issuedBetween(from, to)).
		Select("budget_status, COUNT(*) AS count").
		Group("budget_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	breakdown := map[shopping.BudgetStatus]int64{
		shopping.BudgetStatusNone:     0,
		shopping.BudgetStatusHealthy:  0,
		shopping.BudgetStatusWarning:  0,
		shopping.BudgetStatusExceeded: 0,
	}
	for _, row := range rows {
		breakdown[row.BudgetStatus] = row.Count
	}
	return breakdown, nil
}

// applyFilter applies filter options to the query
func (r *GormTicketRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	return ticketSort.apply(query, filter.OrderBy, filter.OrderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTicketRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("ticket_number LIKE ?", "%"+strings.ToUpper(strings.TrimSpace(filter.Search))+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "from":
			query = query.Where("issued_at >= ?", value)
		case "to":
			query = query.Where("issued_at < ?", value)
		}
	}

	return query
}

// Ensure GormTicketRepository implements ticket.Repository
var _ ticket.Repository = (*GormTicketRepository)(nil)
