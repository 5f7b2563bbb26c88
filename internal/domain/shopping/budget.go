package shopping

import (
	"github.com/shopspring/decimal"
)

// BudgetStatus buckets how much of the budget the cart has consumed
type BudgetStatus string

const (
	BudgetStatusNone     BudgetStatus = "none"
	BudgetStatusHealthy  BudgetStatus = "healthy"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

// WarningThreshold is the percentage of the budget at which the cart turns to warning
const WarningThreshold = 70

var (
	hundred          = decimal.NewFromInt(100)
	warningThreshold = decimal.NewFromInt(WarningThreshold)
)

// BudgetSummary compares a cart total against an optional budget.
// PercentageUsed and Remaining are nil when there is no budget.
type BudgetSummary struct {
	Status         BudgetStatus     `json:"status"`
	Budget         *decimal.Decimal `json:"budget"`
	Total          decimal.Decimal  `json:"total"`
	PercentageUsed *decimal.Decimal `json:"percentage_used"`
	Remaining      *decimal.Decimal `json:"remaining"`
}

// EvaluateBudget computes the budget summary for total against budget.
// A nil or non-positive budget means no budget.
func EvaluateBudget(total decimal.Decimal, budget *decimal.Decimal) BudgetSummary {
	if budget == nil || !budget.IsPositive() {
		return BudgetSummary{Status: BudgetStatusNone, Total: total}
	}

	b := *budget
	pct := total.Div(b).Mul(hundred)
	rounded := pct.Round(2)
	remaining := b.Sub(total)

	status := BudgetStatusHealthy
	switch {
	case total.GreaterThan(b):
		status = BudgetStatusExceeded
	case pct.GreaterThanOrEqual(warningThreshold):
		status = BudgetStatusWarning
	}

	return BudgetSummary{
		Status:         status,
		Budget:         &b,
		Total:          total,
		PercentageUsed: &rounded,
		Remaining:      &remaining,
	}
}
