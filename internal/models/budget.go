package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryBudget caps a child's monthly spending in one category. Exceeding
// the limit notifies the family's parents; it does not block the debit.
type CategoryBudget struct {
	ID           int64
	ChildID      int64
	Category     string
	MonthlyLimit decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
