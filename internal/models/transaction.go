package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TransactionCredit = "credit"
	TransactionDebit  = "debit"
)

// Well-known transaction categories written by the services. Parents may
// supply free-form categories for manual credits and debits.
const (
	CategoryAllowance         = "allowance"
	CategoryChore             = "chore"
	CategoryGift              = "gift"
	CategorySavings           = "savings"
	CategorySavingsDeposit    = "savings-deposit"
	CategorySavingsWithdrawal = "savings-withdrawal"
)

// Transaction is an immutable ledger entry against a child's spending
// balance. Rows are append-only: nothing in the codebase updates or deletes
// them, and BalanceAfter snapshots the balance at insert time.
type Transaction struct {
	ID           int64
	ChildID      int64
	Amount       decimal.Decimal
	Type         string // 'credit' or 'debit'
	Category     string
	Description  string
	BalanceAfter decimal.Decimal
	CreatedBy    *int64 // nil for system entries such as allowance payments
	CreatedAt    time.Time
}
