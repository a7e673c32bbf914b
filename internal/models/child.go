package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Child represents a child profile in a family. A profile may be linked to a
// child-role user account once sign-in credentials have been provisioned.
type Child struct {
	ID          int64
	FamilyID    int64
	UserID      *int64
	Name        string
	AvatarColor string
	AvatarKey   string // blob storage object key, empty when no photo uploaded

	CurrentBalance decimal.Decimal
	SavingsBalance decimal.Decimal

	WeeklyAllowance decimal.Decimal
	// AllowanceDay pins payment to a weekday (0 = Sunday). Nil means a
	// rolling seven-day window since the last payment.
	AllowanceDay    *int
	AllowancePaused bool
	LastAllowanceAt *time.Time

	// SavingsTransferPercent is the share of each allowance payment swept
	// into the savings balance, 0-100.
	SavingsTransferPercent int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChildWithStats combines a child with aggregate figures for dashboards
type ChildWithStats struct {
	Child          Child
	TotalCredited  decimal.Decimal
	TotalDebited   decimal.Decimal
	ActiveGoals    int
	GoalsCompleted int
	Points         int
	BadgesEarned   int
}
