package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Savings goal statuses
const (
	GoalStatusActive    = "active"
	GoalStatusPaused    = "paused"
	GoalStatusCompleted = "completed"
	GoalStatusCancelled = "cancelled"
	GoalStatusPurchased = "purchased"
)

// Goal auto-transfer types
const (
	TransferNone    = ""
	TransferFixed   = "fixed"
	TransferPercent = "percent"
)

// SavingsGoal is a target amount a child saves toward
type SavingsGoal struct {
	ID          int64
	ChildID     int64
	Name        string
	Description string
	ImageKey    string

	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Status        string

	// Priority orders goals for the allowance auto-transfer sweep; lower
	// values are funded first.
	Priority int

	// Auto-transfer configuration applied during the allowance sweep.
	TransferType    string
	TransferAmount  decimal.Decimal
	TransferPercent int

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// IsOpen reports whether the goal can still receive contributions
func (g *SavingsGoal) IsOpen() bool {
	return g.Status == GoalStatusActive
}

// GoalMilestone marks progress at 25/50/75/100% of the target amount.
// Four rows are created alongside every goal.
type GoalMilestone struct {
	ID           int64
	GoalID       int64
	Percent      int
	TargetAmount decimal.Decimal
	AchievedAt   *time.Time
}

// Matching rule types
const (
	MatchRatio   = "ratio"
	MatchPercent = "percent"
)

// ParentMatchingRule tops up child deposits to a goal, either by a fixed
// ratio or a percentage, capped by MaxMatchAmount across the rule's lifetime.
type ParentMatchingRule struct {
	ID                 int64
	GoalID             int64
	Type               string // 'ratio' or 'percent'
	Ratio              decimal.Decimal
	Percent            decimal.Decimal
	MaxMatchAmount     decimal.Decimal
	TotalMatchedAmount decimal.Decimal
	Active             bool
	CreatedBy          int64
	CreatedAt          time.Time
}

// Remaining returns the unused matching headroom
func (r *ParentMatchingRule) Remaining() decimal.Decimal {
	remaining := r.MaxMatchAmount.Sub(r.TotalMatchedAmount)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Goal challenge statuses
const (
	ChallengeStatusActive    = "active"
	ChallengeStatusCompleted = "completed"
	ChallengeStatusExpired   = "expired"
	ChallengeStatusCancelled = "cancelled"
)

// GoalChallenge is a time-boxed savings target with a bonus payout.
// At most one challenge per goal is active at a time.
type GoalChallenge struct {
	ID           int64
	GoalID       int64
	Name         string
	TargetAmount decimal.Decimal
	BonusAmount  decimal.Decimal
	EndsAt       time.Time
	Status       string
	CompletedAt  *time.Time
	CreatedAt    time.Time
}

// Contribution types
const (
	ContributionDeposit    = "deposit"
	ContributionMatch      = "match"
	ContributionWithdrawal = "withdrawal"
	ContributionBonus      = "bonus"
	ContributionAuto       = "auto"
	ContributionGift       = "gift"
)

// SavingsContribution is a ledger entry against a goal. Withdrawals are
// recorded with a negative amount.
type SavingsContribution struct {
	ID          int64
	GoalID      int64
	Amount      decimal.Decimal
	Type        string
	Description string
	CreatedBy   *int64
	CreatedAt   time.Time
}

// GoalDetail combines a goal with its milestones, matching rule and challenge
type GoalDetail struct {
	Goal         SavingsGoal
	Milestones   []GoalMilestone
	MatchingRule *ParentMatchingRule
	Challenge    *GoalChallenge
}
