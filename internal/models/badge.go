package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Badge criteria types. Count criteria accumulate; amount criteria track the
// highest value reported so far.
const (
	CriteriaSavedTotal        = "saved_total"
	CriteriaContributionCount = "contribution_count"
	CriteriaGoalsCompleted    = "goals_completed"
	CriteriaChoresApproved    = "chores_approved"
	CriteriaBalancePeak       = "balance_peak"
)

// Badge is a catalog entry seeded by migration
type Badge struct {
	ID           int64
	Code         string
	Name         string
	Description  string
	Icon         string
	CriteriaType string
	Threshold    decimal.Decimal
	Points       int
}

// ChildBadge tracks a child's progress toward a badge. EarnedAt is set once
// and never cleared.
type ChildBadge struct {
	ID       int64
	ChildID  int64
	BadgeID  int64
	Progress decimal.Decimal
	EarnedAt *time.Time
}

// ChildBadgeDetail joins progress rows with their catalog entries
type ChildBadgeDetail struct {
	Badge    Badge
	Progress decimal.Decimal
	EarnedAt *time.Time
}

// Reward types
const (
	RewardAvatarFrame = "avatar_frame"
	RewardTheme       = "theme"
	RewardTitle       = "title"
)

// Reward is a cosmetic unlock purchased with badge points. At most one
// reward per type may be equipped per child.
type Reward struct {
	ID        int64
	ChildID   int64
	Type      string
	Name      string
	Cost      int
	Equipped  bool
	CreatedAt time.Time
}
