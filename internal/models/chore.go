package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Chore statuses
const (
	ChoreStatusOpen     = "open"
	ChoreStatusDone     = "done"
	ChoreStatusApproved = "approved"
	ChoreStatusRejected = "rejected"
)

// Chore is a task a parent creates for a child. Approving a completed chore
// credits the reward amount to the child's spending balance.
type Chore struct {
	ID           int64
	FamilyID     int64
	ChildID      *int64
	Title        string
	Description  string
	RewardAmount decimal.Decimal
	Status       string
	DueDate      *time.Time
	CompletedAt  *time.Time
	ApprovedAt   *time.Time
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
