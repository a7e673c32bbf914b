package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftLink is a shareable token that lets relatives gift money to a child,
// optionally toward a specific savings goal.
type GiftLink struct {
	ID        int64
	Token     string
	ChildID   int64
	GoalID    *int64
	Message   string
	Active    bool
	ExpiresAt *time.Time
	CreatedBy int64
	CreatedAt time.Time
}

// IsUsable reports whether the link can still accept gifts
func (l *GiftLink) IsUsable(now time.Time) bool {
	if !l.Active {
		return false
	}
	if l.ExpiresAt != nil && now.After(*l.ExpiresAt) {
		return false
	}
	return true
}

// Gift records a single gift submitted through a link
type Gift struct {
	ID         int64
	GiftLinkID int64
	GiverName  string
	GiverEmail string
	Amount     decimal.Decimal
	Message    string
	CreatedAt  time.Time
}

// ThankYouNote is written by the child for a received gift; one per gift.
// SentAt is stamped when the note has been emailed to the giver.
type ThankYouNote struct {
	ID        int64
	GiftID    int64
	Message   string
	SentAt    *time.Time
	CreatedAt time.Time
}
