package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestUserIsParent(t *testing.T) {
	parent := &User{Role: RoleParent}
	if !parent.IsParent() {
		t.Error("parent role should report IsParent")
	}
	child := &User{Role: RoleChild}
	if child.IsParent() {
		t.Error("child role should not report IsParent")
	}
}

func TestRefreshTokenIsExpired(t *testing.T) {
	live := &RefreshToken{ExpiresAt: time.Now().Add(time.Hour)}
	if live.IsExpired() {
		t.Error("token expiring in an hour should not be expired")
	}
	stale := &RefreshToken{ExpiresAt: time.Now().Add(-time.Minute)}
	if !stale.IsExpired() {
		t.Error("token that expired a minute ago should be expired")
	}
}

func TestGiftLinkIsUsable(t *testing.T) {
	now := time.Date(2026, time.August, 26, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		link GiftLink
		want bool
	}{
		{"active without expiry", GiftLink{Active: true}, true},
		{"active before expiry", GiftLink{Active: true, ExpiresAt: &future}, true},
		{"active past expiry", GiftLink{Active: true, ExpiresAt: &past}, false},
		{"deactivated", GiftLink{Active: false}, false},
		{"deactivated before expiry", GiftLink{Active: false, ExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.IsUsable(now); got != tt.want {
				t.Errorf("IsUsable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSavingsGoalIsOpen(t *testing.T) {
	for _, status := range []string{GoalStatusPaused, GoalStatusCompleted, GoalStatusPurchased, GoalStatusCancelled} {
		goal := &SavingsGoal{Status: status}
		if goal.IsOpen() {
			t.Errorf("status %q should not be open", status)
		}
	}
	active := &SavingsGoal{Status: GoalStatusActive}
	if !active.IsOpen() {
		t.Error("active goal should be open")
	}
}

func TestMatchingRuleRemaining(t *testing.T) {
	tests := []struct {
		name    string
		max     string
		matched string
		want    string
	}{
		{"untouched", "20.00", "0", "20.00"},
		{"partially used", "20.00", "12.50", "7.50"},
		{"exhausted", "20.00", "20.00", "0.00"},
		{"overshot clamps to zero", "20.00", "21.00", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &ParentMatchingRule{
				MaxMatchAmount:     decimal.RequireFromString(tt.max),
				TotalMatchedAmount: decimal.RequireFromString(tt.matched),
			}
			want := decimal.RequireFromString(tt.want)
			if got := rule.Remaining(); !got.Equal(want) {
				t.Errorf("Remaining() = %s, want %s", got, want)
			}
		})
	}
}
