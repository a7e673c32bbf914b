package models

import "time"

// Notification types written by the services
const (
	NotificationBadgeEarned        = "badge_earned"
	NotificationMilestoneReached   = "milestone_reached"
	NotificationGoalCompleted      = "goal_completed"
	NotificationChallengeCompleted = "challenge_completed"
	NotificationGiftReceived       = "gift_received"
	NotificationChoreApproved      = "chore_approved"
	NotificationChoreRejected      = "chore_rejected"
	NotificationBudgetExceeded     = "budget_exceeded"
	NotificationAllowancePaid      = "allowance_paid"
)

// Notification is an in-app message for a user
type Notification struct {
	ID        int64
	UserID    int64
	Type      string
	Title     string
	Body      string
	Read      bool
	CreatedAt time.Time
}

// Device platforms
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// DeviceToken registers a mobile device for push delivery. EndpointARN is
// the SNS platform endpoint created at registration time.
type DeviceToken struct {
	ID          int64
	UserID      int64
	Token       string
	Platform    string
	EndpointARN string
	CreatedAt   time.Time
}
