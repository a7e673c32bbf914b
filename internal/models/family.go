package models

import "time"

// Family is the tenant boundary: every child profile and every parent
// account belongs to exactly one family.
type Family struct {
	ID          int64
	Name        string
	InviteCode  string
	OwnerUserID int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FamilyWithMembers combines a family with its parent accounts and children
type FamilyWithMembers struct {
	Family   Family
	Parents  []User
	Children []Child
}
