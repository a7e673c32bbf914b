package models

import "time"

// User roles
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User represents an account in the system. Parents register directly;
// child users are provisioned alongside a child profile.
type User struct {
	ID            int64
	Email         string
	Username      string // generated sign-in name for child users, empty for parents
	PasswordHash  string
	Name          string
	Role          string // 'parent' or 'child'
	FamilyID      *int64
	OAuthProvider string
	OAuthSubject  string
	IsAdmin       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsParent reports whether the user holds the parent role.
func (u *User) IsParent() bool {
	return u.Role == RoleParent
}

// RefreshToken is an opaque server-side token used to mint new access tokens
type RefreshToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}

// IsExpired checks if the refresh token has expired
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
