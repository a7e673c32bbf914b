package security

import (
	"testing"
	"time"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	manager := NewTokenManager("test-secret", 15*time.Minute)

	familyID := int64(7)
	token, expiresAt, err := manager.IssueAccessToken(42, "parent", &familyID)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Error("expected a future expiry")
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "parent" {
		t.Errorf("Role = %q, want parent", claims.Role)
	}
	if claims.FamilyID == nil || *claims.FamilyID != 7 {
		t.Errorf("FamilyID = %v, want 7", claims.FamilyID)
	}
}

func TestParseAccessTokenRejectsBadInput(t *testing.T) {
	manager := NewTokenManager("test-secret", 15*time.Minute)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.ParseAccessToken(tt.token); err != ErrInvalidToken {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", 15*time.Minute)
	verifier := NewTokenManager("secret-b", 15*time.Minute)

	token, _, err := issuer.IssueAccessToken(1, "child", nil)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	if _, err := verifier.ParseAccessToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)

	token, _, err := manager.IssueAccessToken(1, "parent", nil)
	if err != nil {
		t.Fatalf("IssueAccessToken() error: %v", err)
	}

	if _, err := manager.ParseAccessToken(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
