package security

import (
	"strings"
	"testing"
)

func TestGenerateChildUsername(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		username, err := GenerateChildUsername()
		if err != nil {
			t.Fatalf("GenerateChildUsername() error: %v", err)
		}

		parts := strings.Split(username, "-")
		if len(parts) != 2 {
			t.Fatalf("expected adjective-noun format, got %q", username)
		}
		if parts[0] == "" || parts[1] == "" {
			t.Errorf("empty username part in %q", username)
		}
		seen[username] = true
	}

	// 36x36 combinations; 50 draws should not all collapse to one value
	if len(seen) < 2 {
		t.Error("expected some variety in generated usernames")
	}
}

func TestGenerateChildPassword(t *testing.T) {
	passwords := make(map[string]bool)
	for i := 0; i < 100; i++ {
		password, err := GenerateChildPassword()
		if err != nil {
			t.Fatalf("GenerateChildPassword() error: %v", err)
		}
		if len(password) != 6 {
			t.Errorf("password length = %d, want 6", len(password))
		}
		passwords[password] = true
	}

	if len(passwords) < 50 {
		t.Errorf("expected mostly unique passwords, got %d distinct out of 100", len(passwords))
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		check    string
		want     bool
	}{
		{"correct password", "secret-pass-1", "secret-pass-1", true},
		{"wrong password", "secret-pass-1", "secret-pass-2", false},
		{"empty check", "secret-pass-1", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if err != nil {
				t.Fatalf("HashPassword() error: %v", err)
			}
			if hash == tt.password {
				t.Error("hash should not equal the plain password")
			}
			if got := CheckPassword(tt.check, hash); got != tt.want {
				t.Errorf("CheckPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
