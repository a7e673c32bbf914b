package validation

import (
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "parent@example.com", false},
		{"valid with plus", "parent+kids@example.co.uk", false},
		{"surrounding whitespace", "  parent@example.com  ", false},
		{"empty", "", true},
		{"no at sign", "parent.example.com", true},
		{"no domain", "parent@", true},
		{"no tld", "parent@example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "correct-horse", false},
		{"exactly eight", "12345678", false},
		{"too short", "1234567", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "Maya", false},
		{"two characters", "Al", false},
		{"one character", "A", true},
		{"empty", "", true},
		{"only whitespace", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{"whole number", "5", "5", false},
		{"two decimal places", "12.50", "12.50", false},
		{"with whitespace", " 3.25 ", "3.25", false},
		{"empty", "", "", true},
		{"not a number", "five", "", true},
		{"zero", "0", "", true},
		{"negative", "-1.00", "", true},
		{"three decimal places", "1.005", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := ParseAmount("amount", tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if !tt.wantErr && amount.String() != tt.want {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.value, amount, tt.want)
			}
		})
	}
}

func TestValidatePercent(t *testing.T) {
	tests := []struct {
		percent int
		wantErr bool
	}{
		{0, false},
		{50, false},
		{100, false},
		{-1, true},
		{101, true},
	}

	for _, tt := range tests {
		err := ValidatePercent("percent", tt.percent)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePercent(%d) error = %v, wantErr %v", tt.percent, err, tt.wantErr)
		}
	}
}

func TestValidateWeekday(t *testing.T) {
	tests := []struct {
		day     int
		wantErr bool
	}{
		{0, false},
		{6, false},
		{-1, true},
		{7, true},
	}

	for _, tt := range tests {
		err := ValidateWeekday("allowance_day", tt.day)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateWeekday(%d) error = %v, wantErr %v", tt.day, err, tt.wantErr)
		}
	}
}
