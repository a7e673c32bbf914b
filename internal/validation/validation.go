package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ParseAmount parses a positive money amount from its string form.
// Amounts are limited to two decimal places.
func ParseAmount(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, ValidationError{Field: field, Message: "amount is required"}
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, ValidationError{Field: field, Message: "invalid amount"}
	}
	if !amount.IsPositive() {
		return decimal.Zero, ValidationError{Field: field, Message: "amount must be positive"}
	}
	if amount.Exponent() < -2 {
		return decimal.Zero, ValidationError{Field: field, Message: "amount has too many decimal places"}
	}
	return amount, nil
}

// ValidatePercent checks an integer percentage in the range [0, 100]
func ValidatePercent(field string, percent int) error {
	if percent < 0 || percent > 100 {
		return ValidationError{Field: field, Message: "percent must be between 0 and 100"}
	}
	return nil
}

// ValidateWeekday checks a day-of-week value (0 = Sunday)
func ValidateWeekday(field string, day int) error {
	if day < 0 || day > 6 {
		return ValidationError{Field: field, Message: "day must be between 0 (Sunday) and 6 (Saturday)"}
	}
	return nil
}
