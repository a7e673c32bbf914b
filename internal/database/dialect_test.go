package database

import (
	"testing"
)

func TestDialectProperties(t *testing.T) {
	tests := []struct {
		name             string
		dialect          Dialect
		driverName       string
		lastInsertId     bool
		migrationsSubdir string
	}{
		{"sqlite", NewSQLiteDialect(), "sqlite3", true, "sqlite"},
		{"postgres", NewPostgresDialect(), "postgres", false, "postgres"},
		{"mysql", NewMySQLDialect(), "mysql", true, "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driverName {
				t.Errorf("DriverName() = %v, want %v", got, tt.driverName)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertId {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertId)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationsSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationsSubdir)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM children WHERE id = ?",
			expected: "SELECT * FROM children WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM children WHERE family_id = ?",
			expected: "SELECT * FROM children WHERE family_id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO transactions (child_id, amount, category) VALUES (?, ?, ?)",
			expected: "INSERT INTO transactions (child_id, amount, category) VALUES ($1, $2, $3)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE savings_goals SET status = ?, updated_at = ? WHERE id = ?",
			expected: "UPDATE savings_goals SET status = ?, updated_at = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestBoolValue(t *testing.T) {
	sqlite := NewSQLiteDialect()
	if sqlite.BoolValue(true) != "1" || sqlite.BoolValue(false) != "0" {
		t.Error("sqlite should render booleans as 1 and 0")
	}

	for _, d := range []Dialect{NewPostgresDialect(), NewMySQLDialect()} {
		if d.BoolValue(true) != "TRUE" || d.BoolValue(false) != "FALSE" {
			t.Errorf("%s should render booleans as TRUE and FALSE", d.DriverName())
		}
	}
}
