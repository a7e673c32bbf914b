package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Initialize(dbPath)
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// TestDatabaseIntegration tests the complete database lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := os.Stat(filepath.Join("..", "..", "migrations", "sqlite")); err != nil {
		t.Skip("Migrations directory not available")
	}

	db := openTestDB(t)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	// Tables created by the migrations
	tables := []string{
		"users", "refresh_tokens", "families", "children", "transactions",
		"savings_goals", "goal_milestones", "chores", "gift_links", "gifts",
		"notifications", "child_badges",
	}

	for _, table := range tables {
		query := "SELECT name FROM sqlite_master WHERE type='table' AND name=?"
		var name string
		if err := db.QueryRowContext(ctx, query, table).Scan(&name); err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}
}

// TestDatabaseTransactions tests transaction commit and rollback
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := os.Stat(filepath.Join("..", "..", "migrations", "sqlite")); err != nil {
		t.Skip("Migrations directory not available")
	}

	db := openTestDB(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin transaction: %v", err)
	}
	_, err = tx.ExecContext(ctx, "INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"parent@example.com", "hashedpass", "Test Parent", "parent")
	if err != nil {
		tx.Rollback()
		t.Fatalf("Failed to insert in transaction: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit transaction: %v", err)
	}

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", "parent@example.com").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after commit: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 user, got %d", count)
	}

	tx2, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("Failed to begin second transaction: %v", err)
	}
	_, err = tx2.ExecContext(ctx, "INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"other@example.com", "hashedpass", "Other Parent", "parent")
	if err != nil {
		tx2.Rollback()
		t.Fatalf("Failed to insert in second transaction: %v", err)
	}
	if err := tx2.Rollback(); err != nil {
		t.Fatalf("Failed to rollback transaction: %v", err)
	}

	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE email = ?", "other@example.com").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query after rollback: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 users after rollback, got %d", count)
	}
}

// TestExecReturningID covers the insert-and-return-id path used by every repository
func TestExecReturningID(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if _, err := os.Stat(filepath.Join("..", "..", "migrations", "sqlite")); err != nil {
		t.Skip("Migrations directory not available")
	}

	db := openTestDB(t)

	first, err := db.ExecReturningID("INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"a@example.com", "hash", "A", "parent")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if first <= 0 {
		t.Fatalf("Expected positive id, got %d", first)
	}

	second, err := db.ExecReturningID("INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, ?)",
		"b@example.com", "hash", "B", "parent")
	if err != nil {
		t.Fatalf("ExecReturningID failed: %v", err)
	}
	if second != first+1 {
		t.Errorf("Expected id %d, got %d", first+1, second)
	}
}
