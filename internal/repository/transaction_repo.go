package repository

import (
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionRepository handles database operations for the ledger
type TransactionRepository struct {
	db *database.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// insertTransaction appends a ledger row inside an existing transaction.
// Shared by every repository that moves money.
func insertTransaction(tx database.DBTX, entry *models.Transaction) error {
	query := `INSERT INTO transactions (child_id, amount, type, category, description, balance_after, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	id, err := tx.ExecReturningID(query,
		entry.ChildID, entry.Amount, entry.Type, entry.Category,
		entry.Description, entry.BalanceAfter, entry.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	entry.ID = id
	return nil
}

// AppendWithBalance atomically sets the child's new spending balance and
// appends the ledger entry recording the movement.
func (r *TransactionRepository) AppendWithBalance(childID int64, newBalance decimal.Decimal, entry *models.Transaction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "UPDATE children SET current_balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(query, newBalance, childID); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	if err := insertTransaction(tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanTransaction(row interface{ Scan(...interface{}) error }) (*models.Transaction, error) {
	t := &models.Transaction{}
	var createdBy *int64
	err := row.Scan(
		&t.ID, &t.ChildID, &t.Amount, &t.Type, &t.Category,
		&t.Description, &t.BalanceAfter, &createdBy, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CreatedBy = createdBy
	return t, nil
}

// ListByChild retrieves a page of a child's ledger, newest first, with an
// optional category filter
func (r *TransactionRepository) ListByChild(childID int64, category string, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT id, child_id, amount, type, category, description, balance_after, created_by, created_at
		FROM transactions WHERE child_id = ?`
	args := []interface{}{childID}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []models.Transaction
	for rows.Next() {
		entry, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// SumByType returns a child's lifetime credited and debited totals
func (r *TransactionRepository) SumByType(childID int64) (credited, debited decimal.Decimal, err error) {
	query := `SELECT
		COALESCE(SUM(CASE WHEN type = 'credit' THEN amount ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN type = 'debit' THEN amount ELSE 0 END), 0)
		FROM transactions WHERE child_id = ?`
	if err := r.db.QueryRow(query, childID).Scan(&credited, &debited); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return credited, debited, nil
}

// SumCategoryDebits totals a child's debits in one category over a time range
func (r *TransactionRepository) SumCategoryDebits(childID int64, category string, from, to time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE child_id = ? AND type = 'debit' AND category = ? AND created_at >= ? AND created_at < ?`
	var total decimal.Decimal
	if err := r.db.QueryRow(query, childID, category, from, to).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum category debits: %w", err)
	}
	return total, nil
}

// CategoryTotal pairs a category with its debit total
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// SpendingByCategory totals a child's debits per category over a time range
func (r *TransactionRepository) SpendingByCategory(childID int64, from, to time.Time) ([]CategoryTotal, error) {
	query := `SELECT category, COALESCE(SUM(amount), 0) FROM transactions
		WHERE child_id = ? AND type = 'debit' AND created_at >= ? AND created_at < ?
		GROUP BY category ORDER BY 2 DESC`
	rows, err := r.db.Query(query, childID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending by category: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

// BalancePoint is one sample of the balance series
type BalancePoint struct {
	At      time.Time
	Balance decimal.Decimal
}

// BalanceHistory returns the most recent BalanceAfter samples, oldest first
func (r *TransactionRepository) BalanceHistory(childID int64, limit int) ([]BalancePoint, error) {
	query := `SELECT created_at, balance_after FROM transactions
		WHERE child_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	rows, err := r.db.Query(query, childID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance history: %w", err)
	}
	defer rows.Close()

	var points []BalancePoint
	for rows.Next() {
		var p BalancePoint
		if err := rows.Scan(&p.At, &p.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan balance point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}
