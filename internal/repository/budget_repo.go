package repository

import (
	"database/sql"
	"fmt"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// BudgetRepository handles database operations for category budgets
type BudgetRepository struct {
	db *database.DB
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// UpsertBudget creates or replaces the monthly limit for a child/category pair
func (r *BudgetRepository) UpsertBudget(childID int64, category string, monthlyLimit decimal.Decimal) (*models.CategoryBudget, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM category_budgets WHERE child_id = ? AND category = ?", childID, category).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		id, err = tx.ExecReturningID(
			"INSERT INTO category_budgets (child_id, category, monthly_limit) VALUES (?, ?, ?)",
			childID, category, monthlyLimit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create budget: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up budget: %w", err)
	default:
		_, err = tx.Exec(
			"UPDATE category_budgets SET monthly_limit = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			monthlyLimit, id,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update budget: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.CategoryBudget{ID: id, ChildID: childID, Category: category, MonthlyLimit: monthlyLimit}, nil
}

// GetBudget retrieves the budget for a child/category pair, if set
func (r *BudgetRepository) GetBudget(childID int64, category string) (*models.CategoryBudget, error) {
	query := `SELECT id, child_id, category, monthly_limit, created_at, updated_at
		FROM category_budgets WHERE child_id = ? AND category = ?`
	b := &models.CategoryBudget{}
	err := r.db.QueryRow(query, childID, category).Scan(
		&b.ID, &b.ChildID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	return b, nil
}

// ListBudgetsByChild retrieves a child's budgets
func (r *BudgetRepository) ListBudgetsByChild(childID int64) ([]models.CategoryBudget, error) {
	query := `SELECT id, child_id, category, monthly_limit, created_at, updated_at
		FROM category_budgets WHERE child_id = ? ORDER BY category`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	var budgets []models.CategoryBudget
	for rows.Next() {
		var b models.CategoryBudget
		if err := rows.Scan(&b.ID, &b.ChildID, &b.Category, &b.MonthlyLimit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes the budget for a child/category pair
func (r *BudgetRepository) DeleteBudget(childID int64, category string) error {
	if _, err := r.db.Exec("DELETE FROM category_budgets WHERE child_id = ? AND category = ?", childID, category); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return nil
}
