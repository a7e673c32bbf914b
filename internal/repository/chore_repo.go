package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// ChoreRepository handles database operations for chores
type ChoreRepository struct {
	db *database.DB
}

// NewChoreRepository creates a new chore repository
func NewChoreRepository(db *database.DB) *ChoreRepository {
	return &ChoreRepository{db: db}
}

const choreColumns = `id, family_id, child_id, title, description, reward_amount, status,
	due_date, completed_at, approved_at, created_by, created_at, updated_at`

func scanChore(row interface{ Scan(...interface{}) error }) (*models.Chore, error) {
	c := &models.Chore{}
	var childID sql.NullInt64
	var dueDate, completedAt, approvedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.FamilyID, &childID, &c.Title, &c.Description, &c.RewardAmount,
		&c.Status, &dueDate, &completedAt, &approvedAt,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if childID.Valid {
		c.ChildID = &childID.Int64
	}
	if dueDate.Valid {
		c.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	if approvedAt.Valid {
		c.ApprovedAt = &approvedAt.Time
	}
	return c, nil
}

// CreateChore inserts a new chore
func (r *ChoreRepository) CreateChore(chore *models.Chore) error {
	query := `INSERT INTO chores (family_id, child_id, title, description, reward_amount, status, due_date, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(query,
		chore.FamilyID, chore.ChildID, chore.Title, chore.Description,
		chore.RewardAmount, chore.Status, chore.DueDate, chore.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create chore: %w", err)
	}
	chore.ID = id
	return nil
}

// GetChoreByID retrieves a chore by ID
func (r *ChoreRepository) GetChoreByID(id int64) (*models.Chore, error) {
	row := r.db.QueryRow("SELECT "+choreColumns+" FROM chores WHERE id = ?", id)
	chore, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chore: %w", err)
	}
	return chore, nil
}

// ListChoresByFamily retrieves a family's chores, optionally filtered by
// status and/or child
func (r *ChoreRepository) ListChoresByFamily(familyID int64, status string, childID *int64) ([]models.Chore, error) {
	query := "SELECT " + choreColumns + " FROM chores WHERE family_id = ?"
	args := []interface{}{familyID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	if childID != nil {
		query += " AND child_id = ?"
		args = append(args, *childID)
	}
	query += " ORDER BY CASE status WHEN 'done' THEN 0 WHEN 'open' THEN 1 ELSE 2 END, due_date IS NULL, due_date, id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chores: %w", err)
	}
	defer rows.Close()

	var chores []models.Chore
	for rows.Next() {
		chore, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chore: %w", err)
		}
		chores = append(chores, *chore)
	}
	return chores, rows.Err()
}

// UpdateChore saves editable chore fields
func (r *ChoreRepository) UpdateChore(chore *models.Chore) error {
	query := `UPDATE chores SET child_id = ?, title = ?, description = ?, reward_amount = ?,
		due_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query,
		chore.ChildID, chore.Title, chore.Description, chore.RewardAmount,
		chore.DueDate, chore.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chore: %w", err)
	}
	return nil
}

// MarkChoreDone records a child's completion claim
func (r *ChoreRepository) MarkChoreDone(choreID int64, completedAt time.Time) error {
	query := `UPDATE chores SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, models.ChoreStatusDone, completedAt, choreID)
	if err != nil {
		return fmt.Errorf("failed to mark chore done: %w", err)
	}
	return nil
}

// RejectChore sends a claimed chore back to open
func (r *ChoreRepository) RejectChore(choreID int64) error {
	query := `UPDATE chores SET status = ?, completed_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, models.ChoreStatusRejected, choreID)
	if err != nil {
		return fmt.Errorf("failed to reject chore: %w", err)
	}
	return nil
}

// ApproveWithReward atomically approves the chore, credits the child's
// spending balance and appends the ledger entry
func (r *ChoreRepository) ApproveWithReward(choreID, childID int64, approvedAt time.Time, newBalance decimal.Decimal, entry *models.Transaction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE chores SET status = ?, approved_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := tx.Exec(query, models.ChoreStatusApproved, approvedAt, choreID); err != nil {
		return fmt.Errorf("failed to approve chore: %w", err)
	}

	query = `UPDATE children SET current_balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
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

// DeleteChore removes a chore
func (r *ChoreRepository) DeleteChore(choreID int64) error {
	if _, err := r.db.Exec("DELETE FROM chores WHERE id = ?", choreID); err != nil {
		return fmt.Errorf("failed to delete chore: %w", err)
	}
	return nil
}

// CountApprovedByChild counts a child's approved chores
func (r *ChoreRepository) CountApprovedByChild(childID int64) (int, error) {
	query := "SELECT COUNT(*) FROM chores WHERE child_id = ? AND status = ?"
	var count int
	if err := r.db.QueryRow(query, childID, models.ChoreStatusApproved).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count approved chores: %w", err)
	}
	return count, nil
}
