package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `id, family_id, user_id, name, avatar_color, avatar_key,
	current_balance, savings_balance, weekly_allowance, allowance_day,
	allowance_paused, last_allowance_at, savings_transfer_percent,
	created_at, updated_at`

func scanChild(row interface{ Scan(...interface{}) error }) (*models.Child, error) {
	child := &models.Child{}
	var userID sql.NullInt64
	var allowanceDay sql.NullInt64
	var lastAllowanceAt sql.NullTime
	err := row.Scan(
		&child.ID, &child.FamilyID, &userID, &child.Name, &child.AvatarColor,
		&child.AvatarKey, &child.CurrentBalance, &child.SavingsBalance,
		&child.WeeklyAllowance, &allowanceDay, &child.AllowancePaused,
		&lastAllowanceAt, &child.SavingsTransferPercent,
		&child.CreatedAt, &child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if userID.Valid {
		child.UserID = &userID.Int64
	}
	if allowanceDay.Valid {
		day := int(allowanceDay.Int64)
		child.AllowanceDay = &day
	}
	if lastAllowanceAt.Valid {
		child.LastAllowanceAt = &lastAllowanceAt.Time
	}
	return child, nil
}

// CreateChild creates a new child profile
func (r *ChildRepository) CreateChild(familyID int64, userID *int64, name, avatarColor string) (*models.Child, error) {
	query := "INSERT INTO children (family_id, user_id, name, avatar_color) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, familyID, userID, name, avatarColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}
	return r.GetChildByID(id)
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(childID int64) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = ?"
	child, err := scanChild(r.db.QueryRow(query, childID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetChildByUserID retrieves the child profile linked to a user account
func (r *ChildRepository) GetChildByUserID(userID int64) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE user_id = ?"
	child, err := scanChild(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child by user: %w", err)
	}
	return child, nil
}

// ListChildrenByFamily retrieves all children in a family
func (r *ChildRepository) ListChildrenByFamily(familyID int64) ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE family_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// ListUnpausedChildren retrieves every child whose allowance is not paused,
// for the daily sweep
func (r *ChildRepository) ListUnpausedChildren() ([]models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE allowance_paused = ? ORDER BY id ASC"
	rows, err := r.db.Query(query, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}
	return children, rows.Err()
}

// UpdateChildProfile updates a child's display fields
func (r *ChildRepository) UpdateChildProfile(childID int64, name, avatarColor string) error {
	query := "UPDATE children SET name = ?, avatar_color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, avatarColor, childID); err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// LinkUser attaches a login account to a child profile
func (r *ChildRepository) LinkUser(childID, userID int64) error {
	query := "UPDATE children SET user_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, userID, childID); err != nil {
		return fmt.Errorf("failed to link user: %w", err)
	}
	return nil
}

// UpdateAvatarKey sets the blob storage key for a child's photo
func (r *ChildRepository) UpdateAvatarKey(childID int64, key string) error {
	query := "UPDATE children SET avatar_key = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, key, childID); err != nil {
		return fmt.Errorf("failed to update avatar key: %w", err)
	}
	return nil
}

// UpdateAllowanceSettings updates a child's allowance configuration
func (r *ChildRepository) UpdateAllowanceSettings(childID int64, weekly decimal.Decimal, day *int, savingsTransferPercent int) error {
	query := `UPDATE children SET weekly_allowance = ?, allowance_day = ?,
		savings_transfer_percent = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := r.db.Exec(query, weekly, day, savingsTransferPercent, childID); err != nil {
		return fmt.Errorf("failed to update allowance settings: %w", err)
	}
	return nil
}

// UpdateSavingsTransferPercent sets the share of each allowance swept into
// the savings balance
func (r *ChildRepository) UpdateSavingsTransferPercent(childID int64, percent int) error {
	query := "UPDATE children SET savings_transfer_percent = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, percent, childID); err != nil {
		return fmt.Errorf("failed to update savings transfer percent: %w", err)
	}
	return nil
}

// SetAllowancePaused pauses or resumes a child's allowance
func (r *ChildRepository) SetAllowancePaused(childID int64, paused bool) error {
	query := "UPDATE children SET allowance_paused = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, paused, childID); err != nil {
		return fmt.Errorf("failed to set allowance paused: %w", err)
	}
	return nil
}

// DeleteChild deletes a child profile and all associated data
func (r *ChildRepository) DeleteChild(childID int64) error {
	if _, err := r.db.Exec("DELETE FROM children WHERE id = ?", childID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}

// ApplyAllowance atomically credits an allowance payment: balances are set
// to their new values, the ledger entry is appended and the payment time is
// recorded.
func (r *ChildRepository) ApplyAllowance(childID int64, newCurrent, newSavings decimal.Decimal, paidAt time.Time, entry *models.Transaction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE children SET current_balance = ?, savings_balance = ?,
		last_allowance_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := tx.Exec(query, newCurrent, newSavings, paidAt, childID); err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}

	if err := insertTransaction(tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ApplyBalanceMove atomically moves money between the spending and savings
// balances, appending the ledger entry.
func (r *ChildRepository) ApplyBalanceMove(childID int64, newCurrent, newSavings decimal.Decimal, entry *models.Transaction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE children SET current_balance = ?, savings_balance = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := tx.Exec(query, newCurrent, newSavings, childID); err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}

	if err := insertTransaction(tx, entry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
