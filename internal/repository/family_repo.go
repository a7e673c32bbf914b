package repository

import (
	"database/sql"
	"fmt"

	"pennyjar/internal/database"
	"pennyjar/internal/models"
)

// FamilyRepository handles database operations for families
type FamilyRepository struct {
	db *database.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// CreateFamily creates a new family and sets the creator as its owner and
// first member
func (r *FamilyRepository) CreateFamily(name, inviteCode string, ownerUserID int64) (*models.Family, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := "INSERT INTO families (name, invite_code, owner_user_id) VALUES (?, ?, ?)"
	familyID, err := tx.ExecReturningID(query, name, inviteCode, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	query = "UPDATE users SET family_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(query, familyID, ownerUserID); err != nil {
		return nil, fmt.Errorf("failed to add family owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return r.GetFamilyByID(familyID)
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT id, name, invite_code, owner_user_id, created_at, updated_at FROM families WHERE id = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, familyID).Scan(
		&family.ID,
		&family.Name,
		&family.InviteCode,
		&family.OwnerUserID,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}

	return family, nil
}

// GetFamilyByInviteCode retrieves a family by its invite code
func (r *FamilyRepository) GetFamilyByInviteCode(code string) (*models.Family, error) {
	query := "SELECT id, name, invite_code, owner_user_id, created_at, updated_at FROM families WHERE invite_code = ?"
	family := &models.Family{}
	err := r.db.QueryRow(query, code).Scan(
		&family.ID,
		&family.Name,
		&family.InviteCode,
		&family.OwnerUserID,
		&family.CreatedAt,
		&family.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family by invite code: %w", err)
	}

	return family, nil
}

// UpdateFamilyName updates a family's name
func (r *FamilyRepository) UpdateFamilyName(familyID int64, name string) error {
	query := "UPDATE families SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, familyID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// DeleteFamily deletes a family and all associated data
func (r *FamilyRepository) DeleteFamily(familyID int64) error {
	if _, err := r.db.Exec("DELETE FROM families WHERE id = ?", familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}
