package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"
)

// UserRepository handles database operations for user accounts and refresh tokens
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, password_hash, name, role, family_id,
	oauth_provider, oauth_subject, is_admin, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	var email, username sql.NullString
	var familyID sql.NullInt64
	err := row.Scan(
		&user.ID, &email, &username, &user.PasswordHash, &user.Name, &user.Role,
		&familyID, &user.OAuthProvider, &user.OAuthSubject, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.Username = username.String
	if familyID.Valid {
		user.FamilyID = &familyID.Int64
	}
	return user, nil
}

// CreateParent creates a parent account with email/password credentials
func (r *UserRepository) CreateParent(email, passwordHash, name string) (*models.User, error) {
	query := "INSERT INTO users (email, password_hash, name, role) VALUES (?, ?, ?, 'parent')"
	id, err := r.db.ExecReturningID(query, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByID(id)
}

// CreateOAuthParent creates a parent account provisioned through a social sign-in
func (r *UserRepository) CreateOAuthParent(provider, subject, email, name string) (*models.User, error) {
	query := `INSERT INTO users (email, name, role, oauth_provider, oauth_subject)
		VALUES (?, ?, 'parent', ?, ?)`
	id, err := r.db.ExecReturningID(query, email, name, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	return r.GetUserByID(id)
}

// CreateChildUser creates a child-role account with a generated username
func (r *UserRepository) CreateChildUser(username, passwordHash, name string, familyID int64) (*models.User, error) {
	query := `INSERT INTO users (username, password_hash, name, role, family_id)
		VALUES (?, ?, ?, 'child', ?)`
	id, err := r.db.ExecReturningID(query, username, passwordHash, name, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to create child user: %w", err)
	}
	return r.GetUserByID(id)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	user, err := scanUser(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	user, err := scanUser(r.db.QueryRow(query, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByUsername retrieves a user by their generated sign-in name
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	user, err := scanUser(r.db.QueryRow(query, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetUserByOAuth retrieves a user by OAuth provider and subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE oauth_provider = ? AND oauth_subject = ?"
	user, err := scanUser(r.db.QueryRow(query, provider, subject))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by oauth identity: %w", err)
	}
	return user, nil
}

// ListParentsByFamily retrieves all parent accounts in a family
func (r *UserRepository) ListParentsByFamily(familyID int64) ([]models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE family_id = ? AND role = 'parent' ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parents: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan parent: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// SetUserFamily updates a user's family membership; nil removes it
func (r *UserRepository) SetUserFamily(userID int64, familyID *int64) error {
	query := "UPDATE users SET family_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, familyID, userID); err != nil {
		return fmt.Errorf("failed to set user family: %w", err)
	}
	return nil
}

// UpdateUserPassword replaces a user's password hash
func (r *UserRepository) UpdateUserPassword(userID int64, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, passwordHash, userID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// DeleteUser removes a user account
func (r *UserRepository) DeleteUser(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM users WHERE id = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a new refresh token
func (r *UserRepository) CreateRefreshToken(token string, userID int64, expiresAt time.Time) error {
	query := "INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, token, userID, expiresAt); err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token
func (r *UserRepository) GetRefreshToken(token string) (*models.RefreshToken, error) {
	query := "SELECT token, user_id, expires_at, created_at, revoked FROM refresh_tokens WHERE token = ?"
	rt := &models.RefreshToken{}
	err := r.db.QueryRow(query, token).Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt, &rt.Revoked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return rt, nil
}

// RevokeRefreshToken marks a refresh token as revoked
func (r *UserRepository) RevokeRefreshToken(token string) error {
	query := "UPDATE refresh_tokens SET revoked = ? WHERE token = ?"
	if _, err := r.db.Exec(query, true, token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// DeleteExpiredRefreshTokens removes refresh tokens past their expiry
func (r *UserRepository) DeleteExpiredRefreshTokens() error {
	query := "DELETE FROM refresh_tokens WHERE expires_at < CURRENT_TIMESTAMP"
	if _, err := r.db.Exec(query); err != nil {
		return fmt.Errorf("failed to delete expired refresh tokens: %w", err)
	}
	return nil
}
