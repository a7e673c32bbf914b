package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// GiftRepository handles database operations for gift links, gifts and
// thank-you notes
type GiftRepository struct {
	db *database.DB
}

// NewGiftRepository creates a new gift repository
func NewGiftRepository(db *database.DB) *GiftRepository {
	return &GiftRepository{db: db}
}

// CreateGiftLink inserts a shareable gift link
func (r *GiftRepository) CreateGiftLink(link *models.GiftLink) error {
	query := `INSERT INTO gift_links (token, child_id, goal_id, message, active, expires_at, created_by)
		VALUES (?, ?, ?, ?, ` + r.db.Dialect.BoolValue(true) + `, ?, ?)`
	id, err := r.db.ExecReturningID(query,
		link.Token, link.ChildID, link.GoalID, link.Message, link.ExpiresAt, link.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create gift link: %w", err)
	}
	link.ID = id
	link.Active = true
	return nil
}

func scanGiftLink(row interface{ Scan(...interface{}) error }) (*models.GiftLink, error) {
	link := &models.GiftLink{}
	var goalID sql.NullInt64
	var expiresAt sql.NullTime
	err := row.Scan(
		&link.ID, &link.Token, &link.ChildID, &goalID, &link.Message,
		&link.Active, &expiresAt, &link.CreatedBy, &link.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if goalID.Valid {
		link.GoalID = &goalID.Int64
	}
	if expiresAt.Valid {
		link.ExpiresAt = &expiresAt.Time
	}
	return link, nil
}

const giftLinkColumns = "id, token, child_id, goal_id, message, active, expires_at, created_by, created_at"

// GetGiftLinkByToken retrieves a gift link by its public token
func (r *GiftRepository) GetGiftLinkByToken(token string) (*models.GiftLink, error) {
	row := r.db.QueryRow("SELECT "+giftLinkColumns+" FROM gift_links WHERE token = ?", token)
	link, err := scanGiftLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift link: %w", err)
	}
	return link, nil
}

// GetGiftLinkByID retrieves a gift link by ID
func (r *GiftRepository) GetGiftLinkByID(id int64) (*models.GiftLink, error) {
	row := r.db.QueryRow("SELECT "+giftLinkColumns+" FROM gift_links WHERE id = ?", id)
	link, err := scanGiftLink(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift link: %w", err)
	}
	return link, nil
}

// ListGiftLinksByChild retrieves a child's gift links, newest first
func (r *GiftRepository) ListGiftLinksByChild(childID int64) ([]models.GiftLink, error) {
	query := "SELECT " + giftLinkColumns + " FROM gift_links WHERE child_id = ? ORDER BY created_at DESC, id DESC"
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift links: %w", err)
	}
	defer rows.Close()

	var links []models.GiftLink
	for rows.Next() {
		link, err := scanGiftLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift link: %w", err)
		}
		links = append(links, *link)
	}
	return links, rows.Err()
}

// DeactivateGiftLink turns a link off
func (r *GiftRepository) DeactivateGiftLink(linkID int64) error {
	query := "UPDATE gift_links SET active = " + r.db.Dialect.BoolValue(false) + " WHERE id = ?"
	if _, err := r.db.Exec(query, linkID); err != nil {
		return fmt.Errorf("failed to deactivate gift link: %w", err)
	}
	return nil
}

func insertGift(tx *database.Tx, gift *models.Gift) error {
	id, err := tx.ExecReturningID(
		"INSERT INTO gifts (gift_link_id, giver_name, giver_email, amount, message) VALUES (?, ?, ?, ?, ?)",
		gift.GiftLinkID, gift.GiverName, gift.GiverEmail, gift.Amount, gift.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record gift: %w", err)
	}
	gift.ID = id
	return nil
}

// CreateGiftWithBalanceCredit atomically records a gift and credits the
// child's spending balance
func (r *GiftRepository) CreateGiftWithBalanceCredit(gift *models.Gift, childID int64, newBalance decimal.Decimal, entry *models.Transaction) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertGift(tx, gift); err != nil {
		return err
	}

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

// CreateGiftWithGoalCredit atomically records a gift and applies its
// computed contribution effect to the target goal
func (r *GiftRepository) CreateGiftWithGoalCredit(gift *models.Gift, plan *ContributionApply) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertGift(tx, gift); err != nil {
		return err
	}

	if err := applyContribution(tx, plan); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGiftByID retrieves a gift by ID
func (r *GiftRepository) GetGiftByID(id int64) (*models.Gift, error) {
	query := "SELECT id, gift_link_id, giver_name, giver_email, amount, message, created_at FROM gifts WHERE id = ?"
	gift := &models.Gift{}
	err := r.db.QueryRow(query, id).Scan(
		&gift.ID, &gift.GiftLinkID, &gift.GiverName, &gift.GiverEmail,
		&gift.Amount, &gift.Message, &gift.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift: %w", err)
	}
	return gift, nil
}

// ListGiftsByChild retrieves every gift received by a child, newest first
func (r *GiftRepository) ListGiftsByChild(childID int64) ([]models.Gift, error) {
	query := `SELECT g.id, g.gift_link_id, g.giver_name, g.giver_email, g.amount, g.message, g.created_at
		FROM gifts g
		JOIN gift_links l ON l.id = g.gift_link_id
		WHERE l.child_id = ?
		ORDER BY g.created_at DESC, g.id DESC`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gifts: %w", err)
	}
	defer rows.Close()

	var gifts []models.Gift
	for rows.Next() {
		var gift models.Gift
		err := rows.Scan(&gift.ID, &gift.GiftLinkID, &gift.GiverName, &gift.GiverEmail,
			&gift.Amount, &gift.Message, &gift.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan gift: %w", err)
		}
		gifts = append(gifts, gift)
	}
	return gifts, rows.Err()
}

// CreateThankYouNote inserts a child's note for a gift; the gift_id unique
// constraint rejects duplicates
func (r *GiftRepository) CreateThankYouNote(note *models.ThankYouNote) error {
	query := "INSERT INTO thank_you_notes (gift_id, message) VALUES (?, ?)"
	id, err := r.db.ExecReturningID(query, note.GiftID, note.Message)
	if err != nil {
		return fmt.Errorf("failed to create thank-you note: %w", err)
	}
	note.ID = id
	return nil
}

// GetThankYouNoteByGift retrieves the note for a gift, if written
func (r *GiftRepository) GetThankYouNoteByGift(giftID int64) (*models.ThankYouNote, error) {
	query := "SELECT id, gift_id, message, sent_at, created_at FROM thank_you_notes WHERE gift_id = ?"
	note := &models.ThankYouNote{}
	var sentAt sql.NullTime
	err := r.db.QueryRow(query, giftID).Scan(&note.ID, &note.GiftID, &note.Message, &sentAt, &note.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thank-you note: %w", err)
	}
	if sentAt.Valid {
		note.SentAt = &sentAt.Time
	}
	return note, nil
}

// MarkThankYouNoteSent stamps the note once it has been emailed
func (r *GiftRepository) MarkThankYouNoteSent(noteID int64, sentAt time.Time) error {
	if _, err := r.db.Exec("UPDATE thank_you_notes SET sent_at = ? WHERE id = ?", sentAt, noteID); err != nil {
		return fmt.Errorf("failed to mark note sent: %w", err)
	}
	return nil
}
