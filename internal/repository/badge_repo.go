package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// BadgeRepository handles database operations for the badge catalog,
// per-child progress and cosmetic rewards
type BadgeRepository struct {
	db *database.DB
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// ListBadgesByCriteria retrieves catalog badges for one criteria type
func (r *BadgeRepository) ListBadgesByCriteria(criteriaType string) ([]models.Badge, error) {
	query := `SELECT id, code, name, description, icon, criteria_type, threshold, points
		FROM badges WHERE criteria_type = ? ORDER BY threshold`
	rows, err := r.db.Query(query, criteriaType)
	if err != nil {
		return nil, fmt.Errorf("failed to query badges: %w", err)
	}
	defer rows.Close()

	var badges []models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Code, &b.Name, &b.Description, &b.Icon, &b.CriteriaType, &b.Threshold, &b.Points); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// GetChildBadge retrieves a child's progress row for one badge, if any
func (r *BadgeRepository) GetChildBadge(childID, badgeID int64) (*models.ChildBadge, error) {
	query := `SELECT id, child_id, badge_id, progress, earned_at
		FROM child_badges WHERE child_id = ? AND badge_id = ?`
	cb := &models.ChildBadge{}
	var earnedAt sql.NullTime
	err := r.db.QueryRow(query, childID, badgeID).Scan(&cb.ID, &cb.ChildID, &cb.BadgeID, &cb.Progress, &earnedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child badge: %w", err)
	}
	if earnedAt.Valid {
		cb.EarnedAt = &earnedAt.Time
	}
	return cb, nil
}

// CreateChildBadge inserts a fresh progress row
func (r *BadgeRepository) CreateChildBadge(cb *models.ChildBadge) error {
	query := "INSERT INTO child_badges (child_id, badge_id, progress, earned_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, cb.ChildID, cb.BadgeID, cb.Progress, cb.EarnedAt)
	if err != nil {
		return fmt.Errorf("failed to create child badge: %w", err)
	}
	cb.ID = id
	return nil
}

// UpdateChildBadgeProgress saves new progress; earned_at is only ever set,
// never cleared
func (r *BadgeRepository) UpdateChildBadgeProgress(id int64, progress decimal.Decimal, earnedAt *time.Time) error {
	query := `UPDATE child_badges SET progress = ?,
		earned_at = COALESCE(earned_at, ?) WHERE id = ?`
	if _, err := r.db.Exec(query, progress, earnedAt, id); err != nil {
		return fmt.Errorf("failed to update badge progress: %w", err)
	}
	return nil
}

// ListChildBadges retrieves a child's progress joined with the catalog,
// earned badges first
func (r *BadgeRepository) ListChildBadges(childID int64) ([]models.ChildBadgeDetail, error) {
	query := `SELECT b.id, b.code, b.name, b.description, b.icon, b.criteria_type, b.threshold, b.points,
		cb.progress, cb.earned_at
		FROM child_badges cb
		JOIN badges b ON b.id = cb.badge_id
		WHERE cb.child_id = ?
		ORDER BY cb.earned_at IS NULL, cb.earned_at DESC, b.criteria_type, b.threshold`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query child badges: %w", err)
	}
	defer rows.Close()

	var details []models.ChildBadgeDetail
	for rows.Next() {
		var d models.ChildBadgeDetail
		var earnedAt sql.NullTime
		err := rows.Scan(
			&d.Badge.ID, &d.Badge.Code, &d.Badge.Name, &d.Badge.Description, &d.Badge.Icon,
			&d.Badge.CriteriaType, &d.Badge.Threshold, &d.Badge.Points,
			&d.Progress, &earnedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child badge: %w", err)
		}
		if earnedAt.Valid {
			d.EarnedAt = &earnedAt.Time
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// SumEarnedPoints totals the points of a child's earned badges
func (r *BadgeRepository) SumEarnedPoints(childID int64) (int, error) {
	query := `SELECT COALESCE(SUM(b.points), 0) FROM child_badges cb
		JOIN badges b ON b.id = cb.badge_id
		WHERE cb.child_id = ? AND cb.earned_at IS NOT NULL`
	var points int
	if err := r.db.QueryRow(query, childID).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to sum badge points: %w", err)
	}
	return points, nil
}

// SumSpentPoints totals the cost of a child's purchased rewards
func (r *BadgeRepository) SumSpentPoints(childID int64) (int, error) {
	query := "SELECT COALESCE(SUM(cost), 0) FROM rewards WHERE child_id = ?"
	var points int
	if err := r.db.QueryRow(query, childID).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to sum spent points: %w", err)
	}
	return points, nil
}

// CreateReward records a cosmetic purchase
func (r *BadgeRepository) CreateReward(reward *models.Reward) error {
	dialect := r.db.Dialect
	query := "INSERT INTO rewards (child_id, type, name, cost, equipped) VALUES (?, ?, ?, ?, " +
		dialect.BoolValue(reward.Equipped) + ")"
	id, err := r.db.ExecReturningID(query, reward.ChildID, reward.Type, reward.Name, reward.Cost)
	if err != nil {
		return fmt.Errorf("failed to create reward: %w", err)
	}
	reward.ID = id
	return nil
}

// GetRewardByID retrieves a reward by ID
func (r *BadgeRepository) GetRewardByID(id int64) (*models.Reward, error) {
	query := "SELECT id, child_id, type, name, cost, equipped, created_at FROM rewards WHERE id = ?"
	reward := &models.Reward{}
	err := r.db.QueryRow(query, id).Scan(
		&reward.ID, &reward.ChildID, &reward.Type, &reward.Name,
		&reward.Cost, &reward.Equipped, &reward.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	return reward, nil
}

// ListRewardsByChild retrieves a child's purchased rewards
func (r *BadgeRepository) ListRewardsByChild(childID int64) ([]models.Reward, error) {
	query := `SELECT id, child_id, type, name, cost, equipped, created_at
		FROM rewards WHERE child_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		var reward models.Reward
		err := rows.Scan(&reward.ID, &reward.ChildID, &reward.Type, &reward.Name,
			&reward.Cost, &reward.Equipped, &reward.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	return rewards, rows.Err()
}

// EquipReward marks one reward equipped and unequips any other reward of the
// same type for that child
func (r *BadgeRepository) EquipReward(childID, rewardID int64, rewardType string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dialect := tx.GetDialect()
	_, err = tx.Exec("UPDATE rewards SET equipped = "+dialect.BoolValue(false)+
		" WHERE child_id = ? AND type = ?", childID, rewardType)
	if err != nil {
		return fmt.Errorf("failed to unequip rewards: %w", err)
	}

	_, err = tx.Exec("UPDATE rewards SET equipped = "+dialect.BoolValue(true)+" WHERE id = ?", rewardID)
	if err != nil {
		return fmt.Errorf("failed to equip reward: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UnequipReward clears the equipped flag on a reward
func (r *BadgeRepository) UnequipReward(rewardID int64) error {
	query := "UPDATE rewards SET equipped = " + r.db.Dialect.BoolValue(false) + " WHERE id = ?"
	if _, err := r.db.Exec(query, rewardID); err != nil {
		return fmt.Errorf("failed to unequip reward: %w", err)
	}
	return nil
}
