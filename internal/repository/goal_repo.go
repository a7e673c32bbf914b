package repository

import (
	"database/sql"
	"fmt"
	"time"

	"pennyjar/internal/database"
	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

// GoalRepository handles database operations for savings goals and their
// milestones, matching rules, challenges and contribution ledger
type GoalRepository struct {
	db *database.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *database.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, child_id, name, description, image_key, target_amount, current_amount,
	status, priority, transfer_type, transfer_amount, transfer_percent,
	created_at, updated_at, completed_at`

func scanGoal(row interface{ Scan(...interface{}) error }) (*models.SavingsGoal, error) {
	g := &models.SavingsGoal{}
	var completedAt sql.NullTime
	err := row.Scan(
		&g.ID, &g.ChildID, &g.Name, &g.Description, &g.ImageKey,
		&g.TargetAmount, &g.CurrentAmount, &g.Status, &g.Priority,
		&g.TransferType, &g.TransferAmount, &g.TransferPercent,
		&g.CreatedAt, &g.UpdatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		g.CompletedAt = &completedAt.Time
	}
	return g, nil
}

// CreateGoal inserts a goal together with its milestone rows
func (r *GoalRepository) CreateGoal(goal *models.SavingsGoal, milestones []models.GoalMilestone) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO savings_goals (child_id, name, description, image_key, target_amount,
		current_amount, status, priority, transfer_type, transfer_amount, transfer_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	id, err := tx.ExecReturningID(query,
		goal.ChildID, goal.Name, goal.Description, goal.ImageKey, goal.TargetAmount,
		goal.CurrentAmount, goal.Status, goal.Priority,
		goal.TransferType, goal.TransferAmount, goal.TransferPercent,
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	goal.ID = id

	for i := range milestones {
		milestones[i].GoalID = id
		mid, err := tx.ExecReturningID(
			"INSERT INTO goal_milestones (goal_id, percent, target_amount) VALUES (?, ?, ?)",
			id, milestones[i].Percent, milestones[i].TargetAmount,
		)
		if err != nil {
			return fmt.Errorf("failed to create milestone: %w", err)
		}
		milestones[i].ID = mid
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGoalByID retrieves a goal by ID
func (r *GoalRepository) GetGoalByID(id int64) (*models.SavingsGoal, error) {
	row := r.db.QueryRow("SELECT "+goalColumns+" FROM savings_goals WHERE id = ?", id)
	goal, err := scanGoal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListGoalsByChild retrieves all of a child's goals, active first then by priority
func (r *GoalRepository) ListGoalsByChild(childID int64) ([]models.SavingsGoal, error) {
	query := "SELECT " + goalColumns + ` FROM savings_goals WHERE child_id = ?
		ORDER BY CASE status WHEN 'active' THEN 0 WHEN 'paused' THEN 1 ELSE 2 END, priority, id`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.SavingsGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

// ListActiveGoalsByChild retrieves a child's active goals in funding order
func (r *GoalRepository) ListActiveGoalsByChild(childID int64) ([]models.SavingsGoal, error) {
	query := "SELECT " + goalColumns + ` FROM savings_goals
		WHERE child_id = ? AND status = 'active' ORDER BY priority, id`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active goals: %w", err)
	}
	defer rows.Close()

	var goals []models.SavingsGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

// GetGoalDetail retrieves a goal with its milestones, active matching rule
// and active challenge
func (r *GoalRepository) GetGoalDetail(id int64) (*models.GoalDetail, error) {
	goal, err := r.GetGoalByID(id)
	if err != nil || goal == nil {
		return nil, err
	}

	milestones, err := r.ListMilestones(id)
	if err != nil {
		return nil, err
	}

	rule, err := r.GetActiveMatchingRule(id)
	if err != nil {
		return nil, err
	}

	challenge, err := r.GetActiveChallenge(id)
	if err != nil {
		return nil, err
	}

	return &models.GoalDetail{
		Goal:         *goal,
		Milestones:   milestones,
		MatchingRule: rule,
		Challenge:    challenge,
	}, nil
}

// UpdateGoal saves editable goal fields and retargets unachieved milestones
// to the (possibly changed) target amount
func (r *GoalRepository) UpdateGoal(goal *models.SavingsGoal, milestones []models.GoalMilestone) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE savings_goals SET name = ?, description = ?, image_key = ?,
		target_amount = ?, priority = ?, transfer_type = ?, transfer_amount = ?,
		transfer_percent = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err = tx.Exec(query,
		goal.Name, goal.Description, goal.ImageKey, goal.TargetAmount, goal.Priority,
		goal.TransferType, goal.TransferAmount, goal.TransferPercent, goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	for _, m := range milestones {
		_, err := tx.Exec(
			"UPDATE goal_milestones SET target_amount = ? WHERE goal_id = ? AND percent = ? AND achieved_at IS NULL",
			m.TargetAmount, goal.ID, m.Percent,
		)
		if err != nil {
			return fmt.Errorf("failed to retarget milestone: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateGoalImage sets the blob storage key for a goal's picture
func (r *GoalRepository) UpdateGoalImage(goalID int64, key string) error {
	query := `UPDATE savings_goals SET image_key = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, key, goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal image: %w", err)
	}
	return nil
}

// UpdateGoalStatus sets a goal's status and completion time
func (r *GoalRepository) UpdateGoalStatus(goalID int64, status string, completedAt *time.Time) error {
	query := `UPDATE savings_goals SET status = ?, completed_at = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.Exec(query, status, completedAt, goalID)
	if err != nil {
		return fmt.Errorf("failed to update goal status: %w", err)
	}
	return nil
}

// ListMilestones retrieves a goal's milestones in ascending percent order
func (r *GoalRepository) ListMilestones(goalID int64) ([]models.GoalMilestone, error) {
	query := `SELECT id, goal_id, percent, target_amount, achieved_at
		FROM goal_milestones WHERE goal_id = ? ORDER BY percent`
	rows, err := r.db.Query(query, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	var milestones []models.GoalMilestone
	for rows.Next() {
		var m models.GoalMilestone
		var achievedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.GoalID, &m.Percent, &m.TargetAmount, &achievedAt); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		if achievedAt.Valid {
			m.AchievedAt = &achievedAt.Time
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// CreateMatchingRule inserts an active matching rule for a goal
func (r *GoalRepository) CreateMatchingRule(rule *models.ParentMatchingRule) error {
	query := `INSERT INTO matching_rules (goal_id, type, ratio, percent, max_match_amount,
		total_matched_amount, active, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ` + r.db.Dialect.BoolValue(true) + `, ?)`
	id, err := r.db.ExecReturningID(query,
		rule.GoalID, rule.Type, rule.Ratio, rule.Percent, rule.MaxMatchAmount,
		rule.TotalMatchedAmount, rule.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create matching rule: %w", err)
	}
	rule.ID = id
	rule.Active = true
	return nil
}

// GetActiveMatchingRule retrieves the goal's active matching rule, if any
func (r *GoalRepository) GetActiveMatchingRule(goalID int64) (*models.ParentMatchingRule, error) {
	query := `SELECT id, goal_id, type, ratio, percent, max_match_amount,
		total_matched_amount, active, created_by, created_at
		FROM matching_rules WHERE goal_id = ? AND active = ` + r.db.Dialect.BoolValue(true)
	row := r.db.QueryRow(query, goalID)

	rule := &models.ParentMatchingRule{}
	err := row.Scan(
		&rule.ID, &rule.GoalID, &rule.Type, &rule.Ratio, &rule.Percent,
		&rule.MaxMatchAmount, &rule.TotalMatchedAmount, &rule.Active,
		&rule.CreatedBy, &rule.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get matching rule: %w", err)
	}
	return rule, nil
}

// DeactivateMatchingRule turns a rule off without deleting its history
func (r *GoalRepository) DeactivateMatchingRule(ruleID int64) error {
	_, err := r.db.Exec("UPDATE matching_rules SET active = "+r.db.Dialect.BoolValue(false)+" WHERE id = ?", ruleID)
	if err != nil {
		return fmt.Errorf("failed to deactivate matching rule: %w", err)
	}
	return nil
}

// CreateChallenge inserts a new challenge for a goal
func (r *GoalRepository) CreateChallenge(challenge *models.GoalChallenge) error {
	query := `INSERT INTO goal_challenges (goal_id, name, target_amount, bonus_amount, ends_at, status)
		VALUES (?, ?, ?, ?, ?, ?)`
	id, err := r.db.ExecReturningID(query,
		challenge.GoalID, challenge.Name, challenge.TargetAmount,
		challenge.BonusAmount, challenge.EndsAt, challenge.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	challenge.ID = id
	return nil
}

func scanChallenge(row interface{ Scan(...interface{}) error }) (*models.GoalChallenge, error) {
	c := &models.GoalChallenge{}
	var completedAt sql.NullTime
	err := row.Scan(
		&c.ID, &c.GoalID, &c.Name, &c.TargetAmount, &c.BonusAmount,
		&c.EndsAt, &c.Status, &completedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return c, nil
}

// GetActiveChallenge retrieves the goal's active challenge, if any
func (r *GoalRepository) GetActiveChallenge(goalID int64) (*models.GoalChallenge, error) {
	query := `SELECT id, goal_id, name, target_amount, bonus_amount, ends_at, status, completed_at, created_at
		FROM goal_challenges WHERE goal_id = ? AND status = 'active'`
	challenge, err := scanChallenge(r.db.QueryRow(query, goalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}
	return challenge, nil
}

// UpdateChallengeStatus transitions a challenge
func (r *GoalRepository) UpdateChallengeStatus(challengeID int64, status string, completedAt *time.Time) error {
	_, err := r.db.Exec("UPDATE goal_challenges SET status = ?, completed_at = ? WHERE id = ?",
		status, completedAt, challengeID)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	return nil
}

// ListContributions retrieves a page of a goal's contributions, newest first
func (r *GoalRepository) ListContributions(goalID int64, limit, offset int) ([]models.SavingsContribution, error) {
	query := `SELECT id, goal_id, amount, type, description, created_by, created_at
		FROM savings_contributions WHERE goal_id = ?
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.Query(query, goalID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.SavingsContribution
	for rows.Next() {
		var c models.SavingsContribution
		var createdBy sql.NullInt64
		if err := rows.Scan(&c.ID, &c.GoalID, &c.Amount, &c.Type, &c.Description, &createdBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		if createdBy.Valid {
			c.CreatedBy = &createdBy.Int64
		}
		contributions = append(contributions, c)
	}
	return contributions, rows.Err()
}

// CountDepositsByChild counts deposit-type contributions across a child's goals
func (r *GoalRepository) CountDepositsByChild(childID int64) (int, error) {
	query := `SELECT COUNT(*) FROM savings_contributions sc
		JOIN savings_goals g ON g.id = sc.goal_id
		WHERE g.child_id = ? AND sc.type IN ('deposit', 'auto', 'gift')`
	var count int
	if err := r.db.QueryRow(query, childID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count deposits: %w", err)
	}
	return count, nil
}

// CountCompletedGoalsByChild counts goals the child has finished
func (r *GoalRepository) CountCompletedGoalsByChild(childID int64) (int, error) {
	query := `SELECT COUNT(*) FROM savings_goals
		WHERE child_id = ? AND status IN ('completed', 'purchased')`
	var count int
	if err := r.db.QueryRow(query, childID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed goals: %w", err)
	}
	return count, nil
}

// SumSavedByChild totals the amounts currently held across a child's open
// and completed goals
func (r *GoalRepository) SumSavedByChild(childID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(current_amount), 0) FROM savings_goals
		WHERE child_id = ? AND status != 'cancelled'`
	var total decimal.Decimal
	if err := r.db.QueryRow(query, childID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum saved amounts: %w", err)
	}
	return total, nil
}

// ContributionApply is a fully computed contribution effect. The service
// layer does the arithmetic; the repository applies every row change in a
// single database transaction.
type ContributionApply struct {
	GoalID  int64
	ChildID int64

	// Child balance updates. Skipped for gift-funded contributions, which
	// never touch child balances.
	UpdateBalances    bool
	NewCurrentBalance decimal.Decimal
	NewSavingsBalance decimal.Decimal
	LedgerEntry       *models.Transaction

	NewGoalAmount decimal.Decimal
	GoalStatus    string
	CompletedAt   *time.Time

	Contributions []models.SavingsContribution

	// Matching rule bookkeeping, applied when MatchRuleID is set.
	MatchRuleID     int64
	NewTotalMatched decimal.Decimal

	// Challenge completion, applied when ChallengeID is set.
	ChallengeID          int64
	ChallengeCompletedAt time.Time

	// Milestones to mark achieved at AchievedAt.
	MilestoneIDs []int64
	AchievedAt   time.Time
}

func applyContribution(tx *database.Tx, plan *ContributionApply) error {
	if plan.UpdateBalances {
		query := `UPDATE children SET current_balance = ?, savings_balance = ?,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?`
		if _, err := tx.Exec(query, plan.NewCurrentBalance, plan.NewSavingsBalance, plan.ChildID); err != nil {
			return fmt.Errorf("failed to update balances: %w", err)
		}
	}

	if plan.LedgerEntry != nil {
		if err := insertTransaction(tx, plan.LedgerEntry); err != nil {
			return err
		}
	}

	query := `UPDATE savings_goals SET current_amount = ?, status = ?, completed_at = ?,
		updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	if _, err := tx.Exec(query, plan.NewGoalAmount, plan.GoalStatus, plan.CompletedAt, plan.GoalID); err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	for i := range plan.Contributions {
		c := &plan.Contributions[i]
		id, err := tx.ExecReturningID(
			"INSERT INTO savings_contributions (goal_id, amount, type, description, created_by) VALUES (?, ?, ?, ?, ?)",
			c.GoalID, c.Amount, c.Type, c.Description, c.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to record contribution: %w", err)
		}
		c.ID = id
	}

	if plan.MatchRuleID != 0 {
		if _, err := tx.Exec("UPDATE matching_rules SET total_matched_amount = ? WHERE id = ?",
			plan.NewTotalMatched, plan.MatchRuleID); err != nil {
			return fmt.Errorf("failed to update matching rule: %w", err)
		}
	}

	if plan.ChallengeID != 0 {
		if _, err := tx.Exec("UPDATE goal_challenges SET status = 'completed', completed_at = ? WHERE id = ?",
			plan.ChallengeCompletedAt, plan.ChallengeID); err != nil {
			return fmt.Errorf("failed to complete challenge: %w", err)
		}
	}

	for _, milestoneID := range plan.MilestoneIDs {
		if _, err := tx.Exec("UPDATE goal_milestones SET achieved_at = ? WHERE id = ? AND achieved_at IS NULL",
			plan.AchievedAt, milestoneID); err != nil {
			return fmt.Errorf("failed to mark milestone: %w", err)
		}
	}

	return nil
}

// ApplyContribution applies a computed contribution plan atomically
func (r *GoalRepository) ApplyContribution(plan *ContributionApply) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyContribution(tx, plan); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
