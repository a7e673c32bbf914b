package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

var (
	ErrGoalNotFound      = errors.New("goal not found")
	ErrGoalNotOpen       = errors.New("goal is not accepting contributions")
	ErrGoalNotCompleted  = errors.New("goal is not completed")
	ErrWithdrawTooLarge  = errors.New("withdrawal exceeds goal balance")
	ErrChallengeActive   = errors.New("goal already has an active challenge")
	ErrRuleActive        = errors.New("goal already has an active matching rule")
	ErrChallengeNotFound = errors.New("challenge not found")
)

// Standard milestone percentages created with every goal
var milestonePercents = []int{25, 50, 75, 100}

// ContributionResult reports what a contribution did
type ContributionResult struct {
	Goal               *models.SavingsGoal
	Deposited          decimal.Decimal
	Matched            decimal.Decimal
	Bonus              decimal.Decimal
	MilestonesReached  []int
	ChallengeCompleted bool
	GoalCompleted      bool
}

// SavingsService runs goals and the contribution engine
type SavingsService struct {
	goalRepo      *repository.GoalRepository
	childRepo     *repository.ChildRepository
	userRepo      *repository.UserRepository
	notifications *NotificationService
	achievements  *AchievementService
}

// NewSavingsService creates a new savings service
func NewSavingsService(
	goalRepo *repository.GoalRepository,
	childRepo *repository.ChildRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	achievements *AchievementService,
) *SavingsService {
	return &SavingsService{
		goalRepo:      goalRepo,
		childRepo:     childRepo,
		userRepo:      userRepo,
		notifications: notifications,
		achievements:  achievements,
	}
}

// milestoneTargets computes the standard milestone amounts for a target
func milestoneTargets(target decimal.Decimal) []models.GoalMilestone {
	milestones := make([]models.GoalMilestone, 0, len(milestonePercents))
	for _, percent := range milestonePercents {
		milestones = append(milestones, models.GoalMilestone{
			Percent:      percent,
			TargetAmount: target.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100)).Round(2),
		})
	}
	return milestones
}

// CreateGoal creates a goal with its four milestones
func (s *SavingsService) CreateGoal(childID int64, name, description string, target decimal.Decimal, priority int, transferType string, transferAmount decimal.Decimal, transferPercent int) (*models.SavingsGoal, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if !target.IsPositive() {
		return nil, validation.ValidationError{Field: "target_amount", Message: "must be positive"}
	}
	if err := validateTransferConfig(transferType, transferAmount, transferPercent); err != nil {
		return nil, err
	}

	goal := &models.SavingsGoal{
		ChildID:         childID,
		Name:            name,
		Description:     description,
		TargetAmount:    target,
		CurrentAmount:   decimal.Zero,
		Status:          models.GoalStatusActive,
		Priority:        priority,
		TransferType:    transferType,
		TransferAmount:  transferAmount,
		TransferPercent: transferPercent,
	}
	if err := s.goalRepo.CreateGoal(goal, milestoneTargets(target)); err != nil {
		return nil, err
	}
	return goal, nil
}

func validateTransferConfig(transferType string, amount decimal.Decimal, percent int) error {
	switch transferType {
	case models.TransferNone:
		return nil
	case models.TransferFixed:
		if !amount.IsPositive() {
			return validation.ValidationError{Field: "transfer_amount", Message: "must be positive"}
		}
	case models.TransferPercent:
		if err := validation.ValidatePercent("transfer_percent", percent); err != nil {
			return err
		}
	default:
		return validation.ValidationError{Field: "transfer_type", Message: "must be '', 'fixed' or 'percent'"}
	}
	return nil
}

// GetGoal retrieves a goal with its milestones, rule and challenge,
// enforcing family membership through the child
func (s *SavingsService) GetGoal(goalID int64) (*models.GoalDetail, error) {
	detail, err := s.goalRepo.GetGoalDetail(goalID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrGoalNotFound
	}

	// Lapsed challenges expire on read, nothing sweeps them.
	ch := detail.Challenge
	if ch != nil && ch.Status == models.ChallengeStatusActive && time.Now().After(ch.EndsAt) {
		if err := s.goalRepo.UpdateChallengeStatus(ch.ID, models.ChallengeStatusExpired, nil); err != nil {
			return nil, err
		}
		ch.Status = models.ChallengeStatusExpired
	}
	return detail, nil
}

// ListGoals retrieves a child's goals
func (s *SavingsService) ListGoals(childID int64) ([]models.SavingsGoal, error) {
	return s.goalRepo.ListGoalsByChild(childID)
}

// UpdateGoal edits goal fields; unachieved milestones follow the new target
func (s *SavingsService) UpdateGoal(goalID int64, name, description string, target decimal.Decimal, priority int, transferType string, transferAmount decimal.Decimal, transferPercent int) (*models.SavingsGoal, error) {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if !goal.IsOpen() && goal.Status != models.GoalStatusPaused {
		return nil, ErrGoalNotOpen
	}

	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if !target.IsPositive() {
		return nil, validation.ValidationError{Field: "target_amount", Message: "must be positive"}
	}
	if err := validateTransferConfig(transferType, transferAmount, transferPercent); err != nil {
		return nil, err
	}

	goal.Name = name
	goal.Description = description
	goal.TargetAmount = target
	goal.Priority = priority
	goal.TransferType = transferType
	goal.TransferAmount = transferAmount
	goal.TransferPercent = transferPercent

	if err := s.goalRepo.UpdateGoal(goal, milestoneTargets(target)); err != nil {
		return nil, err
	}
	return goal, nil
}

// PauseGoal stops a goal from accepting contributions
func (s *SavingsService) PauseGoal(goalID int64) error {
	return s.transition(goalID, models.GoalStatusActive, models.GoalStatusPaused)
}

// ResumeGoal reopens a paused goal
func (s *SavingsService) ResumeGoal(goalID int64) error {
	return s.transition(goalID, models.GoalStatusPaused, models.GoalStatusActive)
}

func (s *SavingsService) transition(goalID int64, from, to string) error {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return err
	}
	if goal == nil {
		return ErrGoalNotFound
	}
	if goal.Status != from {
		return ErrGoalNotOpen
	}
	return s.goalRepo.UpdateGoalStatus(goalID, to, nil)
}

// MarkPurchased records that the saved-for item was bought
func (s *SavingsService) MarkPurchased(goalID int64) error {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return err
	}
	if goal == nil {
		return ErrGoalNotFound
	}
	if goal.Status != models.GoalStatusCompleted {
		return ErrGoalNotCompleted
	}
	return s.goalRepo.UpdateGoalStatus(goalID, models.GoalStatusPurchased, goal.CompletedAt)
}

// CancelGoal cancels a goal and refunds its balance to the child's spending
// balance
func (s *SavingsService) CancelGoal(goalID int64, cancelledBy *int64) error {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return err
	}
	if goal == nil {
		return ErrGoalNotFound
	}
	if goal.Status != models.GoalStatusActive && goal.Status != models.GoalStatusPaused {
		return ErrGoalNotOpen
	}

	child, err := s.childRepo.GetChildByID(goal.ChildID)
	if err != nil {
		return err
	}
	if child == nil {
		return ErrChildNotFound
	}

	plan := &repository.ContributionApply{
		GoalID:        goal.ID,
		ChildID:       child.ID,
		NewGoalAmount: decimal.Zero,
		GoalStatus:    models.GoalStatusCancelled,
	}
	if goal.CurrentAmount.IsPositive() {
		refund := goal.CurrentAmount
		plan.UpdateBalances = true
		plan.NewCurrentBalance = child.CurrentBalance.Add(refund)
		plan.NewSavingsBalance = child.SavingsBalance
		plan.LedgerEntry = &models.Transaction{
			ChildID:      child.ID,
			Amount:       refund,
			Type:         models.TransactionCredit,
			Category:     models.CategorySavings,
			Description:  fmt.Sprintf("Goal cancelled: %s", goal.Name),
			BalanceAfter: plan.NewCurrentBalance,
			CreatedBy:    cancelledBy,
		}
		plan.Contributions = []models.SavingsContribution{{
			GoalID:      goal.ID,
			Amount:      refund.Neg(),
			Type:        models.ContributionWithdrawal,
			Description: "goal cancelled",
			CreatedBy:   cancelledBy,
		}}
	}

	return s.goalRepo.ApplyContribution(plan)
}

// Contribute moves money from the child's spending balance into a goal and
// runs matching, challenge and milestone checks
func (s *SavingsService) Contribute(goalID int64, amount decimal.Decimal, contribType string, description string, createdBy *int64) (*ContributionResult, error) {
	if !amount.IsPositive() {
		return nil, validation.ValidationError{Field: "amount", Message: "must be positive"}
	}

	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if !goal.IsOpen() {
		return nil, ErrGoalNotOpen
	}

	child, err := s.childRepo.GetChildByID(goal.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if amount.GreaterThan(child.CurrentBalance) {
		return nil, ErrInsufficientBalance
	}

	plan, result, err := s.planContribution(goal, child, amount, contributionOptions{
		contribType:   contribType,
		description:   description,
		createdBy:     createdBy,
		applyMatching: true,
		debitChild:    true,
	})
	if err != nil {
		return nil, err
	}

	if err := s.goalRepo.ApplyContribution(plan); err != nil {
		return nil, err
	}

	s.afterContribution(goal, child, result)
	return result, nil
}

// Withdraw moves money out of a goal back to the child's spending balance
func (s *SavingsService) Withdraw(goalID int64, amount decimal.Decimal, createdBy *int64) (*models.SavingsGoal, error) {
	if !amount.IsPositive() {
		return nil, validation.ValidationError{Field: "amount", Message: "must be positive"}
	}

	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if goal.Status != models.GoalStatusActive && goal.Status != models.GoalStatusPaused {
		return nil, ErrGoalNotOpen
	}
	if amount.GreaterThan(goal.CurrentAmount) {
		return nil, ErrWithdrawTooLarge
	}

	child, err := s.childRepo.GetChildByID(goal.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	newBalance := child.CurrentBalance.Add(amount)
	plan := &repository.ContributionApply{
		GoalID:            goal.ID,
		ChildID:           child.ID,
		UpdateBalances:    true,
		NewCurrentBalance: newBalance,
		NewSavingsBalance: child.SavingsBalance,
		NewGoalAmount:     goal.CurrentAmount.Sub(amount),
		GoalStatus:        goal.Status,
		CompletedAt:       goal.CompletedAt,
		LedgerEntry: &models.Transaction{
			ChildID:      child.ID,
			Amount:       amount,
			Type:         models.TransactionCredit,
			Category:     models.CategorySavings,
			Description:  fmt.Sprintf("Withdrawal from goal: %s", goal.Name),
			BalanceAfter: newBalance,
			CreatedBy:    createdBy,
		},
		Contributions: []models.SavingsContribution{{
			GoalID:    goal.ID,
			Amount:    amount.Neg(),
			Type:      models.ContributionWithdrawal,
			CreatedBy: createdBy,
		}},
	}

	if err := s.goalRepo.ApplyContribution(plan); err != nil {
		return nil, err
	}

	goal.CurrentAmount = plan.NewGoalAmount
	return goal, nil
}

type contributionOptions struct {
	contribType   string
	description   string
	createdBy     *int64
	applyMatching bool
	debitChild    bool
}

// planContribution computes the full effect of a contribution without
// touching the database. The order is fixed: deposit, parent match,
// challenge bonus, milestone scan, completion check.
func (s *SavingsService) planContribution(goal *models.SavingsGoal, child *models.Child, amount decimal.Decimal, opts contributionOptions) (*repository.ContributionApply, *ContributionResult, error) {
	now := time.Now()

	plan := &repository.ContributionApply{
		GoalID:     goal.ID,
		ChildID:    child.ID,
		AchievedAt: now,
	}
	result := &ContributionResult{Goal: goal, Deposited: amount}

	if opts.debitChild {
		plan.UpdateBalances = true
		plan.NewCurrentBalance = child.CurrentBalance.Sub(amount)
		plan.NewSavingsBalance = child.SavingsBalance
		plan.LedgerEntry = &models.Transaction{
			ChildID:      child.ID,
			Amount:       amount,
			Type:         models.TransactionDebit,
			Category:     models.CategorySavings,
			Description:  fmt.Sprintf("Deposit to goal: %s", goal.Name),
			BalanceAfter: plan.NewCurrentBalance,
			CreatedBy:    opts.createdBy,
		}
	}

	plan.Contributions = append(plan.Contributions, models.SavingsContribution{
		GoalID:      goal.ID,
		Amount:      amount,
		Type:        opts.contribType,
		Description: opts.description,
		CreatedBy:   opts.createdBy,
	})

	newAmount := goal.CurrentAmount.Add(amount)

	if opts.applyMatching {
		rule, err := s.goalRepo.GetActiveMatchingRule(goal.ID)
		if err != nil {
			return nil, nil, err
		}
		if rule != nil {
			match := computeMatch(rule, amount)
			if match.IsPositive() {
				newAmount = newAmount.Add(match)
				result.Matched = match
				plan.MatchRuleID = rule.ID
				plan.NewTotalMatched = rule.TotalMatchedAmount.Add(match)
				plan.Contributions = append(plan.Contributions, models.SavingsContribution{
					GoalID:      goal.ID,
					Amount:      match,
					Type:        models.ContributionMatch,
					Description: "parent match",
					CreatedBy:   &rule.CreatedBy,
				})
			}
		}
	}

	challenge, err := s.goalRepo.GetActiveChallenge(goal.ID)
	if err != nil {
		return nil, nil, err
	}
	if challenge != nil {
		if now.After(challenge.EndsAt) {
			// Lapsed challenge; expire it outside the contribution plan.
			if err := s.goalRepo.UpdateChallengeStatus(challenge.ID, models.ChallengeStatusExpired, nil); err != nil {
				return nil, nil, err
			}
		} else if newAmount.GreaterThanOrEqual(challenge.TargetAmount) {
			newAmount = newAmount.Add(challenge.BonusAmount)
			result.Bonus = challenge.BonusAmount
			result.ChallengeCompleted = true
			plan.ChallengeID = challenge.ID
			plan.ChallengeCompletedAt = now
			plan.Contributions = append(plan.Contributions, models.SavingsContribution{
				GoalID:      goal.ID,
				Amount:      challenge.BonusAmount,
				Type:        models.ContributionBonus,
				Description: fmt.Sprintf("challenge bonus: %s", challenge.Name),
			})
		}
	}

	milestones, err := s.goalRepo.ListMilestones(goal.ID)
	if err != nil {
		return nil, nil, err
	}
	ids, percents := pickMilestones(milestones, newAmount)
	plan.MilestoneIDs = ids
	result.MilestonesReached = percents

	plan.NewGoalAmount = newAmount
	plan.GoalStatus = goal.Status
	plan.CompletedAt = goal.CompletedAt
	if goal.CompletedAt == nil && newAmount.GreaterThanOrEqual(goal.TargetAmount) {
		plan.GoalStatus = models.GoalStatusCompleted
		plan.CompletedAt = &now
		result.GoalCompleted = true
	}

	return plan, result, nil
}

// computeMatch returns the parent match for a deposit, never exceeding the
// rule's remaining headroom
func computeMatch(rule *models.ParentMatchingRule, amount decimal.Decimal) decimal.Decimal {
	var match decimal.Decimal
	switch rule.Type {
	case models.MatchRatio:
		match = amount.Mul(rule.Ratio)
	case models.MatchPercent:
		match = amount.Mul(rule.Percent).Div(decimal.NewFromInt(100))
	default:
		return decimal.Zero
	}
	match = match.Round(2)

	if remaining := rule.Remaining(); match.GreaterThan(remaining) {
		match = remaining
	}
	if match.IsNegative() {
		return decimal.Zero
	}
	return match
}

// pickMilestones selects the milestones a contribution reaches: the lowest
// unachieved milestone whose target is met, plus the 100% milestone when
// the goal total covers it. Intermediate milestones skipped by a large
// deposit unlock one per future contribution.
func pickMilestones(milestones []models.GoalMilestone, newAmount decimal.Decimal) ([]int64, []int) {
	var ids []int64
	var percents []int

	for _, m := range milestones {
		if m.AchievedAt != nil {
			continue
		}
		if newAmount.GreaterThanOrEqual(m.TargetAmount) {
			ids = append(ids, m.ID)
			percents = append(percents, m.Percent)
		}
		break
	}

	for _, m := range milestones {
		if m.Percent != 100 || m.AchievedAt != nil {
			continue
		}
		if len(ids) > 0 && ids[0] == m.ID {
			continue
		}
		if newAmount.GreaterThanOrEqual(m.TargetAmount) {
			ids = append(ids, m.ID)
			percents = append(percents, m.Percent)
		}
	}

	return ids, percents
}

// afterContribution sends notifications and records achievement progress.
// All of it is best effort.
func (s *SavingsService) afterContribution(goal *models.SavingsGoal, child *models.Child, result *ContributionResult) {
	if child.UserID != nil {
		for _, percent := range result.MilestonesReached {
			if percent == 100 {
				continue
			}
			s.notifications.Notify(*child.UserID, models.NotificationMilestoneReached,
				fmt.Sprintf("%d%% of the way to %s!", percent, goal.Name),
				fmt.Sprintf("Keep going, %s is getting closer.", goal.Name))
		}
		if result.ChallengeCompleted {
			s.notifications.Notify(*child.UserID, models.NotificationChallengeCompleted,
				"Challenge complete!",
				fmt.Sprintf("You earned a %s bonus on %s.", result.Bonus.StringFixed(2), goal.Name))
		}
	}

	if result.GoalCompleted {
		title := fmt.Sprintf("%s reached the goal: %s", child.Name, goal.Name)
		if child.UserID != nil {
			s.notifications.Notify(*child.UserID, models.NotificationGoalCompleted,
				fmt.Sprintf("You did it! %s is fully funded", goal.Name), "")
		}
		parents, err := s.userRepo.ListParentsByFamily(child.FamilyID)
		if err == nil {
			for _, parent := range parents {
				s.notifications.Notify(parent.ID, models.NotificationGoalCompleted, title, "")
			}
		}
	}

	if count, err := s.goalRepo.CountDepositsByChild(child.ID); err == nil {
		s.achievements.RecordProgress(child.ID, models.CriteriaContributionCount, decimal.NewFromInt(int64(count)))
	}
	if saved, err := s.goalRepo.SumSavedByChild(child.ID); err == nil {
		s.achievements.RecordProgress(child.ID, models.CriteriaSavedTotal, saved)
	}
	if result.GoalCompleted {
		if completed, err := s.goalRepo.CountCompletedGoalsByChild(child.ID); err == nil {
			s.achievements.RecordProgress(child.ID, models.CriteriaGoalsCompleted, decimal.NewFromInt(int64(completed)))
		}
	}
}

// ProcessAutoTransfers runs the goal auto-transfer sweep after an allowance
// payment. Active goals are funded in ascending priority order; each
// transfer is capped at the child's remaining spending balance and matching
// rules do not apply. Per-goal failures are logged and the sweep continues.
func (s *SavingsService) ProcessAutoTransfers(childID int64, allowanceAmount decimal.Decimal) {
	goals, err := s.goalRepo.ListActiveGoalsByChild(childID)
	if err != nil {
		log.Printf("auto-transfer: failed to list goals for child %d: %v", childID, err)
		return
	}

	for _, goal := range goals {
		child, err := s.childRepo.GetChildByID(childID)
		if err != nil || child == nil {
			return
		}
		if !child.CurrentBalance.IsPositive() {
			return
		}

		var transfer decimal.Decimal
		switch goal.TransferType {
		case models.TransferFixed:
			transfer = goal.TransferAmount
		case models.TransferPercent:
			transfer = allowanceAmount.Mul(decimal.NewFromInt(int64(goal.TransferPercent))).Div(decimal.NewFromInt(100)).Round(2)
		default:
			continue
		}
		if transfer.GreaterThan(child.CurrentBalance) {
			transfer = child.CurrentBalance
		}
		if !transfer.IsPositive() {
			continue
		}

		g := goal
		plan, result, err := s.planContribution(&g, child, transfer, contributionOptions{
			contribType: models.ContributionAuto,
			description: "allowance auto-transfer",
			debitChild:  true,
		})
		if err != nil {
			log.Printf("auto-transfer: failed to plan for goal %d: %v", goal.ID, err)
			continue
		}
		if err := s.goalRepo.ApplyContribution(plan); err != nil {
			log.Printf("auto-transfer: failed to apply for goal %d: %v", goal.ID, err)
			continue
		}
		s.afterContribution(&g, child, result)
	}
}

// ListContributions retrieves a page of a goal's contribution history
func (s *SavingsService) ListContributions(goalID int64, limit, offset int) ([]models.SavingsContribution, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.goalRepo.ListContributions(goalID, limit, offset)
}

// SetMatchingRule configures a matching rule on a goal that has none
func (s *SavingsService) SetMatchingRule(goalID, createdBy int64, ruleType string, ratio, percent, maxMatch decimal.Decimal) (*models.ParentMatchingRule, error) {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}

	existing, err := s.goalRepo.GetActiveMatchingRule(goalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRuleActive
	}

	switch ruleType {
	case models.MatchRatio:
		if !ratio.IsPositive() {
			return nil, validation.ValidationError{Field: "ratio", Message: "must be positive"}
		}
	case models.MatchPercent:
		if !percent.IsPositive() {
			return nil, validation.ValidationError{Field: "percent", Message: "must be positive"}
		}
	default:
		return nil, validation.ValidationError{Field: "type", Message: "must be 'ratio' or 'percent'"}
	}
	if !maxMatch.IsPositive() {
		return nil, validation.ValidationError{Field: "max_match_amount", Message: "must be positive"}
	}

	rule := &models.ParentMatchingRule{
		GoalID:             goalID,
		Type:               ruleType,
		Ratio:              ratio,
		Percent:            percent,
		MaxMatchAmount:     maxMatch,
		TotalMatchedAmount: decimal.Zero,
		CreatedBy:          createdBy,
	}
	if err := s.goalRepo.CreateMatchingRule(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// RemoveMatchingRule deactivates the goal's matching rule
func (s *SavingsService) RemoveMatchingRule(goalID int64) error {
	rule, err := s.goalRepo.GetActiveMatchingRule(goalID)
	if err != nil {
		return err
	}
	if rule == nil {
		return nil
	}
	return s.goalRepo.DeactivateMatchingRule(rule.ID)
}

// CreateChallenge starts a time-boxed challenge on a goal
func (s *SavingsService) CreateChallenge(goalID int64, name string, target, bonus decimal.Decimal, endsAt time.Time) (*models.GoalChallenge, error) {
	goal, err := s.goalRepo.GetGoalByID(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, ErrGoalNotFound
	}
	if !goal.IsOpen() {
		return nil, ErrGoalNotOpen
	}

	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if !target.GreaterThan(goal.CurrentAmount) {
		return nil, validation.ValidationError{Field: "target_amount", Message: "must exceed current goal balance"}
	}
	if !bonus.IsPositive() {
		return nil, validation.ValidationError{Field: "bonus_amount", Message: "must be positive"}
	}
	if !endsAt.After(time.Now()) {
		return nil, validation.ValidationError{Field: "ends_at", Message: "must be in the future"}
	}

	existing, err := s.goalRepo.GetActiveChallenge(goalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrChallengeActive
	}

	challenge := &models.GoalChallenge{
		GoalID:       goalID,
		Name:         name,
		TargetAmount: target,
		BonusAmount:  bonus,
		EndsAt:       endsAt,
		Status:       models.ChallengeStatusActive,
	}
	if err := s.goalRepo.CreateChallenge(challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

// CancelChallenge cancels a goal's active challenge
func (s *SavingsService) CancelChallenge(goalID int64) error {
	challenge, err := s.goalRepo.GetActiveChallenge(goalID)
	if err != nil {
		return err
	}
	if challenge == nil {
		return ErrChallengeNotFound
	}
	return s.goalRepo.UpdateChallengeStatus(challenge.ID, models.ChallengeStatusCancelled, nil)
}
