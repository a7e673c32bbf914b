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
	ErrAllowancePaused = errors.New("allowance is paused")
	ErrNoAllowanceSet  = errors.New("no weekly allowance configured")
	ErrNotAllowanceDay = errors.New("not the allowance day")
	ErrAlreadyPaid     = errors.New("allowance already paid this week")
)

const allowanceWindow = 7 * 24 * time.Hour

// SweepResult summarizes one run of the daily sweep
type SweepResult struct {
	Paid    int
	Skipped int
	Failed  int
}

// AllowanceService pays weekly allowances and runs the daily sweep
type AllowanceService struct {
	childRepo     *repository.ChildRepository
	savings       *SavingsService
	notifications *NotificationService
}

// NewAllowanceService creates a new allowance service
func NewAllowanceService(childRepo *repository.ChildRepository, savings *SavingsService, notifications *NotificationService) *AllowanceService {
	return &AllowanceService{
		childRepo:     childRepo,
		savings:       savings,
		notifications: notifications,
	}
}

// checkEligibility reports whether a child is due an allowance at now
func checkEligibility(child *models.Child, now time.Time) error {
	if child.AllowancePaused {
		return ErrAllowancePaused
	}
	if !child.WeeklyAllowance.IsPositive() {
		return ErrNoAllowanceSet
	}

	if child.AllowanceDay != nil {
		if int(now.Weekday()) != *child.AllowanceDay {
			return ErrNotAllowanceDay
		}
		if child.LastAllowanceAt != nil && now.Sub(*child.LastAllowanceAt) < allowanceWindow {
			return ErrAlreadyPaid
		}
		return nil
	}

	if child.LastAllowanceAt != nil && now.Sub(*child.LastAllowanceAt) < allowanceWindow {
		return ErrAlreadyPaid
	}
	return nil
}

// PayAllowance pays one child's weekly allowance if due: the configured
// savings share goes to the savings balance, the rest to spending, then the
// goal auto-transfer sweep runs with the allowance amount.
func (s *AllowanceService) PayAllowance(childID int64, now time.Time) (*models.Transaction, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	if err := checkEligibility(child, now); err != nil {
		return nil, err
	}

	amount := child.WeeklyAllowance
	toSavings := amount.Mul(decimal.NewFromInt(int64(child.SavingsTransferPercent))).Div(decimal.NewFromInt(100)).Round(2)
	toSpending := amount.Sub(toSavings)

	newCurrent := child.CurrentBalance.Add(toSpending)
	newSavings := child.SavingsBalance.Add(toSavings)
	entry := &models.Transaction{
		ChildID:      child.ID,
		Amount:       amount,
		Type:         models.TransactionCredit,
		Category:     models.CategoryAllowance,
		Description:  "Weekly allowance",
		BalanceAfter: newCurrent,
	}
	if err := s.childRepo.ApplyAllowance(child.ID, newCurrent, newSavings, now, entry); err != nil {
		return nil, err
	}

	if child.UserID != nil {
		s.notifications.Notify(*child.UserID, models.NotificationAllowancePaid,
			"Allowance paid!",
			fmt.Sprintf("%s landed in your account.", amount.StringFixed(2)))
	}

	s.savings.ProcessAutoTransfers(child.ID, amount)

	return entry, nil
}

// RunDailySweep tries to pay every unpaused child. Eligibility misses are
// skips, not errors; real failures are logged and the sweep continues.
func (s *AllowanceService) RunDailySweep(now time.Time) (SweepResult, error) {
	var result SweepResult

	children, err := s.childRepo.ListUnpausedChildren()
	if err != nil {
		return result, fmt.Errorf("failed to list children: %w", err)
	}

	for _, child := range children {
		_, err := s.PayAllowance(child.ID, now)
		switch {
		case err == nil:
			result.Paid++
		case errors.Is(err, ErrNoAllowanceSet),
			errors.Is(err, ErrNotAllowanceDay),
			errors.Is(err, ErrAlreadyPaid),
			errors.Is(err, ErrAllowancePaused):
			result.Skipped++
		default:
			result.Failed++
			log.Printf("allowance sweep: child %d: %v", child.ID, err)
		}
	}

	log.Printf("allowance sweep: paid=%d skipped=%d failed=%d", result.Paid, result.Skipped, result.Failed)
	return result, nil
}

// UpdateSettings configures a child's weekly allowance
func (s *AllowanceService) UpdateSettings(childID int64, weekly decimal.Decimal, day *int, savingsTransferPercent int) error {
	if weekly.IsNegative() {
		return validation.ValidationError{Field: "weekly_allowance", Message: "must not be negative"}
	}
	if day != nil {
		if err := validation.ValidateWeekday("allowance_day", *day); err != nil {
			return err
		}
	}
	if err := validation.ValidatePercent("savings_transfer_percent", savingsTransferPercent); err != nil {
		return err
	}
	return s.childRepo.UpdateAllowanceSettings(childID, weekly, day, savingsTransferPercent)
}

// SetPaused pauses or resumes a child's allowance
func (s *AllowanceService) SetPaused(childID int64, paused bool) error {
	return s.childRepo.SetAllowancePaused(childID, paused)
}
