package service

import (
	"errors"
	"fmt"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"

	"github.com/shopspring/decimal"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// TransactionService moves money on a child's spending balance and keeps
// the append-only ledger
type TransactionService struct {
	txRepo        *repository.TransactionRepository
	childRepo     *repository.ChildRepository
	budgetRepo    *repository.BudgetRepository
	userRepo      *repository.UserRepository
	notifications *NotificationService
	achievements  *AchievementService
}

// NewTransactionService creates a new transaction service
func NewTransactionService(
	txRepo *repository.TransactionRepository,
	childRepo *repository.ChildRepository,
	budgetRepo *repository.BudgetRepository,
	userRepo *repository.UserRepository,
	notifications *NotificationService,
	achievements *AchievementService,
) *TransactionService {
	return &TransactionService{
		txRepo:        txRepo,
		childRepo:     childRepo,
		budgetRepo:    budgetRepo,
		userRepo:      userRepo,
		notifications: notifications,
		achievements:  achievements,
	}
}

// Credit adds money to a child's spending balance
func (s *TransactionService) Credit(childID int64, amount decimal.Decimal, category, description string, createdBy *int64) (*models.Transaction, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	newBalance := child.CurrentBalance.Add(amount)
	entry := &models.Transaction{
		ChildID:      childID,
		Amount:       amount,
		Type:         models.TransactionCredit,
		Category:     category,
		Description:  description,
		BalanceAfter: newBalance,
		CreatedBy:    createdBy,
	}
	if err := s.txRepo.AppendWithBalance(childID, newBalance, entry); err != nil {
		return nil, err
	}

	s.achievements.RecordProgress(childID, models.CriteriaBalancePeak, newBalance)

	return entry, nil
}

// Debit removes money from a child's spending balance. The balance never
// goes negative. Exceeding a category budget notifies the family's parents
// but does not block the debit.
func (s *TransactionService) Debit(childID int64, amount decimal.Decimal, category, description string, createdBy *int64) (*models.Transaction, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	if amount.GreaterThan(child.CurrentBalance) {
		return nil, ErrInsufficientBalance
	}

	newBalance := child.CurrentBalance.Sub(amount)
	entry := &models.Transaction{
		ChildID:      childID,
		Amount:       amount,
		Type:         models.TransactionDebit,
		Category:     category,
		Description:  description,
		BalanceAfter: newBalance,
		CreatedBy:    createdBy,
	}
	if err := s.txRepo.AppendWithBalance(childID, newBalance, entry); err != nil {
		return nil, err
	}

	s.checkBudget(child, category)

	return entry, nil
}

// checkBudget notifies the family's parents when this month's debits in a
// category pass its limit. Failures are logged inside the notification
// service and never fail the debit.
func (s *TransactionService) checkBudget(child *models.Child, category string) {
	budget, err := s.budgetRepo.GetBudget(child.ID, category)
	if err != nil || budget == nil {
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	spent, err := s.txRepo.SumCategoryDebits(child.ID, category, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return
	}
	if spent.LessThanOrEqual(budget.MonthlyLimit) {
		return
	}

	parents, err := s.userRepo.ListParentsByFamily(child.FamilyID)
	if err != nil {
		return
	}
	title := fmt.Sprintf("%s went over the %s budget", child.Name, category)
	body := fmt.Sprintf("Spent %s of a %s monthly limit.", spent.StringFixed(2), budget.MonthlyLimit.StringFixed(2))
	for _, parent := range parents {
		s.notifications.Notify(parent.ID, models.NotificationBudgetExceeded, title, body)
	}
}

// ListTransactions retrieves a page of a child's ledger
func (s *TransactionService) ListTransactions(childID int64, category string, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.txRepo.ListByChild(childID, category, limit, offset)
}

// SetBudget creates or replaces a monthly category budget
func (s *TransactionService) SetBudget(childID int64, category string, monthlyLimit decimal.Decimal) (*models.CategoryBudget, error) {
	if category == "" {
		return nil, errors.New("category is required")
	}
	if !monthlyLimit.IsPositive() {
		return nil, errors.New("monthly limit must be positive")
	}
	return s.budgetRepo.UpsertBudget(childID, category, monthlyLimit)
}

// ListBudgets retrieves a child's category budgets
func (s *TransactionService) ListBudgets(childID int64) ([]models.CategoryBudget, error) {
	return s.budgetRepo.ListBudgetsByChild(childID)
}

// DeleteBudget removes a category budget
func (s *TransactionService) DeleteBudget(childID int64, category string) error {
	return s.budgetRepo.DeleteBudget(childID, category)
}
