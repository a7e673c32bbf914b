package service

import (
	"errors"
	"fmt"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

var ErrInsufficientSavings = errors.New("insufficient savings balance")

// SavingsAccountService moves money between a child's spending and savings
// balances. The savings balance is a holding pot separate from goals.
type SavingsAccountService struct {
	childRepo *repository.ChildRepository
}

// NewSavingsAccountService creates a new savings account service
func NewSavingsAccountService(childRepo *repository.ChildRepository) *SavingsAccountService {
	return &SavingsAccountService{childRepo: childRepo}
}

// Deposit moves money from spending to savings
func (s *SavingsAccountService) Deposit(childID int64, amount decimal.Decimal, createdBy *int64) (*models.Child, error) {
	if !amount.IsPositive() {
		return nil, validation.ValidationError{Field: "amount", Message: "must be positive"}
	}

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

	newCurrent := child.CurrentBalance.Sub(amount)
	newSavings := child.SavingsBalance.Add(amount)
	entry := &models.Transaction{
		ChildID:      childID,
		Amount:       amount,
		Type:         models.TransactionDebit,
		Category:     models.CategorySavingsDeposit,
		Description:  "Moved to savings",
		BalanceAfter: newCurrent,
		CreatedBy:    createdBy,
	}
	if err := s.childRepo.ApplyBalanceMove(childID, newCurrent, newSavings, entry); err != nil {
		return nil, err
	}

	child.CurrentBalance = newCurrent
	child.SavingsBalance = newSavings
	return child, nil
}

// SetTransferPercent sets the share of each allowance payment swept into
// savings
func (s *SavingsAccountService) SetTransferPercent(childID int64, percent int) error {
	if err := validation.ValidatePercent("savings_transfer_percent", percent); err != nil {
		return err
	}
	return s.childRepo.UpdateSavingsTransferPercent(childID, percent)
}

// Withdraw moves money from savings back to spending
func (s *SavingsAccountService) Withdraw(childID int64, amount decimal.Decimal, createdBy *int64) (*models.Child, error) {
	if !amount.IsPositive() {
		return nil, validation.ValidationError{Field: "amount", Message: "must be positive"}
	}

	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if amount.GreaterThan(child.SavingsBalance) {
		return nil, ErrInsufficientSavings
	}

	newCurrent := child.CurrentBalance.Add(amount)
	newSavings := child.SavingsBalance.Sub(amount)
	entry := &models.Transaction{
		ChildID:      childID,
		Amount:       amount,
		Type:         models.TransactionCredit,
		Category:     models.CategorySavingsWithdrawal,
		Description:  "Moved from savings",
		BalanceAfter: newCurrent,
		CreatedBy:    createdBy,
	}
	if err := s.childRepo.ApplyBalanceMove(childID, newCurrent, newSavings, entry); err != nil {
		return nil, err
	}

	child.CurrentBalance = newCurrent
	child.SavingsBalance = newSavings
	return child, nil
}
