package service

import (
	"errors"
	"fmt"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

var (
	ErrChoreNotFound   = errors.New("chore not found")
	ErrChoreNotOpen    = errors.New("chore is not open")
	ErrChoreNotClaimed = errors.New("chore has not been marked done")
	ErrChoreUnassigned = errors.New("chore is not assigned to a child")
)

// ChoreService manages the chore lifecycle: open -> done -> approved, with
// rejection returning a claim to open
type ChoreService struct {
	choreRepo     *repository.ChoreRepository
	childRepo     *repository.ChildRepository
	notifications *NotificationService
	achievements  *AchievementService
}

// NewChoreService creates a new chore service
func NewChoreService(choreRepo *repository.ChoreRepository, childRepo *repository.ChildRepository, notifications *NotificationService, achievements *AchievementService) *ChoreService {
	return &ChoreService{
		choreRepo:     choreRepo,
		childRepo:     childRepo,
		notifications: notifications,
		achievements:  achievements,
	}
}

// CreateChore adds a chore, optionally assigned to a child
func (s *ChoreService) CreateChore(familyID, createdBy int64, childID *int64, title, description string, reward decimal.Decimal, dueDate *time.Time) (*models.Chore, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, validation.ValidationError{Field: "title", Message: "must be 1-100 characters"}
	}
	if reward.IsNegative() {
		return nil, validation.ValidationError{Field: "reward_amount", Message: "must not be negative"}
	}

	chore := &models.Chore{
		FamilyID:     familyID,
		ChildID:      childID,
		Title:        title,
		Description:  description,
		RewardAmount: reward,
		Status:       models.ChoreStatusOpen,
		DueDate:      dueDate,
		CreatedBy:    createdBy,
	}
	if err := s.choreRepo.CreateChore(chore); err != nil {
		return nil, err
	}
	return chore, nil
}

// GetChore retrieves a chore, enforcing family membership
func (s *ChoreService) GetChore(familyID, choreID int64) (*models.Chore, error) {
	chore, err := s.choreRepo.GetChoreByID(choreID)
	if err != nil {
		return nil, err
	}
	if chore == nil {
		return nil, ErrChoreNotFound
	}
	if chore.FamilyID != familyID {
		return nil, ErrNotFamilyMember
	}
	return chore, nil
}

// ListChores retrieves a family's chores with optional filters
func (s *ChoreService) ListChores(familyID int64, status string, childID *int64) ([]models.Chore, error) {
	return s.choreRepo.ListChoresByFamily(familyID, status, childID)
}

// UpdateChore edits an open or rejected chore
func (s *ChoreService) UpdateChore(familyID, choreID int64, childID *int64, title, description string, reward decimal.Decimal, dueDate *time.Time) (*models.Chore, error) {
	chore, err := s.GetChore(familyID, choreID)
	if err != nil {
		return nil, err
	}
	if chore.Status == models.ChoreStatusApproved {
		return nil, ErrChoreNotOpen
	}
	if reward.IsNegative() {
		return nil, validation.ValidationError{Field: "reward_amount", Message: "must not be negative"}
	}

	chore.ChildID = childID
	chore.Title = title
	chore.Description = description
	chore.RewardAmount = reward
	chore.DueDate = dueDate
	if err := s.choreRepo.UpdateChore(chore); err != nil {
		return nil, err
	}
	return chore, nil
}

// MarkDone records a child's claim that the chore is finished
func (s *ChoreService) MarkDone(familyID, choreID int64) (*models.Chore, error) {
	chore, err := s.GetChore(familyID, choreID)
	if err != nil {
		return nil, err
	}
	if chore.Status != models.ChoreStatusOpen && chore.Status != models.ChoreStatusRejected {
		return nil, ErrChoreNotOpen
	}
	if chore.ChildID == nil {
		return nil, ErrChoreUnassigned
	}

	now := time.Now()
	if err := s.choreRepo.MarkChoreDone(choreID, now); err != nil {
		return nil, err
	}
	chore.Status = models.ChoreStatusDone
	chore.CompletedAt = &now
	return chore, nil
}

// Approve credits the reward to the assigned child and closes the chore
func (s *ChoreService) Approve(familyID, choreID int64, approvedBy int64) (*models.Chore, error) {
	chore, err := s.GetChore(familyID, choreID)
	if err != nil {
		return nil, err
	}
	if chore.Status != models.ChoreStatusDone {
		return nil, ErrChoreNotClaimed
	}
	if chore.ChildID == nil {
		return nil, ErrChoreUnassigned
	}

	child, err := s.childRepo.GetChildByID(*chore.ChildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	now := time.Now()
	newBalance := child.CurrentBalance.Add(chore.RewardAmount)
	entry := &models.Transaction{
		ChildID:      child.ID,
		Amount:       chore.RewardAmount,
		Type:         models.TransactionCredit,
		Category:     models.CategoryChore,
		Description:  fmt.Sprintf("Chore reward: %s", chore.Title),
		BalanceAfter: newBalance,
		CreatedBy:    &approvedBy,
	}
	if err := s.choreRepo.ApproveWithReward(choreID, child.ID, now, newBalance, entry); err != nil {
		return nil, err
	}

	chore.Status = models.ChoreStatusApproved
	chore.ApprovedAt = &now

	if child.UserID != nil {
		s.notifications.Notify(*child.UserID, models.NotificationChoreApproved,
			fmt.Sprintf("Chore approved: %s", chore.Title),
			fmt.Sprintf("You earned %s.", chore.RewardAmount.StringFixed(2)))
	}

	if count, err := s.choreRepo.CountApprovedByChild(child.ID); err == nil {
		s.achievements.RecordProgress(child.ID, models.CriteriaChoresApproved, decimal.NewFromInt(int64(count)))
	}
	s.achievements.RecordProgress(child.ID, models.CriteriaBalancePeak, newBalance)

	return chore, nil
}

// Reject sends a claimed chore back for another try
func (s *ChoreService) Reject(familyID, choreID int64) (*models.Chore, error) {
	chore, err := s.GetChore(familyID, choreID)
	if err != nil {
		return nil, err
	}
	if chore.Status != models.ChoreStatusDone {
		return nil, ErrChoreNotClaimed
	}

	if err := s.choreRepo.RejectChore(choreID); err != nil {
		return nil, err
	}
	chore.Status = models.ChoreStatusRejected
	chore.CompletedAt = nil

	if chore.ChildID != nil {
		child, err := s.childRepo.GetChildByID(*chore.ChildID)
		if err == nil && child != nil && child.UserID != nil {
			s.notifications.Notify(*child.UserID, models.NotificationChoreRejected,
				fmt.Sprintf("Chore needs another look: %s", chore.Title), "")
		}
	}
	return chore, nil
}

// DeleteChore removes a chore that has not been approved
func (s *ChoreService) DeleteChore(familyID, choreID int64) error {
	chore, err := s.GetChore(familyID, choreID)
	if err != nil {
		return err
	}
	if chore.Status == models.ChoreStatusApproved {
		return ErrChoreNotOpen
	}
	return s.choreRepo.DeleteChore(choreID)
}
