package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

var (
	ErrGiftLinkNotFound = errors.New("gift link not found")
	ErrGiftLinkClosed   = errors.New("gift link is no longer active")
	ErrGiftNotFound     = errors.New("gift not found")
	ErrNoteExists       = errors.New("thank-you note already written")
)

// GiftLinkInfo is the public view of a gift link shown to givers
type GiftLinkInfo struct {
	ChildName string
	GoalName  string
	Message   string
}

// GiftService manages shareable gift links, incoming gifts and thank-you
// notes
type GiftService struct {
	giftRepo      *repository.GiftRepository
	goalRepo      *repository.GoalRepository
	childRepo     *repository.ChildRepository
	userRepo      *repository.UserRepository
	savings       *SavingsService
	notifications *NotificationService
	email         *EmailService
}

// NewGiftService creates a new gift service
func NewGiftService(
	giftRepo *repository.GiftRepository,
	goalRepo *repository.GoalRepository,
	childRepo *repository.ChildRepository,
	userRepo *repository.UserRepository,
	savings *SavingsService,
	notifications *NotificationService,
	email *EmailService,
) *GiftService {
	return &GiftService{
		giftRepo:      giftRepo,
		goalRepo:      goalRepo,
		childRepo:     childRepo,
		userRepo:      userRepo,
		savings:       savings,
		notifications: notifications,
		email:         email,
	}
}

// CreateLink creates a shareable gift link for a child, optionally bound to
// one of their goals
func (s *GiftService) CreateLink(familyID, createdBy, childID int64, goalID *int64, message string, expiresAt *time.Time) (*models.GiftLink, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil || child.FamilyID != familyID {
		return nil, ErrChildNotFound
	}

	if goalID != nil {
		goal, err := s.goalRepo.GetGoalByID(*goalID)
		if err != nil {
			return nil, err
		}
		if goal == nil || goal.ChildID != childID {
			return nil, ErrGoalNotFound
		}
		if !goal.IsOpen() {
			return nil, ErrGoalNotOpen
		}
	}
	if expiresAt != nil && !expiresAt.After(time.Now()) {
		return nil, validation.ValidationError{Field: "expires_at", Message: "must be in the future"}
	}

	link := &models.GiftLink{
		Token:     security.GenerateOpaqueToken(),
		ChildID:   childID,
		GoalID:    goalID,
		Message:   message,
		ExpiresAt: expiresAt,
		CreatedBy: createdBy,
	}
	if err := s.giftRepo.CreateGiftLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// ListLinks retrieves a child's gift links
func (s *GiftService) ListLinks(childID int64) ([]models.GiftLink, error) {
	return s.giftRepo.ListGiftLinksByChild(childID)
}

// DeactivateLink turns a gift link off
func (s *GiftService) DeactivateLink(familyID, linkID int64) error {
	link, err := s.giftRepo.GetGiftLinkByID(linkID)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrGiftLinkNotFound
	}
	child, err := s.childRepo.GetChildByID(link.ChildID)
	if err != nil {
		return err
	}
	if child == nil || child.FamilyID != familyID {
		return ErrGiftLinkNotFound
	}
	return s.giftRepo.DeactivateGiftLink(linkID)
}

// ResolveLink returns the public info shown on a gift page
func (s *GiftService) ResolveLink(token string) (*GiftLinkInfo, error) {
	link, err := s.giftRepo.GetGiftLinkByToken(token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrGiftLinkNotFound
	}
	if !link.IsUsable(time.Now()) {
		return nil, ErrGiftLinkClosed
	}

	child, err := s.childRepo.GetChildByID(link.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrGiftLinkNotFound
	}

	info := &GiftLinkInfo{ChildName: child.Name, Message: link.Message}
	if link.GoalID != nil {
		goal, err := s.goalRepo.GetGoalByID(*link.GoalID)
		if err != nil {
			return nil, err
		}
		if goal != nil {
			info.GoalName = goal.Name
		}
	}
	return info, nil
}

// SubmitGift accepts a gift through a link. Goal gifts contribute to the
// goal with milestone evaluation but no parent matching; balance gifts
// credit the child's spending balance.
func (s *GiftService) SubmitGift(ctx context.Context, token, giverName, giverEmail string, amount decimal.Decimal, message string) (*models.Gift, error) {
	if giverName == "" {
		return nil, validation.ValidationError{Field: "giver_name", Message: "is required"}
	}
	if !amount.IsPositive() {
		return nil, validation.ValidationError{Field: "amount", Message: "must be positive"}
	}

	link, err := s.giftRepo.GetGiftLinkByToken(token)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrGiftLinkNotFound
	}
	if !link.IsUsable(time.Now()) {
		return nil, ErrGiftLinkClosed
	}

	child, err := s.childRepo.GetChildByID(link.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, ErrGiftLinkNotFound
	}

	gift := &models.Gift{
		GiftLinkID: link.ID,
		GiverName:  giverName,
		GiverEmail: giverEmail,
		Amount:     amount,
		Message:    message,
	}

	var goal *models.SavingsGoal
	if link.GoalID != nil {
		goal, err = s.goalRepo.GetGoalByID(*link.GoalID)
		if err != nil {
			return nil, err
		}
	}

	if goal != nil && goal.IsOpen() {
		plan, result, err := s.savings.planContribution(goal, child, amount, contributionOptions{
			contribType: models.ContributionGift,
			description: fmt.Sprintf("gift from %s", giverName),
		})
		if err != nil {
			return nil, err
		}
		if err := s.giftRepo.CreateGiftWithGoalCredit(gift, plan); err != nil {
			return nil, err
		}
		s.savings.afterContribution(goal, child, result)
	} else {
		// No goal, or the goal has since closed: credit the balance.
		newBalance := child.CurrentBalance.Add(amount)
		entry := &models.Transaction{
			ChildID:      child.ID,
			Amount:       amount,
			Type:         models.TransactionCredit,
			Category:     models.CategoryGift,
			Description:  fmt.Sprintf("Gift from %s", giverName),
			BalanceAfter: newBalance,
		}
		if err := s.giftRepo.CreateGiftWithBalanceCredit(gift, child.ID, newBalance, entry); err != nil {
			return nil, err
		}
	}

	s.notifyGiftReceived(child, giverName, amount)

	if giverEmail != "" {
		receipt := fmt.Sprintf("Your gift of %s to %s was delivered. Thank you!", amount.StringFixed(2), child.Name)
		if err := s.email.SendGiftLinkEmail(ctx, giverEmail, child.Name, token, receipt); err != nil {
			log.Printf("gift: failed to email receipt to %s: %v", giverEmail, err)
		}
	}

	return gift, nil
}

func (s *GiftService) notifyGiftReceived(child *models.Child, giverName string, amount decimal.Decimal) {
	title := fmt.Sprintf("%s received a gift from %s", child.Name, giverName)
	body := fmt.Sprintf("Amount: %s", amount.StringFixed(2))

	if child.UserID != nil {
		s.notifications.Notify(*child.UserID, models.NotificationGiftReceived,
			fmt.Sprintf("You got a gift from %s!", giverName), body)
	}
	parents, err := s.userRepo.ListParentsByFamily(child.FamilyID)
	if err != nil {
		return
	}
	for _, parent := range parents {
		s.notifications.Notify(parent.ID, models.NotificationGiftReceived, title, body)
	}
}

// ListGifts retrieves every gift a child has received
func (s *GiftService) ListGifts(childID int64) ([]models.Gift, error) {
	return s.giftRepo.ListGiftsByChild(childID)
}

// WriteThankYouNote records a child's note for a gift and emails it to the
// giver when their address is known
func (s *GiftService) WriteThankYouNote(ctx context.Context, familyID, giftID int64, message string) (*models.ThankYouNote, error) {
	if message == "" {
		return nil, validation.ValidationError{Field: "message", Message: "is required"}
	}

	gift, err := s.giftRepo.GetGiftByID(giftID)
	if err != nil {
		return nil, err
	}
	if gift == nil {
		return nil, ErrGiftNotFound
	}

	link, err := s.giftRepo.GetGiftLinkByID(gift.GiftLinkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrGiftNotFound
	}
	child, err := s.childRepo.GetChildByID(link.ChildID)
	if err != nil {
		return nil, err
	}
	if child == nil || child.FamilyID != familyID {
		return nil, ErrGiftNotFound
	}

	existing, err := s.giftRepo.GetThankYouNoteByGift(giftID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrNoteExists
	}

	note := &models.ThankYouNote{GiftID: giftID, Message: message}
	if err := s.giftRepo.CreateThankYouNote(note); err != nil {
		return nil, err
	}

	if gift.GiverEmail != "" {
		if err := s.email.SendThankYouEmail(ctx, gift.GiverEmail, gift.GiverName, child.Name, message); err != nil {
			log.Printf("gift: failed to email thank-you note: %v", err)
		} else {
			now := time.Now()
			if err := s.giftRepo.MarkThankYouNoteSent(note.ID, now); err != nil {
				log.Printf("gift: failed to stamp thank-you note: %v", err)
			} else {
				note.SentAt = &now
			}
		}
	}

	return note, nil
}
