package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrRewardNotFound    = errors.New("reward not found")
	ErrInsufficientPoint = errors.New("not enough points")
)

// AchievementService tracks badge progress and the points economy
type AchievementService struct {
	badgeRepo     *repository.BadgeRepository
	childRepo     *repository.ChildRepository
	notifications *NotificationService
}

// NewAchievementService creates a new achievement service
func NewAchievementService(badgeRepo *repository.BadgeRepository, childRepo *repository.ChildRepository, notifications *NotificationService) *AchievementService {
	return &AchievementService{
		badgeRepo:     badgeRepo,
		childRepo:     childRepo,
		notifications: notifications,
	}
}

// RecordProgress reports a child's current standing for one criteria type.
// Callers pass the up-to-date total (deposit count, amount saved, peak
// balance), so progress only ever moves forward and repeated calls with the
// same value are harmless. Errors are logged, never propagated: badge
// bookkeeping must not fail the money movement that triggered it.
func (s *AchievementService) RecordProgress(childID int64, criteriaType string, value decimal.Decimal) {
	badges, err := s.badgeRepo.ListBadgesByCriteria(criteriaType)
	if err != nil {
		log.Printf("achievement: failed to list badges for %s: %v", criteriaType, err)
		return
	}

	for _, badge := range badges {
		if err := s.recordBadge(childID, badge, value); err != nil {
			log.Printf("achievement: failed to record %s for child %d: %v", badge.Code, childID, err)
		}
	}
}

func (s *AchievementService) recordBadge(childID int64, badge models.Badge, value decimal.Decimal) error {
	cb, err := s.badgeRepo.GetChildBadge(childID, badge.ID)
	if err != nil {
		return err
	}

	if cb == nil {
		cb = &models.ChildBadge{ChildID: childID, BadgeID: badge.ID, Progress: decimal.Zero}
		if err := s.badgeRepo.CreateChildBadge(cb); err != nil {
			return err
		}
	}

	if value.LessThanOrEqual(cb.Progress) {
		return nil
	}

	if cb.EarnedAt == nil && value.GreaterThanOrEqual(badge.Threshold) {
		now := time.Now()
		if err := s.badgeRepo.UpdateChildBadgeProgress(cb.ID, value, &now); err != nil {
			return err
		}
		s.notifyBadgeEarned(childID, badge)
		return nil
	}

	return s.badgeRepo.UpdateChildBadgeProgress(cb.ID, value, nil)
}

func (s *AchievementService) notifyBadgeEarned(childID int64, badge models.Badge) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil || child == nil || child.UserID == nil {
		return
	}
	s.notifications.Notify(*child.UserID, models.NotificationBadgeEarned,
		fmt.Sprintf("Badge earned: %s", badge.Name), badge.Description)
}

// ListBadges retrieves a child's badge progress
func (s *AchievementService) ListBadges(childID int64) ([]models.ChildBadgeDetail, error) {
	return s.badgeRepo.ListChildBadges(childID)
}

// AvailablePoints returns earned minus spent points
func (s *AchievementService) AvailablePoints(childID int64) (int, error) {
	earned, err := s.badgeRepo.SumEarnedPoints(childID)
	if err != nil {
		return 0, err
	}
	spent, err := s.badgeRepo.SumSpentPoints(childID)
	if err != nil {
		return 0, err
	}
	return earned - spent, nil
}

// PurchaseReward spends points on a cosmetic unlock
func (s *AchievementService) PurchaseReward(childID int64, rewardType, name string, cost int) (*models.Reward, error) {
	switch rewardType {
	case models.RewardAvatarFrame, models.RewardTheme, models.RewardTitle:
	default:
		return nil, fmt.Errorf("unknown reward type: %s", rewardType)
	}
	if cost < 0 {
		return nil, errors.New("cost must not be negative")
	}

	available, err := s.AvailablePoints(childID)
	if err != nil {
		return nil, err
	}
	if cost > available {
		return nil, ErrInsufficientPoint
	}

	reward := &models.Reward{ChildID: childID, Type: rewardType, Name: name, Cost: cost}
	if err := s.badgeRepo.CreateReward(reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// ListRewards retrieves a child's purchased rewards
func (s *AchievementService) ListRewards(childID int64) ([]models.Reward, error) {
	return s.badgeRepo.ListRewardsByChild(childID)
}

// EquipReward equips one owned reward, replacing any equipped reward of the
// same type
func (s *AchievementService) EquipReward(childID, rewardID int64) (*models.Reward, error) {
	reward, err := s.badgeRepo.GetRewardByID(rewardID)
	if err != nil {
		return nil, err
	}
	if reward == nil || reward.ChildID != childID {
		return nil, ErrRewardNotFound
	}

	if err := s.badgeRepo.EquipReward(childID, rewardID, reward.Type); err != nil {
		return nil, err
	}
	reward.Equipped = true
	return reward, nil
}

// UnequipReward takes off an equipped reward
func (s *AchievementService) UnequipReward(childID, rewardID int64) error {
	reward, err := s.badgeRepo.GetRewardByID(rewardID)
	if err != nil {
		return err
	}
	if reward == nil || reward.ChildID != childID {
		return ErrRewardNotFound
	}
	return s.badgeRepo.UnequipReward(rewardID)
}
