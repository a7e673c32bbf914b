package service

import (
	"fmt"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
)

// AnalyticsService builds dashboard figures from the ledger and goal tables
type AnalyticsService struct {
	txRepo    *repository.TransactionRepository
	childRepo *repository.ChildRepository
	goalRepo  *repository.GoalRepository
	badgeRepo *repository.BadgeRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	txRepo *repository.TransactionRepository,
	childRepo *repository.ChildRepository,
	goalRepo *repository.GoalRepository,
	badgeRepo *repository.BadgeRepository,
) *AnalyticsService {
	return &AnalyticsService{
		txRepo:    txRepo,
		childRepo: childRepo,
		goalRepo:  goalRepo,
		badgeRepo: badgeRepo,
	}
}

// ChildSummary aggregates a child's standing for dashboards
func (s *AnalyticsService) ChildSummary(childID int64) (*models.ChildWithStats, error) {
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}

	credited, debited, err := s.txRepo.SumByType(childID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.ListGoalsByChild(childID)
	if err != nil {
		return nil, err
	}
	var active, completed int
	for _, goal := range goals {
		switch goal.Status {
		case models.GoalStatusActive, models.GoalStatusPaused:
			active++
		case models.GoalStatusCompleted, models.GoalStatusPurchased:
			completed++
		}
	}

	points, err := s.badgeRepo.SumEarnedPoints(childID)
	if err != nil {
		return nil, err
	}

	badges, err := s.badgeRepo.ListChildBadges(childID)
	if err != nil {
		return nil, err
	}
	var earned int
	for _, badge := range badges {
		if badge.EarnedAt != nil {
			earned++
		}
	}

	return &models.ChildWithStats{
		Child:          *child,
		TotalCredited:  credited,
		TotalDebited:   debited,
		ActiveGoals:    active,
		GoalsCompleted: completed,
		Points:         points,
		BadgesEarned:   earned,
	}, nil
}

// FamilyOverview builds one summary row per child in the family
func (s *AnalyticsService) FamilyOverview(familyID int64) ([]models.ChildWithStats, error) {
	children, err := s.childRepo.ListChildrenByFamily(familyID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ChildWithStats, 0, len(children))
	for _, child := range children {
		summary, err := s.ChildSummary(child.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// SpendingByCategory totals a child's debits per category over a range
func (s *AnalyticsService) SpendingByCategory(childID int64, from, to time.Time) ([]repository.CategoryTotal, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, -1, 0)
	}
	return s.txRepo.SpendingByCategory(childID, from, to)
}

// BalanceHistory returns the most recent balance samples, oldest first
func (s *AnalyticsService) BalanceHistory(childID int64, limit int) ([]repository.BalancePoint, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.txRepo.BalanceHistory(childID, limit)
}
