package handlers

import (
	"net/http"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/service"

	"github.com/shopspring/decimal"
)

// AchievementHandler handles badge and reward endpoints
type AchievementHandler struct {
	achievementService *service.AchievementService
	childAccess
}

// NewAchievementHandler creates a new achievement handler
func NewAchievementHandler(achievementService *service.AchievementService, childRepo *repository.ChildRepository) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
		childAccess:        childAccess{childRepo: childRepo},
	}
}

type badgeResponse struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Threshold   decimal.Decimal `json:"threshold"`
	Points      int             `json:"points"`
	Progress    decimal.Decimal `json:"progress"`
	EarnedAt    *time.Time      `json:"earned_at"`
}

// ListBadges returns the child's badge progress, earned first
func (h *AchievementHandler) ListBadges(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	if _, err := h.authorize(claims, childID); err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	badges, err := h.achievementService.ListBadges(childID)
	if err != nil {
		respondServiceError(w, "Error listing badges", err)
		return
	}

	out := make([]badgeResponse, 0, len(badges))
	for _, b := range badges {
		out = append(out, badgeResponse{
			Code:        b.Badge.Code,
			Name:        b.Badge.Name,
			Description: b.Badge.Description,
			Icon:        b.Badge.Icon,
			Threshold:   b.Badge.Threshold,
			Points:      b.Badge.Points,
			Progress:    b.Progress,
			EarnedAt:    b.EarnedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// GetPoints returns the child's spendable badge points
func (h *AchievementHandler) GetPoints(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	if _, err := h.authorize(claims, childID); err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	points, err := h.achievementService.AvailablePoints(childID)
	if err != nil {
		respondServiceError(w, "Error computing points", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"points": points})
}

type rewardResponse struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Cost     int    `json:"cost"`
	Equipped bool   `json:"equipped"`
}

func newRewardResponse(reward *models.Reward) rewardResponse {
	return rewardResponse{
		ID:       reward.ID,
		Type:     reward.Type,
		Name:     reward.Name,
		Cost:     reward.Cost,
		Equipped: reward.Equipped,
	}
}

// PurchaseReward spends badge points on a cosmetic unlock
func (h *AchievementHandler) PurchaseReward(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	if _, err := h.authorize(claims, childID); err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	var req struct {
		Type string `json:"type"`
		Name string `json:"name"`
		Cost int    `json:"cost"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := h.achievementService.PurchaseReward(childID, req.Type, req.Name, req.Cost)
	if err != nil {
		respondServiceError(w, "Error purchasing reward", err)
		return
	}

	respondJSON(w, http.StatusCreated, newRewardResponse(reward))
}

// ListRewards returns the child's purchased rewards
func (h *AchievementHandler) ListRewards(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	if _, err := h.authorize(claims, childID); err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	rewards, err := h.achievementService.ListRewards(childID)
	if err != nil {
		respondServiceError(w, "Error listing rewards", err)
		return
	}

	out := make([]rewardResponse, 0, len(rewards))
	for i := range rewards {
		out = append(out, newRewardResponse(&rewards[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// EquipReward equips a purchased reward, replacing any of the same type
func (h *AchievementHandler) EquipReward(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}
	rewardID, ok := pathID(r, "rewardId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid reward id", "", nil)
		return
	}

	if _, err := h.authorize(claims, childID); err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	reward, err := h.achievementService.EquipReward(childID, rewardID)
	if err != nil {
		respondServiceError(w, "Error equipping reward", err)
		return
	}

	respondJSON(w, http.StatusOK, newRewardResponse(reward))
}

// UnequipReward takes off an equipped reward
func (h *AchievementHandler) UnequipReward(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}
	rewardID, ok := pathID(r, "rewardId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid reward id", "", nil)
		return
	}

	if _, err := h.authorize(claims, childID); err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	if err := h.achievementService.UnequipReward(childID, rewardID); err != nil {
		respondServiceError(w, "Error unequipping reward", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
