package handlers

import (
	"log"
	"net/http"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/service"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

// SavingsHandler handles savings goal, matching rule and challenge endpoints
type SavingsHandler struct {
	savingsService *service.SavingsService
	storage        *service.StorageService
	goalRepo       *repository.GoalRepository
	maxUploadSize  int64
	childAccess
}

// NewSavingsHandler creates a new savings handler
func NewSavingsHandler(savingsService *service.SavingsService, storage *service.StorageService, goalRepo *repository.GoalRepository, childRepo *repository.ChildRepository, maxUploadSize int64) *SavingsHandler {
	return &SavingsHandler{
		savingsService: savingsService,
		storage:        storage,
		goalRepo:       goalRepo,
		maxUploadSize:  maxUploadSize,
		childAccess:    childAccess{childRepo: childRepo},
	}
}

// authorizeGoal loads a goal and checks the caller may act on its child
func (h *SavingsHandler) authorizeGoal(claims *security.Claims, goalID int64) (*models.GoalDetail, error) {
	detail, err := h.savingsService.GetGoal(goalID)
	if err != nil {
		return nil, err
	}
	if _, err := h.authorize(claims, detail.Goal.ChildID); err != nil {
		return nil, err
	}
	return detail, nil
}

type goalRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	TargetAmount    string `json:"target_amount"`
	Priority        int    `json:"priority"`
	TransferType    string `json:"transfer_type"`
	TransferAmount  string `json:"transfer_amount"`
	TransferPercent int    `json:"transfer_percent"`
}

func (req *goalRequest) amounts() (target, transfer decimal.Decimal, err error) {
	target, err = validation.ParseAmount("target_amount", req.TargetAmount)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	transfer = decimal.Zero
	if req.TransferAmount != "" {
		transfer, err = validation.ParseAmount("transfer_amount", req.TransferAmount)
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	return target, transfer, nil
}

// CreateGoal starts a new savings goal for a child
func (h *SavingsHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
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

	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, transfer, err := req.amounts()
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	goal, err := h.savingsService.CreateGoal(childID, req.Name, req.Description, target,
		req.Priority, req.TransferType, transfer, req.TransferPercent)
	if err != nil {
		respondServiceError(w, "Error creating goal", err)
		return
	}

	respondJSON(w, http.StatusCreated, newGoalResponse(goal))
}

// ListGoals returns all of a child's goals
func (h *SavingsHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
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

	goals, err := h.savingsService.ListGoals(childID)
	if err != nil {
		respondServiceError(w, "Error listing goals", err)
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for i := range goals {
		out = append(out, newGoalResponse(&goals[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetGoal returns a goal with its milestones, matching rule and challenge
func (h *SavingsHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	detail, err := h.authorizeGoal(claims, goalID)
	if err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	milestones := make([]milestoneResponse, 0, len(detail.Milestones))
	for _, m := range detail.Milestones {
		milestones = append(milestones, milestoneResponse{
			Percent:      m.Percent,
			TargetAmount: m.TargetAmount,
			AchievedAt:   m.AchievedAt,
		})
	}

	payload := map[string]interface{}{
		"goal":       newGoalResponse(&detail.Goal),
		"milestones": milestones,
	}
	if detail.MatchingRule != nil {
		payload["matching_rule"] = newMatchingRuleResponse(detail.MatchingRule)
	}
	if detail.Challenge != nil {
		payload["challenge"] = newChallengeResponse(detail.Challenge)
	}

	respondJSON(w, http.StatusOK, payload)
}

// UpdateGoal edits an active or paused goal
func (h *SavingsHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	var req goalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, transfer, err := req.amounts()
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	goal, err := h.savingsService.UpdateGoal(goalID, req.Name, req.Description, target,
		req.Priority, req.TransferType, transfer, req.TransferPercent)
	if err != nil {
		respondServiceError(w, "Error updating goal", err)
		return
	}

	respondJSON(w, http.StatusOK, newGoalResponse(goal))
}

// ChangeGoalStatus pauses, resumes, cancels or marks a goal purchased
func (h *SavingsHandler) ChangeGoalStatus(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	var err error
	action := r.PathValue("action")
	switch action {
	case "pause":
		err = h.savingsService.PauseGoal(goalID)
	case "resume":
		err = h.savingsService.ResumeGoal(goalID)
	case "purchase":
		err = h.savingsService.MarkPurchased(goalID)
	case "cancel":
		userID := claims.UserID
		err = h.savingsService.CancelGoal(goalID, &userID)
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown goal action", "", nil)
		return
	}
	if err != nil {
		respondServiceError(w, "Error changing goal status", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

type contributionResultResponse struct {
	Goal               goalResponse    `json:"goal"`
	Deposited          decimal.Decimal `json:"deposited"`
	Matched            decimal.Decimal `json:"matched"`
	Bonus              decimal.Decimal `json:"bonus"`
	MilestonesReached  []int           `json:"milestones_reached"`
	ChallengeCompleted bool            `json:"challenge_completed"`
	GoalCompleted      bool            `json:"goal_completed"`
}

// Contribute moves money from the child's spending balance into a goal
func (h *SavingsHandler) Contribute(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	var req struct {
		Amount      string `json:"amount"`
		Description string `json:"description"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := validation.ParseAmount("amount", req.Amount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	userID := claims.UserID
	result, err := h.savingsService.Contribute(goalID, amount, models.ContributionDeposit, req.Description, &userID)
	if err != nil {
		respondServiceError(w, "Error contributing to goal", err)
		return
	}

	respondJSON(w, http.StatusCreated, contributionResultResponse{
		Goal:               newGoalResponse(result.Goal),
		Deposited:          result.Deposited,
		Matched:            result.Matched,
		Bonus:              result.Bonus,
		MilestonesReached:  result.MilestonesReached,
		ChallengeCompleted: result.ChallengeCompleted,
		GoalCompleted:      result.GoalCompleted,
	})
}

// Withdraw moves money from a goal back to the child's spending balance
func (h *SavingsHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := validation.ParseAmount("amount", req.Amount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	userID := claims.UserID
	goal, err := h.savingsService.Withdraw(goalID, amount, &userID)
	if err != nil {
		respondServiceError(w, "Error withdrawing from goal", err)
		return
	}

	respondJSON(w, http.StatusOK, newGoalResponse(goal))
}

// ListContributions returns a goal's contribution history, newest first
func (h *SavingsHandler) ListContributions(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	limit, offset := parsePaging(r, 50, 100)
	contributions, err := h.savingsService.ListContributions(goalID, limit, offset)
	if err != nil {
		respondServiceError(w, "Error listing contributions", err)
		return
	}

	respondJSON(w, http.StatusOK, newContributionResponses(contributions))
}

// SetMatchingRule creates a goal's parent matching rule. Goals carry at most
// one active rule; remove the old rule before configuring a new one.
func (h *SavingsHandler) SetMatchingRule(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	var req struct {
		Type           string `json:"type"`
		Ratio          string `json:"ratio"`
		Percent        string `json:"percent"`
		MaxMatchAmount string `json:"max_match_amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ratio, err := parseOptionalDecimal("ratio", req.Ratio)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}
	percent, err := parseOptionalDecimal("percent", req.Percent)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}
	maxMatch, err := parseOptionalDecimal("max_match_amount", req.MaxMatchAmount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	rule, err := h.savingsService.SetMatchingRule(goalID, claims.UserID, req.Type, ratio, percent, maxMatch)
	if err != nil {
		respondServiceError(w, "Error setting matching rule", err)
		return
	}

	respondJSON(w, http.StatusCreated, newMatchingRuleResponse(rule))
}

// RemoveMatchingRule deactivates a goal's matching rule
func (h *SavingsHandler) RemoveMatchingRule(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	if err := h.savingsService.RemoveMatchingRule(goalID); err != nil {
		respondServiceError(w, "Error removing matching rule", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// CreateChallenge starts a time-boxed bonus challenge on a goal
func (h *SavingsHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	var req struct {
		Name         string    `json:"name"`
		TargetAmount string    `json:"target_amount"`
		BonusAmount  string    `json:"bonus_amount"`
		EndsAt       time.Time `json:"ends_at"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	target, err := validation.ParseAmount("target_amount", req.TargetAmount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}
	bonus, err := validation.ParseAmount("bonus_amount", req.BonusAmount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	challenge, err := h.savingsService.CreateChallenge(goalID, req.Name, target, bonus, req.EndsAt)
	if err != nil {
		respondServiceError(w, "Error creating challenge", err)
		return
	}

	respondJSON(w, http.StatusCreated, newChallengeResponse(challenge))
}

// CancelChallenge cancels a goal's active challenge
func (h *SavingsHandler) CancelChallenge(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	if _, err := h.authorizeGoal(claims, goalID); err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	if err := h.savingsService.CancelChallenge(goalID); err != nil {
		respondServiceError(w, "Error cancelling challenge", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// UploadGoalImage stores a picture of what the child is saving for
func (h *SavingsHandler) UploadGoalImage(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	detail, err := h.authorizeGoal(claims, goalID)
	if err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}

	key, ok := readImageUpload(w, r, h.storage, "goals", h.maxUploadSize)
	if !ok {
		return
	}

	if err := h.goalRepo.UpdateGoalImage(goalID, key); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error saving goal image key", err)
		return
	}

	if detail.Goal.ImageKey != "" {
		if err := h.storage.Delete(r.Context(), detail.Goal.ImageKey); err != nil {
			log.Printf("Failed to delete old goal image %s: %v", detail.Goal.ImageKey, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"key": key})
}

// GetGoalImage returns a short-lived download URL for a goal's picture
func (h *SavingsHandler) GetGoalImage(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	goalID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid goal id", "", nil)
		return
	}

	detail, err := h.authorizeGoal(claims, goalID)
	if err != nil {
		respondServiceError(w, "Error loading goal", err)
		return
	}
	if detail.Goal.ImageKey == "" {
		respondWithError(w, http.StatusNotFound, "No image uploaded", "", nil)
		return
	}

	url, err := h.storage.PresignGet(r.Context(), detail.Goal.ImageKey, 15*time.Minute)
	if err != nil {
		respondServiceError(w, "Error presigning image URL", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// parseOptionalDecimal parses a decimal field, treating empty as zero
func parseOptionalDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, validation.ValidationError{Field: field, Message: "invalid number"}
	}
	return d, nil
}
