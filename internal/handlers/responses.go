package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/service"

	"github.com/shopspring/decimal"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// decodeJSON reads a JSON request body into dst. On failure it writes a 400
// response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", nil)
		return false
	}
	return true
}

// pathID parses a numeric path parameter
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parsePaging reads limit/offset query parameters, clamping limit
func parsePaging(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	FamilyID *int64 `json:"family_id"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		FamilyID: u.FamilyID,
	}
}

type tokenResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func newTokenResponse(pair *service.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}
}

type childResponse struct {
	ID                     int64           `json:"id"`
	FamilyID               int64           `json:"family_id"`
	Name                   string          `json:"name"`
	AvatarColor            string          `json:"avatar_color"`
	HasPhoto               bool            `json:"has_photo"`
	HasLogin               bool            `json:"has_login"`
	CurrentBalance         decimal.Decimal `json:"current_balance"`
	SavingsBalance         decimal.Decimal `json:"savings_balance"`
	WeeklyAllowance        decimal.Decimal `json:"weekly_allowance"`
	AllowanceDay           *int            `json:"allowance_day"`
	AllowancePaused        bool            `json:"allowance_paused"`
	LastAllowanceAt        *time.Time      `json:"last_allowance_at"`
	SavingsTransferPercent int             `json:"savings_transfer_percent"`
	CreatedAt              time.Time       `json:"created_at"`
}

func newChildResponse(c *models.Child) childResponse {
	return childResponse{
		ID:                     c.ID,
		FamilyID:               c.FamilyID,
		Name:                   c.Name,
		AvatarColor:            c.AvatarColor,
		HasPhoto:               c.AvatarKey != "",
		HasLogin:               c.UserID != nil,
		CurrentBalance:         c.CurrentBalance,
		SavingsBalance:         c.SavingsBalance,
		WeeklyAllowance:        c.WeeklyAllowance,
		AllowanceDay:           c.AllowanceDay,
		AllowancePaused:        c.AllowancePaused,
		LastAllowanceAt:        c.LastAllowanceAt,
		SavingsTransferPercent: c.SavingsTransferPercent,
		CreatedAt:              c.CreatedAt,
	}
}

func newChildListResponse(children []models.Child) []childResponse {
	out := make([]childResponse, 0, len(children))
	for i := range children {
		out = append(out, newChildResponse(&children[i]))
	}
	return out
}

type transactionResponse struct {
	ID           int64           `json:"id"`
	ChildID      int64           `json:"child_id"`
	Amount       decimal.Decimal `json:"amount"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	Description  string          `json:"description,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newTransactionResponse(t *models.Transaction) transactionResponse {
	return transactionResponse{
		ID:           t.ID,
		ChildID:      t.ChildID,
		Amount:       t.Amount,
		Type:         t.Type,
		Category:     t.Category,
		Description:  t.Description,
		BalanceAfter: t.BalanceAfter,
		CreatedAt:    t.CreatedAt,
	}
}

type goalResponse struct {
	ID              int64           `json:"id"`
	ChildID         int64           `json:"child_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	HasImage        bool            `json:"has_image"`
	TargetAmount    decimal.Decimal `json:"target_amount"`
	CurrentAmount   decimal.Decimal `json:"current_amount"`
	Status          string          `json:"status"`
	Priority        int             `json:"priority"`
	TransferType    string          `json:"transfer_type,omitempty"`
	TransferAmount  decimal.Decimal `json:"transfer_amount"`
	TransferPercent int             `json:"transfer_percent"`
	CreatedAt       time.Time       `json:"created_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
}

func newGoalResponse(g *models.SavingsGoal) goalResponse {
	return goalResponse{
		ID:              g.ID,
		ChildID:         g.ChildID,
		Name:            g.Name,
		Description:     g.Description,
		HasImage:        g.ImageKey != "",
		TargetAmount:    g.TargetAmount,
		CurrentAmount:   g.CurrentAmount,
		Status:          g.Status,
		Priority:        g.Priority,
		TransferType:    g.TransferType,
		TransferAmount:  g.TransferAmount,
		TransferPercent: g.TransferPercent,
		CreatedAt:       g.CreatedAt,
		CompletedAt:     g.CompletedAt,
	}
}

type milestoneResponse struct {
	Percent      int             `json:"percent"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	AchievedAt   *time.Time      `json:"achieved_at"`
}

type matchingRuleResponse struct {
	ID                 int64           `json:"id"`
	Type               string          `json:"type"`
	Ratio              decimal.Decimal `json:"ratio"`
	Percent            decimal.Decimal `json:"percent"`
	MaxMatchAmount     decimal.Decimal `json:"max_match_amount"`
	TotalMatchedAmount decimal.Decimal `json:"total_matched_amount"`
}

func newMatchingRuleResponse(r *models.ParentMatchingRule) matchingRuleResponse {
	return matchingRuleResponse{
		ID:                 r.ID,
		Type:               r.Type,
		Ratio:              r.Ratio,
		Percent:            r.Percent,
		MaxMatchAmount:     r.MaxMatchAmount,
		TotalMatchedAmount: r.TotalMatchedAmount,
	}
}

type challengeResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	BonusAmount  decimal.Decimal `json:"bonus_amount"`
	EndsAt       time.Time       `json:"ends_at"`
	Status       string          `json:"status"`
	CompletedAt  *time.Time      `json:"completed_at"`
}

func newChallengeResponse(c *models.GoalChallenge) challengeResponse {
	return challengeResponse{
		ID:           c.ID,
		Name:         c.Name,
		TargetAmount: c.TargetAmount,
		BonusAmount:  c.BonusAmount,
		EndsAt:       c.EndsAt,
		Status:       c.Status,
		CompletedAt:  c.CompletedAt,
	}
}

type contributionResponse struct {
	ID          int64           `json:"id"`
	GoalID      int64           `json:"goal_id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newContributionResponses(contributions []models.SavingsContribution) []contributionResponse {
	out := make([]contributionResponse, 0, len(contributions))
	for _, c := range contributions {
		out = append(out, contributionResponse{
			ID:          c.ID,
			GoalID:      c.GoalID,
			Amount:      c.Amount,
			Type:        c.Type,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		})
	}
	return out
}

type choreResponse struct {
	ID           int64           `json:"id"`
	ChildID      *int64          `json:"child_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	RewardAmount decimal.Decimal `json:"reward_amount"`
	Status       string          `json:"status"`
	DueDate      *time.Time      `json:"due_date"`
	CompletedAt  *time.Time      `json:"completed_at"`
	ApprovedAt   *time.Time      `json:"approved_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newChoreResponse(c *models.Chore) choreResponse {
	return choreResponse{
		ID:           c.ID,
		ChildID:      c.ChildID,
		Title:        c.Title,
		Description:  c.Description,
		RewardAmount: c.RewardAmount,
		Status:       c.Status,
		DueDate:      c.DueDate,
		CompletedAt:  c.CompletedAt,
		ApprovedAt:   c.ApprovedAt,
		CreatedAt:    c.CreatedAt,
	}
}
