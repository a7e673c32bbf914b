package handlers

import (
	"net/http"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/service"

	"github.com/shopspring/decimal"
)

// AnalyticsHandler handles dashboard and reporting endpoints
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	childAccess
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService, childRepo *repository.ChildRepository) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		childAccess:      childAccess{childRepo: childRepo},
	}
}

type childStatsResponse struct {
	Child          childResponse   `json:"child"`
	TotalCredited  decimal.Decimal `json:"total_credited"`
	TotalDebited   decimal.Decimal `json:"total_debited"`
	ActiveGoals    int             `json:"active_goals"`
	GoalsCompleted int             `json:"goals_completed"`
	Points         int             `json:"points"`
	BadgesEarned   int             `json:"badges_earned"`
}

func newChildStatsResponse(s *models.ChildWithStats) childStatsResponse {
	return childStatsResponse{
		Child:          newChildResponse(&s.Child),
		TotalCredited:  s.TotalCredited,
		TotalDebited:   s.TotalDebited,
		ActiveGoals:    s.ActiveGoals,
		GoalsCompleted: s.GoalsCompleted,
		Points:         s.Points,
		BadgesEarned:   s.BadgesEarned,
	}
}

// ChildSummary returns a child's aggregate standing
func (h *AnalyticsHandler) ChildSummary(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.analyticsService.ChildSummary(childID)
	if err != nil {
		respondServiceError(w, "Error building summary", err)
		return
	}

	respondJSON(w, http.StatusOK, newChildStatsResponse(stats))
}

// FamilyOverview returns the summary for every child in the family
func (h *AnalyticsHandler) FamilyOverview(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	overview, err := h.analyticsService.FamilyOverview(familyID)
	if err != nil {
		respondServiceError(w, "Error building overview", err)
		return
	}

	out := make([]childStatsResponse, 0, len(overview))
	for i := range overview {
		out = append(out, newChildStatsResponse(&overview[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// SpendingByCategory returns debit totals per category over a window.
// from/to default to the last month.
func (h *AnalyticsHandler) SpendingByCategory(w http.ResponseWriter, r *http.Request) {
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

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid from timestamp", "", nil)
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid to timestamp", "", nil)
			return
		}
		to = parsed
	}

	totals, err := h.analyticsService.SpendingByCategory(childID, from, to)
	if err != nil {
		respondServiceError(w, "Error aggregating spending", err)
		return
	}

	type categoryTotal struct {
		Category string          `json:"category"`
		Total    decimal.Decimal `json:"total"`
	}
	out := make([]categoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, categoryTotal{Category: t.Category, Total: t.Total})
	}
	respondJSON(w, http.StatusOK, out)
}

// BalanceHistory returns balance snapshots over the most recent transactions
func (h *AnalyticsHandler) BalanceHistory(w http.ResponseWriter, r *http.Request) {
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

	limit, _ := parsePaging(r, 100, 500)

	points, err := h.analyticsService.BalanceHistory(childID, limit)
	if err != nil {
		respondServiceError(w, "Error building balance history", err)
		return
	}

	type balancePoint struct {
		At      time.Time       `json:"at"`
		Balance decimal.Decimal `json:"balance"`
	}
	out := make([]balancePoint, 0, len(points))
	for _, p := range points {
		out = append(out, balancePoint{At: p.At, Balance: p.Balance})
	}
	respondJSON(w, http.StatusOK, out)
}
