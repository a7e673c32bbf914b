package handlers

import (
	"net/http"
	"time"

	"pennyjar/internal/repository"
	"pennyjar/internal/service"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

// AllowanceHandler handles weekly allowance configuration and payment
type AllowanceHandler struct {
	allowanceService *service.AllowanceService
	userRepo         *repository.UserRepository
	childAccess
}

// NewAllowanceHandler creates a new allowance handler
func NewAllowanceHandler(allowanceService *service.AllowanceService, userRepo *repository.UserRepository, childRepo *repository.ChildRepository) *AllowanceHandler {
	return &AllowanceHandler{
		allowanceService: allowanceService,
		userRepo:         userRepo,
		childAccess:      childAccess{childRepo: childRepo},
	}
}

// UpdateSettings configures a child's weekly allowance
func (h *AllowanceHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
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
		WeeklyAllowance        string `json:"weekly_allowance"`
		AllowanceDay           *int   `json:"allowance_day"`
		SavingsTransferPercent int    `json:"savings_transfer_percent"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	weekly := decimal.Zero
	if req.WeeklyAllowance != "" {
		var err error
		weekly, err = validation.ParseAmount("weekly_allowance", req.WeeklyAllowance)
		if err != nil {
			respondServiceError(w, "", err)
			return
		}
	}

	if err := h.allowanceService.UpdateSettings(childID, weekly, req.AllowanceDay, req.SavingsTransferPercent); err != nil {
		respondServiceError(w, "Error updating allowance settings", err)
		return
	}

	child, err := h.authorize(claims, childID)
	if err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}
	respondJSON(w, http.StatusOK, newChildResponse(child))
}

// SetPaused pauses or resumes a child's allowance
func (h *AllowanceHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
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
		Paused bool `json:"paused"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.allowanceService.SetPaused(childID, req.Paused); err != nil {
		respondServiceError(w, "Error pausing allowance", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// PayNow pays the weekly allowance immediately, outside the daily sweep
func (h *AllowanceHandler) PayNow(w http.ResponseWriter, r *http.Request) {
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

	entry, err := h.allowanceService.PayAllowance(childID, time.Now())
	if err != nil {
		respondServiceError(w, "Error paying allowance", err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(entry))
}

// RunSweep triggers the daily allowance sweep on demand. The sweep crosses
// family boundaries, so it is restricted to admin accounts.
func (h *AllowanceHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	user, err := h.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		respondServiceError(w, "Error loading user", err)
		return
	}
	if user == nil || !user.IsAdmin {
		respondWithError(w, http.StatusForbidden, "Admin account required", "", nil)
		return
	}

	result, err := h.allowanceService.RunDailySweep(time.Now())
	if err != nil {
		respondServiceError(w, "Error running allowance sweep", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{
		"paid":    result.Paid,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	})
}
