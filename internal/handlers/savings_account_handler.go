package handlers

import (
	"net/http"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/service"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

// SavingsAccountHandler handles moves between the spending and savings
// balances
type SavingsAccountHandler struct {
	accountService *service.SavingsAccountService
	childAccess
}

// NewSavingsAccountHandler creates a new savings account handler
func NewSavingsAccountHandler(accountService *service.SavingsAccountService, childRepo *repository.ChildRepository) *SavingsAccountHandler {
	return &SavingsAccountHandler{
		accountService: accountService,
		childAccess:    childAccess{childRepo: childRepo},
	}
}

// Deposit moves money from spending into the savings balance
func (h *SavingsAccountHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.accountService.Deposit)
}

// Withdraw moves money from savings back to the spending balance
func (h *SavingsAccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.accountService.Withdraw)
}

func (h *SavingsAccountHandler) move(w http.ResponseWriter, r *http.Request, apply func(int64, decimal.Decimal, *int64) (*models.Child, error)) {
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
	child, err := apply(childID, amount, &userID)
	if err != nil {
		respondServiceError(w, "Error moving savings", err)
		return
	}

	respondJSON(w, http.StatusOK, newChildResponse(child))
}

// SetTransferPercent sets the allowance share swept into savings
func (h *SavingsAccountHandler) SetTransferPercent(w http.ResponseWriter, r *http.Request) {
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
		Percent int `json:"percent"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.accountService.SetTransferPercent(childID, req.Percent); err != nil {
		respondServiceError(w, "Error setting transfer percent", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
