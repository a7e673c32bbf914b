package handlers

import (
	"net/http"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/service"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

// TransactionHandler handles ledger and budget endpoints
type TransactionHandler struct {
	txService *service.TransactionService
	childAccess
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(txService *service.TransactionService, childRepo *repository.ChildRepository) *TransactionHandler {
	return &TransactionHandler{
		txService:   txService,
		childAccess: childAccess{childRepo: childRepo},
	}
}

// Credit adds money to a child's spending balance
func (h *TransactionHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.txService.Credit)
}

// Debit removes money from a child's spending balance
func (h *TransactionHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.txService.Debit)
}

func (h *TransactionHandler) adjust(w http.ResponseWriter, r *http.Request, apply func(int64, decimal.Decimal, string, string, *int64) (*models.Transaction, error)) {
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
		Amount      string `json:"amount"`
		Category    string `json:"category"`
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

	createdBy := claims.UserID
	entry, err := apply(childID, amount, req.Category, req.Description, &createdBy)
	if err != nil {
		respondServiceError(w, "Error recording transaction", err)
		return
	}

	respondJSON(w, http.StatusCreated, newTransactionResponse(entry))
}

// ListTransactions returns a child's ledger, newest first
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
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

	limit, offset := parsePaging(r, 50, 100)
	category := r.URL.Query().Get("category")

	entries, err := h.txService.ListTransactions(childID, category, limit, offset)
	if err != nil {
		respondServiceError(w, "Error listing transactions", err)
		return
	}

	out := make([]transactionResponse, 0, len(entries))
	for i := range entries {
		out = append(out, newTransactionResponse(&entries[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

type budgetResponse struct {
	ID           int64           `json:"id"`
	ChildID      int64           `json:"child_id"`
	Category     string          `json:"category"`
	MonthlyLimit decimal.Decimal `json:"monthly_limit"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newBudgetResponse(b *models.CategoryBudget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		ChildID:      b.ChildID,
		Category:     b.Category,
		MonthlyLimit: b.MonthlyLimit,
		CreatedAt:    b.CreatedAt,
	}
}

// SetBudget creates or updates a monthly category budget
func (h *TransactionHandler) SetBudget(w http.ResponseWriter, r *http.Request) {
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
		Category     string `json:"category"`
		MonthlyLimit string `json:"monthly_limit"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	limit, err := validation.ParseAmount("monthly_limit", req.MonthlyLimit)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	budget, err := h.txService.SetBudget(childID, req.Category, limit)
	if err != nil {
		respondServiceError(w, "Error setting budget", err)
		return
	}

	respondJSON(w, http.StatusOK, newBudgetResponse(budget))
}

// ListBudgets returns all category budgets for a child
func (h *TransactionHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
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

	budgets, err := h.txService.ListBudgets(childID)
	if err != nil {
		respondServiceError(w, "Error listing budgets", err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for i := range budgets {
		out = append(out, newBudgetResponse(&budgets[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// DeleteBudget removes a category budget
func (h *TransactionHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
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

	category := r.PathValue("category")
	if category == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid category", "", nil)
		return
	}

	if err := h.txService.DeleteBudget(childID, category); err != nil {
		respondServiceError(w, "Error deleting budget", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
