package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pennyjar/internal/service"
	"pennyjar/internal/validation"
)

// ChoreHandler handles chore endpoints
type ChoreHandler struct {
	choreService *service.ChoreService
}

// NewChoreHandler creates a new chore handler
func NewChoreHandler(choreService *service.ChoreService) *ChoreHandler {
	return &ChoreHandler{choreService: choreService}
}

type choreRequest struct {
	ChildID      *int64     `json:"child_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	RewardAmount string     `json:"reward_amount"`
	DueDate      *time.Time `json:"due_date"`
}

// CreateChore adds a chore, optionally assigned to a child
func (h *ChoreHandler) CreateChore(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	var req choreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := validation.ParseAmount("reward_amount", req.RewardAmount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	chore, err := h.choreService.CreateChore(familyID, claims.UserID, req.ChildID,
		req.Title, req.Description, reward, req.DueDate)
	if err != nil {
		respondServiceError(w, "Error creating chore", err)
		return
	}

	respondJSON(w, http.StatusCreated, newChoreResponse(chore))
}

// ListChores returns the family's chores with optional status and child
// filters
func (h *ChoreHandler) ListChores(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	var childID *int64
	if v := r.URL.Query().Get("child_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid child_id filter", "", nil)
			return
		}
		childID = &id
	}

	chores, err := h.choreService.ListChores(familyID, status, childID)
	if err != nil {
		respondServiceError(w, "Error listing chores", err)
		return
	}

	out := make([]choreResponse, 0, len(chores))
	for i := range chores {
		out = append(out, newChoreResponse(&chores[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetChore returns a single chore
func (h *ChoreHandler) GetChore(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	choreID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid chore id", "", nil)
		return
	}

	chore, err := h.choreService.GetChore(familyID, choreID)
	if err != nil {
		respondServiceError(w, "Error loading chore", err)
		return
	}

	respondJSON(w, http.StatusOK, newChoreResponse(chore))
}

// UpdateChore edits an unapproved chore
func (h *ChoreHandler) UpdateChore(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	choreID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid chore id", "", nil)
		return
	}

	var req choreRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	reward, err := validation.ParseAmount("reward_amount", req.RewardAmount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	chore, err := h.choreService.UpdateChore(familyID, choreID, req.ChildID,
		req.Title, req.Description, reward, req.DueDate)
	if err != nil {
		respondServiceError(w, "Error updating chore", err)
		return
	}

	respondJSON(w, http.StatusOK, newChoreResponse(chore))
}

// MarkDone marks an assigned chore as completed, pending parent approval
func (h *ChoreHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	choreID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid chore id", "", nil)
		return
	}

	chore, err := h.choreService.MarkDone(familyID, choreID)
	if err != nil {
		respondServiceError(w, "Error marking chore done", err)
		return
	}

	respondJSON(w, http.StatusOK, newChoreResponse(chore))
}

// Approve accepts a completed chore and credits the reward
func (h *ChoreHandler) Approve(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	choreID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid chore id", "", nil)
		return
	}

	chore, err := h.choreService.Approve(familyID, choreID, claims.UserID)
	if err != nil {
		respondServiceError(w, "Error approving chore", err)
		return
	}

	respondJSON(w, http.StatusOK, newChoreResponse(chore))
}

// Reject sends a completed chore back to the child
func (h *ChoreHandler) Reject(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	choreID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid chore id", "", nil)
		return
	}

	chore, err := h.choreService.Reject(familyID, choreID)
	if err != nil {
		respondServiceError(w, "Error rejecting chore", err)
		return
	}

	respondJSON(w, http.StatusOK, newChoreResponse(chore))
}

// DeleteChore removes an unapproved chore
func (h *ChoreHandler) DeleteChore(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	choreID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid chore id", "", nil)
		return
	}

	if err := h.choreService.DeleteChore(familyID, choreID); err != nil {
		respondServiceError(w, "Error deleting chore", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
