package handlers

import (
	"log"
	"net/http"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/service"
)

// FamilyHandler handles family and child profile endpoints
type FamilyHandler struct {
	familyService *service.FamilyService
	storage       *service.StorageService
	childRepo     *repository.ChildRepository
	maxUploadSize int64
	childAccess
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, storage *service.StorageService, childRepo *repository.ChildRepository, maxUploadSize int64) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		storage:       storage,
		childRepo:     childRepo,
		maxUploadSize: maxUploadSize,
		childAccess:   childAccess{childRepo: childRepo},
	}
}

type familyResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
}

func newFamilyResponse(f *models.Family) familyResponse {
	return familyResponse{
		ID:         f.ID,
		Name:       f.Name,
		InviteCode: f.InviteCode,
		CreatedAt:  f.CreatedAt,
	}
}

// CreateFamily creates a family owned by the authenticated parent.
// The client should refresh its tokens afterwards to pick up the family claim.
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.familyService.CreateFamily(claims.UserID, req.Name)
	if err != nil {
		respondServiceError(w, "Error creating family", err)
		return
	}

	respondJSON(w, http.StatusCreated, newFamilyResponse(family))
}

// JoinFamily adds the authenticated parent to a family by invite code
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req struct {
		InviteCode string `json:"invite_code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.familyService.JoinFamily(claims.UserID, req.InviteCode)
	if err != nil {
		respondServiceError(w, "Error joining family", err)
		return
	}

	respondJSON(w, http.StatusOK, newFamilyResponse(family))
}

// LeaveFamily removes the authenticated parent from their family
func (h *FamilyHandler) LeaveFamily(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	if err := h.familyService.LeaveFamily(claims.UserID); err != nil {
		respondServiceError(w, "Error leaving family", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// GetFamily returns the family with its parents and children
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	family, err := h.familyService.GetFamily(familyID)
	if err != nil {
		respondServiceError(w, "Error loading family", err)
		return
	}

	parents := make([]userResponse, 0, len(family.Parents))
	for i := range family.Parents {
		parents = append(parents, newUserResponse(&family.Parents[i]))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"family":   newFamilyResponse(&family.Family),
		"parents":  parents,
		"children": newChildListResponse(family.Children),
	})
}

// RenameFamily updates the family name
func (h *FamilyHandler) RenameFamily(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.familyService.RenameFamily(familyID, req.Name); err != nil {
		respondServiceError(w, "Error renaming family", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// CreateChild adds a child profile to the family
func (h *FamilyHandler) CreateChild(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name"`
		AvatarColor string `json:"avatar_color"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.familyService.CreateChild(familyID, req.Name, req.AvatarColor)
	if err != nil {
		respondServiceError(w, "Error creating child", err)
		return
	}

	respondJSON(w, http.StatusCreated, newChildResponse(child))
}

// ListChildren returns all children in the family
func (h *FamilyHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	children, err := h.familyService.ListChildren(familyID)
	if err != nil {
		respondServiceError(w, "Error listing children", err)
		return
	}

	respondJSON(w, http.StatusOK, newChildListResponse(children))
}

// GetChild returns a single child profile
func (h *FamilyHandler) GetChild(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	child, err := h.authorize(claims, childID)
	if err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	respondJSON(w, http.StatusOK, newChildResponse(child))
}

// UpdateChild updates a child's name and avatar color
func (h *FamilyHandler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	var req struct {
		Name        string `json:"name"`
		AvatarColor string `json:"avatar_color"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	child, err := h.familyService.UpdateChild(familyID, childID, req.Name, req.AvatarColor)
	if err != nil {
		respondServiceError(w, "Error updating child", err)
		return
	}

	respondJSON(w, http.StatusOK, newChildResponse(child))
}

// DeleteChild removes a child profile and its login account
func (h *FamilyHandler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	if err := h.familyService.DeleteChild(familyID, childID); err != nil {
		respondServiceError(w, "Error deleting child", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

type credentialsResponse struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateChildLogin provisions sign-in credentials for a child. The generated
// password is returned once and never stored in plain text.
func (h *FamilyHandler) CreateChildLogin(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	creds, err := h.familyService.CreateChildLogin(familyID, childID)
	if err != nil {
		respondServiceError(w, "Error creating child login", err)
		return
	}

	respondJSON(w, http.StatusCreated, credentialsResponse{Username: creds.Username, Password: creds.Password})
}

// ResetChildPassword regenerates a child's sign-in password
func (h *FamilyHandler) ResetChildPassword(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	creds, err := h.familyService.ResetChildPassword(familyID, childID)
	if err != nil {
		respondServiceError(w, "Error resetting child password", err)
		return
	}

	respondJSON(w, http.StatusOK, credentialsResponse{Username: creds.Username, Password: creds.Password})
}

// UploadChildPhoto stores a child's avatar photo
func (h *FamilyHandler) UploadChildPhoto(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if _, ok := requireFamily(w, claims); !ok {
		return
	}
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	child, err := h.authorize(claims, childID)
	if err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}

	key, ok := readImageUpload(w, r, h.storage, "avatars", h.maxUploadSize)
	if !ok {
		return
	}

	if err := h.childRepo.UpdateAvatarKey(childID, key); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error saving avatar key", err)
		return
	}

	// Drop the replaced photo, best effort
	if child.AvatarKey != "" {
		if err := h.storage.Delete(r.Context(), child.AvatarKey); err != nil {
			log.Printf("Failed to delete old avatar %s: %v", child.AvatarKey, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"key": key})
}

// GetChildPhoto returns a short-lived download URL for a child's photo
func (h *FamilyHandler) GetChildPhoto(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	childID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid child id", "", nil)
		return
	}

	child, err := h.authorize(claims, childID)
	if err != nil {
		respondServiceError(w, "Error loading child", err)
		return
	}
	if child.AvatarKey == "" {
		respondWithError(w, http.StatusNotFound, "No photo uploaded", "", nil)
		return
	}

	url, err := h.storage.PresignGet(r.Context(), child.AvatarKey, 15*time.Minute)
	if err != nil {
		respondServiceError(w, "Error presigning photo URL", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
