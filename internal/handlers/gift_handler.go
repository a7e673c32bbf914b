package handlers

import (
	"log"
	"net/http"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/service"
	"pennyjar/internal/validation"

	"github.com/shopspring/decimal"
)

// GiftHandler handles gift links, public gift submission and thank-you notes
type GiftHandler struct {
	giftService  *service.GiftService
	emailService *service.EmailService
	childAccess
}

// NewGiftHandler creates a new gift handler
func NewGiftHandler(giftService *service.GiftService, emailService *service.EmailService, childRepo *repository.ChildRepository) *GiftHandler {
	return &GiftHandler{
		giftService:  giftService,
		emailService: emailService,
		childAccess:  childAccess{childRepo: childRepo},
	}
}

type giftLinkResponse struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	ChildID   int64      `json:"child_id"`
	GoalID    *int64     `json:"goal_id"`
	Message   string     `json:"message,omitempty"`
	Active    bool       `json:"active"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func newGiftLinkResponse(l *models.GiftLink) giftLinkResponse {
	return giftLinkResponse{
		ID:        l.ID,
		Token:     l.Token,
		ChildID:   l.ChildID,
		GoalID:    l.GoalID,
		Message:   l.Message,
		Active:    l.Active,
		ExpiresAt: l.ExpiresAt,
		CreatedAt: l.CreatedAt,
	}
}

type giftResponse struct {
	ID        int64           `json:"id"`
	GiverName string          `json:"giver_name"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func newGiftResponse(g *models.Gift) giftResponse {
	return giftResponse{
		ID:        g.ID,
		GiverName: g.GiverName,
		Amount:    g.Amount,
		Message:   g.Message,
		CreatedAt: g.CreatedAt,
	}
}

// CreateLink creates a shareable gift link for a child, optionally tied to a
// goal and optionally emailed to a relative.
func (h *GiftHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}

	var req struct {
		ChildID   int64      `json:"child_id"`
		GoalID    *int64     `json:"goal_id"`
		Message   string     `json:"message"`
		ExpiresAt *time.Time `json:"expires_at"`
		SendTo    string     `json:"send_to_email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	link, err := h.giftService.CreateLink(familyID, claims.UserID, req.ChildID, req.GoalID, req.Message, req.ExpiresAt)
	if err != nil {
		respondServiceError(w, "Error creating gift link", err)
		return
	}

	if req.SendTo != "" {
		child, err := h.authorize(claims, req.ChildID)
		if err == nil {
			if err := h.emailService.SendGiftLinkEmail(r.Context(), req.SendTo, child.Name, link.Token, link.Message); err != nil {
				log.Printf("Failed to send gift link email to %s: %v", req.SendTo, err)
			}
		}
	}

	respondJSON(w, http.StatusCreated, newGiftLinkResponse(link))
}

// ListLinks returns a child's gift links
func (h *GiftHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
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

	links, err := h.giftService.ListLinks(childID)
	if err != nil {
		respondServiceError(w, "Error listing gift links", err)
		return
	}

	out := make([]giftLinkResponse, 0, len(links))
	for i := range links {
		out = append(out, newGiftLinkResponse(&links[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// DeactivateLink closes a gift link
func (h *GiftHandler) DeactivateLink(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	linkID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid link id", "", nil)
		return
	}

	if err := h.giftService.DeactivateLink(familyID, linkID); err != nil {
		respondServiceError(w, "Error deactivating gift link", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// ResolveLink is the public endpoint a giver opens before gifting. It
// reveals only the child's first name and goal name.
func (h *GiftHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid gift token", "", nil)
		return
	}

	info, err := h.giftService.ResolveLink(token)
	if err != nil {
		respondServiceError(w, "Error resolving gift link", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"child_name": info.ChildName,
		"goal_name":  info.GoalName,
		"message":    info.Message,
	})
}

// SubmitGift is the public endpoint that records a gift against a link
func (h *GiftHandler) SubmitGift(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid gift token", "", nil)
		return
	}

	var req struct {
		GiverName  string `json:"giver_name"`
		GiverEmail string `json:"giver_email"`
		Amount     string `json:"amount"`
		Message    string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	amount, err := validation.ParseAmount("amount", req.Amount)
	if err != nil {
		respondServiceError(w, "", err)
		return
	}

	gift, err := h.giftService.SubmitGift(r.Context(), token, req.GiverName, req.GiverEmail, amount, req.Message)
	if err != nil {
		respondServiceError(w, "Error submitting gift", err)
		return
	}

	respondJSON(w, http.StatusCreated, newGiftResponse(gift))
}

// ListGifts returns the gifts a child has received
func (h *GiftHandler) ListGifts(w http.ResponseWriter, r *http.Request) {
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

	gifts, err := h.giftService.ListGifts(childID)
	if err != nil {
		respondServiceError(w, "Error listing gifts", err)
		return
	}

	out := make([]giftResponse, 0, len(gifts))
	for i := range gifts {
		out = append(out, newGiftResponse(&gifts[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

// WriteThankYouNote records a thank-you note for a gift and emails it to the
// giver when an address is on file
func (h *GiftHandler) WriteThankYouNote(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	familyID, ok := requireFamily(w, claims)
	if !ok {
		return
	}
	giftID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid gift id", "", nil)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	note, err := h.giftService.WriteThankYouNote(r.Context(), familyID, giftID, req.Message)
	if err != nil {
		respondServiceError(w, "Error writing thank-you note", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      note.ID,
		"gift_id": note.GiftID,
		"message": note.Message,
		"sent_at": note.SentAt,
	})
}
