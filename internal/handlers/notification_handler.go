package handlers

import (
	"net/http"
	"strconv"
	"time"

	"pennyjar/internal/service"
)

// NotificationHandler handles in-app notification and device endpoints
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type notificationResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// List returns the authenticated user's notifications, unread first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	limit, offset := parsePaging(r, 50, 100)
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

	notifications, err := h.notificationService.List(claims.UserID, unreadOnly, limit, offset)
	if err != nil {
		respondServiceError(w, "Error listing notifications", err)
		return
	}

	out := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// CountUnread returns the number of unread notifications
func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	count, err := h.notificationService.CountUnread(claims.UserID)
	if err != nil {
		respondServiceError(w, "Error counting notifications", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead marks a single notification read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	notificationID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id", "", nil)
		return
	}

	if err := h.notificationService.MarkRead(claims.UserID, notificationID); err != nil {
		respondServiceError(w, "Error marking notification read", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// MarkAllRead marks every notification read
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	if err := h.notificationService.MarkAllRead(claims.UserID); err != nil {
		respondServiceError(w, "Error marking notifications read", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Delete removes a notification
func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	notificationID, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id", "", nil)
		return
	}

	if err := h.notificationService.Delete(claims.UserID, notificationID); err != nil {
		respondServiceError(w, "Error deleting notification", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// RegisterDevice registers a mobile device for push delivery
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	device, err := h.notificationService.RegisterDevice(r.Context(), claims.UserID, req.Token, req.Platform)
	if err != nil {
		respondServiceError(w, "Error registering device", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       device.ID,
		"platform": device.Platform,
	})
}

// UnregisterDevice removes a registered device
func (h *NotificationHandler) UnregisterDevice(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req struct {
		Token string `json:"token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.notificationService.UnregisterDevice(r.Context(), claims.UserID, req.Token); err != nil {
		respondServiceError(w, "Error unregistering device", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
