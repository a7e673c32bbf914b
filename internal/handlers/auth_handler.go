package handlers

import (
	"log"
	"net/http"

	"pennyjar/internal/repository"
	"pennyjar/internal/service"
)

// AuthHandler handles registration, login and token endpoints
type AuthHandler struct {
	authService  *service.AuthService
	oauthService *service.OAuthService
	emailService *service.EmailService
	userRepo     *repository.UserRepository
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, oauthService *service.OAuthService, emailService *service.EmailService, userRepo *repository.UserRepository) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		oauthService: oauthService,
		emailService: emailService,
		userRepo:     userRepo,
	}
}

type authResponse struct {
	User   userResponse  `json:"user"`
	Tokens tokenResponse `json:"tokens"`
}

// Register creates a new parent account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, tokens, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondServiceError(w, "Error registering user", err)
		return
	}

	// Welcome email is best effort
	if err := h.emailService.SendWelcomeEmail(r.Context(), user.Email, user.Name); err != nil {
		log.Printf("Failed to send welcome email to %s: %v", user.Email, err)
	}

	respondJSON(w, http.StatusCreated, authResponse{
		User:   newUserResponse(user),
		Tokens: newTokenResponse(tokens),
	})
}

// Login authenticates a parent (by email) or a child (by username)
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity string `json:"identity"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, tokens, err := h.authService.Login(req.Identity, req.Password)
	if err != nil {
		respondServiceError(w, "Error logging in", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		User:   newUserResponse(user),
		Tokens: newTokenResponse(tokens),
	})
}

// Refresh exchanges a refresh token for a new token pair
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, tokens, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		respondServiceError(w, "Error refreshing token", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		User:   newUserResponse(user),
		Tokens: newTokenResponse(tokens),
	})
}

// Logout revokes a refresh token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.Logout(req.RefreshToken); err != nil {
		respondServiceError(w, "Error logging out", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Me returns the authenticated user's account
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	user, err := h.userRepo.GetUserByID(claims.UserID)
	if err != nil || user == nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error", "Error loading user", err)
		return
	}

	respondJSON(w, http.StatusOK, newUserResponse(user))
}

// ChangePassword updates the authenticated user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ChangePassword(claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, "Error changing password", err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// StartOAuth redirects to the provider's consent page
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")

	url, err := h.oauthService.AuthURL(provider)
	if err != nil {
		respondServiceError(w, "Error starting oauth flow", err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// OAuthCallback completes the provider flow and issues tokens
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	if code == "" || !h.oauthService.ValidState(state) {
		respondWithError(w, http.StatusBadRequest, "Invalid oauth callback", "", nil)
		return
	}

	user, tokens, err := h.oauthService.HandleCallback(r.Context(), provider, code)
	if err != nil {
		respondServiceError(w, "Error completing oauth flow", err)
		return
	}

	respondJSON(w, http.StatusOK, authResponse{
		User:   newUserResponse(user),
		Tokens: newTokenResponse(tokens),
	})
}
