package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pennyjar/internal/config"
	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"
)

var ErrUnknownProvider = errors.New("unknown oauth provider")

const (
	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v2/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email"
)

// OAuthService signs parents in with Google or Facebook. Accounts are keyed
// by (provider, subject); a matching email on an existing password account
// links the two.
type OAuthService struct {
	userRepo *repository.UserRepository
	auth     *AuthService
	state    string

	configs map[string]*oauth2.Config
}

// NewOAuthService creates a new OAuth service from the configured providers
func NewOAuthService(cfg *config.Config, userRepo *repository.UserRepository, auth *AuthService) *OAuthService {
	configs := make(map[string]*oauth2.Config)
	if cfg.GoogleClientID != "" {
		configs["google"] = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.OAuthRedirectBaseURL + "/api/v1/auth/oauth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	if cfg.FacebookClientID != "" {
		configs["facebook"] = &oauth2.Config{
			ClientID:     cfg.FacebookClientID,
			ClientSecret: cfg.FacebookClientSecret,
			RedirectURL:  cfg.OAuthRedirectBaseURL + "/api/v1/auth/oauth/facebook/callback",
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		}
	}
	return &OAuthService{
		userRepo: userRepo,
		auth:     auth,
		state:    security.GenerateOpaqueToken(),
		configs:  configs,
	}
}

// AuthURL returns the provider consent page URL
func (s *OAuthService) AuthURL(provider string) (string, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return "", ErrUnknownProvider
	}
	return cfg.AuthCodeURL(s.state), nil
}

// ValidState reports whether the callback state matches
func (s *OAuthService) ValidState(state string) bool {
	return state == s.state
}

type oauthProfile struct {
	Subject string
	Email   string
	Name    string
}

// HandleCallback exchanges the authorization code, fetches the provider
// profile and signs the user in, creating the account on first sight
func (s *OAuthService) HandleCallback(ctx context.Context, provider, code string) (*models.User, *TokenPair, error) {
	cfg, ok := s.configs[provider]
	if !ok {
		return nil, nil, ErrUnknownProvider
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	profile, err := fetchProfile(ctx, cfg, token, provider)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(provider, profile.Subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up oauth user: %w", err)
	}

	if user == nil && profile.Email != "" {
		// Link to an existing password account with the same email
		user, err = s.userRepo.GetUserByEmail(strings.ToLower(profile.Email))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to look up user by email: %w", err)
		}
	}

	if user == nil {
		user, err = s.userRepo.CreateOAuthParent(provider, profile.Subject, strings.ToLower(profile.Email), profile.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create oauth user: %w", err)
		}
	}

	pair, err := s.auth.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func fetchProfile(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, provider string) (*oauthProfile, error) {
	var url string
	switch provider {
	case "google":
		url = googleUserInfoURL
	case "facebook":
		url = facebookUserInfoURL
	default:
		return nil, ErrUnknownProvider
	}

	resp, err := cfg.Client(ctx, token).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("profile request returned %d: %s", resp.StatusCode, body)
	}

	var raw struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if raw.ID == "" {
		return nil, errors.New("provider returned no subject id")
	}

	return &oauthProfile{Subject: raw.ID, Email: raw.Email, Name: raw.Name}, nil
}
