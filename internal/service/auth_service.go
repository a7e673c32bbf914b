package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/repository"
	"pennyjar/internal/security"
	"pennyjar/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid or expired refresh token")
)

// TokenPair bundles the short-lived access token with the opaque refresh
// token handed to clients
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo   *repository.UserRepository
	childRepo  *repository.ChildRepository
	tokens     *security.TokenManager
	refreshTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, childRepo *repository.ChildRepository, tokens *security.TokenManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		childRepo:  childRepo,
		tokens:     tokens,
		refreshTTL: refreshTTL,
	}
}

// Register creates a parent account. The new parent has no family yet; they
// either create one or join with an invite code afterwards.
func (s *AuthService) Register(email, password, name string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateParent(email, passwordHash, name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login authenticates a parent by email or a child by username
func (s *AuthService) Login(identity, password string) (*models.User, *TokenPair, error) {
	identity = strings.TrimSpace(identity)

	var user *models.User
	var err error
	if strings.Contains(identity, "@") {
		user, err = s.userRepo.GetUserByEmail(strings.ToLower(identity))
	} else {
		user, err = s.userRepo.GetUserByUsername(identity)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates a refresh token, revoking the presented one and issuing a
// fresh pair
func (s *AuthService) Refresh(refreshToken string) (*models.User, *TokenPair, error) {
	stored, err := s.userRepo.GetRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored == nil || stored.Revoked || stored.IsExpired() {
		return nil, nil, ErrInvalidRefresh
	}

	user, err := s.userRepo.GetUserByID(stored.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidRefresh
	}

	if err := s.userRepo.RevokeRefreshToken(refreshToken); err != nil {
		return nil, nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes a refresh token
func (s *AuthService) Logout(refreshToken string) error {
	if err := s.userRepo.RevokeRefreshToken(refreshToken); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password and stores a new hash
func (s *AuthService) ChangePassword(userID int64, current, updated string) error {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := validation.ValidatePassword(updated); err != nil {
		return err
	}

	hash, err := security.HashPassword(updated)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdateUserPassword(userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// CleanupExpiredTokens removes refresh tokens past their expiry
func (s *AuthService) CleanupExpiredTokens() error {
	return s.userRepo.DeleteExpiredRefreshTokens()
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user.ID, user.Role, user.FamilyID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh := security.GenerateOpaqueToken()
	refreshExp := time.Now().Add(s.refreshTTL)
	if err := s.userRepo.CreateRefreshToken(refresh, user.ID, refreshExp); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
