package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT payload carried by API access tokens
type Claims struct {
	UserID   int64  `json:"uid"`
	Role     string `json:"role"`
	FamilyID *int64 `json:"fam,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager mints and validates HS256 access tokens
type TokenManager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewTokenManager creates a new token manager
func NewTokenManager(secret string, accessTTL time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL}
}

// IssueAccessToken creates a signed access token for a user
func (m *TokenManager) IssueAccessToken(userID int64, role string, familyID *int64) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.accessTTL)

	claims := Claims{
		UserID:   userID,
		Role:     role,
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ParseAccessToken validates a signed access token and returns its claims
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateOpaqueToken creates a new UUID for refresh tokens, gift links and
// family invite codes
func GenerateOpaqueToken() string {
	return uuid.New().String()
}
