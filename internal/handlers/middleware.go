package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"pennyjar/internal/models"
	"pennyjar/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ClaimsContextKey ContextKey = "claims"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  *security.TokenManager
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.TokenManager, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		tokens:  tokens,
		limiter: limiter,
	}
}

// RequireAuth is middleware that requires a valid bearer access token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseBearer(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RequireParent is middleware that requires a parent-role access token
func (m *Middleware) RequireParent(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseBearer(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}
		if claims.Role != models.RoleParent {
			respondWithError(w, http.StatusForbidden, "Parent account required", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit throttles requests per client IP. Applied to the credential and
// public gift endpoints.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.ClientIP(r)
		if !m.limiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, slow down", "", nil)
			return
		}
		next(w, r)
	}
}

func (m *Middleware) parseBearer(r *http.Request) (*security.Claims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, security.ErrInvalidToken
	}
	return m.tokens.ParseAccessToken(token)
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// ClaimsFromContext retrieves the access token claims from the request context
func ClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}
