// Package middleware provides HTTP middleware that binds requests to browser sessions.
package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// sessionIDKey is the context key for storing the session ID.
const sessionIDKey ContextKey = "sessionID"

// CookieName is the cookie that carries the signed session token.
const CookieName = "hs_session"

// TokenService issues and validates signed session tokens.
type TokenService interface {
	GenerateToken(sessionID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (uuid.UUID, error)
	TTL() time.Duration
}

// SessionMiddleware resolves the session cookie to a session ID and adds it
// to the request context. A missing, expired or forged cookie starts a new
// session and sets a fresh cookie.
func SessionMiddleware(tokens TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(CookieName); err == nil {
				if sessionID, err := tokens.ValidateToken(cookie.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
					return
				}
			}

			sessionID := uuid.New()
			token, err := tokens.GenerateToken(sessionID)
			if err != nil {
				log.Printf("[session] failed to issue token: %v", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(tokens.TTL().Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				Secure:   r.TLS != nil,
			})

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

// WithSessionID returns a copy of ctx carrying the session ID.
func WithSessionID(ctx context.Context, sessionID uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

// GetSessionID extracts the session ID from the request context.
func GetSessionID(r *http.Request) (uuid.UUID, error) {
	sessionID, ok := r.Context().Value(sessionIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("session ID not found in request context")
	}
	return sessionID, nil
}
