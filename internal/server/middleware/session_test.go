package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenService is a map-backed TokenService for unit tests.
type testTokenService struct {
	tokens map[string]uuid.UUID
	fail   bool
}

func newTestTokenService() *testTokenService {
	return &testTokenService{tokens: make(map[string]uuid.UUID)}
}

func (s *testTokenService) GenerateToken(sessionID uuid.UUID) (string, error) {
	if s.fail {
		return "", fmt.Errorf("signing failed")
	}
	token := "token-" + sessionID.String()
	s.tokens[token] = sessionID
	return token, nil
}

func (s *testTokenService) ValidateToken(tokenString string) (uuid.UUID, error) {
	id, ok := s.tokens[tokenString]
	if !ok {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	return id, nil
}

func (s *testTokenService) TTL() time.Duration {
	return time.Hour
}

// captureHandler records the session ID seen by the wrapped handler.
func captureHandler(t *testing.T, got *uuid.UUID) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetSessionID(r)
		require.NoError(t, err)
		*got = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddleware_IssuesCookieForNewVisitor(t *testing.T) {
	tokens := newTestTokenService()
	var seen uuid.UUID
	handler := SessionMiddleware(tokens)(captureHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, uuid.Nil, seen)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, "token-"+seen.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestSessionMiddleware_ReusesValidCookie(t *testing.T) {
	tokens := newTestTokenService()
	existing := uuid.New()
	token, err := tokens.GenerateToken(existing)
	require.NoError(t, err)

	var seen uuid.UUID
	handler := SessionMiddleware(tokens)(captureHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, existing, seen)
	assert.Empty(t, w.Result().Cookies(), "no new cookie for a valid session")
}

func TestSessionMiddleware_ForgedCookieStartsNewSession(t *testing.T) {
	tokens := newTestTokenService()
	var seen uuid.UUID
	handler := SessionMiddleware(tokens)(captureHandler(t, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.NotEqual(t, uuid.Nil, seen)
	require.Len(t, w.Result().Cookies(), 1)
}

func TestSessionMiddleware_TokenFailure(t *testing.T) {
	tokens := newTestTokenService()
	tokens.fail = true
	called := false
	handler := SessionMiddleware(tokens)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, called)
}

func TestGetSessionID_Missing(t *testing.T) {
	_, err := GetSessionID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Error(t, err)
}
