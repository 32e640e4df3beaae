package session

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_Defaults(t *testing.T) {
	s := NewState()

	require.NotNil(t, s.Store)
	assert.Equal(t, 0, s.Store.Len())
	assert.Nil(t, s.Result)
	assert.Empty(t, s.Input)
	assert.Empty(t, s.Flash)
}

func TestState_TakeFlash(t *testing.T) {
	s := NewState()
	s.AddFlash(LevelSuccess, "Imported 2 headlines from paste.")
	s.AddFlash(LevelError, "boom")

	msgs := s.TakeFlash()
	assert.Equal(t, []Message{
		{Level: LevelSuccess, Text: "Imported 2 headlines from paste."},
		{Level: LevelError, Text: "boom"},
	}, msgs)
	assert.Empty(t, s.TakeFlash())
}

func TestManager_GetCreatesAndReuses(t *testing.T) {
	m := NewManager(time.Hour, 0)
	defer m.Stop()

	id := uuid.New()
	first := m.Get(id)
	first.Do(func(s *State) { s.Store.Add("kept") })

	second := m.Get(id)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"kept"}, second.Store.Snapshot())

	other := m.Get(uuid.New())
	assert.NotSame(t, first, other)
	assert.Equal(t, 0, other.Store.Len(), "sessions do not share a store")
	assert.Equal(t, 2, m.Len())
}

func TestManager_Reset(t *testing.T) {
	m := NewManager(time.Hour, 0)
	defer m.Stop()

	id := uuid.New()
	m.Get(id).Store.Add("gone")
	m.Reset(id)

	assert.Equal(t, 0, m.Get(id).Store.Len())
}

func TestManager_EvictIdle(t *testing.T) {
	m := NewManager(time.Minute, 0)
	defer m.Stop()

	stale := uuid.New()
	fresh := uuid.New()
	m.Get(stale).touch(time.Now().Add(-2 * time.Minute))
	m.Get(fresh)

	assert.Equal(t, 1, m.evictIdle(time.Now()))
	assert.Equal(t, 1, m.Len())

	m.mu.RLock()
	_, freshKept := m.states[fresh]
	m.mu.RUnlock()
	assert.True(t, freshKept)
}

func TestManager_GetNeverReturnsEvictedState(t *testing.T) {
	m := NewManager(time.Minute, 0)
	defer m.Stop()

	id := uuid.New()
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				m.evictIdle(time.Now())
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		st := m.Get(id)
		m.mu.RLock()
		current := m.states[id]
		m.mu.RUnlock()
		require.Same(t, st, current, "iteration %d", i)

		st.touch(time.Now().Add(-2 * time.Minute))
	}
	close(done)
	wg.Wait()
}

func TestManager_ConcurrentGet(t *testing.T) {
	m := NewManager(time.Hour, time.Millisecond)
	defer m.Stop()

	id := uuid.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Get(id).Do(func(s *State) { s.Store.Add("x") })
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.Get(id).Store.Len())
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(time.Hour, time.Minute)
	m.Stop()
	m.Stop()
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("test-secret-key-0123", time.Hour)
	require.NoError(t, err)

	id := uuid.New()
	token, err := svc.GenerateToken(id)
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	issuer, err := NewTokenService("issuer-secret-0123", time.Hour)
	require.NoError(t, err)
	verifier, err := NewTokenService("another-secret-0123", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestTokenService_RejectsExpired(t *testing.T) {
	svc, err := NewTokenService("test-secret-key-0123", time.Hour)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	claims := &Claims{
		SessionID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(past),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-key-0123"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestTokenService_RejectsGarbage(t *testing.T) {
	svc, err := NewTokenService("test-secret-key-0123", time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken("")
	assert.EqualError(t, err, "token string is empty")

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestNewTokenService_Validation(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenService("secret", 0)
	assert.Error(t, err)
}
