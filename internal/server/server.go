package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/headline-scorer/internal/config"
	"github.com/jonathan/headline-scorer/internal/scoring"
	"github.com/jonathan/headline-scorer/internal/server/middleware"
	"github.com/jonathan/headline-scorer/internal/server/ratelimit"
	"github.com/jonathan/headline-scorer/internal/session"
	"golang.org/x/sync/errgroup"
)

// sessionCleanupInterval is how often idle sessions are swept
const sessionCleanupInterval = 10 * time.Minute

// Scorer submits headlines to the scoring backend
type Scorer interface {
	Score(ctx context.Context, headlines []string) (*scoring.Result, error)
	Endpoint() string
}

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	handler        http.Handler
	scorer         Scorer
	sessions       *session.Manager
	tokens         *session.TokenService
	rateLimiter    *ratelimit.Limiter
	page           *pageRenderer
	maxUploadBytes int64
}

// New creates a new server instance
func New(cfg *config.Config, scorer Scorer) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}

	tokens, err := session.NewTokenService(cfg.SessionSecret, cfg.SessionTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to create session token service: %w", err)
	}

	page, err := newPageRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	s := &Server{
		scorer:         scorer,
		sessions:       session.NewManager(cfg.SessionTTL(), sessionCleanupInterval),
		tokens:         tokens,
		rateLimiter:    ratelimit.NewLimiter(ratelimit.LoadConfig()),
		page:           page,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Form actions; each redirects back to the page
	mux.HandleFunc("POST /headlines", s.handleAdd)
	mux.HandleFunc("POST /headlines/import", s.handleImport)
	mux.HandleFunc("POST /headlines/upload", s.handleUpload)
	mux.HandleFunc("POST /headlines/edit", s.handleEdit)
	mux.HandleFunc("POST /headlines/clear", s.handleClear)
	mux.HandleFunc("POST /headlines/{index}/remove", s.handleRemove)
	mux.HandleFunc("POST /score", s.handleScore)
	mux.HandleFunc("POST /session/reset", s.handleReset)

	// JSON API
	mux.HandleFunc("GET /api/headlines", s.handleAPIList)
	mux.HandleFunc("POST /api/headlines", s.handleAPIAdd)
	mux.HandleFunc("POST /api/headlines/import", s.handleAPIImport)
	mux.HandleFunc("POST /api/headlines/upload", s.handleAPIUpload)
	mux.HandleFunc("PUT /api/headlines/{index}", s.handleAPIEdit)
	mux.HandleFunc("DELETE /api/headlines/{index}", s.handleAPIRemove)
	mux.HandleFunc("DELETE /api/headlines", s.handleAPIClear)
	mux.HandleFunc("POST /api/score", s.handleAPIScore)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(middleware.SessionMiddleware(tokens)(mux))))

	// WriteTimeout must outlast a full scoring call
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.TimeoutDuration() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped request handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Server starting on %s (scoring endpoint %s)", s.httpServer.Addr, s.scorer.Endpoint())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	log.Println("Server stopped")
	return err
}

// Close stops background cleanup goroutines
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.sessions != nil {
		s.sessions.Stop()
	}
}

// state returns the session state bound to the request
func (s *Server) state(r *http.Request) (*session.State, error) {
	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(sessionID), nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Extract client identifier (IP address)
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Only RemoteAddr is trusted; forwarded headers are ignored.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
