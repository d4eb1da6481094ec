// Package server provides the HTTP API for the recommender. The API is
// stateful by design: a payload and a resume are staged first, then execute
// runs the pipeline against the live portal session.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/satonodoka/herp-recommender/internal/audit"
	"github.com/satonodoka/herp-recommender/internal/config"
	"github.com/satonodoka/herp-recommender/internal/pdftext"
	"github.com/satonodoka/herp-recommender/internal/pipeline"
	"github.com/satonodoka/herp-recommender/internal/portal"
	"github.com/satonodoka/herp-recommender/internal/server/ratelimit"
	"github.com/satonodoka/herp-recommender/internal/types"
)

// Session is a live portal connection the server opens lazily and keeps
// across runs until /close or shutdown.
type Session interface {
	portal.Portal
	Close()
}

// Runner executes one recommendation pipeline. Swappable for tests.
type Runner func(ctx context.Context, opts pipeline.RunOptions) (*types.SubmissionResult, error)

// Options wires the server's collaborators.
type Options struct {
	Config *config.Config
	Audit  *audit.Writer
	// NewSession opens a portal session; called on the first execute and
	// again after /close.
	NewSession func(ctx context.Context) (Session, error)
	Extractor  pipeline.TextExtractor
	Run        Runner
	Log        zerolog.Logger
}

// Server is the HTTP API.
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	auditWriter *audit.Writer
	newSession  func(ctx context.Context) (Session, error)
	extractor   pipeline.TextExtractor
	run         Runner
	validate    *validator.Validate
	rateLimiter *ratelimit.Limiter
	log         zerolog.Logger

	// Staged inputs and the live portal session.
	mu           sync.Mutex
	upstreamJSON []byte
	resumePath   string
	session      Session

	// runMu serializes execute runs: the portal session is a single browser
	// and cannot interleave two form flows. A second execute while one is in
	// flight is rejected, not queued.
	runMu sync.Mutex
}

// New creates the server.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server requires a config")
	}
	if opts.NewSession == nil {
		return nil, fmt.Errorf("server requires a session factory")
	}

	s := &Server{
		cfg:         opts.Config,
		auditWriter: opts.Audit,
		newSession:  opts.NewSession,
		extractor:   opts.Extractor,
		run:         opts.Run,
		validate:    validator.New(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		log:         opts.Log,
	}
	if s.run == nil {
		s.run = pipeline.Run
	}
	if s.extractor == nil {
		s.extractor = pipeline.ExtractorFunc(pdftext.Extract)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /resume", s.handleResume)
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("POST /execute/stream", s.handleExecuteStream)
	mux.HandleFunc("POST /close", s.handleClose)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Config.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // execute runs drive a real browser
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler exposes the routed handler stack for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully, closing the
// portal session if one is open.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-stop
	s.log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.closeSession()
	s.log.Info().Msg("server stopped")
	return nil
}

// ensureSession returns the live portal session, opening one if needed.
func (s *Server) ensureSession(ctx context.Context) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		return s.session, nil
	}
	sess, err := s.newSession(ctx)
	if err != nil {
		return nil, err
	}
	s.session = sess
	return sess, nil
}

func (s *Server) closeSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := clientAddr(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("encoding JSON response")
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	s.jsonResponse(w, HTTPStatus(err), map[string]string{"error": err.Error()})
}

func clientAddr(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}
	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}
	s.log.Warn().Int("limit", info.Limit).Msg("rate limit exceeded")
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
