// Package api exposes the crawler's own operational HTTP surface: health,
// metrics, and an on-demand crawl endpoint.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/talentwire/jobs-crawler/internal/jobs"
	"github.com/talentwire/jobs-crawler/internal/metrics"
)

// Crawler runs one fallback crawl. Satisfied by crawler.Orchestrator.
type Crawler interface {
	CrawlWithFallback(ctx context.Context, target jobs.CompanyTarget) jobs.CrawlResult
}

// Server wires HTTP handlers to the orchestrator.
type Server struct {
	router  chi.Router
	crawler Crawler
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(crawler Crawler, logger *zap.Logger) *Server {
	s := &Server{crawler: crawler, logger: logger}

	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/v1/crawl", s.crawl)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type crawlRequest struct {
	CompanyName  string `json:"company_name"`
	CareerURL    string `json:"career_url"`
	WaitSelector string `json:"wait_for_selector,omitempty"`
}

func (s *Server) crawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "company_name is required")
		return
	}
	if _, err := url.ParseRequestURI(req.CareerURL); err != nil {
		writeError(w, http.StatusBadRequest, "career_url must be a valid URL")
		return
	}

	target := jobs.CompanyTarget{Name: req.CompanyName, CareerPageURL: req.CareerURL}
	result := s.crawler.CrawlWithFallback(r.Context(), target)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("handler panicked", zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
