// Package api provides the HTTP server for Codigo.
// It exposes the gamification and progress REST API consumed by the
// mobile client, plus health and metrics endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codigo-app/codigo/internal/health"
)

// Server is the Codigo HTTP API server.
type Server struct {
	gamification   *GamificationAPI
	checker        *health.Checker
	metricsEnabled bool
	version        string
}

// NewServer creates a new API server.
func NewServer(g *GamificationAPI, version string) *Server {
	return &Server{gamification: g, version: version}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker wires the periodic health checker into /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		status := http.StatusOK
		label := "ok"
		if !s.checker.IsHealthy() {
			status = http.StatusServiceUnavailable
			label = "degraded"
		}
		writeJSON(w, status, map[string]interface{}{
			"status": label,
			"checks": s.checker.Statuses(),
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": s.version,
		})
	})

	// Achievement catalog (static, not per-user)
	r.Get("/api/achievements", s.gamification.HandleCatalog)

	// Per-user gamification and progress
	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Get("/profile", s.gamification.HandleProfile)
		r.Get("/streak", s.gamification.HandleStreak)
		r.Post("/xp", s.gamification.HandleAddXP)
		r.Post("/lives/decrease", s.gamification.HandleDecreaseLife)
		r.Post("/lives/refresh", s.gamification.HandleRefreshLives)
		r.Get("/achievements", s.gamification.HandleEarnedAchievements)
		r.Post("/achievements/{achievementID}", s.gamification.HandleUnlockAchievement)
		r.Route("/courses/{courseID}", func(r chi.Router) {
			r.Get("/progress", s.gamification.HandleCourseProgress)
			r.Post("/exercises/{exerciseID}/complete", s.gamification.HandleCompleteExercise)
			r.Post("/lessons/{lessonID}/complete", s.gamification.HandleCompleteLesson)
		})
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers for the mobile dev client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
