// Package api provides the HTTP API for observing and steering the island.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/castaway/internal/agents"
	"github.com/talgya/castaway/internal/engine"
	"github.com/talgya/castaway/internal/persistence"
)

// maxStepsPerRequest bounds POST /step.
const maxStepsPerRequest = 100000

// Server serves the island over HTTP.
type Server struct {
	Host     *engine.Host
	DB       *persistence.DB // Optional; history endpoints 404 without it
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	srv *http.Server
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	// Digests hash the full state and history reads hit SQLite.
	heavyLimiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.getOnly(s.handleStatus))
	mux.HandleFunc("/api/v1/agents", s.getOnly(s.handleAgents))
	mux.HandleFunc("/api/v1/agent/", s.getOnly(s.handleAgentRoutes(heavyLimiter)))
	mux.HandleFunc("/api/v1/environment", s.getOnly(s.handleEnvironment))
	mux.HandleFunc("/api/v1/events", s.getOnly(s.handleEvents))
	mux.HandleFunc("/api/v1/stats", s.getOnly(s.handleStats))
	mux.HandleFunc("/api/v1/digest", s.getOnly(RateLimitMiddleware(heavyLimiter, s.handleDigest)))
	mux.HandleFunc("/api/v1/runs", s.getOnly(RateLimitMiddleware(heavyLimiter, s.handleRuns)))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/step", s.adminOnly(s.handleStep))
	mux.HandleFunc("/api/v1/reset", s.adminOnly(s.handleReset))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/time", s.adminOnly(s.handleTime))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set ISLAND_CORS_ORIGINS to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("ISLAND_CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
		case http.MethodPost:
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no ISLAND_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) getOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Host.Status())
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	aliveOnly := r.URL.Query().Get("alive") == "true"

	type agentSummary struct {
		ID     agents.AgentID `json:"id"`
		Name   string         `json:"name"`
		Sex    string         `json:"sex"`
		Stage  string         `json:"stage"`
		Age    float64        `json:"age"`
		Task   string         `json:"task"`
		State  string         `json:"state"`
		Hunger float64        `json:"hunger"`
		Energy float64        `json:"energy"`
		Health float64        `json:"health"`
		Renown string         `json:"renown,omitempty"`
		Alive  bool           `json:"alive"`
		Cause  string         `json:"cause,omitempty"`
	}

	result := []agentSummary{}
	for _, st := range s.Host.AgentStates() {
		if aliveOnly && !st.Alive {
			continue
		}
		result = append(result, agentSummary{
			ID:     st.ID,
			Name:   st.Name,
			Sex:    st.Sex,
			Stage:  st.Stage,
			Age:    math.Round(st.Needs.Age*10) / 10,
			Task:   st.Task,
			State:  st.State,
			Hunger: st.Needs.Hunger,
			Energy: st.Needs.Energy,
			Health: st.Needs.Health,
			Renown: st.Renown,
			Alive:  st.Alive,
			Cause:  string(st.Needs.Cause),
		})
	}
	writeJSON(w, result)
}

// handleAgentRoutes serves /agent/:id and /agent/:id/history.
func (s *Server) handleAgentRoutes(historyLimiter *RateLimiter) http.HandlerFunc {
	history := RateLimitMiddleware(historyLimiter, func(w http.ResponseWriter, r *http.Request) {
		id, _ := agentIDFromPath(r.URL.Path)
		s.handleAgentHistory(w, id)
	})

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := agentIDFromPath(r.URL.Path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		st, ok := s.Host.AgentState(id)
		if !ok {
			http.Error(w, "agent not found", http.StatusNotFound)
			return
		}

		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) >= 5 && parts[4] == "history" {
			history(w, r)
			return
		}

		writeJSON(w, st)
	}
}

func agentIDFromPath(path string) (agents.AgentID, error) {
	// api/v1/agent/:id[/...]
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 4 || parts[3] == "" {
		return 0, errors.New("missing agent id")
	}
	id, err := strconv.ParseUint(parts[3], 10, 64)
	if err != nil {
		return 0, errors.New("invalid agent id")
	}
	return agents.AgentID(id), nil
}

func (s *Server) handleAgentHistory(w http.ResponseWriter, id agents.AgentID) {
	if s.DB == nil {
		http.Error(w, "no recorder configured", http.StatusNotFound)
		return
	}
	rows, err := s.DB.AgentHistory(id)
	if err != nil {
		slog.Error("agent history query failed", "agent", id, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	type point struct {
		Tick   uint64  `json:"tick"`
		Time   string  `json:"time"`
		Alive  bool    `json:"alive"`
		Stage  string  `json:"stage"`
		Task   string  `json:"task"`
		Hunger float64 `json:"hunger"`
		Energy float64 `json:"energy"`
		Health float64 `json:"health"`
		Social float64 `json:"social"`
	}
	out := make([]point, 0, len(rows))
	for _, row := range rows {
		out = append(out, point{
			Tick:   row.Tick,
			Time:   engine.SimTime(row.Tick),
			Alive:  row.Alive,
			Stage:  row.Stage,
			Task:   row.Task,
			Hunger: row.Hunger,
			Energy: row.Energy,
			Health: row.Health,
			Social: row.Social,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleEnvironment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Host.EnvironmentState())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	var since uint64
	if v := q.Get("since"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = n
	}

	events := s.Host.Events(since, 0)

	// Optional category filter.
	if category := q.Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, append([]engine.Event{}, events[start:]...))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Host.Status().Stats)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	st := s.Host.Status()
	writeJSON(w, map[string]any{
		"seed":   st.Seed,
		"tick":   st.Tick,
		"digest": s.Host.Digest(),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "no recorder configured", http.StatusNotFound)
		return
	}
	runs, err := s.DB.Runs()
	if err != nil {
		slog.Error("runs query failed", "error", err)
		http.Error(w, "runs unavailable", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			N int `json:"n"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.N < 1 || req.N > maxStepsPerRequest {
			http.Error(w, fmt.Sprintf("n must be 1-%d", maxStepsPerRequest), http.StatusBadRequest)
			return
		}
		s.Host.Step(req.N)
		slog.Info("stepped by admin", "ticks", req.N)
	}
	writeJSON(w, s.Host.Status())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Seed *int64 `json:"seed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		seed := s.Host.Status().Seed
		if req.Seed != nil {
			seed = *req.Seed
		}
		s.Host.Reset(seed)
	}
	writeJSON(w, s.Host.Status())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Host.SetSimulationSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Host.Status().Speed})
}

func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Hour float64 `json:"hour"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Hour < 0 || req.Hour >= 24 {
			http.Error(w, "hour must be in [0, 24)", http.StatusBadRequest)
			return
		}
		s.Host.SetTimeOfDay(req.Hour)
	}

	writeJSON(w, map[string]float64{"hour": s.Host.DisplayHour()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Warn("write response", "error", err)
	}
}
