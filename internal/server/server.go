// Package server exposes one-shot routing and stateful agent sessions over
// HTTP.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"tangent-planner/internal/circlegraph"
	"tangent-planner/internal/config"
	"tangent-planner/internal/geometry"
	"tangent-planner/internal/planner"
)

// session is one agent. Its planner is used by one request at a time.
type session struct {
	mu      sync.Mutex
	planner *planner.Planner
	ticks   int
}

type Server struct {
	cfg    config.Config
	router *mux.Router

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

func New(cfg config.Config) *Server {
	s := &Server{
		cfg:      cfg,
		router:   mux.NewRouter(),
		sessions: make(map[uuid.UUID]*session),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/agents", s.createAgentHandler).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/agents/{id}", s.getAgentHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/agents/{id}", s.deleteAgentHandler).Methods(http.MethodDelete, http.MethodOptions)
	s.router.HandleFunc("/agents/{id}/goal", s.setGoalHandler).Methods(http.MethodPut, http.MethodOptions)
	s.router.HandleFunc("/agents/{id}/goal", s.unsetGoalHandler).Methods(http.MethodDelete)
	s.router.HandleFunc("/agents/{id}/tick", s.tickHandler).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/agents/{id}/path", s.pathHandler).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the router in a server listening on the configured address
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("⚠️  Failed to encode response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// GET /health
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	agents := len(s.sessions)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"agents":      agents,
		"actorRadius": s.cfg.ActorRadius,
	})
}

// POST /route plans once from start to goal and returns the followed path
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("📍 Route request received")

	var req RouteRequest
	if !decode(w, r, &req) {
		return
	}
	obstacles, err := req.circles()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := s.cfg
	if req.ActorRadius != 0 {
		cfg.ActorRadius = req.ActorRadius
	}

	log.Printf("   Start: (%.3f, %.3f) Goal: (%.3f, %.3f) Obstacles: %d\n",
		req.Start.X, req.Start.Y, req.Goal.X, req.Goal.Y, len(obstacles))

	route, err := planner.PlanRoute(cfg, obstacles, req.Start, req.Goal)
	if err != nil {
		if planner.IsSearchError(err) {
			log.Printf("❌ No path found: %v\n", err)
			resp := RouteResponse{Message: "no path found: " + err.Error()}
			if n, nerr := route.Result.Nearest(req.Goal); nerr == nil {
				resp.Nearest = &n.Content
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log.Printf("✅ Path found with %d waypoints, cost %.3f\n", len(route.Waypoints), route.Cost)
	writeJSON(w, http.StatusOK, RouteResponse{
		Success: true,
		Path:    route.Polyline(),
		Length:  route.Length(),
		Cost:    route.Cost,
		GeoJSON: route.FeatureCollection(),
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *session, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid agent id")
		return raw, nil, false
	}

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "agent not found")
		return raw, nil, false
	}
	return raw, sess, true
}

// POST /agents
func (s *Server) createAgentHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	cfg := s.cfg
	if req.ActorRadius != 0 {
		cfg.ActorRadius = req.ActorRadius
	}
	p, err := planner.New(cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New()
	sess := &session{planner: p}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	log.Printf("🤖 Agent %s created (radius %.3f)\n", id, cfg.ActorRadius)
	writeJSON(w, http.StatusCreated, agentResponse(id.String(), sess))
}

// GET /agents/{id}
func (s *Server) getAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, agentResponse(id, sess))
}

// DELETE /agents/{id}
func (s *Server) deleteAgentHandler(w http.ResponseWriter, r *http.Request) {
	id, _, ok := s.session(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.sessions, uuid.MustParse(id))
	s.mu.Unlock()

	log.Printf("🗑️  Agent %s removed\n", id)
	w.WriteHeader(http.StatusNoContent)
}

// PUT /agents/{id}/goal
func (s *Server) setGoalHandler(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var goal geometry.Point
	if !decode(w, r, &goal) {
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.planner.SetGoal(goal); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, agentResponse(id, sess))
}

// DELETE /agents/{id}/goal
func (s *Server) unsetGoalHandler(w http.ResponseWriter, r *http.Request) {
	id, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.planner.UnsetGoal()
	writeJSON(w, http.StatusOK, agentResponse(id, sess))
}

// POST /agents/{id}/tick returns the next target for the agent's position
func (s *Server) tickHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TickRequest
	if !decode(w, r, &req) {
		return
	}
	obstacles, err := req.circles()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.Position.IsFinite() {
		writeError(w, http.StatusBadRequest, "position must be finite")
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.ticks++

	target, err := sess.planner.Tick(req.Position, obstacles)
	_, hasGoal := sess.planner.Goal()
	resp := TickResponse{
		Success: err == nil,
		Target:  target,
		Mode:    sess.planner.Mode().String(),
		HasGoal: hasGoal,
	}
	if err != nil {
		log.Printf("⚠️  Tick failed: %v\n", err)
		resp.Message = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /agents/{id}/path returns the current path and graph as GeoJSON
func (s *Server) pathHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	path := sess.planner.Path()
	if len(path) == 0 {
		writeError(w, http.StatusNotFound, "agent has no path")
		return
	}

	fc := sess.planner.Result().FeatureCollection()
	fc.Append(circlegraph.PathFeature(path))
	writeJSON(w, http.StatusOK, fc)
}
