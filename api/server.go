package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/snakelights/snakelights/game/board"
	"github.com/snakelights/snakelights/game/config"
	"github.com/snakelights/snakelights/game/service"
	"github.com/snakelights/snakelights/game/session"
	"github.com/snakelights/snakelights/game/sim"
	"github.com/snakelights/snakelights/transport/websocket"
)

// Server is the REST API server.
type Server struct {
	service service.RunService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil when no WebSocket
// broadcasting is wanted (tests, embedded use).
func NewServer(runService service.RunService, hub *websocket.Hub) *Server {
	s := &Server{
		service: runService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Run lifecycle
	api.HandleFunc("/runs", s.handleCreateRun).Methods("POST")
	api.HandleFunc("/runs", s.handleListRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleGetRun).Methods("GET")
	api.HandleFunc("/runs/{id}", s.handleDeleteRun).Methods("DELETE")

	// Frame generation
	api.HandleFunc("/runs/{id}/advance", s.handleAdvance).Methods("POST")
	api.HandleFunc("/runs/{id}/frames", s.handleRunAll).Methods("POST")
	api.HandleFunc("/runs/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/runs/{id}/state", s.handleGetState).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service layer errors to HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrRunNotFound), errors.Is(err, config.ErrConfigNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, board.ErrMalformedBoard),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, service.ErrInvalidTickCount),
		errors.Is(err, session.ErrRunAlreadyExists):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Run handlers

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string       `json:"config_id,omitempty"`
		Options  *sim.Options `json:"options,omitempty"`
	}
	if r.Body != nil {
		// An empty body means "default config, default options".
		json.NewDecoder(r.Body).Decode(&req)
	}

	info, err := s.service.CreateRun(r.Context(), req.ConfigID, req.Options)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.ListRuns(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"runs": infos})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	info, err := s.service.GetRun(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.service.DeleteRun(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Ticks int `json:"ticks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticks == 0 {
		req.Ticks = 1
	}

	result, err := s.service.Advance(r.Context(), id, req.Ticks)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastFrames(id, result.Frames, result.Result)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRunAll(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := s.service.RunAll(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastFrames(id, result.Frames, result.Result)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	info, err := s.service.Reset(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastEvent(id, websocket.EventReset)
	}
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	state, err := s.service.GetState(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// Config handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	infos, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"configs": infos})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	cfg, err := s.service.LoadConfig(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string            `json:"name"`
		Config *config.RunConfig `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Config == nil {
		respondError(w, http.StatusBadRequest, "name and config are required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), req.Name, req.Config); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"saved": req.Name})
}

// WebSocket handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondError(w, http.StatusServiceUnavailable, "websocket hub not running")
		return
	}

	runID := r.URL.Query().Get("run")
	if runID == "" {
		respondError(w, http.StatusBadRequest, "run query parameter is required")
		return
	}
	if _, err := s.service.GetRun(r.Context(), runID); err != nil {
		respondServiceError(w, err)
		return
	}

	s.hub.ServeWS(w, r, runID)
}
