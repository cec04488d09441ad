// pkg/network/server.go
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/engine"
	"github.com/opd-ai/go-vesselsim/pkg/entity"
	"github.com/opd-ai/go-vesselsim/pkg/health"
	"github.com/opd-ai/go-vesselsim/pkg/logging"
	"github.com/opd-ai/go-vesselsim/pkg/physics"
	"github.com/opd-ai/go-vesselsim/pkg/stats"
	"github.com/opd-ai/go-vesselsim/pkg/validation"
)

// Server exposes the simulation engine over HTTP: listing the fleet,
// registering vessels, reassigning targets and serving fleet statistics and
// health probes. It owns no simulation state beyond a reference to the
// engine; every handler reads or writes through the engine's thread-safe
// operations, so requests are safe concurrently with a running tick.
type Server struct {
	sim     *engine.Simulation
	cfg     config.NetworkConfig
	logger  *logging.Logger
	limiter *validation.RateLimiter
	checker *health.Checker

	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// RegisterVesselRequest is the POST /vessels payload.
type RegisterVesselRequest struct {
	ID      string   `json:"id"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Heading float64  `json:"heading"`
	Speed   float64  `json:"speed"`
	TargetX *float64 `json:"targetX,omitempty"`
	TargetY *float64 `json:"targetY,omitempty"`
}

// SetTargetRequest is the POST /vessels/{id}/target payload.
type SetTargetRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewServer creates an HTTP server for the given simulation. The health
// checker may be nil, in which case /health and /ready are not served.
func NewServer(sim *engine.Simulation, cfg config.NetworkConfig, checker *health.Checker) *Server {
	requestsPerMin := cfg.RequestsPerMin
	if requestsPerMin <= 0 {
		requestsPerMin = 600
	}
	return &Server{
		sim:     sim,
		cfg:     cfg,
		logger:  logging.NewLogger(),
		limiter: validation.NewRateLimiter(requestsPerMin, time.Minute),
		checker: checker,
	}
}

// Start binds the listener and begins serving in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return logging.WrapError(err, "binding %s", s.cfg.ListenAddr())
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutS) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutS) * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error(context.Background(), "http server failed", err)
		}
	}()

	s.logger.Info(context.Background(), "transport listening", "address", listener.Addr().String())
	return nil
}

// Stop drains in-flight requests and closes the listener.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.httpServer
	s.listener = nil
	s.httpServer = nil
	s.mu.Unlock()

	s.limiter.Close()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Addr returns the bound listener address, or "" when not listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// routes builds the request multiplexer. Exposed to handlers via httptest in
// package tests.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /vessels", s.rateLimited(s.handleListVessels))
	mux.HandleFunc("POST /vessels", s.rateLimited(s.handleRegisterVessel))
	mux.HandleFunc("POST /vessels/{id}/target", s.rateLimited(s.handleSetTarget))
	mux.HandleFunc("GET /fleet/summary", s.rateLimited(s.handleFleetSummary))
	if s.checker != nil {
		mux.HandleFunc("GET /health", s.checker.LivenessHandler)
		mux.HandleFunc("GET /ready", s.checker.ReadinessHandler)
	}
	return mux
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.Allow(host) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleListVessels(w http.ResponseWriter, r *http.Request) {
	states := s.sim.ListAll()
	// The engine guarantees no ordering; sort for stable API output.
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	writeJSON(w, http.StatusOK, states)
}

func (s *Server) handleRegisterVessel(w http.ResponseWriter, r *http.Request) {
	var req RegisterVesselRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if req.ID == "" {
		req.ID = string(entity.GenerateID())
	}
	if err := validation.ValidateVesselID(req.ID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateCoordinate("x", req.X); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateCoordinate("y", req.Y); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateHeading(req.Heading); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.ValidateSpeed(req.Speed); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if (req.TargetX == nil) != (req.TargetY == nil) {
		writeError(w, http.StatusBadRequest, "targetX and targetY must be supplied together")
		return
	}

	vessel := entity.NewVessel(entity.ID(req.ID), physics.Vector2D{X: req.X, Y: req.Y}, req.Heading, req.Speed)
	if req.TargetX != nil {
		if err := validation.ValidateTarget(*req.TargetX, *req.TargetY); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		vessel.SetTarget(*req.TargetX, *req.TargetY)
	}

	added := s.sim.Register(vessel)
	if !added {
		// Duplicate registration is a documented no-op: report the
		// preserved entry rather than an error.
		s.logger.Info(r.Context(), "duplicate vessel registration ignored", "vessel_id", req.ID)
		writeJSON(w, http.StatusOK, s.findVessel(entity.ID(req.ID)))
		return
	}

	s.logger.Info(r.Context(), "vessel registered", "vessel_id", req.ID)
	writeJSON(w, http.StatusCreated, vessel.Snapshot())
}

func (s *Server) handleSetTarget(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := validation.ValidateVesselID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req SetTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if err := validation.ValidateTarget(req.X, req.Y); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.sim.SetTarget(entity.ID(id), req.X, req.Y) {
		writeError(w, http.StatusNotFound, "vessel not found")
		return
	}

	s.logger.Info(r.Context(), "target assigned", "vessel_id", id, "x", req.X, "y", req.Y)
	writeJSON(w, http.StatusOK, s.findVessel(entity.ID(id)))
}

func (s *Server) handleFleetSummary(w http.ResponseWriter, r *http.Request) {
	summary := stats.Summarize(s.sim.ListAll(), s.sim.ArrivalTolerance())
	writeJSON(w, http.StatusOK, summary)
}

// findVessel pulls a single vessel's snapshot out of a fleet listing.
func (s *Server) findVessel(id entity.ID) entity.VesselState {
	for _, state := range s.sim.ListAll() {
		if state.ID == id {
			return state
		}
	}
	return entity.VesselState{ID: id}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
