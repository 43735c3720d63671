package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"vtol-medical-drone-system/internal/generator"

	"github.com/gorilla/mux"
)

// APIPrefix marks requests answered from the dispatch table
const APIPrefix = "/api/"

// ErrBadRequest marks endpoint errors caused by the request itself
var ErrBadRequest = errors.New("bad request")

// Endpoint produces the payload of one API path
type Endpoint func(query url.Values) (any, error)

// Server represents the API server
type Server struct {
	source    generator.Source
	router    *mux.Router
	handler   http.Handler
	endpoints map[string]Endpoint
	staticDir string
	logger    *slog.Logger
}

// NewServer creates a server answering /api/* from source and everything
// else from files under staticDir.
func NewServer(source generator.Source, staticDir string, logger *slog.Logger) *Server {
	s := &Server{
		source:    source,
		router:    mux.NewRouter(),
		endpoints: make(map[string]Endpoint),
		staticDir: staticDir,
		logger:    logger,
	}
	s.setupEndpoints()
	s.setupRoutes()
	s.handler = requestIDMiddleware(
		loggingMiddleware(logger,
			recoveryMiddleware(logger,
				corsMiddleware(s.router))))
	return s
}

// setupEndpoints fills the dispatch table
func (s *Server) setupEndpoints() {
	s.Register("/api/status", func(url.Values) (any, error) { return s.source.Status(), nil })
	s.Register("/api/fleet", func(url.Values) (any, error) { return s.source.Fleet(), nil })
	s.Register("/api/alerts", func(url.Values) (any, error) { return s.source.Alerts(), nil })
	s.Register("/api/metrics", func(url.Values) (any, error) { return s.source.Metrics(), nil })

	inv, ok := s.source.(generator.Inventory)
	if !ok {
		return
	}
	s.Register("/api/missions", func(url.Values) (any, error) {
		missions := inv.Missions()
		return map[string]any{"missions": missions, "total": len(missions)}, nil
	})
	s.Register("/api/analytics", func(url.Values) (any, error) { return inv.Analytics(), nil })
	s.Register("/api/supplies", func(url.Values) (any, error) { return inv.Supplies(), nil })
	s.Register("/api/inventory", func(q url.Values) (any, error) {
		limit := 10
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: limit must be a non-negative integer", ErrBadRequest)
			}
			limit = n
		}
		return map[string]any{"entries": inv.InventoryLog(limit)}, nil
	})
}

// setupRoutes configures the API and static routes
func (s *Server) setupRoutes() {
	s.router.PathPrefix(APIPrefix).Methods(http.MethodGet, http.MethodPost).HandlerFunc(s.handleAPI)
	s.router.PathPrefix(APIPrefix).Methods(http.MethodOptions).HandlerFunc(s.handlePreflight)

	// http.Dir refuses paths that escape the root.
	s.router.PathPrefix("/").Methods(http.MethodGet, http.MethodHead).
		Handler(http.FileServer(http.Dir(s.staticDir)))

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not Found")
	})
	s.router.NotFoundHandler = notFound
	s.router.MethodNotAllowedHandler = notFound
}

// Register adds or replaces the endpoint for path, which must start with
// APIPrefix.
func (s *Server) Register(path string, ep Endpoint) {
	if !strings.HasPrefix(path, APIPrefix) {
		panic("api: endpoint path must start with " + APIPrefix)
	}
	s.endpoints[path] = ep
}

// Endpoints returns the registered API paths in order.
func (s *Server) Endpoints() []string {
	paths := make([]string, 0, len(s.endpoints))
	for p := range s.endpoints {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ServeHTTP implements http.Handler with all middleware applied.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	ep, ok := s.endpoints[r.URL.Path]
	if !ok {
		respondError(w, http.StatusNotFound, "API endpoint not found")
		return
	}

	data, err := ep(r.URL.Query())
	switch {
	case errors.Is(err, ErrBadRequest):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logger.Error("endpoint failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, data)
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Response helpers
type apiResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// respondJSON writes data as two-space indented JSON.
func respondJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	body, _ := json.MarshalIndent(apiResponse{Success: false, Error: message}, "", "  ")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
