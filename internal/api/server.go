// Package api exposes the scenario engine over HTTP and WebSocket.
package api

import (
	"bufio"
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/observability"
)

// maxBodyBytes bounds a scenario request body or websocket message.
const maxBodyBytes = 64 << 10

// ScenarioRunner produces scenario responses. *orchestrator.Orchestrator satisfies it.
type ScenarioRunner interface {
	Run(ctx context.Context, in domain.SimulationInput, sess *coach.Session) (*domain.ScenarioResponse, error)
}

// CoachInfo is the non-sensitive coach configuration exposed by /api/whatif/config.
type CoachInfo struct {
	Provider string
	Model    string
	Ready    bool
}

// Server is the HTTP server of the scenario lab.
type Server struct {
	router  *mux.Router
	server  *http.Server
	runner  ScenarioRunner
	coach   CoachInfo
	metrics http.Handler
	seeder  func() uint64
	logger  zerolog.Logger
}

// ServerOptions contains configuration for creating a Server.
type ServerOptions struct {
	Addr    string
	Runner  ScenarioRunner
	Coach   CoachInfo
	Metrics http.Handler  // defaults to observability.Handler()
	Seeder  func() uint64 // seed for requests without one; defaults to rand.Uint64
	Logger  zerolog.Logger
}

// NewServer creates a new HTTP server instance.
func NewServer(opts ServerOptions) *Server {
	if opts.Metrics == nil {
		opts.Metrics = observability.Handler()
	}
	if opts.Seeder == nil {
		opts.Seeder = rand.Uint64
	}

	s := &Server{
		router:  mux.NewRouter(),
		runner:  opts.Runner,
		coach:   opts.Coach,
		metrics: opts.Metrics,
		seeder:  opts.Seeder,
		logger:  opts.Logger.With().Str("component", "api").Logger(),
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.corsMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)

	whatif := s.router.PathPrefix("/api/whatif").Subrouter()
	whatif.HandleFunc("/scenario", s.handleScenario).Methods(http.MethodPost, http.MethodOptions)
	whatif.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet, http.MethodOptions)
	whatif.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
}

// Start starts the HTTP server. It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the request id stored by the request id middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestIDMiddleware adds unique request ID to each request
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLoggingMiddleware logs requests and records per-route metrics
func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(wrapper.statusCode))

		s.logger.Info().
			Str("request_id", RequestID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("duration", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("request")
	})
}

// corsMiddleware allows browser dashboards on any origin to call the API
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Session-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWrapper captures the status code. It forwards Hijack for websocket upgrades.
type responseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (rw *responseWrapper) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
