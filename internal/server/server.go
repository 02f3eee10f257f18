// Package server provides the HTTP server for the flexit pose service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/flexit/internal/metrics"
	"github.com/ayusman/flexit/internal/server/api"
	"github.com/ayusman/flexit/internal/session"
	"github.com/ayusman/flexit/internal/store"
	"github.com/ayusman/flexit/internal/tracker"
)

const shutdownTimeout = 5 * time.Second

// Config holds the server configuration. Routes are registered only for
// the collaborators that are set.
type Config struct {
	StaticDir string
	Store     *store.Store
	Sessions  *session.Manager
	Tracker   *tracker.Tracker
	Metrics   *metrics.Manager
	Gatherer  prometheus.Gatherer
}

// Server represents the HTTP server for the flexit application.
type Server struct {
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	start   time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()

	s.handler = s.mux
	if config.Metrics != nil {
		s.handler = requestMetrics(config.Metrics, s.mux)
	}
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/poses", api.NewPosesHandler())
	s.mux.Handle("/api/classify", api.NewClassifyHandler())

	if s.config.Sessions != nil {
		sessionHandler := api.NewSessionHandler(s.config.Sessions)
		streamHandler := NewSessionStreamHandler(s.config.Sessions)

		// Route /api/sessions/{id}/ws to the WebSocket handler
		sessionRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/ws") {
				streamHandler.ServeHTTP(w, r)
				return
			}
			sessionHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/sessions", sessionRouter)
		s.mux.Handle("/api/sessions/", sessionRouter)
	}

	if s.config.Store != nil {
		workoutHandler := api.NewWorkoutHandler(s.config.Store)
		s.mux.Handle("/api/workouts", workoutHandler)
		s.mux.Handle("/api/workouts/", workoutHandler)
	}

	if s.config.Store != nil && s.config.Sessions != nil {
		s.mux.Handle("/api/settings/thresholds", api.NewThresholdsHandler(s.config.Store, s.config.Sessions))
	}

	if s.config.Tracker != nil {
		trackerHandler := api.NewTrackerHandler(s.config.Tracker)
		s.mux.Handle("/api/tracker", trackerHandler)
		s.mux.Handle("/api/tracker/", trackerHandler)
		s.mux.Handle("/api/tracker/ws", NewTrackerStreamHandler(s.config.Tracker))
	}

	if s.config.Gatherer != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Sessions != nil {
		response["sessions"] = len(s.config.Sessions.List())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof(" > server listening on: [%s]", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}
