// Package server is the local HTTP bridge between the browser extension and
// the tab orchestrator: tab events and popup messages come in, status
// updates stream out over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomaslau/focusonly/internal/model"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
	writeTimeout    = 5 * time.Second
)

// Orchestrator is the part of tabs.Orchestrator the bridge drives
type Orchestrator interface {
	NavigationCompleted(tabID int, active bool)
	Activated(tabID int)
	HistoryStateUpdated(tabID, frameID int)
	Closed(tabID int)
	HandleMessage(ctx context.Context, msg model.Message) (any, error)
}

// TabTracker records what the browser reports about its tabs
type TabTracker interface {
	Navigate(tabID int, url string)
	Activate(tabID int)
	Remove(tabID int)
}

// StatsStore reads and resets usage counters
type StatsStore interface {
	Get(ctx context.Context) (model.Stats, error)
	Reset(ctx context.Context) error
}

// CacheClearer empties the verdict cache
type CacheClearer interface {
	ClearAll(ctx context.Context) (int, error)
}

// Deps are the bridge's collaborators
type Deps struct {
	Orchestrator Orchestrator
	Tabs         TabTracker
	Hub          *Hub
	Stats        StatsStore
	Cache        CacheClearer
}

// Server is the HTTP bridge
type Server struct {
	deps    Deps
	cfg     model.ServerConfig
	log     zerolog.Logger
	handler http.Handler
}

// New creates a bridge server
func New(deps Deps, cfg model.ServerConfig, log zerolog.Logger) *Server {
	if deps.Hub == nil {
		deps.Hub = NewHub()
	}
	s := &Server{deps: deps, cfg: cfg, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/events", s.handleEvent)
	mux.HandleFunc("POST /v1/messages", s.handleMessage)
	mux.HandleFunc("GET /v1/stream", s.handleStream)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("DELETE /v1/stats", s.handleResetStats)
	mux.HandleFunc("DELETE /v1/cache", s.handleClearCache)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.handler = s.withLogging(s.withCORS(mux))
	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// Open streams are closed through their request contexts.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("bridge listening")
		if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		s.log.Info().Msg("bridge stopped")
		return nil
	})

	return g.Wait()
}

// allowedOrigin reports whether a browser origin may use the bridge.
// Requests without an Origin header (CLI tools) are always allowed.
func (s *Server) allowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// originPatterns converts allowed origins to websocket host patterns
func (s *Server) originPatterns() (patterns []string, anyOrigin bool) {
	for _, o := range s.cfg.AllowedOrigins {
		if o == "*" {
			return nil, true
		}
		if _, host, ok := strings.Cut(o, "://"); ok {
			patterns = append(patterns, host)
		} else {
			patterns = append(patterns, o)
		}
	}
	return patterns, false
}
