// Package api provides HTTP handlers and the main API server logic for SalesPipe.
//
// It exposes RESTful endpoints for slot reservation and session management,
// plus the WebSocket transport that carries live conversation turns. The API
// integrates with the dialogue, slots, scheduler, and store modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/CloseLoop/SalesPipe/internal/dialogue"
	"github.com/CloseLoop/SalesPipe/internal/genai"
	"github.com/CloseLoop/SalesPipe/internal/kb"
	"github.com/CloseLoop/SalesPipe/internal/messaging"
	"github.com/CloseLoop/SalesPipe/internal/scheduler"
	"github.com/CloseLoop/SalesPipe/internal/slots"
	"github.com/CloseLoop/SalesPipe/internal/store"
	"github.com/CloseLoop/SalesPipe/internal/webhook"
)

// Server configuration constants.
const (
	// DefaultAddr is the listen address used when none is configured.
	DefaultAddr = ":8080"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr overrides the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// Server wires the HTTP surface to the dialogue, slot, and storage modules.
// The completion client, SMS service, and booking webhook are optional; the
// corresponding behavior degrades gracefully when they are nil.
type Server struct {
	addr        string
	sessions    *dialogue.Manager
	slotEngine  *slots.Engine
	st          store.Store
	gaClient    genai.ClientInterface
	smsService  messaging.Service
	bookingHook webhook.Sender
	sched       *scheduler.Scheduler

	httpServer *http.Server
}

// NewServer creates the API server. The session manager, slot engine, and
// store are required; pass nil for the optional collaborators to disable them.
func NewServer(sessions *dialogue.Manager, slotEngine *slots.Engine, st store.Store,
	gaClient genai.ClientInterface, smsService messaging.Service, bookingHook webhook.Sender,
	sched *scheduler.Scheduler, opts ...Option) (*Server, error) {

	if sessions == nil || slotEngine == nil || st == nil {
		return nil, fmt.Errorf("session manager, slot engine, and store are required")
	}

	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}

	// Catalog problems are configuration defects; refuse to start on them.
	if err := kb.ValidateCatalog(); err != nil {
		return nil, fmt.Errorf("knowledge base catalog validation failed: %w", err)
	}

	s := &Server{
		addr:        cfg.Addr,
		sessions:    sessions,
		slotEngine:  slotEngine,
		st:          st,
		gaClient:    gaClient,
		smsService:  smsService,
		bookingHook: bookingHook,
		sched:       sched,
	}

	if s.sched != nil {
		if err := s.sched.AddJob(slots.SweepCronExpr, func() {
			s.slotEngine.SweepExpired()
		}); err != nil {
			return nil, fmt.Errorf("failed to schedule slot sweep: %w", err)
		}
		slog.Debug("Server.NewServer: slot sweep scheduled", "cron", slots.SweepCronExpr)
	}

	slog.Info("Server.NewServer: API server configured", "addr", cfg.Addr,
		"hasGenAI", gaClient != nil, "hasSMS", smsService != nil, "hasWebhook", bookingHook != nil)
	return s, nil
}

// Handler returns the routed HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/slots", s.slotsHandler)
	mux.HandleFunc("/slots/lock", s.slotLockHandler)
	mux.HandleFunc("/slots/confirm", s.slotConfirmHandler)
	mux.HandleFunc("/slots/release", s.slotReleaseHandler)
	mux.HandleFunc("/sessions", s.sessionsHandler)
	mux.HandleFunc("/ws", s.wsHandler)
	mux.HandleFunc("/calls/events", s.callEventsHandler)
	mux.HandleFunc("/healthz", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	s.httpServer = &http.Server{Addr: s.addr, Handler: s.Handler()}
	slog.Info("Server.Run: SalesPipe API listening", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() error {
	if s.sched != nil {
		s.sched.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	slog.Info("Server.Stop: shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
