// ABOUTME: Server orchestrator that wires services into one HTTP handler
// ABOUTME: Manages store, listeners, health endpoints and shutdown lifecycle

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tailscale.com/tsnet"

	"github.com/2389/todoism/internal/account"
	"github.com/2389/todoism/internal/api"
	"github.com/2389/todoism/internal/assets"
	"github.com/2389/todoism/internal/auth"
	"github.com/2389/todoism/internal/config"
	"github.com/2389/todoism/internal/i18n"
	"github.com/2389/todoism/internal/metrics"
	"github.com/2389/todoism/internal/store"
	"github.com/2389/todoism/internal/todo"
	"github.com/2389/todoism/internal/webui"
)

// ShutdownTimeout bounds graceful shutdown once Run's context is canceled.
const ShutdownTimeout = 5 * time.Second

// Server orchestrates the todoism HTTP surfaces.
type Server struct {
	config      *config.Config
	store       *store.SQLiteStore
	handler     http.Handler
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger
}

// initStore opens the SQLite database named in cfg, creating its directory.
func initStore(cfg *config.Config) (*store.SQLiteStore, error) {
	dbPath := cfg.Database.Path
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return s, nil
}

// New opens the configured store and creates a Server around it.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s, err := initStore(cfg)
	if err != nil {
		return nil, err
	}
	srv, err := NewWithStore(cfg, s, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return srv, nil
}

// NewWithStore creates a Server over an already opened store.
// The server takes ownership of s and closes it on Shutdown.
func NewWithStore(cfg *config.Config, s *store.SQLiteStore, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tr, err := i18n.New(cfg.App.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("loading translations: %w", err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("creating JWT verifier: %w", err)
	}

	items := todo.New(s, logger)
	accounts := account.New(s, tr, logger)

	ui, err := webui.New(s, items, accounts, tr, webui.Config{
		SessionDuration: cfg.Auth.SessionDuration,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating web UI: %w", err)
	}

	apiHandler := api.New(s, items, accounts, verifier, api.Config{
		BaseURL:     cfg.App.BaseURL,
		PerPage:     cfg.App.ItemsPerPage,
		TokenTTL:    cfg.Auth.TokenTTL,
		CORSOrigins: cfg.API.CORSOrigins,
	}, logger)

	srv := &Server{
		config: cfg,
		store:  s,
		logger: logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/health/ready", srv.handleReady)
	mux.Handle("/static/", assets.Handler())
	mux.Handle("/api/", apiHandler)
	mux.Handle("/", ui)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
		mux.Handle(metricsPath, metrics.Handler())
		srv.logger.Info("metrics endpoint enabled", "path", metricsPath)
	}

	onPanic := func(w http.ResponseWriter, r *http.Request) {
		if isAPIPath(r.URL.Path) {
			api.WriteError(w, http.StatusInternalServerError, "")
			return
		}
		ui.RenderError(w, r, http.StatusInternalServerError)
	}

	var h http.Handler = metrics.InstrumentHandler(metricsPath, mux)
	h = recoverMiddleware(h, srv.logger, onPanic)
	h = loggingMiddleware(h, logger.With("component", "http"))
	h = requestIDMiddleware(h)
	srv.handler = h

	srv.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return srv, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}

// setupTCPListener creates the standard TCP listener.
func (s *Server) setupTCPListener() (net.Listener, error) {
	s.logger.Info("starting todoism", "http_addr", s.config.Server.HTTPAddr)

	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}
	return ln, nil
}

// setupListener creates the listener based on configuration (Tailscale or TCP).
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" && s.config.Server.HTTPAddr != config.DefaultHTTPAddr {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled",
				"http_addr", s.config.Server.HTTPAddr,
			)
		}
		return s.setupTailscaleListener(ctx)
	}
	return s.setupTCPListener()
}

// startServer serves HTTP in a goroutine, returning its error channel.
func (s *Server) startServer(ln net.Listener) chan error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	return errCh
}

// waitForShutdownSignal waits for context cancellation or server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := s.startServer(ln)
	serverErr := s.waitForShutdownSignal(ctx, errCh)

	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context, since Run's is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// appendCloseError appends an error with label if err is non-nil.
func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// Shutdown stops the HTTP server and releases the tailnet node and store.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down todoism")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))

	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", s.store.Close())

	return errors.Join(errs...)
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
