// Package server wires the notes HTTP runtime and storage lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"

	"github.com/louisbranch/notepad/internal/platform/storage/dburl"
	"github.com/louisbranch/notepad/internal/platform/timeouts"
	"github.com/louisbranch/notepad/internal/services/notes/storage/sqlstore"
	"github.com/louisbranch/notepad/internal/services/notes/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// BindHost is the interface the HTTP listener binds to.
const BindHost = "0.0.0.0"

const operationName = "notepad.http"

// Config defines the inputs for the notes server.
type Config struct {
	DatabaseURL string
	Port        int
	Debug       bool
	// Logger receives access and error logs. Defaults to log.Default().
	Logger *log.Logger
}

// Server hosts the notes HTTP server.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlstore.Store
	logger     *log.Logger
}

// New creates a server bound to BindHost on cfg.Port.
func New(ctx context.Context, cfg Config) (*Server, error) {
	return NewWithAddr(ctx, net.JoinHostPort(BindHost, strconv.Itoa(cfg.Port)), cfg)
}

// NewWithAddr opens storage, applies migrations, and listens on addr.
func NewWithAddr(ctx context.Context, addr string, cfg Config) (*Server, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	target, err := dburl.Parse(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	logger.Printf("opening notes storage target=%q", target.String())
	store, err := sqlstore.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open notes store: %w", err)
	}

	handler, err := web.NewHandler(web.Config{
		Store:  store,
		Debug:  cfg.Debug,
		Logger: logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("build notes handler: %w", err)
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           otelhttp.NewHandler(handler, operationName),
			ReadHeaderTimeout: timeouts.ReadHeader,
			ReadTimeout:       timeouts.Read,
			WriteTimeout:      timeouts.Write,
			IdleTimeout:       timeouts.Idle,
			ErrorLog:          logger,
		},
		store:  store,
		logger: logger,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a notes server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve handles HTTP requests until ctx is canceled, then drains in-flight
// requests within timeouts.Shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	defer s.Close()

	s.logger.Printf("notes server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources. It is safe to call more than once.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Printf("close notes store: %v", err)
		}
	}
}
