package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"backoffice/internal/discovery"
	"backoffice/internal/logging"
)

// DefaultAPIPath is the path prefix the customer API is mounted under.
const DefaultAPIPath = "/api"

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	APIPath  string // Mount prefix for the API (default "/api")
	SeedPath string // YAML fixture to load at startup (empty = start empty)
	Announce bool   // If true, advertise the API over mDNS
	LogLevel string
	PageSize int // Customers per list page (0 = default)
}

// Server is the development customer API server: the REST endpoints, the
// websocket change feed, and optional mDNS announcement.
type Server struct {
	config   *Config
	store    *Store
	hub      *Hub
	httpSrv  *http.Server
	listener net.Listener
	mdns     *zeroconf.Server
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	if config.APIPath == "" {
		config.APIPath = DefaultAPIPath
	}

	store := NewStore()
	if config.PageSize > 0 {
		store.SetPageSize(config.PageSize)
	}

	if config.SeedPath != "" {
		n, err := store.LoadSeed(config.SeedPath)
		if err != nil {
			return nil, err
		}
		logging.Info("Seed data loaded",
			zap.String("path", config.SeedPath),
			zap.Int("customers", n),
		)
	}

	return &Server{
		config: config,
		store:  store,
		hub:    NewHub(),
	}, nil
}

// Store exposes the underlying customer store.
func (s *Server) Store() *Store {
	return s.store
}

// Start starts the server and blocks until shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	root := chi.NewRouter()
	root.Mount(s.config.APIPath, NewHandler(s.store, s.hub, s.config.APIPath).Routes())

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	s.httpSrv = &http.Server{Handler: root}

	logging.Info("Starting customer API server",
		zap.String("addr", addr),
		zap.String("api_path", s.config.APIPath),
		zap.Int("customers", s.store.Count()),
		zap.String("log_level", s.config.LogLevel),
	)

	if s.config.Announce {
		mdns, err := discovery.Advertise("backoffice-dev", s.config.Port, s.config.APIPath)
		if err != nil {
			// Announcement is a convenience; the server still works when
			// the network disallows multicast.
			logging.Warn("mDNS announcement failed", zap.Error(err))
		} else {
			s.mdns = mdns
			logging.Info("Advertising API over mDNS",
				zap.String("service", discovery.ServiceType),
				zap.Int("port", s.config.Port),
			)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(ctx)
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if s.mdns != nil {
		s.mdns.Shutdown()
		s.mdns = nil
	}

	s.hub.Close()

	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
		if err != nil {
			logging.Error("Error during HTTP shutdown", zap.Error(err))
		}
	}

	logging.Sync()
	return err
}

// Addr returns the bound listen address, valid once Start has been called.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
