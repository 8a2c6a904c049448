// Package webservice provides the HTTP server answering version and compatibility queries
// over a loaded version document.
package webservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	metricserver "github.com/ubuntu/version-service/internal/metrics"
	"github.com/ubuntu/version-service/internal/registry"
	"github.com/ubuntu/version-service/internal/versiondata"
	"github.com/ubuntu/version-service/internal/webservice/handlers"
	"github.com/ubuntu/version-service/internal/webservice/metrics"
	"github.com/ubuntu/version-service/internal/webservice/middleware"
)

// Server is a struct that holds the HTTP servers and the watcher of the version document.
type Server struct {
	httpServer    *http.Server
	metricsServer *metricserver.Server

	watch     watchFunc
	watchPath string
	stale     prometheus.Gauge

	mu   sync.RWMutex
	addr net.Addr

	// This context is used to interrupt any action.
	// It must be the parent of gracefulCtx.
	ctx    context.Context
	cancel context.CancelFunc

	// This context waits for in-flight requests before interrupting.
	gracefulCtx    context.Context
	gracefulCancel context.CancelFunc
}

// StaticConfig holds the static configuration for the server.
type StaticConfig struct {
	VersionFile   string
	WatchDocument bool

	AllowedOrigins []string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxHeaderBytes int

	ListenHost string
	ListenPort int

	MetricsHost string
	MetricsPort int
}

type watchFunc func(ctx context.Context, path string) (<-chan struct{}, <-chan error, error)

type options struct {
	watch    watchFunc
	registry *prometheus.Registry
}

// Options represents an optional function to override Server default values.
type Options func(*options)

// New creates a Server answering from doc. doc may be nil, in which case every query depending on
// the document reports the data as unavailable.
func New(ctx context.Context, doc *versiondata.Document, sc StaticConfig, args ...Options) (*Server, error) {
	opts := options{
		watch:    versiondata.Watch,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range args {
		opt(&opts)
	}

	reg := opts.registry
	if err := registerRuntimeCollectors(reg); err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	gCtx, gCancel := context.WithCancel(ctx)

	s := Server{
		watch: opts.watch,
		stale: metrics.NewDocumentStaleGauge(reg),

		ctx:    ctx,
		cancel: cancel,

		gracefulCtx:    gCtx,
		gracefulCancel: gCancel,
	}
	// Nothing to compare the disk against when no document was loaded.
	if sc.WatchDocument && doc != nil {
		s.watchPath = sc.VersionFile
	}

	svc := handlers.NewService(registry.New(doc), metrics.NewValidationRecorder(reg))

	mw := metrics.New(reg)
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", mw.Endpoint("root", http.HandlerFunc(svc.Root)))
	mux.Handle("GET /health", mw.Endpoint("health", http.HandlerFunc(svc.Health)))
	mux.Handle("GET /app-version", mw.Endpoint("app-version", http.HandlerFunc(svc.AppVersion)))
	mux.Handle("GET /validate-versions", mw.Endpoint("validate-versions", http.HandlerFunc(svc.ValidateVersions)))
	mux.Handle("GET /version-info", mw.Endpoint("version-info", http.HandlerFunc(svc.VersionInfo)))
	mux.Handle("GET /version", mw.Endpoint("version", http.HandlerFunc(handlers.VersionHandler)))

	cors := middleware.NewCORS(middleware.CORSConfig{AllowedOrigins: sc.AllowedOrigins})
	var handler http.Handler = middleware.RequestLogger(cors.Handler(mw.Mux("api", mux)))
	if sc.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, sc.RequestTimeout, "")
	}

	s.httpServer = &http.Server{
		Addr:           net.JoinHostPort(sc.ListenHost, strconv.Itoa(sc.ListenPort)),
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		Handler:        handler,
		MaxHeaderBytes: sc.MaxHeaderBytes,
	}

	s.metricsServer = metricserver.New(metricserver.Config{
		Host:         sc.MetricsHost,
		Port:         sc.MetricsPort,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}, reg)

	return &s, nil
}

func registerRuntimeCollectors(reg prometheus.Registerer) error {
	return errors.Join(
		reg.Register(collectors.NewGoCollector()),
		reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})),
	)
}

// Run starts the HTTP servers and blocks until they stop.
func (s *Server) Run() error {
	// already asked to quit?
	select {
	case <-s.gracefulCtx.Done():
		return errors.New("server is already shutting down")
	default:
	}

	var changes <-chan struct{}
	var watchErr <-chan error
	if s.watchPath != "" {
		var err error
		changes, watchErr, err = s.watch(s.gracefulCtx, s.watchPath)
		if err != nil {
			s.cancel()
			return fmt.Errorf("failed to start watching version document: %v", err)
		}
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.cancel()
		return err
	}
	s.mu.Lock()
	s.addr = listener.Addr()
	s.mu.Unlock()
	slog.Info("Starting server", "addr", listener.Addr().String())

	serverErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	metricsErr := make(chan error, 1)
	go func() {
		if err := s.metricsServer.ListenAndServe(); err != nil {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	for {
		select {
		case _, ok := <-changes:
			if !ok {
				changes = nil
				continue
			}
			s.stale.Set(1)
			slog.Warn("Version document changed on disk, restart the service to serve it", "path", s.watchPath)

		case <-s.gracefulCtx.Done():
			if s.ctx.Err() != nil {
				// Forced quit or cancelled parent: nothing to wait for.
				if err := errors.Join(s.httpServer.Close(), s.metricsServer.Close()); err != nil {
					slog.Debug("Closing servers", "err", err)
				}
				slog.Info("Server stopped")
				return nil
			}
			slog.Info("Graceful shutdown initiated")
			// use parent ctx so if you call s.cancel() elsewhere it unblocks Shutdown immediately
			err := errors.Join(s.httpServer.Shutdown(s.ctx), s.metricsServer.Shutdown(s.ctx))
			// now kill everything else (watchers, handlers, etc.)
			s.cancel()
			if err != nil {
				slog.Error("Graceful shutdown failed", "err", err)
				return err
			}
			slog.Info("Server shut down gracefully")
			return nil

		case err := <-serverErr:
			errC := s.metricsServer.Close()
			s.cancel()
			if err != nil {
				slog.Error("Server encountered error", "err", err)
				return errors.Join(err, errC)
			}
			// Closed from Quit.
			return nil

		case err, ok := <-metricsErr:
			if !ok {
				metricsErr = nil
				continue
			}
			slog.Error("Metrics server encountered error", "err", err)
			errC := s.httpServer.Close()
			s.cancel()
			return errors.Join(err, errC)

		case err, ok := <-watchErr:
			if !ok {
				watchErr = nil
				continue
			}
			slog.Error("Version document watcher encountered unrecoverable error", "err", err)
			errC := errors.Join(s.httpServer.Close(), s.metricsServer.Close())
			s.cancel()
			return errors.Join(err, errC)
		}
	}
}

// Quit shuts down the HTTP servers. Unless force is set, in-flight requests are served first.
func (s *Server) Quit(force bool) {
	if !force {
		s.gracefulCancel()
		slog.Info("Server quit")
		return
	}

	if err := errors.Join(s.httpServer.Close(), s.metricsServer.Close()); err != nil {
		slog.Warn("Failed to close servers", "err", err)
	}
	s.cancel()
	slog.Info("Server quit")
}

// Addr returns the address the API listens on, or an empty string before Run.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr == nil {
		return ""
	}
	return s.addr.String()
}

// MetricsAddr returns the address of the metrics server, or an empty string before it listens.
func (s *Server) MetricsAddr() string {
	return s.metricsServer.Addr()
}
