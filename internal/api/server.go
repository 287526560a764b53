// Package api serves the shared-log HTTP API and the read-only log page.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bimmerbailey/logshare/internal/highlight"
	"github.com/bimmerbailey/logshare/internal/logs"
	"github.com/bimmerbailey/logshare/internal/metrics"
)

// DefaultMaxContentBytes bounds request bodies when Options leaves it unset.
const DefaultMaxContentBytes = 1 << 20

// Options configures a Server.
type Options struct {
	// BaseURL prefixes share URLs. When empty the request's Origin header or
	// Host is used.
	BaseURL         string
	MaxContentBytes int64
	// SweepInterval is how often Run deletes expired logs. Zero disables the
	// sweeper.
	SweepInterval time.Duration
	Metrics       *metrics.Metrics
	Highlighter   *highlight.Highlighter
}

// Server implements the HTTP endpoints over a logs.Service.
type Server struct {
	svc         *logs.Service
	logger      *slog.Logger
	metrics     *metrics.Metrics
	highlighter *highlight.Highlighter
	opts        Options

	// background tracks fire-and-forget work started by handlers.
	background sync.WaitGroup
}

// New creates a Server. The logger is required.
func New(svc *logs.Service, logger *slog.Logger, opts Options) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("api: service is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("api: logger is required")
	}
	if opts.MaxContentBytes <= 0 {
		opts.MaxContentBytes = DefaultMaxContentBytes
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Highlighter == nil {
		opts.Highlighter = highlight.New(highlight.DefaultStyle)
	}

	return &Server{
		svc:         svc,
		logger:      logger,
		metrics:     opts.Metrics,
		highlighter: opts.Highlighter,
		opts:        opts,
	}, nil
}

// Register mounts routes on the given mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/logs/create", s.createLog)
	mux.HandleFunc("GET /api/logs/list", s.listLogs)
	mux.HandleFunc("GET /api/logs/{id}", s.getLog)
	mux.HandleFunc("DELETE /api/logs/{id}", s.deleteLog)
	mux.HandleFunc("GET /api/logs/{id}/lines", s.logLines)

	mux.HandleFunc("POST /api/comments", s.createComment)
	mux.HandleFunc("GET /api/comments", s.listComments)
	mux.HandleFunc("DELETE /api/comments/{id}", s.deleteComment)

	mux.HandleFunc("GET /api/stats/contexts", s.contextStats)
	mux.HandleFunc("POST /api/scan", s.scan)

	mux.HandleFunc("GET /log/{id}", s.logPage)
	mux.HandleFunc("GET /static/highlight.css", s.highlightCSS)
	mux.HandleFunc("GET /healthz", s.health)
	mux.Handle("GET /metrics", s.metrics.Handler())
}

// Handler returns the full route table wrapped in request logging and
// metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return s.instrument(mux)
}

// Run serves on addr until ctx is cancelled, sweeping expired logs every
// SweepInterval, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if s.opts.SweepInterval > 0 {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			s.sweepLoop(sweepCtx, s.opts.SweepInterval)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr, "sweep_interval", s.opts.SweepInterval)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutCtx)
	stopSweep()
	s.background.Wait()
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

func (s *Server) sweepLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.svc.Sweep(ctx); err != nil {
				s.logger.Error("sweeping expired logs", "error", err)
			}
		}
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// instrument logs and measures every request. Routes are labelled by the
// matched mux pattern so metric cardinality stays bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		s.metrics.RecordHTTPRequest(r.Method, route, rec.status, elapsed)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
