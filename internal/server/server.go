// Package server exposes the question answering service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/elsayed85/quick-rag/internal/metrics"
	"github.com/elsayed85/quick-rag/internal/service"
)

// Asker is the service surface the HTTP API needs.
type Asker interface {
	Ask(ctx context.Context, req service.AskRequest) (*service.AskResponse, error)
	Health(ctx context.Context) service.HealthReport
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	Logger         *zap.Logger
	Metrics        *metrics.Recorder
}

type Server struct {
	http *http.Server
	log  *zap.Logger
}

func New(svc Asker, optFns ...func(o *Options)) *Server {
	opts := Options{Addr: ":8000", AllowedOrigins: []string{"*"}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	log := opts.Logger.Named("http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(observe(log, opts.Metrics))

	NewHandler(svc, log).Attach(r)
	r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())

	return &Server{
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	return s.http.Shutdown(shutdownCtx)
}

func observe(log *zap.Logger, rec *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(started)
			rec.ObserveRequest(route, ww.Status(), elapsed)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
