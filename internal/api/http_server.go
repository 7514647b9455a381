package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"customerbooking/internal/config"
	"customerbooking/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// HTTPServer serves the JSON API for customers, brands and bookings.
type HTTPServer struct {
	cfg    config.APIConfig
	server *http.Server
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	httpLogger := logger.With().Str("component", "http").Logger()

	handler := NewHandler(svc, cfg.Pagination, &httpLogger)
	router := NewRouter(handler, newRateLimiter(cfg.RateLimit), &httpLogger)

	return &HTTPServer{
		cfg:    cfg,
		logger: &httpLogger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
		},
	}
}

// NewRouter wires every route under /api plus the probes.
func NewRouter(h *Handler, limiter *rateLimiter, logger *zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(logger))

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)

	r.Route("/api", func(r chi.Router) {
		r.Use(rateLimitMiddleware(limiter))

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
			r.Get("/{id}/bookings", h.ListCustomerBookings)
		})

		r.Route("/brands", func(r chi.Router) {
			r.Get("/", h.ListBrands)
			r.Post("/", h.CreateBrand)
			r.Get("/{id}", h.GetBrand)
			r.Put("/{id}", h.UpdateBrand)
			r.Delete("/{id}", h.DeleteBrand)
			r.Get("/{id}/bookings", h.ListBrandBookings)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", h.CreateBooking)
			r.Get("/export", h.ExportBookings)
			r.Get("/{id}", h.GetBooking)
			r.Delete("/{id}", h.DeleteBooking)
			r.Patch("/{id}/brands/{brandId}", h.AttachBrand)
		})
	})

	return r
}

func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func rateLimitMiddleware(limiter *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				respondError(w, r, http.StatusTooManyRequests, "rate limit exceeded", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func loggingMiddleware(logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			dur := time.Since(start)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			metrics.ObserveHTTP(route, r.Method, recorder.status, dur)

			logger.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.status).
				Dur("duration", dur).
				Msg("http request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
