package api

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"
	"time"

	"customerbooking/internal/config"
	"customerbooking/internal/domain"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer exposes grpc.health.v1.Health backed by a store ping.
type GRPCServer struct {
	cfg    config.APIConfig
	store  domain.Pinger
	server *grpc.Server
	health *health.Server
	log    zerolog.Logger
}

func NewGRPCServer(cfg config.APIConfig, store domain.Pinger, logger *zerolog.Logger) (*GRPCServer, error) {
	var serverLogger zerolog.Logger
	if logger != nil {
		serverLogger = logger.With().Str("component", "grpc").Logger()
	} else {
		serverLogger = zerolog.Nop()
	}

	unary := ChainUnaryInterceptors(
		LoggingUnaryInterceptor(&serverLogger),
		RateLimitUnaryInterceptor(newRateLimiter(cfg.RateLimit)),
	)

	serverOpts := []grpc.ServerOption{grpc.UnaryInterceptor(unary)}
	if cfg.GRPC.TLS.Enabled {
		tlsCfg, err := buildTLSConfig(cfg.GRPC.TLS)
		if err != nil {
			return nil, err
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if cfg.GRPC.Reflection {
		reflection.Register(grpcServer)
	}

	s := &GRPCServer{
		cfg:    cfg,
		store:  store,
		server: grpcServer,
		health: healthServer,
		log:    serverLogger,
	}
	s.checkHealth(context.Background())
	return s, nil
}

func buildTLSConfig(cfg config.APITLSConfig) (*tls.Config, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, fmt.Errorf("grpc tls enabled but cert_file/key_file not set")
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load grpc tls keypair: %w", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if cfg.RequireClientCert {
		if cfg.ClientCAFile == "" {
			return nil, fmt.Errorf("grpc tls require_client_cert=true but client_ca_file not set")
		}
		caPEM, err := os.ReadFile(cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("read client_ca_file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("failed to parse client_ca_file PEM")
		}
		tlsCfg.ClientAuth = tls.RequireAndVerifyClientCert
		tlsCfg.ClientCAs = pool
	}

	return tlsCfg, nil
}

// checkHealth sets the overall serving status from a store ping.
func (s *GRPCServer) checkHealth(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if s.store != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.store.PingContext(pingCtx); err != nil {
			s.log.Warn().Err(err).Msg("store ping failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus("", status)
}

// WatchHealth re-checks the store every HealthCheckInterval until ctx is done.
func (s *GRPCServer) WatchHealth(ctx context.Context) {
	interval := s.cfg.GRPC.HealthCheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkHealth(ctx)
		}
	}
}

// Serve blocks serving on lis until Shutdown.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("gRPC API listening")
	return s.server.Serve(lis)
}

func (s *GRPCServer) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", addr, err)
	}
	return s.Serve(lis)
}

func (s *GRPCServer) Shutdown(ctx context.Context) {
	if s.server == nil {
		return
	}
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-ctx.Done():
		s.log.Warn().Msg("gRPC graceful shutdown timed out; forcing stop")
		s.server.Stop()
		return
	}
}
