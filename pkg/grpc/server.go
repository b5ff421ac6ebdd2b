/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package grpc serves the standard gRPC health service for the coordinator.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
)

// ServerOption is a function type that modifies Server configuration.
type ServerOption func(*Server)

var errInternalError = errors.New("internal error")

const (
	shutdownTimer = 5 * time.Second
)

// Server wraps a gRPC server exposing grpc.health.v1 for one named service. The
// overall ("") status mirrors the named one.
type Server struct {
	srv               *grpc.Server
	healthCheck       *health.Server
	addr              string
	serviceName       string
	logger            logger.Logger
	mu                sync.Mutex
	serverOpts        []grpc.ServerOption
	security          *models.SecurityConfig
	telemetryDisabled bool
}

// NewServer creates the health server. Status starts as NOT_SERVING until SetServing.
func NewServer(addr, serviceName string, log logger.Logger, opts ...ServerOption) (*Server, error) {
	s := &Server{
		addr:        addr,
		serviceName: serviceName,
		logger:      log,
	}

	for _, opt := range opts {
		opt(s)
	}

	defaultOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(RecoveryInterceptor(log)),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             30 * time.Second,
			PermitWithoutStream: true,
		}),
	}

	if !s.telemetryDisabled {
		defaultOpts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, defaultOpts...)
	}

	if s.security != nil && s.security.Mode == models.SecurityModeMTLS {
		creds, err := loadServerCredentials(s.security, log)
		if err != nil {
			return nil, err
		}

		defaultOpts = append(defaultOpts, grpc.Creds(creds))
	}

	s.srv = grpc.NewServer(append(defaultOpts, s.serverOpts...)...)
	s.healthCheck = health.NewServer()

	healthpb.RegisterHealthServer(s.srv, s.healthCheck)
	s.SetServing(false)

	return s, nil
}

// WithServerOptions adds gRPC server options.
func WithServerOptions(opt ...grpc.ServerOption) ServerOption {
	return func(s *Server) {
		s.serverOpts = append(s.serverOpts, opt...)
	}
}

// WithSecurity enables mTLS when sec.Mode is mtls. A nil config is ignored.
func WithSecurity(sec *models.SecurityConfig) ServerOption {
	return func(s *Server) {
		s.security = sec
	}
}

// WithTelemetryDisabled disables OpenTelemetry stats handling for the server.
func WithTelemetryDisabled() ServerOption {
	return func(s *Server) {
		s.telemetryDisabled = true
	}
}

// SetServing flips the reported status of the service and of the server as a whole.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}

	s.healthCheck.SetServingStatus(s.serviceName, status)
	s.healthCheck.SetServingStatus("", status)
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	lc := &net.ListenConfig{}

	lis, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}

// Serve serves on an existing listener.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server listening")

	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// Stop marks the service NOT_SERVING and stops gracefully, forcing after a timeout.
func (s *Server) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.healthCheck.Shutdown()

	stopped := make(chan struct{})

	go func() {
		s.srv.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(shutdownTimer)
	defer timer.Stop()

	select {
	case <-stopped:
		s.logger.Info().Msg("gRPC server stopped gracefully")
	case <-ctx.Done():
		s.logger.Warn().Msg("gRPC server shutdown cancelled, forcing stop")
		s.srv.Stop()
	case <-timer.C:
		s.logger.Warn().Msg("gRPC server shutdown timed out, forcing stop")
		s.srv.Stop()
	}
}

// RecoveryInterceptor handles panics in RPC handlers.
func RecoveryInterceptor(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Str("method", info.FullMethod).Interface("panic", r).Msg("Recovered from panic")

				err = errInternalError
			}
		}()

		return handler(ctx, req)
	}
}
