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

// Package lifecycle runs a long-lived service until it fails or the process is
// signalled, with an optional gRPC health endpoint next to it.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/patronhandler/pkg/grpc"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	defaultHealthInterval  = 2 * time.Second
)

var errMissingService = errors.New("lifecycle: service is required")

// Service is anything with a start/stop lifecycle.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures RunServer.
type ServerOptions struct {
	ServiceName string
	Service     Service
	Logger      logger.Logger

	// HealthListenAddr enables the gRPC health server when set.
	HealthListenAddr string
	Security         *models.SecurityConfig
	// Healthy is polled every HealthInterval to set the serving status.
	Healthy        func() bool
	HealthInterval time.Duration

	ShutdownTimeout time.Duration
}

// RunServer starts opts.Service and blocks until ctx is done, SIGINT/SIGTERM arrives
// or the health server fails, then stops everything within ShutdownTimeout.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	if opts == nil || opts.Service == nil {
		return errMissingService
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := opts.Service.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s: %w", opts.ServiceName, err)
	}

	log.Info().Str("service", opts.ServiceName).Msg("Service started")

	errCh := make(chan error, 1)

	var health *grpc.Server

	if opts.HealthListenAddr != "" {
		var err error

		health, err = grpc.NewServer(opts.HealthListenAddr, opts.ServiceName, log, grpc.WithSecurity(opts.Security))
		if err != nil {
			stopService(opts, log)
			return err
		}

		go func() {
			if err := health.Start(); err != nil {
				errCh <- err
			}
		}()

		if opts.Healthy != nil {
			go pollHealth(ctx, health, opts)
		}
	}

	var runErr error

	select {
	case <-ctx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutdown requested")
	case runErr = <-errCh:
		log.Error().Err(runErr).Msg("Health server failed")
	}

	if health != nil {
		health.Stop(context.Background())
	}

	if err := stopService(opts, log); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

func stopService(opts *ServerOptions, log logger.Logger) error {
	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := opts.Service.Stop(ctx); err != nil {
		log.Error().Err(err).Str("service", opts.ServiceName).Msg("Service stop failed")
		return fmt.Errorf("failed to stop %s: %w", opts.ServiceName, err)
	}

	log.Info().Str("service", opts.ServiceName).Msg("Service stopped")

	return nil
}

func pollHealth(ctx context.Context, health *grpc.Server, opts *ServerOptions) {
	interval := opts.HealthInterval
	if interval <= 0 {
		interval = defaultHealthInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	health.SetServing(opts.Healthy())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health.SetServing(opts.Healthy())
		}
	}
}
