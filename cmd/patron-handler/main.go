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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/carverauto/patronhandler/pkg/broker"
	"github.com/carverauto/patronhandler/pkg/config"
	"github.com/carverauto/patronhandler/pkg/coordinator"
	"github.com/carverauto/patronhandler/pkg/counter"
	"github.com/carverauto/patronhandler/pkg/lifecycle"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/transport"
	"github.com/carverauto/patronhandler/pkg/version"
)

var errFailedToLoadConfig = errors.New("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/patron-handler/patron-handler.json", "Path to patron-handler config file")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return nil
	}

	ctx := context.Background()

	var cfg coordinator.Config

	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	mainLogger, shutdownLogs, err := lifecycle.CreateComponentLogger(ctx, "patron-handler", logConfig)
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdownLogs(context.Background()); err != nil {
			log.Printf("Failed to flush logs: %v", err)
		}
	}()

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version.GetVersion(),
		OTel:           cfg.Tracing,
	})
	if err != nil {
		return err
	}

	defer func() { _ = tp.Shutdown(context.Background()) }()

	if cfg.Metrics != nil {
		provider, err := logger.InitializeMetrics(ctx, logger.MetricsConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: version.GetVersion(),
			OTel:           cfg.Metrics,
		})

		switch {
		case errors.Is(err, logger.ErrOTelMetricsDisabled):
		case err != nil:
			mainLogger.Warn().Err(err).Msg("Metrics export unavailable")
		default:
			defer func() {
				if err := provider.Shutdown(context.Background()); err != nil {
					mainLogger.Warn().Err(err).Msg("Failed to flush metrics")
				}
			}()
		}
	}

	var natsURL string

	if cfg.Broker != nil && cfg.Broker.Enabled {
		b, err := broker.Start(cfg.Broker, mainLogger)
		if err != nil {
			return err
		}

		defer b.Shutdown()

		if cfg.NATSURL == "" {
			natsURL = b.ClientURL()
		}
	}

	tr, err := transport.Connect(ctx, cfg.Transport(natsURL), mainLogger, transport.WithInboundHook(coordinator.InboundHook()))
	if err != nil {
		return err
	}

	store, err := counter.Open(ctx, cfg.Counter, tr.Conn())
	if err != nil {
		tr.Close()
		return fmt.Errorf("failed to open counter: %w", err)
	}

	svc, err := coordinator.New(&cfg, tr, store, nil, mainLogger)
	if err != nil {
		tr.Close()
		return err
	}

	mainLogger.Info().
		Str("version", version.GetFullVersion()).
		Int("pid", os.Getpid()).
		Str("counter_backend", cfg.Counter.Backend).
		Msg("Starting patron-handler")

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName:      cfg.ServiceName,
		Service:          svc,
		Logger:           mainLogger,
		HealthListenAddr: cfg.HealthListenAddr,
		Security:         cfg.Security,
		Healthy:          svc.Connected,
	})
}
