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

// Package natsutil builds NATS connections with the security and reconnect behaviour
// shared by the coordinator and the device tools.
package natsutil

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
)

const (
	defaultReconnectWait = 2 * time.Second
	defaultDrainTimeout  = 5 * time.Second
)

// ConnectConfig describes how to reach the broker.
type ConnectConfig struct {
	URL       string
	Name      string
	CredsFile string
	Security  *models.SecurityConfig
	// ReconnectWait defaults to 2s. Reconnects are unlimited.
	ReconnectWait time.Duration
}

// Options returns the nats.Options for cfg with connection events logged through log.
func Options(cfg ConnectConfig, log logger.Logger) ([]nats.Option, error) {
	wait := cfg.ReconnectWait
	if wait <= 0 {
		wait = defaultReconnectWait
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(wait),
		nats.DrainTimeout(defaultDrainTimeout),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := log.Error().Err(err)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}

			ev.Msg("NATS error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Connected to NATS")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS connection closed")
		}),
	}

	if cfg.Security != nil && cfg.Security.Mode == models.SecurityModeMTLS {
		tlsConf, err := TLSConfig(cfg.Security)
		if err != nil {
			return nil, fmt.Errorf("failed to build NATS TLS config: %w", err)
		}

		opts = append(opts, nats.Secure(tlsConf))
	}

	if cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	}

	return opts, nil
}

// ConnectWithSecurity dials the broker described by cfg. The initial connection must
// succeed; later outages are retried transparently by the client.
func ConnectWithSecurity(ctx context.Context, cfg ConnectConfig, log logger.Logger, extraOpts ...nats.Option) (*nats.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts, err := Options(cfg, log)
	if err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.URL, append(opts, extraOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.URL, err)
	}

	return nc, nil
}
