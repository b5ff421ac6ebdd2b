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

// Package broker runs an in-process NATS server so a single box can host both the
// coordinator and the bus its devices talk to.
package broker

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/carverauto/patronhandler/pkg/logger"
)

var (
	ErrNotReady    = errors.New("embedded NATS server not ready for connections")
	errInvalidPort = errors.New("broker port out of range")
)

const (
	defaultHost         = "0.0.0.0"
	defaultPort         = 4222
	defaultReadyTimeout = 10 * time.Second
)

// Config configures the embedded broker.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	JetStream bool   `json:"jetstream"`
	StoreDir  string `json:"store_dir"`
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Port < -1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", errInvalidPort, c.Port)
	}

	return nil
}

// Options converts the config into nats-server options. Port 0 means the NATS
// default, -1 a random free port.
func (c *Config) Options() *server.Options {
	host := c.Host
	if host == "" {
		host = defaultHost
	}

	port := c.Port
	if port == 0 {
		port = defaultPort
	}

	return &server.Options{
		ServerName: "patron-handler",
		Host:       host,
		Port:       port,
		JetStream:  c.JetStream,
		StoreDir:   c.StoreDir,
		NoSigs:     true,
		NoLog:      true,
	}
}

// Broker is a running embedded server.
type Broker struct {
	srv    *server.Server
	logger logger.Logger
}

// Start launches the server and waits until it accepts clients.
func Start(cfg *Config, log logger.Logger) (*Broker, error) {
	srv, err := StartServer(cfg.Options(), defaultReadyTimeout)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("url", srv.ClientURL()).
		Bool("jetstream", cfg.JetStream).
		Msg("Embedded NATS broker started")

	return &Broker{srv: srv, logger: log}, nil
}

// StartServer creates, starts and waits for a nats-server.
func StartServer(opts *server.Options, ready time.Duration) (*server.Server, error) {
	srv, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}

	go srv.Start()

	if !srv.ReadyForConnections(ready) {
		srv.Shutdown()
		return nil, ErrNotReady
	}

	return srv, nil
}

// ClientURL is the URL clients should dial.
func (b *Broker) ClientURL() string {
	return b.srv.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (b *Broker) Shutdown() {
	b.srv.Shutdown()
	b.srv.WaitForShutdown()
	b.logger.Info().Msg("Embedded NATS broker stopped")
}
