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

// Package brokertest starts throwaway NATS servers for tests.
package brokertest

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/patronhandler/pkg/broker"
)

// Run starts a NATS server on a random loopback port and shuts it down with the test.
func Run(t testing.TB, jetStream bool) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: jetStream,
		NoSigs:    true,
		NoLog:     true,
	}

	if jetStream {
		opts.StoreDir = t.TempDir()
	}

	srv, err := broker.StartServer(opts, 10*time.Second)
	require.NoError(t, err)

	t.Cleanup(srv.Shutdown)

	return srv
}
