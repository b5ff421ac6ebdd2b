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

package natsutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/patronhandler/pkg/broker/brokertest"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
)

func TestConnectWithSecurity(t *testing.T) {
	srv := brokertest.Run(t, false)

	nc, err := ConnectWithSecurity(context.Background(), ConnectConfig{URL: srv.ClientURL(), Name: "test"}, logger.NewTestLogger())
	require.NoError(t, err)

	defer nc.Close()

	assert.True(t, nc.IsConnected())
	assert.Equal(t, "test", nc.Opts.Name)
}

func TestConnectUnreachable(t *testing.T) {
	_, err := ConnectWithSecurity(context.Background(), ConnectConfig{URL: "nats://127.0.0.1:1"}, logger.NewTestLogger())
	require.Error(t, err)
}

func TestTLSConfigRequiresMTLS(t *testing.T) {
	_, err := TLSConfig(nil)
	require.ErrorIs(t, err, ErrMTLSRequired)

	_, err = TLSConfig(&models.SecurityConfig{Mode: models.SecurityModeNone})
	require.ErrorIs(t, err, ErrMTLSRequired)

	_, err = Options(ConnectConfig{Security: &models.SecurityConfig{Mode: models.SecurityModeMTLS, CertDir: t.TempDir()}}, logger.NewTestLogger())
	require.Error(t, err)
}
