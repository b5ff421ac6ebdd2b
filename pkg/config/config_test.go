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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
)

var errNoURL = errors.New("url required")

type testConfig struct {
	URL      string                 `json:"url"`
	Debug    bool                   `json:"debug"`
	Subjects []string               `json:"subjects"`
	Timing   models.Timing          `json:"timing"`
	Security *models.SecurityConfig `json:"security"`
}

func (c *testConfig) Validate() error {
	if c.URL == "" {
		return errNoURL
	}

	return nil
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadAndValidateFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeConfig(t, `{
		"url": "nats://localhost:4222",
		"timing": {"wait_time": "5s"},
		"security": {"mode": "mtls", "cert_dir": "/etc/certs", "tls": {"cert_file": "a.pem", "key_file": "/abs/k.pem", "ca_file": "ca.pem"}}
	}`)

	var cfg testConfig

	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, "nats://localhost:4222", cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.Timing.WaitTime.Std())
	assert.Equal(t, "/etc/certs/a.pem", cfg.Security.TLS.CertFile)
	assert.Equal(t, "/abs/k.pem", cfg.Security.TLS.KeyFile)
	assert.Equal(t, "/etc/certs/ca.pem", cfg.Security.TLS.CAFile)
}

func TestLoadAndValidateRunsValidate(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	var cfg testConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), writeConfig(t, `{"debug": true}`), &cfg)
	require.ErrorIs(t, err, errNoURL)
}

func TestFileLoaderRejectsUnknownKeys(t *testing.T) {
	var cfg testConfig

	err := (&FileConfigLoader{}).Load(context.Background(), writeConfig(t, `{"url": "x", "wait_tme": "1s"}`), &cfg)
	require.Error(t, err)
}

func TestInvalidConfigSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	var cfg testConfig

	err := NewConfig(nil).LoadAndValidate(context.Background(), "unused", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvLoader(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("PATRON_URL", "nats://broker:4222")
	t.Setenv("PATRON_DEBUG", "true")
	t.Setenv("PATRON_SUBJECTS", "a, b")
	t.Setenv("PATRON_TIMING_WAIT_TIME", "3s")

	var cfg testConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, "nats://broker:4222", cfg.URL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"a", "b"}, cfg.Subjects)
	assert.Equal(t, 3*time.Second, cfg.Timing.WaitTime.Std())
	assert.Nil(t, cfg.Security)
}

func TestEnvLoaderConfigJSON(t *testing.T) {
	t.Setenv("PATRON_CONFIG_JSON", `{"url": "nats://json:4222"}`)

	var cfg testConfig

	require.NoError(t, NewEnvConfigLoader(logger.NewTestLogger(), "PATRON_").Load(context.Background(), "", &cfg))
	assert.Equal(t, "nats://json:4222", cfg.URL)
}

func TestEnvLoaderBadValue(t *testing.T) {
	t.Setenv("PATRON_DEBUG", "maybe")

	var cfg testConfig

	err := NewEnvConfigLoader(logger.NewTestLogger(), "PATRON_").Load(context.Background(), "", &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PATRON_DEBUG")
}

func TestEnvLoaderRequiresPointer(t *testing.T) {
	err := NewEnvConfigLoader(logger.NewTestLogger(), "PATRON_").Load(context.Background(), "", testConfig{})
	require.ErrorIs(t, err, ErrDstMustBeNonNilPointer)
}
