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

package grpc

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"google.golang.org/grpc/credentials"

	"github.com/carverauto/patronhandler/pkg/config"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
)

var (
	errFailedToLoadServerCert     = errors.New("failed to load server certificate")
	errFailedToReadClientCACert   = errors.New("failed to read client CA certificate")
	errFailedToAppendClientCACert = errors.New("failed to append client CA certificate")
)

// loadServerCredentials builds mTLS server credentials requiring verified client certs.
func loadServerCredentials(sec *models.SecurityConfig, log logger.Logger) (credentials.TransportCredentials, error) {
	paths := sec.TLS
	config.NormalizeTLSPaths(&paths, sec.CertDir)

	log.Info().Str("certPath", paths.CertFile).Str("keyPath", paths.KeyFile).Msg("Loading server certificate")

	cert, err := tls.LoadX509KeyPair(paths.CertFile, paths.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToLoadServerCert, err)
	}

	caCert, err := os.ReadFile(paths.CAFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFailedToReadClientCACert, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("%w: %s", errFailedToAppendClientCACert, paths.CAFile)
	}

	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	}), nil
}
