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

package lifecycle

import (
	"context"
	"fmt"

	"github.com/carverauto/patronhandler/pkg/logger"
)

// ShutdownFunc flushes whatever a logger exports.
type ShutdownFunc func(context.Context) error

// CreateLogger creates a new logger instance with the provided configuration.
// This returns a logger that can be injected into services.
func CreateLogger(ctx context.Context, config *logger.Config) (logger.Logger, ShutdownFunc, error) {
	log, shutdown, err := logger.Setup(ctx, config)
	if err != nil {
		return nil, shutdown, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return log, shutdown, nil
}

// CreateComponentLogger creates a logger for a specific component.
func CreateComponentLogger(ctx context.Context, component string, config *logger.Config) (logger.Logger, ShutdownFunc, error) {
	log, shutdown, err := CreateLogger(ctx, config)
	if err != nil {
		return nil, shutdown, err
	}

	return logger.Wrap(log.WithComponent(component)), shutdown, nil
}
