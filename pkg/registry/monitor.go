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

package registry

import (
	"context"
	"time"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// Prober sends a command to one device.
type Prober interface {
	Send(ctx context.Context, clientID string, cmd protocol.Command) error
}

// Monitor runs the liveness sweep and sends the resulting health probes.
type Monitor struct {
	registry   *Registry
	thresholds Thresholds
	prober     Prober
	logger     logger.Logger
}

func NewMonitor(reg *Registry, th Thresholds, prober Prober, log logger.Logger) *Monitor {
	return &Monitor{
		registry:   reg,
		thresholds: th,
		prober:     prober,
		logger:     log,
	}
}

// Sweep runs one sweep at now. Probe failures are left to the prober to report; the
// next interval probes again.
func (m *Monitor) Sweep(ctx context.Context, now time.Time) SweepResult {
	res := m.registry.Sweep(now, m.thresholds)

	if res.Err != nil {
		m.logger.Error().Err(res.Err).Msg("Registry invariant violated during sweep")
	}

	for _, id := range res.Removed {
		m.logger.Info().Str("client_id", id).Msg("Client offline, removed")
	}

	for _, id := range res.Demoted {
		m.logger.Info().Str("client_id", id).Msg("Client inactive")
	}

	for _, id := range res.Probes {
		_ = m.prober.Send(ctx, id, protocol.CommandHealth)
	}

	return res
}
