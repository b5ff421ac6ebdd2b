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

package coordinator

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/patronhandler/pkg/paging"
	"github.com/carverauto/patronhandler/pkg/protocol"
	"github.com/carverauto/patronhandler/pkg/transport"
)

const (
	meterName = "github.com/carverauto/patronhandler/pkg/coordinator"

	metricCommandsSent    = "patron_commands_sent_total"
	metricInboundMessages = "patron_inbound_messages_total"
	metricSessions        = "patron_paging_sessions_total"
	metricTickPanics      = "patron_tick_panics_total"
)

var (
	// instrumentation handles are cached globally to avoid re-registering OTEL instruments on every call.
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	meterOnce sync.Once
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	commandsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	inboundCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	sessionsCounter metric.Int64Counter
	//nolint:gochecknoglobals // metrics instruments are shared across the process intentionally
	panicsCounter metric.Int64Counter
)

func initMeter() {
	meter := otel.Meter(meterName)

	var err error

	commandsCounter, err = meter.Int64Counter(
		metricCommandsSent,
		metric.WithDescription("Commands published to patron devices"),
	)
	if err != nil {
		otel.Handle(err)
	}

	inboundCounter, err = meter.Int64Counter(
		metricInboundMessages,
		metric.WithDescription("Messages received from patron devices and front ends"),
	)
	if err != nil {
		otel.Handle(err)
	}

	sessionsCounter, err = meter.Int64Counter(
		metricSessions,
		metric.WithDescription("Finished paging sessions by outcome"),
	)
	if err != nil {
		otel.Handle(err)
	}

	panicsCounter, err = meter.Int64Counter(
		metricTickPanics,
		metric.WithDescription("Control loop ticks that panicked"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

func outcomeOf(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

// recordCommand is installed as the dispatcher send hook.
func recordCommand(_ string, cmd protocol.Command, err error) {
	meterOnce.Do(initMeter)
	if commandsCounter == nil {
		return
	}

	commandsCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("command", cmd.String()),
		attribute.String("outcome", outcomeOf(err)),
	))
}

// recordInbound is installed as the transport inbound hook.
func recordInbound(kind transport.Kind, err error) {
	meterOnce.Do(initMeter)
	if inboundCounter == nil {
		return
	}

	inboundCounter.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("outcome", outcomeOf(err)),
	))
}

func recordSession(ctx context.Context, outcome paging.Outcome) {
	meterOnce.Do(initMeter)
	if sessionsCounter == nil {
		return
	}

	sessionsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
}

func recordPanic(ctx context.Context) {
	meterOnce.Do(initMeter)
	if panicsCounter == nil {
		return
	}

	panicsCounter.Add(ctx, 1)
}

// InboundHook returns the transport hook that counts inbound messages.
func InboundHook() transport.InboundHook {
	return recordInbound
}
