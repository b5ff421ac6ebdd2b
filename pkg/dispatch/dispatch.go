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

//go:generate mockgen -destination=mock_dispatch.go -package=dispatch github.com/carverauto/patronhandler/pkg/dispatch Publisher

// Package dispatch encodes commands for patron devices and publishes them with
// at-most-once delivery.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// ErrTransport wraps every publish failure.
var ErrTransport = errors.New("transport error")

// Publisher is the outbound half of the bus.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// SendHook observes every command after it was handed to the publisher. target is the
// client id, or empty for a broadcast.
type SendHook func(target string, cmd protocol.Command, err error)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSendHook installs a hook called after each send.
func WithSendHook(hook SendHook) Option {
	return func(d *Dispatcher) {
		d.hook = hook
	}
}

// Dispatcher sends commands to one device or to all. Failures are logged and returned
// but never retried here.
type Dispatcher struct {
	publisher Publisher
	subjects  protocol.Subjects
	timeout   time.Duration
	logger    logger.Logger
	hook      SendHook
}

// New returns a Dispatcher. A positive timeout bounds each publish.
func New(pub Publisher, subjects protocol.Subjects, timeout time.Duration, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		publisher: pub,
		subjects:  subjects,
		timeout:   timeout,
		logger:    log,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Send publishes cmd on the device's own subject.
func (d *Dispatcher) Send(ctx context.Context, clientID string, cmd protocol.Command) error {
	if err := d.subjects.ValidateClientID(clientID); err != nil {
		return err
	}

	return d.publish(ctx, clientID, d.subjects.Client(clientID), cmd)
}

// Broadcast publishes cmd on the subject every device listens to.
func (d *Dispatcher) Broadcast(ctx context.Context, cmd protocol.Command) error {
	return d.publish(ctx, "", d.subjects.Broadcast, cmd)
}

func (d *Dispatcher) publish(ctx context.Context, target, subject string, cmd protocol.Command) error {
	if !cmd.Valid() {
		return fmt.Errorf("%w: %s", protocol.ErrUnknownCommand, cmd)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := d.publisher.Publish(ctx, subject, cmd.Encode())
	if err != nil {
		err = fmt.Errorf("%w: publish %s to %s: %w", ErrTransport, cmd, subject, err)

		d.logger.Warn().
			Err(err).
			Str("subject", subject).
			Str("command", cmd.String()).
			Msg("Dropping command")
	} else {
		d.logger.Debug().
			Str("subject", subject).
			Str("command", cmd.String()).
			Msg("Command sent")
	}

	if d.hook != nil {
		d.hook(target, cmd, err)
	}

	return err
}
