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

// Package transport adapts a NATS connection to the patron device protocol: it decodes
// inbound device messages for a Handler and publishes raw command payloads.
package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/natsutil"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

const defaultFlushTimeout = 2 * time.Second

var (
	// ErrConnect is returned when the broker cannot be reached at startup.
	ErrConnect           = errors.New("transport connect failed")
	ErrNotConnected      = errors.New("transport is not connected")
	ErrAlreadySubscribed = errors.New("transport already subscribed")
)

// Kind names an inbound subject.
type Kind string

const (
	KindRegister Kind = "register"
	KindHealth   Kind = "health"
	KindPager    Kind = "pager"
	KindRequest  Kind = "request"
)

// Handler receives decoded inbound traffic. Methods are called on the NATS delivery
// goroutine and must not block.
type Handler interface {
	HandleRegister(msg protocol.ClientMessage)
	HandleHealth(msg protocol.ClientMessage)
	HandlePager(msg protocol.ClientMessage)
	HandlePageRequest(payload []byte)
}

// InboundHook observes every inbound message after decoding. err is non-nil when the
// message was discarded.
type InboundHook func(kind Kind, err error)

type Option func(*Adapter)

func WithInboundHook(hook InboundHook) Option {
	return func(a *Adapter) {
		a.hook = hook
	}
}

// Config is the broker connection plus the subject layout.
type Config struct {
	natsutil.ConnectConfig
	Subjects protocol.Subjects
}

// Adapter owns a NATS connection and its subscriptions.
type Adapter struct {
	nc       *nats.Conn
	subjects protocol.Subjects
	log      logger.Logger
	hook     InboundHook

	mu   sync.Mutex
	subs []*nats.Subscription
}

// Connect dials the broker. A connection name is generated when cfg.Name is empty.
func Connect(ctx context.Context, cfg Config, log logger.Logger, opts ...Option) (*Adapter, error) {
	if cfg.Name == "" {
		cfg.Name = "patron-handler-" + uuid.NewString()
	}

	nc, err := natsutil.ConnectWithSecurity(ctx, cfg.ConnectConfig, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}

	return New(nc, cfg.Subjects, log, opts...), nil
}

// New wraps an existing connection. The adapter takes ownership of nc.
func New(nc *nats.Conn, subjects protocol.Subjects, log logger.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		nc:       nc,
		subjects: subjects,
		log:      log,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Conn exposes the underlying connection, e.g. for JetStream.
func (a *Adapter) Conn() *nats.Conn {
	return a.nc
}

// Subscribe starts delivering the register, health, pager and request subjects to h.
func (a *Adapter) Subscribe(h Handler) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.subs) > 0 {
		return ErrAlreadySubscribed
	}

	routes := []struct {
		subject string
		kind    Kind
		handle  func(protocol.ClientMessage)
	}{
		{a.subjects.Register, KindRegister, h.HandleRegister},
		{a.subjects.Health, KindHealth, h.HandleHealth},
		{a.subjects.Pager, KindPager, h.HandlePager},
	}

	for _, r := range routes {
		sub, err := a.nc.Subscribe(r.subject, a.clientHandler(r.kind, r.handle))
		if err != nil {
			a.unsubscribeLocked()
			return fmt.Errorf("failed to subscribe to %s: %w", r.subject, err)
		}

		a.subs = append(a.subs, sub)
	}

	sub, err := a.nc.Subscribe(a.subjects.Request, func(m *nats.Msg) {
		a.observe(KindRequest, nil)
		h.HandlePageRequest(m.Data)
	})
	if err != nil {
		a.unsubscribeLocked()
		return fmt.Errorf("failed to subscribe to %s: %w", a.subjects.Request, err)
	}

	a.subs = append(a.subs, sub)

	// Make sure the server has the interest registered before anyone publishes.
	if err := a.nc.FlushTimeout(defaultFlushTimeout); err != nil {
		a.unsubscribeLocked()
		return fmt.Errorf("%w: %w", ErrNotConnected, err)
	}

	return nil
}

func (a *Adapter) clientHandler(kind Kind, handle func(protocol.ClientMessage)) nats.MsgHandler {
	return func(m *nats.Msg) {
		msg, err := protocol.DecodeClientMessage(m.Data)
		a.observe(kind, err)

		if err != nil {
			a.log.Warn().Err(err).Str("subject", m.Subject).Msg("Discarding malformed device message")
			return
		}

		handle(msg)
	}
}

func (a *Adapter) observe(kind Kind, err error) {
	if a.hook != nil {
		a.hook(kind, err)
	}
}

// Publish sends data and waits for the broker to acknowledge the flush, bounded by the
// ctx deadline or a default timeout. Delivery to devices is at most once.
func (a *Adapter) Publish(ctx context.Context, subject string, data []byte) error {
	if a.nc.IsClosed() {
		return ErrNotConnected
	}

	if err := a.nc.Publish(subject, data); err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, defaultFlushTimeout)
		defer cancel()
	}

	return a.nc.FlushWithContext(ctx)
}

func (a *Adapter) Connected() bool {
	return a.nc.IsConnected()
}

// Close drops the subscriptions and closes the connection.
func (a *Adapter) Close() {
	a.mu.Lock()
	a.unsubscribeLocked()
	a.mu.Unlock()

	a.nc.Close()
}

func (a *Adapter) unsubscribeLocked() {
	for _, sub := range a.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			a.log.Debug().Err(err).Str("subject", sub.Subject).Msg("Unsubscribe failed")
		}
	}

	a.subs = nil
}
