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

// Package device simulates a patron handler device on the bus. It answers the
// coordinator's register and health commands and reacts to pages with a configured
// behavior, which makes it useful for bench testing and integration tests.
package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// Behavior is how the device answers a page.
type Behavior string

const (
	BehaviorAccept Behavior = "accept"
	BehaviorDeny   Behavior = "deny"
	BehaviorIgnore Behavior = "ignore"
)

var (
	ErrUnknownBehavior = errors.New("unknown device behavior")
	errAlreadyStarted  = errors.New("device already started")
)

func ParseBehavior(s string) (Behavior, error) {
	switch b := Behavior(s); b {
	case BehaviorAccept, BehaviorDeny, BehaviorIgnore:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBehavior, s)
	}
}

// Config describes one simulated device.
type Config struct {
	ID       string
	Name     string
	Subjects protocol.Subjects
	Behavior Behavior
	// AnswerDelay is how long the simulated patron takes to press a button.
	AnswerDelay time.Duration
	// Mute stops the device from answering health probes, so it ages out.
	Mute bool
}

// Device is a simulated patron handler.
type Device struct {
	nc  *nats.Conn
	log logger.Logger

	mu      sync.Mutex
	cfg     Config
	subs    []*nats.Subscription
	timers  []*time.Timer
	pages   int
	cancels int
	probes  int
}

func New(nc *nats.Conn, cfg Config, log logger.Logger) (*Device, error) {
	cfg.Subjects.ApplyDefaults()

	if err := cfg.Subjects.ValidateClientID(cfg.ID); err != nil {
		return nil, err
	}

	if cfg.Behavior == "" {
		cfg.Behavior = BehaviorAccept
	}

	if _, err := ParseBehavior(string(cfg.Behavior)); err != nil {
		return nil, err
	}

	if cfg.Name == "" {
		cfg.Name = cfg.ID
	}

	return &Device{nc: nc, cfg: cfg, log: log}, nil
}

// Start listens on the broadcast and per-device subjects and announces the device.
func (d *Device) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.subs) > 0 {
		return errAlreadyStarted
	}

	for _, subject := range []string{d.cfg.Subjects.Broadcast, d.cfg.Subjects.Client(d.cfg.ID)} {
		sub, err := d.nc.Subscribe(subject, d.onCommand)
		if err != nil {
			d.unsubscribeLocked()
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}

		d.subs = append(d.subs, sub)
	}

	if err := d.nc.Flush(); err != nil {
		d.unsubscribeLocked()
		return err
	}

	return d.publishLocked(d.cfg.Subjects.Register, protocol.ResponseNone)
}

// Stop unsubscribes and cancels pending answers.
func (d *Device) Stop(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, t := range d.timers {
		t.Stop()
	}

	d.timers = nil
	d.unsubscribeLocked()

	return nil
}

func (d *Device) SetBehavior(b Behavior) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cfg.Behavior = b
}

// SetMute toggles answering health probes.
func (d *Device) SetMute(mute bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cfg.Mute = mute
}

// Pages returns how many page commands the device has received.
func (d *Device) Pages() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pages
}

func (d *Device) Cancels() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.cancels
}

func (d *Device) Probes() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.probes
}

func (d *Device) onCommand(m *nats.Msg) {
	cmd, err := protocol.DecodeCommand(m.Data)
	if err != nil {
		d.log.Warn().Err(err).Str("subject", m.Subject).Msg("Ignoring bad command")
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	switch cmd {
	case protocol.CommandRegister:
		err = d.publishLocked(d.cfg.Subjects.Register, protocol.ResponseNone)
	case protocol.CommandHealth:
		d.probes++

		if !d.cfg.Mute {
			err = d.publishLocked(d.cfg.Subjects.Health, protocol.ResponseNone)
		}
	case protocol.CommandPage:
		d.pages++
		d.answerLocked()
	case protocol.CommandCancel:
		d.cancels++
	}

	if err != nil {
		d.log.Warn().Err(err).Str("command", cmd.String()).Msg("Device reply failed")
	}

	d.log.Debug().Str("client_id", d.cfg.ID).Str("command", cmd.String()).Msg("Device received command")
}

func (d *Device) answerLocked() {
	var code protocol.Response

	switch d.cfg.Behavior {
	case BehaviorAccept:
		code = protocol.ResponseAccept
	case BehaviorDeny:
		code = protocol.ResponseDeny
	case BehaviorIgnore:
		return
	}

	d.timers = append(d.timers, time.AfterFunc(d.cfg.AnswerDelay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		if err := d.publishLocked(d.cfg.Subjects.Pager, code); err != nil {
			d.log.Warn().Err(err).Msg("Device page answer failed")
		}
	}))
}

func (d *Device) publishLocked(subject string, resp protocol.Response) error {
	payload, err := protocol.ClientMessage{
		ID:       d.cfg.ID,
		Name:     d.cfg.Name,
		Status:   protocol.StatusActive,
		Response: resp,
	}.Encode()
	if err != nil {
		return err
	}

	return d.nc.Publish(subject, payload)
}

func (d *Device) unsubscribeLocked() {
	for _, sub := range d.subs {
		_ = sub.Unsubscribe()
	}

	d.subs = nil
}
