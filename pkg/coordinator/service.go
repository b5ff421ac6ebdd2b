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

// Package coordinator runs the patron-handler control loop: it feeds device traffic into
// the client registry, sweeps liveness, steps the paging machine and carries out its
// effects.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/patronhandler/pkg/counter"
	"github.com/carverauto/patronhandler/pkg/dispatch"
	"github.com/carverauto/patronhandler/pkg/eventq"
	"github.com/carverauto/patronhandler/pkg/lifecycle"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/paging"
	"github.com/carverauto/patronhandler/pkg/protocol"
	"github.com/carverauto/patronhandler/pkg/registry"
)

const counterTimeout = 5 * time.Second

var (
	errMissingTransport = errors.New("coordinator: transport is required")
	errMissingCounter   = errors.New("coordinator: counter store is required")
	errAlreadyStarted   = errors.New("coordinator: already started")
)

// PageRequest asks for a paging session. Requests are only honoured while Idle.
type PageRequest struct {
	Source string
	At     time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithTracer replaces the global tracer used for paging session spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithSessionIDs replaces the paging session id generator.
func WithSessionIDs(gen func() string) Option {
	return func(s *Service) {
		s.machineOpts = append(s.machineOpts, paging.WithSessionIDs(gen))
	}
}

// Service owns every piece of coordinator state. It implements lifecycle.Service.
type Service struct {
	cfg      Config
	log      logger.Logger
	clock    Clock
	tr       Transport
	counter  counter.Store
	observer observer.Observer

	registry   *registry.Registry
	monitor    *registry.Monitor
	dispatcher *dispatch.Dispatcher
	machine    *paging.Machine

	machineOpts []paging.MachineOption

	tracer trace.Tracer
	// span covers the running paging session. Only the control loop touches it.
	span   trace.Span

	events    *eventq.Queue[observer.Event]
	requests  *eventq.Queue[PageRequest]
	responses *eventq.Queue[paging.Response]

	startOnce sync.Once
	closeOnce sync.Once
	done      chan struct{}
	loopWg    sync.WaitGroup
	pumpWg    sync.WaitGroup
	stopPump  context.CancelFunc
}

// New wires a Service. obs may be nil, in which case notifications are logged.
func New(cfg *Config, tr Transport, store counter.Store, obs observer.Observer, log logger.Logger, opts ...Option) (*Service, error) {
	if tr == nil {
		return nil, errMissingTransport
	}

	if store == nil {
		return nil, errMissingCounter
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if obs == nil {
		obs = observer.NewLogObserver(log)
	}

	s := &Service{
		cfg:       *cfg,
		log:       log,
		clock:     realClock{},
		tr:        tr,
		counter:   store,
		observer:  obs,
		events:    eventq.New[observer.Event](),
		requests:  eventq.New[PageRequest](),
		responses: eventq.New[paging.Response](),
		done:      make(chan struct{}),
		tracer:    otel.Tracer(meterName),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registry = registry.New(s.events, registry.WithClock(s.clock.Now), registry.WithSubjects(s.cfg.Subjects))
	s.dispatcher = dispatch.New(tr, s.cfg.Subjects, s.cfg.Timing.PublishTimeout.Std(), log,
		dispatch.WithSendHook(recordCommand))
	s.monitor = registry.NewMonitor(s.registry, s.cfg.thresholds(), s.dispatcher, log)
	s.machine = paging.NewMachine(s.cfg.pagingConfig(), s.machineOpts...)

	return s, nil
}

// Start subscribes to device traffic, asks every device to register and starts the
// control loop. It does not block.
func (s *Service) Start(ctx context.Context) error {
	err := errAlreadyStarted

	s.startOnce.Do(func() {
		err = s.start(ctx)
	})

	return err
}

func (s *Service) start(ctx context.Context) error {
	if err := s.tr.Subscribe(ingest{s: s}); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	pumpCtx, stopPump := context.WithCancel(context.WithoutCancel(ctx))
	s.stopPump = stopPump

	s.pumpWg.Add(1)

	go func() {
		defer s.pumpWg.Done()

		observer.Pump(pumpCtx, s.events, s.observer, s.log)
	}()

	// Devices that were up before us re-announce themselves.
	if err := s.dispatcher.Broadcast(ctx, protocol.CommandRegister); err != nil {
		s.log.Warn().Err(err).Msg("Startup registration broadcast failed")
	}

	s.loopWg.Add(1)

	go s.run(ctx)

	s.log.Info().
		Dur("tick_interval", s.cfg.Timing.TickInterval.Std()).
		Str("broadcast", s.cfg.Subjects.Broadcast).
		Msg("Coordinator started")

	return nil
}

// Stop ends the control loop, flushes pending observer notifications and closes the
// transport.
func (s *Service) Stop(ctx context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	stopped := make(chan struct{})

	go func() {
		s.loopWg.Wait()

		if s.span != nil {
			s.span.End()
			s.span = nil
		}

		if s.stopPump != nil {
			s.stopPump()
		}

		s.pumpWg.Wait()
		close(stopped)
	}()

	var err error

	select {
	case <-stopped:
	case <-ctx.Done():
		err = fmt.Errorf("coordinator stop: %w", ctx.Err())
	}

	s.tr.Close()

	return err
}

// Connected reports whether the bus connection is up.
func (s *Service) Connected() bool {
	return s.tr.Connected()
}

// RequestPage queues a paging request for the next tick. It never blocks.
func (s *Service) RequestPage(source string) {
	s.requests.Push(PageRequest{Source: source, At: s.clock.Now()})
}

func (s *Service) run(ctx context.Context) {
	defer s.loopWg.Done()

	ticker := s.clock.Ticker(s.cfg.Timing.TickInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.Chan():
			s.tick(ctx)
		}
	}
}

// tick is one pass of the control loop. A panic is logged and the loop carries on with
// the next tick.
func (s *Service) tick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			recordPanic(ctx)
			s.log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("Control loop tick panicked")
		}
	}()

	now := s.clock.Now()

	reqs := s.requests.Drain()
	triggered := len(reqs) > 0

	if triggered {
		ev := s.log.Info().Int("requests", len(reqs)).Str("source", reqs[0].Source)
		if paging.Paging(s.machine.State()) {
			ev.Msg("Page request ignored, paging in progress")
		} else {
			ev.Msg("Page requested")
		}
	}

	responses := s.responses.Drain()

	s.monitor.Sweep(ctx, now)

	before := s.machine.State()

	effects := s.machine.Step(paging.Tick{
		Now:       now,
		Roster:    s.registry.Roster(),
		Triggered: triggered,
		Responses: responses,
	})

	if after := s.machine.State(); after.Name() != before.Name() {
		s.log.Debug().Str("from", before.Name()).Str("to", after.Name()).Msg("Paging state changed")

		if _, wasIdle := before.(paging.Idle); wasIdle {
			_, s.span = s.tracer.Start(ctx, "paging.session",
				trace.WithAttributes(attribute.Int("roster_size", s.registry.Len())))
		}
	}

	s.execute(ctx, effects)
}

func (s *Service) execute(ctx context.Context, effects []paging.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case paging.SendCommand:
			// Failures are logged by the dispatcher; the deadline moves the session on.
			err := s.dispatcher.Send(ctx, e.ClientID, e.Command)
			s.spanEvent(e, err)
		case paging.Notify:
			s.events.Push(e.Event)
		case paging.RecordAccept:
			s.recordAccept(ctx, e)
		case paging.Resolved:
			recordSession(ctx, e.Outcome)
			s.endSpan(e)
			s.log.Info().
				Str("session_id", e.Session.ID).
				Str("outcome", string(e.Outcome)).
				Str("client_id", e.Session.Current).
				Int("attempted", e.Session.Attempted).
				Int("bound", e.Session.Bound).
				Msg("Paging session finished")
		default:
			s.log.Error().Str("effect", fmt.Sprintf("%T", effect)).Msg("Unknown paging effect")
		}
	}
}

func (s *Service) spanEvent(e paging.SendCommand, err error) {
	if s.span == nil {
		return
	}

	s.span.AddEvent(e.Command.String(), trace.WithAttributes(
		attribute.String("client_id", e.ClientID),
		attribute.String("outcome", outcomeOf(err)),
	))
}

func (s *Service) endSpan(e paging.Resolved) {
	if s.span == nil {
		return
	}

	s.span.SetAttributes(
		attribute.String("session_id", e.Session.ID),
		attribute.String("outcome", string(e.Outcome)),
		attribute.String("client_id", e.Session.Current),
		attribute.Int("attempted", e.Session.Attempted),
	)
	s.span.End()
	s.span = nil
}

func (s *Service) recordAccept(ctx context.Context, e paging.RecordAccept) {
	ctx, cancel := context.WithTimeout(ctx, counterTimeout)
	defer cancel()

	total, err := s.counter.Increment(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", e.SessionID).Msg("Failed to persist accepted page")
		return
	}

	s.log.Info().
		Str("session_id", e.SessionID).
		Str("client_id", e.ClientID).
		Int64("responses", total).
		Msg("Page accepted")
}

var _ lifecycle.Service = (*Service)(nil)
