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
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/patronhandler/pkg/counter"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/paging"
	"github.com/carverauto/patronhandler/pkg/protocol"
	"github.com/carverauto/patronhandler/pkg/transport"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()                  {}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *fakeTicker
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func (c *fakeClock) Ticker(time.Duration) Ticker {
	return c.ticker
}

type sent struct {
	subject string
	payload string
}

type fakeTransport struct {
	mu        sync.Mutex
	sent      []sent
	handler   transport.Handler
	closed    bool
	failWith  error
	subscribe error
}

func (f *fakeTransport) Publish(_ context.Context, subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failWith != nil {
		return f.failWith
	}

	f.sent = append(f.sent, sent{subject: subject, payload: string(data)})

	return nil
}

func (f *fakeTransport) Subscribe(h transport.Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handler = h

	return f.subscribe
}

func (f *fakeTransport) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return !f.closed
}

func (f *fakeTransport) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

// take returns the commands published since the last call as "subject payload".
func (f *fakeTransport) take() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.subject+" "+s.payload)
	}

	f.sent = nil

	return out
}

type harness struct {
	svc   *Service
	tr    *fakeTransport
	clock *fakeClock
	in    ingest
}

func newHarness(t *testing.T, store counter.Store, obs observer.Observer, opts ...Option) *harness {
	t.Helper()

	cfg := &Config{
		NATSURL: "nats://127.0.0.1:4222",
		Counter: counter.Config{Backend: counter.BackendFile, Path: filepath.Join(t.TempDir(), "analytics.json")},
	}

	if store == nil {
		store = counter.NewFileStore(cfg.Counter.Path)
	}

	clock := &fakeClock{now: t0, ticker: &fakeTicker{ch: make(chan time.Time)}}
	tr := &fakeTransport{}

	opts = append([]Option{
		WithClock(clock),
		WithSessionIDs(func() string { return "session-1" }),
	}, opts...)

	svc, err := New(cfg, tr, store, obs, logger.NewTestLogger(), opts...)
	require.NoError(t, err)

	return &harness{svc: svc, tr: tr, clock: clock, in: ingest{s: svc}}
}

func (h *harness) register(ids ...string) {
	for _, id := range ids {
		h.in.HandleRegister(protocol.ClientMessage{ID: id, Name: "name-" + id, Status: protocol.StatusActive})
	}
}

// step advances the clock, lets the listed devices check in and runs one tick.
func (h *harness) step(d time.Duration, alive ...string) {
	h.clock.Advance(d)

	for _, id := range alive {
		h.in.HandleHealth(protocol.ClientMessage{ID: id, Status: protocol.StatusActive})
	}

	h.svc.tick(context.Background())
}

func (h *harness) answer(id string, code protocol.Response) {
	h.in.HandlePager(protocol.ClientMessage{ID: id, Status: protocol.StatusActive, Response: code})
}

func eventsOf(q []observer.Event, kind observer.EventKind) []observer.Event {
	var out []observer.Event

	for _, ev := range q {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}

	return out
}

func TestScenarioTimeoutDenyAccept(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := counter.NewMockStore(ctrl)
	store.EXPECT().Increment(gomock.Any()).Return(int64(7), nil).Times(1)

	h := newHarness(t, store, nil)
	h.register("A", "B", "C")
	h.svc.events.Drain()

	h.svc.RequestPage("front-desk")
	h.step(0, "A", "B", "C")
	assert.Equal(t, []string{"client.A 2"}, h.tr.take())

	for elapsed := 200 * time.Millisecond; elapsed < 8*time.Second; elapsed += 200 * time.Millisecond {
		h.step(200*time.Millisecond, "A", "B", "C")
	}

	assert.Empty(t, h.tr.take())

	h.step(200*time.Millisecond, "A", "B", "C")
	assert.Equal(t, []string{"client.A 3", "client.B 2"}, h.tr.take())

	h.answer("B", protocol.ResponseDeny)
	h.step(200*time.Millisecond, "A", "B", "C")
	assert.Equal(t, []string{"client.C 2"}, h.tr.take())

	h.answer("C", protocol.ResponseAccept)
	h.step(200*time.Millisecond, "A", "B", "C")
	assert.Empty(t, h.tr.take())
	assert.IsType(t, paging.Acked{}, h.svc.machine.State())

	rec, ok := h.svc.registry.Get("C")
	require.True(t, ok)
	assert.Equal(t, protocol.ResponseAccept, rec.LastResponse)

	h.step(200*time.Millisecond, "A", "B", "C")
	assert.Equal(t, paging.Idle{}, h.svc.machine.State())

	events := h.svc.events.Drain()
	assert.Equal(t, []observer.Event{observer.PagingEvent(true), observer.PagingEvent(false)}, eventsOf(events, observer.EventPaging))

	displays := eventsOf(events, observer.EventResponse)
	require.Len(t, displays, 1)
	assert.Equal(t, observer.ResponsePageAccept, displays[0].Display.Kind)
	assert.Equal(t, "name-C", displays[0].Display.Client.Name)
}

func TestEmptyRegistryNoHelp(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.svc.RequestPage("front-desk")
	h.step(0)
	assert.Empty(t, h.tr.take())
	assert.IsType(t, paging.NoHelp{}, h.svc.machine.State())

	h.step(time.Second)
	assert.Equal(t, paging.Idle{}, h.svc.machine.State())

	displays := eventsOf(h.svc.events.Drain(), observer.EventResponse)
	require.Len(t, displays, 2)
	assert.True(t, displays[0].Display.Visible)
	assert.False(t, displays[1].Display.Visible)
	assert.Equal(t, observer.ResponseNoHelp, displays[1].Display.Kind)

	n, err := h.svc.counter.Value(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHealthFromUnknownRegisters(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.in.HandleHealth(protocol.ClientMessage{ID: "desk-9", Name: "Back Office"})
	require.Equal(t, 1, h.svc.registry.Len())

	added := eventsOf(h.svc.events.Drain(), observer.EventAdd)
	require.Len(t, added, 1)
	assert.Equal(t, "Back Office", added[0].Client.Name)
}

func TestSharedSubjectIDNeverPaged(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.register("global", "A")
	h.in.HandleHealth(protocol.ClientMessage{ID: "global"})
	require.Equal(t, 1, h.svc.registry.Len())
	assert.False(t, h.svc.registry.Roster().Has("global"))

	h.svc.RequestPage("front-desk")
	h.step(0, "A")
	assert.Equal(t, []string{"client.A 2"}, h.tr.take())
}

func TestPagerFromUnknownDiscarded(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.answer("ghost", protocol.ResponseAccept)

	assert.Zero(t, h.svc.registry.Len())
	assert.Zero(t, h.svc.responses.Len())
	assert.Empty(t, h.svc.events.Drain())
}

func TestSilentClientProbedThenRemoved(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.register("A")
	h.svc.events.Drain()

	probes := 0

	for elapsed := time.Duration(0); elapsed <= 21*time.Second; elapsed += 200 * time.Millisecond {
		h.step(200 * time.Millisecond)

		for _, c := range h.tr.take() {
			if c == "client.A 1" {
				probes++
			}
		}
	}

	assert.Zero(t, h.svc.registry.Len())
	assert.GreaterOrEqual(t, probes, 1)

	events := h.svc.events.Drain()
	require.Len(t, eventsOf(events, observer.EventRemove), 1)

	statuses := eventsOf(events, observer.EventStatus)
	require.Len(t, statuses, 1)
	assert.Equal(t, protocol.StatusInactive, statuses[0].Status)
}

func TestRequestWhilePagingIgnored(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.register("A", "B")

	h.svc.RequestPage("one")
	h.step(0, "A", "B")
	require.Equal(t, []string{"client.A 2"}, h.tr.take())

	h.svc.RequestPage("two")
	h.step(200*time.Millisecond, "A", "B")
	assert.Empty(t, h.tr.take())

	calling, ok := h.svc.machine.State().(paging.Calling)
	require.True(t, ok)
	assert.Equal(t, "A", calling.Session.Current)
	assert.Equal(t, 1, calling.Session.Attempted)
}

func TestPageRequestFromBus(t *testing.T) {
	h := newHarness(t, nil, nil)

	h.in.HandlePageRequest([]byte("  "))

	reqs := h.svc.requests.Drain()
	require.Len(t, reqs, 1)
	assert.Equal(t, busRequestSource, reqs[0].Source)
	assert.Equal(t, t0, reqs[0].At)
}

func TestTickRecoversFromPanic(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := counter.NewMockStore(ctrl)
	store.EXPECT().Increment(gomock.Any()).DoAndReturn(func(context.Context) (int64, error) {
		panic("disk on fire")
	})

	h := newHarness(t, store, nil)
	h.register("A")

	h.svc.RequestPage("x")
	h.step(0, "A")
	h.answer("A", protocol.ResponseAccept)

	require.NotPanics(t, func() { h.step(200*time.Millisecond, "A") })
	assert.IsType(t, paging.Acked{}, h.svc.machine.State())

	h.step(200*time.Millisecond, "A")
	assert.Equal(t, paging.Idle{}, h.svc.machine.State())
}

func TestCounterFailureIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := counter.NewMockStore(ctrl)
	store.EXPECT().Increment(gomock.Any()).Return(int64(0), fmt.Errorf("%w: bad", counter.ErrCorrupt))

	h := newHarness(t, store, nil)
	h.register("A")

	h.svc.RequestPage("x")
	h.step(0, "A")
	h.answer("A", protocol.ResponseAccept)
	h.step(200*time.Millisecond, "A")
	h.step(200*time.Millisecond, "A")

	assert.Equal(t, paging.Idle{}, h.svc.machine.State())
}

func TestStartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	obs := observer.NewMockObserver(ctrl)

	added := make(chan observer.ClientInfo, 1)
	obs.EXPECT().Add(gomock.Any()).Do(func(c observer.ClientInfo) { added <- c })

	h := newHarness(t, nil, obs)

	require.NoError(t, h.svc.Start(context.Background()))
	require.ErrorIs(t, h.svc.Start(context.Background()), errAlreadyStarted)
	assert.Equal(t, []string{"client.global 0"}, h.tr.take())
	assert.True(t, h.svc.Connected())

	h.tr.mu.Lock()
	handler := h.tr.handler
	h.tr.mu.Unlock()
	require.NotNil(t, handler)

	handler.HandleRegister(protocol.ClientMessage{ID: "desk-1", Name: "Front Desk"})

	select {
	case c := <-added:
		assert.Equal(t, "desk-1", c.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("observer never saw the registration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, h.svc.Stop(ctx))
	assert.False(t, h.svc.Connected())
}

func TestStartSubscribeFailure(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.tr.subscribe = transport.ErrNotConnected

	require.ErrorIs(t, h.svc.Start(context.Background()), transport.ErrNotConnected)
}

func TestNewRequiresDependencies(t *testing.T) {
	cfg := &Config{NATSURL: "nats://x"}

	_, err := New(cfg, nil, counter.NewFileStore("x"), nil, logger.NewTestLogger())
	require.ErrorIs(t, err, errMissingTransport)

	_, err = New(cfg, &fakeTransport{}, nil, nil, logger.NewTestLogger())
	require.ErrorIs(t, err, errMissingCounter)

	_, err = New(&Config{}, &fakeTransport{}, counter.NewFileStore("x"), nil, logger.NewTestLogger())
	require.ErrorIs(t, err, errMissingNATSURL)
}

func TestSessionSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	h := newHarness(t, nil, nil, WithTracer(tp.Tracer("test")))
	h.register("A")

	h.svc.RequestPage("x")
	h.step(0, "A")
	h.answer("A", protocol.ResponseDeny)
	h.step(200*time.Millisecond, "A")
	assert.IsType(t, paging.Refused{}, h.svc.machine.State())

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "paging.session", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("outcome", string(paging.OutcomeRefused)))
	assert.Contains(t, spans[0].Attributes(), attribute.String("session_id", "session-1"))

	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "page", spans[0].Events()[0].Name)
}
