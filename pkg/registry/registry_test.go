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
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/patronhandler/pkg/eventq"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

var testThresholds = Thresholds{
	PingInterval:      4 * time.Second,
	InactiveThreshold: 10 * time.Second,
	OfflineThreshold:  20 * time.Second,
	ProbeInterval:     4 * time.Second,
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(d)

	return c.t
}

type recordingProber struct {
	mu   sync.Mutex
	sent []string
}

func (p *recordingProber) Send(_ context.Context, clientID string, cmd protocol.Command) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sent = append(p.sent, fmt.Sprintf("%s:%s", clientID, cmd))

	return nil
}

func newTestRegistry() (*Registry, *eventq.Queue[observer.Event], *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	q := eventq.New[observer.Event]()

	return New(q, WithClock(clk.Now)), q, clk
}

func kinds(events []observer.Event) []observer.EventKind {
	out := make([]observer.EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}

	return out
}

func TestRegisterAddsThenUpdates(t *testing.T) {
	reg, q, clk := newTestRegistry()

	require.NoError(t, reg.Register("a", "Alice"))
	require.NoError(t, reg.Register("b", "Bob"))

	clk.Advance(time.Second)
	require.NoError(t, reg.Register("a", ""))

	assert.Equal(t, 2, reg.Len())

	roster := reg.Roster()
	require.Len(t, roster, 2)
	assert.Equal(t, "a", roster[0].ID)
	assert.Equal(t, "Alice", roster[0].Name)
	assert.Equal(t, clk.Now(), roster[0].LastSeen)
	assert.Equal(t, "b", roster[1].ID)

	events := q.Drain()
	assert.Equal(t, []observer.EventKind{observer.EventAdd, observer.EventAdd, observer.EventStatus}, kinds(events))
	assert.Equal(t, protocol.StatusActive, events[2].Status)
}

func TestRegisterRejectsInvalidID(t *testing.T) {
	reg, q, _ := newTestRegistry()

	require.ErrorIs(t, reg.Register("bad.id", "x"), protocol.ErrInvalidClientID)
	require.ErrorIs(t, reg.Register("", "x"), protocol.ErrMissingClientID)

	assert.Equal(t, 0, reg.Len())
	assert.Nil(t, q.Drain())
}

func TestRegisterRejectsSharedSubjectIDs(t *testing.T) {
	q := eventq.New[observer.Event]()
	reg := New(q, WithSubjects(protocol.DefaultSubjects()))

	require.ErrorIs(t, reg.Register("global", "Everyone"), protocol.ErrReservedClientID)
	require.NoError(t, reg.Register("desk-1", "Front desk"))

	assert.Equal(t, 1, reg.Len())
	assert.False(t, reg.Roster().Has("global"))
	assert.Equal(t, []observer.EventKind{observer.EventAdd}, kinds(q.Drain()))
}

func TestTouchAndSetResponse(t *testing.T) {
	reg, q, clk := newTestRegistry()

	require.ErrorIs(t, reg.Touch("ghost"), ErrClientNotFound)
	require.ErrorIs(t, reg.SetResponse("ghost", protocol.ResponseAccept), ErrClientNotFound)

	require.NoError(t, reg.Register("a", "Alice"))
	q.Drain()

	now := clk.Advance(3 * time.Second)
	require.NoError(t, reg.Touch("a"))
	require.NoError(t, reg.SetResponse("a", protocol.ResponseDeny))

	rec, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, now, rec.LastSeen)
	assert.Equal(t, protocol.ResponseDeny, rec.LastResponse)
	assert.Equal(t, []observer.EventKind{observer.EventStatus}, kinds(q.Drain()))
}

func TestRemove(t *testing.T) {
	reg, q, _ := newTestRegistry()

	require.NoError(t, reg.Register("a", ""))
	require.NoError(t, reg.Register("b", ""))
	q.Drain()

	assert.True(t, reg.Remove("a"))
	assert.False(t, reg.Remove("a"))
	require.Len(t, reg.Roster(), 1)
	assert.Equal(t, "b", reg.Roster()[0].ID)

	events := q.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, observer.EventRemove, events[0].Kind)
	assert.Equal(t, "a", events[0].ClientID)
}

func TestSweepProbesOncePerInterval(t *testing.T) {
	reg, _, clk := newTestRegistry()
	require.NoError(t, reg.Register("a", ""))

	assert.Empty(t, reg.Sweep(clk.Advance(4*time.Second), testThresholds).Probes)

	assert.Equal(t, []string{"a"}, reg.Sweep(clk.Advance(200*time.Millisecond), testThresholds).Probes)
	assert.Empty(t, reg.Sweep(clk.Advance(200*time.Millisecond), testThresholds).Probes)
	assert.Empty(t, reg.Sweep(clk.Advance(3*time.Second), testThresholds).Probes)
	assert.Equal(t, []string{"a"}, reg.Sweep(clk.Advance(time.Second), testThresholds).Probes)
}

func TestSweepProbesEveryTickWithoutLimit(t *testing.T) {
	reg, _, clk := newTestRegistry()
	require.NoError(t, reg.Register("a", ""))

	th := testThresholds
	th.ProbeInterval = 0

	assert.Empty(t, reg.Sweep(clk.Advance(4*time.Second), th).Probes)

	for range 3 {
		assert.Equal(t, []string{"a"}, reg.Sweep(clk.Advance(200*time.Millisecond), th).Probes)
	}
}

func TestSweepDemotesOnTransitionOnly(t *testing.T) {
	reg, q, clk := newTestRegistry()
	require.NoError(t, reg.Register("a", ""))
	q.Drain()

	res := reg.Sweep(clk.Advance(10*time.Second+time.Millisecond), testThresholds)
	assert.Equal(t, []string{"a"}, res.Demoted)
	assert.Empty(t, res.Probes)

	res = reg.Sweep(clk.Advance(time.Second), testThresholds)
	assert.Empty(t, res.Demoted)

	events := q.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, protocol.StatusInactive, events[0].Status)

	rec, _ := reg.Get("a")
	assert.Equal(t, protocol.StatusInactive, rec.Status)

	require.NoError(t, reg.Touch("a"))

	rec, _ = reg.Get("a")
	assert.Equal(t, protocol.StatusActive, rec.Status)
}

func TestSilentClientRemovedExactlyOnce(t *testing.T) {
	reg, q, clk := newTestRegistry()
	prober := &recordingProber{}
	mon := NewMonitor(reg, testThresholds, prober, logger.NewTestLogger())

	require.NoError(t, reg.Register("a", "Alice"))
	require.NoError(t, reg.Register("b", "Bob"))

	removed := 0
	statuses := []protocol.ClientStatus{protocol.StatusActive}

	for elapsed := time.Duration(0); elapsed < 21*time.Second; elapsed += 200 * time.Millisecond {
		now := clk.Advance(200 * time.Millisecond)

		if elapsed%(2*time.Second) == 0 {
			require.NoError(t, reg.Touch("b"))
		}

		res := mon.Sweep(context.Background(), now)
		require.NoError(t, res.Err)

		removed += len(res.Removed)

		if rec, ok := reg.Get("a"); ok && rec.Status != statuses[len(statuses)-1] {
			statuses = append(statuses, rec.Status)
		}
	}

	assert.Equal(t, 1, removed)
	assert.Equal(t, []protocol.ClientStatus{protocol.StatusActive, protocol.StatusInactive}, statuses)

	_, ok := reg.Get("a")
	assert.False(t, ok)
	assert.True(t, reg.Roster().Has("b"))

	removes := 0

	for _, ev := range q.Drain() {
		if ev.Kind == observer.EventRemove {
			assert.Equal(t, "a", ev.ClientID)

			removes++
		}
	}

	assert.Equal(t, 1, removes)

	for _, sent := range prober.sent {
		assert.Equal(t, "a:health", sent)
	}

	assert.NotEmpty(t, prober.sent)
}

func TestSweepRepairsInvariant(t *testing.T) {
	reg, _, clk := newTestRegistry()
	require.NoError(t, reg.Register("a", ""))

	reg.mu.Lock()
	reg.order = append(reg.order, "ghost", "a")
	reg.records["orphan"] = &ClientRecord{ID: "orphan", LastSeen: clk.Now()}
	reg.mu.Unlock()

	res := reg.Sweep(clk.Now(), testThresholds)
	require.ErrorIs(t, res.Err, ErrInvariant)

	assert.Equal(t, 1, reg.Len())
	assert.NoError(t, reg.Sweep(clk.Now(), testThresholds).Err)
}

func TestRandomTrafficNeverDuplicates(t *testing.T) {
	reg, _, clk := newTestRegistry()
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d", "e"}

	for i := 0; i < 2000; i++ {
		id := ids[rng.Intn(len(ids))]

		switch rng.Intn(4) {
		case 0:
			_ = reg.Register(id, "")
		case 1:
			if err := reg.Touch(id); err != nil {
				_ = reg.Register(id, "")
			}
		case 2:
			_ = reg.SetResponse(id, protocol.ResponseDeny)
		case 3:
			reg.Sweep(clk.Advance(time.Duration(rng.Intn(6000))*time.Millisecond), testThresholds)
		}

		seen := make(map[string]bool)
		for _, e := range reg.Roster() {
			require.False(t, seen[e.ID], "duplicate id %s", e.ID)
			seen[e.ID] = true
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	reg, _, clk := newTestRegistry()

	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)

		go func(w int) {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("c%d", (w+i)%7)
				if err := reg.Touch(id); err != nil {
					_ = reg.Register(id, "")
				}

				reg.Sweep(clk.Now(), testThresholds)
			}
		}(w)
	}

	wg.Wait()
	assert.Equal(t, 7, reg.Len())
}
