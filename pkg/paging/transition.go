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

package paging

import (
	"time"

	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/protocol"
	"github.com/carverauto/patronhandler/pkg/registry"
)

// Config holds the timings the machine reads.
type Config struct {
	// WaitTime is how long a paged device has to answer.
	WaitTime time.Duration
	// ErrorBlink is how long NoHelp lasts.
	ErrorBlink time.Duration
	// StatusDisplay is the hold time of shown banners.
	StatusDisplay time.Duration
	// InactiveThreshold marks a device stale when it has been silent this long.
	InactiveThreshold time.Duration
}

// Response is a page answer received since the previous tick.
type Response struct {
	ClientID string
	Code     protocol.Response
}

// Tick is everything one step may look at.
type Tick struct {
	Now       time.Time
	Roster    registry.Roster
	Triggered bool
	// SessionID names the session a trigger would start.
	SessionID string
	Responses []Response
}

// Result is the outcome of one Transition.
type Result struct {
	State   State
	Cursor  Cursor
	Effects []Effect
}

// Transition computes the next state. It has no side effects; everything that must
// happen outside the machine is returned as Effects, in order.
func Transition(cfg Config, st State, cur Cursor, t Tick) Result {
	switch s := st.(type) {
	case Idle:
		return fromIdle(cfg, cur, t)
	case Calling:
		return fromCalling(cfg, s.Session, cur, t)
	case NoHelp:
		if t.Now.Sub(s.Since) < cfg.ErrorBlink {
			return Result{State: s, Cursor: cur}
		}

		return Result{
			State:  Idle{},
			Cursor: cur,
			Effects: []Effect{
				Notify{Event: observer.ResponseEvent(observer.Display{Kind: observer.ResponseNoHelp})},
				Notify{Event: observer.PagingEvent(false)},
			},
		}
	case Acked, Refused:
		return Result{
			State:   Idle{},
			Cursor:  cur,
			Effects: []Effect{Notify{Event: observer.PagingEvent(false)}},
		}
	default:
		return Result{State: Idle{}, Cursor: cur}
	}
}

func fromIdle(cfg Config, cur Cursor, t Tick) Result {
	if !t.Triggered {
		return Result{State: Idle{}, Cursor: cur}
	}

	sess := newSession(t.SessionID, t.Now, len(t.Roster))

	sess, cur, effects, paged := advance(cfg, sess, cur, t)
	if !paged {
		return enterNoHelp(cfg, sess, cur, t.Now, effects)
	}

	effects = append(effects, Notify{Event: observer.PagingEvent(true)})

	return Result{State: Calling{Session: sess}, Cursor: cur, Effects: effects}
}

func fromCalling(cfg Config, sess Session, cur Cursor, t Tick) Result {
	for _, r := range t.Responses {
		if r.ClientID != sess.Current {
			continue
		}

		switch r.Code {
		case protocol.ResponseAccept:
			sess.Ack = true
		case protocol.ResponseDeny:
			sess.Refuse = true
		case protocol.ResponseNone:
		}
	}

	if len(t.Roster) == 0 {
		return enterNoHelp(cfg, sess, cur, t.Now, nil)
	}

	if sess.Ack {
		client := observer.ClientInfo{ID: sess.Current}
		if e, ok := t.Roster.Get(sess.Current); ok {
			client = e.Info()
		}

		return Result{
			State:  Acked{Session: sess},
			Cursor: cur,
			Effects: []Effect{
				Notify{Event: observer.ResponseEvent(observer.Display{
					Kind:    observer.ResponsePageAccept,
					Visible: true,
					Client:  &client,
					Hold:    cfg.StatusDisplay,
				})},
				RecordAccept{SessionID: sess.ID, ClientID: sess.Current},
				Resolved{Session: sess, Outcome: OutcomeAcked},
			},
		}
	}

	timedOut := t.Now.Sub(sess.Deadline) >= cfg.WaitTime
	if !timedOut && !sess.Refuse && !stale(cfg, t, sess.Current) {
		return Result{State: Calling{Session: sess}, Cursor: cur}
	}

	sess, cur, effects, paged := advance(cfg, sess, cur, t)
	if paged {
		return Result{State: Calling{Session: sess}, Cursor: cur, Effects: effects}
	}

	effects = append(effects,
		Notify{Event: observer.ResponseEvent(noHelpShown(cfg))},
		Resolved{Session: sess, Outcome: OutcomeRefused},
	)

	return Result{State: Refused{Session: sess}, Cursor: cur, Effects: effects}
}

// advance cancels the current target and pages the next untried, non-stale candidate.
// The loop consumes at most sess.Bound attempts over the whole session.
func advance(cfg Config, sess Session, cur Cursor, t Tick) (Session, Cursor, []Effect, bool) {
	var effects []Effect

	if sess.Current != "" {
		if !sess.Refuse && t.Roster.Has(sess.Current) {
			effects = append(effects, SendCommand{ClientID: sess.Current, Command: protocol.CommandCancel})
		}

		sess.Previous = sess.Current
		sess.Current = ""
	}

	sess.Ack = false
	sess.Refuse = false

	for sess.Attempted < sess.Bound {
		id, ok := cur.next(t.Roster, sess.tried)
		if !ok {
			break
		}

		sess = sess.withTried(id)
		sess.Attempted++
		cur.Last = id

		if stale(cfg, t, id) {
			continue
		}

		sess.Current = id
		sess.Deadline = t.Now
		effects = append(effects, SendCommand{ClientID: id, Command: protocol.CommandPage})

		return sess, cur, effects, true
	}

	return sess, cur, effects, false
}

// stale reports whether id is gone or has been silent longer than InactiveThreshold.
func stale(cfg Config, t Tick, id string) bool {
	e, ok := t.Roster.Get(id)
	if !ok {
		return true
	}

	return t.Now.Sub(e.LastSeen) > cfg.InactiveThreshold
}

func enterNoHelp(cfg Config, sess Session, cur Cursor, now time.Time, effects []Effect) Result {
	effects = append(effects,
		Notify{Event: observer.ResponseEvent(noHelpShown(cfg))},
		Resolved{Session: sess, Outcome: OutcomeNoHelp},
	)

	return Result{State: NoHelp{Since: now}, Cursor: cur, Effects: effects}
}

func noHelpShown(cfg Config) observer.Display {
	return observer.Display{Kind: observer.ResponseNoHelp, Visible: true, Hold: cfg.StatusDisplay}
}
