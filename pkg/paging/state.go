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

// Package paging implements the round-robin paging workflow: one device at a time is
// asked for help until one accepts or every candidate has declined or timed out.
//
// The workflow is a pure function of (State, Cursor, Tick) returning the next state,
// the next cursor and a list of Effects. Machine holds the current values and is
// stepped once per control-loop tick.
package paging

import "time"

// State is one of Idle, Calling, NoHelp, Acked or Refused.
type State interface {
	Name() string
	isState()
}

// Idle waits for a page request.
type Idle struct{}

// Calling has paged Session.Current and waits for its answer.
type Calling struct {
	Session Session
}

// NoHelp shows the no-help banner until ErrorBlink has elapsed since Since.
type NoHelp struct {
	Since time.Time
}

// Acked means Session.Current accepted. It lasts one tick.
type Acked struct {
	Session Session
}

// Refused means every candidate declined or timed out. It lasts one tick.
type Refused struct {
	Session Session
}

func (Idle) Name() string    { return "idle" }
func (Calling) Name() string { return "calling" }
func (NoHelp) Name() string  { return "no_help" }
func (Acked) Name() string   { return "acked" }
func (Refused) Name() string { return "refused" }

func (Idle) isState()    {}
func (Calling) isState() {}
func (NoHelp) isState()  {}
func (Acked) isState()   {}
func (Refused) isState() {}

// Paging reports whether a page is in flight from the front end's point of view.
func Paging(s State) bool {
	switch s.(type) {
	case Idle:
		return false
	default:
		return true
	}
}
