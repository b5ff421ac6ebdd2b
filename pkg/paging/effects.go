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
	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// Effect is work the loop driver performs after a transition.
type Effect interface {
	isEffect()
}

// SendCommand publishes Command to ClientID.
type SendCommand struct {
	ClientID string
	Command  protocol.Command
}

// Notify queues an observer notification.
type Notify struct {
	Event observer.Event
}

// RecordAccept increments the persisted accepted-pages counter.
type RecordAccept struct {
	SessionID string
	ClientID  string
}

// Outcome is how a session ended.
type Outcome string

const (
	OutcomeAcked   Outcome = "acked"
	OutcomeRefused Outcome = "refused"
	OutcomeNoHelp  Outcome = "no_help"
)

// Resolved reports the end of a session.
type Resolved struct {
	Session Session
	Outcome Outcome
}

func (SendCommand) isEffect()  {}
func (Notify) isEffect()       {}
func (RecordAccept) isEffect() {}
func (Resolved) isEffect()     {}
