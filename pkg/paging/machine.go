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

import "github.com/google/uuid"

// Machine owns the paging state between ticks. It is not safe for concurrent use; the
// control loop is its only caller.
type Machine struct {
	cfg    Config
	state  State
	cursor Cursor
	newID  func() string
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithSessionIDs replaces the uuid session id generator.
func WithSessionIDs(gen func() string) MachineOption {
	return func(m *Machine) {
		m.newID = gen
	}
}

func NewMachine(cfg Config, opts ...MachineOption) *Machine {
	m := &Machine{
		cfg:   cfg,
		state: Idle{},
		newID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Step applies one tick and returns the effects to execute.
func (m *Machine) Step(t Tick) []Effect {
	if _, idle := m.state.(Idle); idle && t.Triggered && t.SessionID == "" {
		t.SessionID = m.newID()
	}

	res := Transition(m.cfg, m.state, m.cursor, t)
	m.state = res.State
	m.cursor = res.Cursor

	return res.Effects
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Cursor() Cursor {
	return m.cursor
}
