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

// Package protocol defines the patron device wire format: command ordinals, response
// and status codes, the JSON client message and the subject layout on the bus.
package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is sent to devices as its decimal ordinal with no envelope.
type Command int

const (
	CommandRegister Command = iota
	CommandHealth
	CommandPage
	CommandCancel
)

func (c Command) String() string {
	switch c {
	case CommandRegister:
		return "register"
	case CommandHealth:
		return "health"
	case CommandPage:
		return "page"
	case CommandCancel:
		return "cancel"
	default:
		return fmt.Sprintf("command(%d)", int(c))
	}
}

func (c Command) Valid() bool {
	return c >= CommandRegister && c <= CommandCancel
}

// Encode returns the wire payload for the command.
func (c Command) Encode() []byte {
	return []byte(strconv.Itoa(int(c)))
}

// DecodeCommand parses a command payload as devices receive it.
func DecodeCommand(payload []byte) (Command, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(payload)))
	if err != nil {
		return 0, fmt.Errorf("%w: command %q: %w", ErrMalformed, payload, err)
	}

	cmd := Command(n)
	if !cmd.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}

	return cmd, nil
}

// Response is a device's answer to a page.
type Response int

const (
	ResponseNone Response = iota
	ResponseAccept
	ResponseDeny
)

func (r Response) String() string {
	switch r {
	case ResponseNone:
		return "none"
	case ResponseAccept:
		return "accept"
	case ResponseDeny:
		return "deny"
	default:
		return fmt.Sprintf("response(%d)", int(r))
	}
}

func (r Response) Valid() bool {
	return r >= ResponseNone && r <= ResponseDeny
}

// ClientStatus is the liveness classification of a device. The numeric values match
// the "s" field devices put on the wire.
type ClientStatus int

const (
	StatusOffline ClientStatus = iota
	StatusInactive
	StatusActive
)

func (s ClientStatus) String() string {
	switch s {
	case StatusOffline:
		return "offline"
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}
