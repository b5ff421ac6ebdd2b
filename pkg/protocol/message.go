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

package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ClientMessage is the JSON object devices publish on the register, health and pager
// subjects. Keys are single letters to keep payloads small on the devices.
type ClientMessage struct {
	ID       string       `json:"i"`
	Name     string       `json:"n,omitempty"`
	Status   ClientStatus `json:"s"`
	Response Response     `json:"r"`
	// LastContact is assigned by the server in epoch seconds. Values sent by devices are
	// dropped on decode.
	LastContact float64 `json:"p,omitempty"`
}

// DecodeClientMessage parses and validates an inbound device payload.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage

	if err := json.Unmarshal(payload, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if msg.ID == "" {
		return ClientMessage{}, ErrMissingClientID
	}

	if err := ValidateClientID(msg.ID); err != nil {
		return ClientMessage{}, err
	}

	if !msg.Response.Valid() {
		return ClientMessage{}, fmt.Errorf("%w: %d", ErrUnknownResponse, int(msg.Response))
	}

	msg.LastContact = 0

	return msg, nil
}

// Encode marshals the message for publishing. Used by device simulators.
func (m ClientMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// ValidateClientID checks that id can be used as a single subject token, since each
// device listens on a subject derived from its own id.
func ValidateClientID(id string) error {
	if id == "" {
		return ErrMissingClientID
	}

	if strings.ContainsAny(id, ".*> \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidClientID, id)
	}

	return nil
}
