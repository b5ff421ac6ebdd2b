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

//go:generate mockgen -destination=mock_observer.go -package=observer github.com/carverauto/patronhandler/pkg/observer Observer

// Package observer defines the contract between the coordination engine and any front
// end, and the notifications that flow across it.
package observer

import (
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/patronhandler/pkg/protocol"
)

// ErrInvalidArgument is returned for notifications a front end cannot represent.
var ErrInvalidArgument = errors.New("invalid argument")

// ClientInfo is the view of a device handed to front ends.
type ClientInfo struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Status   protocol.ClientStatus `json:"status"`
	LastSeen time.Time             `json:"last_seen"`
}

// ResponseKind selects what a front end shows after a page resolves.
type ResponseKind string

const (
	ResponseNoHelp     ResponseKind = "no_help"
	ResponsePageAccept ResponseKind = "page_accept"
)

// ParseResponseKind validates a kind received from outside the process.
func ParseResponseKind(s string) (ResponseKind, error) {
	kind := ResponseKind(s)
	if err := kind.Validate(); err != nil {
		return "", err
	}

	return kind, nil
}

func (k ResponseKind) Validate() error {
	switch k {
	case ResponseNoHelp, ResponsePageAccept:
		return nil
	default:
		return fmt.Errorf("%w: response kind %q", ErrInvalidArgument, string(k))
	}
}

// Display asks the front end to show or hide a response banner. Hold is how long the
// front end should keep a shown banner up on its own; zero means until told otherwise.
type Display struct {
	Kind    ResponseKind  `json:"kind"`
	Visible bool          `json:"visible"`
	Client  *ClientInfo   `json:"client,omitempty"`
	Hold    time.Duration `json:"hold"`
}

func (d Display) Validate() error {
	if err := d.Kind.Validate(); err != nil {
		return err
	}

	if d.Kind == ResponsePageAccept && d.Visible && d.Client == nil {
		return fmt.Errorf("%w: page_accept display without client", ErrInvalidArgument)
	}

	return nil
}

// Observer is implemented by front ends. Calls arrive on the goroutine running Pump.
type Observer interface {
	Add(client ClientInfo)
	Remove(clientID string)
	UpdateStatus(client ClientInfo, status protocol.ClientStatus)
	PagingStateChanged(paging bool)
	ResponseDisplay(display Display) error
}
