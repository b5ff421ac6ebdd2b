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
	"errors"
	"strings"

	"github.com/carverauto/patronhandler/pkg/paging"
	"github.com/carverauto/patronhandler/pkg/protocol"
	"github.com/carverauto/patronhandler/pkg/registry"
	"github.com/carverauto/patronhandler/pkg/transport"
)

const busRequestSource = "bus"

// ingest applies inbound device traffic. It runs on the transport goroutine, so it only
// touches the registry and pushes onto queues.
type ingest struct {
	s *Service
}

var _ transport.Handler = ingest{}

func (in ingest) HandleRegister(msg protocol.ClientMessage) {
	if err := in.s.registry.Register(msg.ID, msg.Name); err != nil {
		in.s.log.Warn().Err(err).Str("client_id", msg.ID).Msg("Rejected registration")
		return
	}

	in.s.log.Debug().Str("client_id", msg.ID).Str("name", msg.Name).Msg("Client registered")
}

// HandleHealth refreshes a client. A health message from an id we do not know is taken
// as a registration, which is how devices reappear after being swept.
func (in ingest) HandleHealth(msg protocol.ClientMessage) {
	err := in.s.registry.Touch(msg.ID)
	if errors.Is(err, registry.ErrClientNotFound) {
		in.HandleRegister(msg)
		return
	}

	if err != nil {
		in.s.log.Warn().Err(err).Str("client_id", msg.ID).Msg("Health update failed")
	}
}

// HandlePager records a page answer and forwards it to the control loop. Answers from
// unregistered ids are dropped.
func (in ingest) HandlePager(msg protocol.ClientMessage) {
	if err := in.s.registry.Touch(msg.ID); err != nil {
		in.s.log.Debug().Err(err).Str("client_id", msg.ID).Msg("Discarding pager message")
		return
	}

	if msg.Response == protocol.ResponseNone {
		return
	}

	if err := in.s.registry.SetResponse(msg.ID, msg.Response); err != nil {
		in.s.log.Debug().Err(err).Str("client_id", msg.ID).Msg("Client removed before response was recorded")
		return
	}

	in.s.responses.Push(paging.Response{ClientID: msg.ID, Code: msg.Response})
}

func (in ingest) HandlePageRequest(payload []byte) {
	source := strings.TrimSpace(string(payload))
	if source == "" {
		source = busRequestSource
	}

	in.s.RequestPage(source)
}
