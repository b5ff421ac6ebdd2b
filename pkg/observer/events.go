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

package observer

import (
	"context"
	"fmt"

	"github.com/carverauto/patronhandler/pkg/eventq"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

type EventKind int

const (
	EventAdd EventKind = iota + 1
	EventRemove
	EventStatus
	EventPaging
	EventResponse
)

func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	case EventStatus:
		return "status"
	case EventPaging:
		return "paging"
	case EventResponse:
		return "response"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one queued observer notification. Only the fields of its Kind are set.
type Event struct {
	Kind     EventKind
	Client   ClientInfo
	ClientID string
	Status   protocol.ClientStatus
	Paging   bool
	Display  Display
}

func AddEvent(client ClientInfo) Event {
	return Event{Kind: EventAdd, Client: client, ClientID: client.ID}
}

func RemoveEvent(clientID string) Event {
	return Event{Kind: EventRemove, ClientID: clientID}
}

func StatusEvent(client ClientInfo, status protocol.ClientStatus) Event {
	return Event{Kind: EventStatus, Client: client, ClientID: client.ID, Status: status}
}

func PagingEvent(paging bool) Event {
	return Event{Kind: EventPaging, Paging: paging}
}

func ResponseEvent(display Display) Event {
	return Event{Kind: EventResponse, Display: display}
}

// Deliver invokes the Observer method matching ev.
func Deliver(obs Observer, ev Event) error {
	switch ev.Kind {
	case EventAdd:
		obs.Add(ev.Client)
	case EventRemove:
		obs.Remove(ev.ClientID)
	case EventStatus:
		obs.UpdateStatus(ev.Client, ev.Status)
	case EventPaging:
		obs.PagingStateChanged(ev.Paging)
	case EventResponse:
		if err := ev.Display.Validate(); err != nil {
			return err
		}

		return obs.ResponseDisplay(ev.Display)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, ev.Kind)
	}

	return nil
}

// Pump delivers queued events to obs in FIFO order until ctx is done. Events still
// queued at cancellation are flushed before returning.
func Pump(ctx context.Context, q *eventq.Queue[Event], obs Observer, log logger.Logger) {
	deliverAll := func() {
		for _, ev := range q.Drain() {
			if err := Deliver(obs, ev); err != nil {
				log.Error().Err(err).Str("event", ev.Kind.String()).Msg("Observer rejected notification")
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			deliverAll()
			return
		case <-q.Ready():
			deliverAll()
		}
	}
}
