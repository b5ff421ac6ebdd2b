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
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// LogObserver is a headless front end that writes every notification as a structured
// log line.
type LogObserver struct {
	logger logger.Logger
}

func NewLogObserver(log logger.Logger) *LogObserver {
	return &LogObserver{logger: log}
}

func (o *LogObserver) Add(client ClientInfo) {
	o.logger.Info().
		Str("client_id", client.ID).
		Str("client_name", client.Name).
		Msg("Patron device registered")
}

func (o *LogObserver) Remove(clientID string) {
	o.logger.Info().Str("client_id", clientID).Msg("Patron device offline, removed")
}

func (o *LogObserver) UpdateStatus(client ClientInfo, status protocol.ClientStatus) {
	ev := o.logger.Debug()
	if status != protocol.StatusActive {
		ev = o.logger.Warn()
	}

	ev.Str("client_id", client.ID).
		Str("client_name", client.Name).
		Str("status", status.String()).
		Time("last_seen", client.LastSeen).
		Msg("Patron device status")
}

func (o *LogObserver) PagingStateChanged(paging bool) {
	o.logger.Info().Bool("paging", paging).Msg("Paging state changed")
}

func (o *LogObserver) ResponseDisplay(display Display) error {
	if err := display.Validate(); err != nil {
		return err
	}

	ev := o.logger.Info().
		Str("kind", string(display.Kind)).
		Bool("visible", display.Visible).
		Dur("hold", display.Hold)

	if display.Client != nil {
		ev = ev.Str("client_id", display.Client.ID).Str("client_name", display.Client.Name)
	}

	ev.Msg("Response display")

	return nil
}

var _ Observer = (*LogObserver)(nil)
