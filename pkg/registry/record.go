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

package registry

import (
	"time"

	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// ClientRecord is everything the coordinator knows about one device.
type ClientRecord struct {
	ID           string
	Name         string
	LastSeen     time.Time
	Status       protocol.ClientStatus
	LastResponse protocol.Response

	lastProbe time.Time
}

// Info is the observer view of the record.
func (r *ClientRecord) Info() observer.ClientInfo {
	return observer.ClientInfo{
		ID:       r.ID,
		Name:     r.Name,
		Status:   r.Status,
		LastSeen: r.LastSeen,
	}
}

// Entry is one element of a Roster.
type Entry struct {
	ID       string
	Name     string
	LastSeen time.Time
	Status   protocol.ClientStatus
}

func (e Entry) Info() observer.ClientInfo {
	return observer.ClientInfo{ID: e.ID, Name: e.Name, Status: e.Status, LastSeen: e.LastSeen}
}

// Roster is an immutable snapshot of the registry in insertion order.
type Roster []Entry

// Index returns the position of id or -1.
func (r Roster) Index(id string) int {
	for i := range r {
		if r[i].ID == id {
			return i
		}
	}

	return -1
}

func (r Roster) Has(id string) bool {
	return r.Index(id) >= 0
}

// Get returns the entry for id.
func (r Roster) Get(id string) (Entry, bool) {
	if i := r.Index(id); i >= 0 {
		return r[i], true
	}

	return Entry{}, false
}
