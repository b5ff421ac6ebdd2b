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

// Package registry tracks the patron devices known to the coordinator and classifies
// their liveness from the time since each was last heard from.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// Notifier receives observer notifications for every registry mutation. Push must not
// block; it is called with the registry lock held.
type Notifier interface {
	Push(ev observer.Event)
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// WithSubjects rejects ids whose command subject would collide with the shared
// subjects of the given layout.
func WithSubjects(subjects protocol.Subjects) Option {
	return func(r *Registry) {
		r.validate = subjects.ValidateClientID
	}
}

// Registry is an insertion-ordered set of ClientRecords. All methods are safe for
// concurrent use; each holds the lock for exactly one logical update.
type Registry struct {
	mu      sync.Mutex
	order   []string
	records map[string]*ClientRecord
	notify  Notifier
	now     func() time.Time

	validate func(id string) error
}

func New(notify Notifier, opts ...Option) *Registry {
	r := &Registry{
		records: make(map[string]*ClientRecord),
		notify:  notify,
		now:     time.Now,

		validate: protocol.ValidateClientID,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register inserts id or overwrites the existing record in place. A new id is announced
// with Add; a re-registration keeps its position and is announced as a status update.
func (r *Registry) Register(id, name string) error {
	if err := r.validate(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()

	if rec, ok := r.records[id]; ok {
		if name != "" {
			rec.Name = name
		}

		rec.LastSeen = now
		rec.Status = protocol.StatusActive
		r.notify.Push(observer.StatusEvent(rec.Info(), protocol.StatusActive))

		return nil
	}

	rec := &ClientRecord{
		ID:       id,
		Name:     name,
		LastSeen: now,
		Status:   protocol.StatusActive,
	}

	r.records[id] = rec
	r.order = append(r.order, id)
	r.notify.Push(observer.AddEvent(rec.Info()))

	return nil
}

// Touch records contact from id and marks it active.
func (r *Registry) Touch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}

	rec.LastSeen = r.now()
	rec.Status = protocol.StatusActive
	r.notify.Push(observer.StatusEvent(rec.Info(), protocol.StatusActive))

	return nil
}

// SetResponse stores the last page response of id.
func (r *Registry) SetResponse(id string, resp protocol.Response) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}

	rec.LastResponse = resp

	return nil
}

// Remove deletes id and announces the removal. It reports whether id was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return false
	}

	r.removeLocked(id)

	return true
}

func (r *Registry) removeLocked(id string) {
	delete(r.records, id)

	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.notify.Push(observer.RemoveEvent(id))
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id string) (ClientRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return ClientRecord{}, false
	}

	return *rec, true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.order)
}

// Roster returns a snapshot in insertion order.
func (r *Registry) Roster() Roster {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(Roster, 0, len(r.order))

	for _, id := range r.order {
		rec, ok := r.records[id]
		if !ok {
			continue
		}

		out = append(out, Entry{ID: rec.ID, Name: rec.Name, LastSeen: rec.LastSeen, Status: rec.Status})
	}

	return out
}
