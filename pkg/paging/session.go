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
	"slices"
	"time"
)

// Session is the bookkeeping of one page request, from trigger to resolution.
type Session struct {
	ID        string
	StartedAt time.Time

	Current  string
	Previous string

	// Attempted counts candidates consumed, including ones skipped as stale.
	Attempted int
	// Bound is the registry size when the session started.
	Bound int

	Ack    bool
	Refuse bool

	// Deadline is when Current was paged; the wait is measured from it.
	Deadline time.Time

	Tried []string
}

func newSession(id string, now time.Time, bound int) Session {
	return Session{
		ID:        id,
		StartedAt: now,
		Bound:     bound,
		// No target yet, so there is nothing to cancel on the first advance.
		Refuse:   true,
		Deadline: now,
	}
}

func (s Session) tried(id string) bool {
	return slices.Contains(s.Tried, id)
}

// withTried returns s with id appended to Tried without touching the backing array
// of the receiver.
func (s Session) withTried(id string) Session {
	s.Tried = append(slices.Clip(s.Tried), id)

	return s
}
