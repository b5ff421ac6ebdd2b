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

import "github.com/carverauto/patronhandler/pkg/registry"

// Cursor is the round-robin position. It survives sessions so consecutive requests
// start with the device after the one paged last.
type Cursor struct {
	Last string
}

// next returns the first id after Last (wrapping) that skip rejects, or false when
// every id in roster is skipped. If Last is gone the walk starts at the first id.
func (c Cursor) next(roster registry.Roster, skip func(id string) bool) (string, bool) {
	n := len(roster)
	if n == 0 {
		return "", false
	}

	start := 0
	if i := roster.Index(c.Last); i >= 0 {
		start = (i + 1) % n
	}

	for k := 0; k < n; k++ {
		id := roster[(start+k)%n].ID
		if !skip(id) {
			return id, true
		}
	}

	return "", false
}
