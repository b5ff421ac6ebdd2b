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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/patronhandler/pkg/observer"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

// Thresholds are the silence durations that drive liveness classification.
type Thresholds struct {
	PingInterval      time.Duration
	InactiveThreshold time.Duration
	OfflineThreshold  time.Duration
	// ProbeInterval is the minimum gap between two probes of one device. Zero probes
	// on every sweep.
	ProbeInterval time.Duration
}

// SweepResult lists what one sweep did. Probes are ids that should be sent a health
// command; the caller publishes them after the sweep has released the lock.
type SweepResult struct {
	Removed []string
	Demoted []string
	Probes  []string
	Err     error
}

// Sweep classifies every record by its silence at now, most severe first. Past the
// offline threshold it is removed. Past the inactive threshold it is demoted, and the
// observer hears about it only on the Active to Inactive change, not on every sweep.
// Past the ping interval it is probed, at most once per ProbeInterval.
func (r *Registry) Sweep(now time.Time, th Thresholds) SweepResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res SweepResult

	res.Err = r.checkLocked()

	for _, id := range append([]string(nil), r.order...) {
		rec := r.records[id]
		silence := now.Sub(rec.LastSeen)

		switch {
		case silence > th.OfflineThreshold:
			rec.Status = protocol.StatusOffline
			r.removeLocked(id)
			res.Removed = append(res.Removed, id)
		case silence > th.InactiveThreshold:
			if rec.Status == protocol.StatusActive {
				rec.Status = protocol.StatusInactive
				r.notify.Push(observer.StatusEvent(rec.Info(), protocol.StatusInactive))
				res.Demoted = append(res.Demoted, id)
			}
		case silence > th.PingInterval:
			if th.ProbeInterval <= 0 || now.Sub(rec.lastProbe) >= th.ProbeInterval {
				rec.lastProbe = now
				res.Probes = append(res.Probes, id)
			}
		}
	}

	return res
}

// checkLocked verifies that order and records describe the same ids, dropping whatever
// does not match so the sweep can continue.
func (r *Registry) checkLocked() error {
	var errs []error

	seen := make(map[string]struct{}, len(r.order))
	order := r.order[:0]

	for _, id := range r.order {
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("%w: duplicate id %s in order", ErrInvariant, id))
			continue
		}

		if _, ok := r.records[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: ordered id %s has no record", ErrInvariant, id))
			continue
		}

		seen[id] = struct{}{}
		order = append(order, id)
	}

	r.order = order

	for id := range r.records {
		if _, ok := seen[id]; !ok {
			errs = append(errs, fmt.Errorf("%w: record %s missing from order", ErrInvariant, id))
			delete(r.records, id)
		}
	}

	return errors.Join(errs...)
}
