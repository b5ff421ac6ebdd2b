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

package models

import (
	"errors"
	"time"
)

const (
	DefaultTickInterval      = 200 * time.Millisecond
	DefaultPingInterval      = 4 * time.Second
	DefaultInactiveThreshold = 10 * time.Second
	DefaultOfflineThreshold  = 20 * time.Second
	DefaultWaitTime          = 8000 * time.Millisecond
	DefaultErrorBlink        = 1000 * time.Millisecond
	DefaultStatusDisplay     = 2000 * time.Millisecond
	DefaultPublishTimeout    = 2 * time.Second
)

var (
	ErrTimingOrder       = errors.New("timing requires ping_interval < inactive_threshold < offline_threshold")
	ErrTimingNonPositive = errors.New("timing values must be positive")
)

// Timing holds every timing constant of the liveness monitor and the paging machine.
type Timing struct {
	TickInterval      Duration `json:"tick_interval"`
	PingInterval      Duration `json:"ping_interval"`
	InactiveThreshold Duration `json:"inactive_threshold"`
	OfflineThreshold  Duration `json:"offline_threshold"`
	WaitTime          Duration `json:"wait_time"`
	ErrorBlink        Duration `json:"error_blink"`
	StatusDisplay     Duration `json:"status_display"`
	PublishTimeout    Duration `json:"publish_timeout"`
}

// DefaultTiming returns the timings the patron devices were built against.
func DefaultTiming() Timing {
	return Timing{
		TickInterval:      Duration(DefaultTickInterval),
		PingInterval:      Duration(DefaultPingInterval),
		InactiveThreshold: Duration(DefaultInactiveThreshold),
		OfflineThreshold:  Duration(DefaultOfflineThreshold),
		WaitTime:          Duration(DefaultWaitTime),
		ErrorBlink:        Duration(DefaultErrorBlink),
		StatusDisplay:     Duration(DefaultStatusDisplay),
		PublishTimeout:    Duration(DefaultPublishTimeout),
	}
}

// ApplyDefaults fills zero values from DefaultTiming.
func (t *Timing) ApplyDefaults() {
	def := DefaultTiming()

	fill := func(dst *Duration, src Duration) {
		if *dst == 0 {
			*dst = src
		}
	}

	fill(&t.TickInterval, def.TickInterval)
	fill(&t.PingInterval, def.PingInterval)
	fill(&t.InactiveThreshold, def.InactiveThreshold)
	fill(&t.OfflineThreshold, def.OfflineThreshold)
	fill(&t.WaitTime, def.WaitTime)
	fill(&t.ErrorBlink, def.ErrorBlink)
	fill(&t.StatusDisplay, def.StatusDisplay)
	fill(&t.PublishTimeout, def.PublishTimeout)
}

func (t *Timing) Validate() error {
	for _, d := range []Duration{
		t.TickInterval, t.PingInterval, t.InactiveThreshold, t.OfflineThreshold,
		t.WaitTime, t.ErrorBlink, t.StatusDisplay, t.PublishTimeout,
	} {
		if d <= 0 {
			return ErrTimingNonPositive
		}
	}

	if t.PingInterval >= t.InactiveThreshold || t.InactiveThreshold >= t.OfflineThreshold {
		return ErrTimingOrder
	}

	return nil
}
