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
	"fmt"

	"github.com/carverauto/patronhandler/pkg/broker"
	"github.com/carverauto/patronhandler/pkg/counter"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/models"
	"github.com/carverauto/patronhandler/pkg/natsutil"
	"github.com/carverauto/patronhandler/pkg/paging"
	"github.com/carverauto/patronhandler/pkg/protocol"
	"github.com/carverauto/patronhandler/pkg/registry"
	"github.com/carverauto/patronhandler/pkg/transport"
)

const defaultServiceName = "patron-handler"

var (
	errMissingNATSURL  = errors.New("nats_url is required unless the embedded broker is enabled")
	errInvalidSubjects = errors.New("invalid subjects")
	errInvalidTiming   = errors.New("invalid timing")
	errInvalidCounter  = errors.New("invalid counter")
	errInvalidBroker   = errors.New("invalid broker")
)

// Config is the patron-handler service configuration.
type Config struct {
	ServiceName string                 `json:"service_name"`
	NATSURL     string                 `json:"nats_url"`
	NATSName    string                 `json:"nats_name"`
	CredsFile   string                 `json:"creds_file"`
	Security    *models.SecurityConfig `json:"security"`

	Subjects protocol.Subjects `json:"subjects"`
	Timing   models.Timing     `json:"timing"`
	Counter  counter.Config    `json:"counter"`

	// HealthListenAddr enables the gRPC health endpoint.
	HealthListenAddr string `json:"health_listen_addr"`

	Broker  *broker.Config     `json:"broker,omitempty"`
	Logging *logger.Config     `json:"logging,omitempty"`
	Metrics *logger.OTelConfig `json:"metrics,omitempty"`
	Tracing *logger.OTelConfig `json:"tracing,omitempty"`
}

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	c.Subjects.ApplyDefaults()
	c.Timing.ApplyDefaults()
	c.Counter.ApplyDefaults()
}

// Validate applies defaults and reports every problem at once.
func (c *Config) Validate() error {
	c.ApplyDefaults()

	var errs []error

	if c.NATSURL == "" && (c.Broker == nil || !c.Broker.Enabled) {
		errs = append(errs, errMissingNATSURL)
	}

	if err := c.Subjects.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", errInvalidSubjects, err))
	}

	if err := c.Timing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", errInvalidTiming, err))
	}

	if err := c.Counter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", errInvalidCounter, err))
	}

	if c.Broker != nil {
		if err := c.Broker.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", errInvalidBroker, err))
		}
	}

	return errors.Join(errs...)
}

// Transport returns the broker connection settings. url overrides NATSURL when set,
// which is how the embedded broker address is passed in.
func (c *Config) Transport(url string) transport.Config {
	if url == "" {
		url = c.NATSURL
	}

	return transport.Config{
		ConnectConfig: natsutil.ConnectConfig{
			URL:       url,
			Name:      c.NATSName,
			CredsFile: c.CredsFile,
			Security:  c.Security,
		},
		Subjects: c.Subjects,
	}
}

func (c *Config) thresholds() registry.Thresholds {
	return registry.Thresholds{
		PingInterval:      c.Timing.PingInterval.Std(),
		InactiveThreshold: c.Timing.InactiveThreshold.Std(),
		OfflineThreshold:  c.Timing.OfflineThreshold.Std(),
		ProbeInterval:     c.Timing.PingInterval.Std(),
	}
}

func (c *Config) pagingConfig() paging.Config {
	return paging.Config{
		WaitTime:          c.Timing.WaitTime.Std(),
		ErrorBlink:        c.Timing.ErrorBlink.Std(),
		StatusDisplay:     c.Timing.StatusDisplay.Std(),
		InactiveThreshold: c.Timing.InactiveThreshold.Std(),
	}
}
