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

package protocol

import (
	"errors"
	"fmt"
)

const (
	DefaultRegisterSubject  = "server.register"
	DefaultHealthSubject    = "server.health"
	DefaultPagerSubject     = "server.pager"
	DefaultRequestSubject   = "server.request"
	DefaultBroadcastSubject = "client.global"
	DefaultClientPrefix     = "client"
)

// Subjects is the subject layout shared by the service and the devices.
type Subjects struct {
	Register     string `json:"register"`
	Health       string `json:"health"`
	Pager        string `json:"pager"`
	Request      string `json:"request"`
	Broadcast    string `json:"broadcast"`
	ClientPrefix string `json:"client_prefix"`
}

func DefaultSubjects() Subjects {
	return Subjects{
		Register:     DefaultRegisterSubject,
		Health:       DefaultHealthSubject,
		Pager:        DefaultPagerSubject,
		Request:      DefaultRequestSubject,
		Broadcast:    DefaultBroadcastSubject,
		ClientPrefix: DefaultClientPrefix,
	}
}

// ApplyDefaults fills empty subjects.
func (s *Subjects) ApplyDefaults() {
	def := DefaultSubjects()

	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}

	fill(&s.Register, def.Register)
	fill(&s.Health, def.Health)
	fill(&s.Pager, def.Pager)
	fill(&s.Request, def.Request)
	fill(&s.Broadcast, def.Broadcast)
	fill(&s.ClientPrefix, def.ClientPrefix)
}

func (s *Subjects) Validate() error {
	var errs []error

	inbound := map[string]string{
		"register": s.Register,
		"health":   s.Health,
		"pager":    s.Pager,
		"request":  s.Request,
	}

	for name, subject := range inbound {
		if subject == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSubject, name))
		}

		if subject == s.Broadcast {
			errs = append(errs, fmt.Errorf("%w: %s", ErrSubjectCollision, subject))
		}
	}

	if s.Broadcast == "" {
		errs = append(errs, fmt.Errorf("%w: broadcast", ErrMissingSubject))
	}

	if s.ClientPrefix == "" {
		errs = append(errs, fmt.Errorf("%w: client_prefix", ErrMissingSubject))
	}

	return errors.Join(errs...)
}

// Client returns the per-device command subject.
func (s *Subjects) Client(id string) string {
	return s.ClientPrefix + "." + id
}

// ValidateClientID extends the package level check with the subject layout: an id is
// rejected when its command subject is the broadcast subject or one of the inbound ones.
func (s *Subjects) ValidateClientID(id string) error {
	if err := ValidateClientID(id); err != nil {
		return err
	}

	subject := s.Client(id)

	for _, shared := range []string{s.Broadcast, s.Register, s.Health, s.Pager, s.Request} {
		if subject == shared {
			return fmt.Errorf("%w: %w: %q is %s", ErrInvalidClientID, ErrReservedClientID, id, subject)
		}
	}

	return nil
}
