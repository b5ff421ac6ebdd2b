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

//go:generate mockgen -destination=mock_counter.go -package=counter github.com/carverauto/patronhandler/pkg/counter Store

// Package counter persists the number of accepted pages.
package counter

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Key is the JSON field, and KV key, holding the count.
const Key = "responses"

const (
	BackendFile = "file"
	BackendKV   = "kv"
)

var (
	ErrUnknownBackend = errors.New("unknown counter backend")
	ErrMissingPath    = errors.New("counter file path is required")
	ErrMissingBucket  = errors.New("counter kv bucket is required")
	ErrNoConnection   = errors.New("kv counter backend needs a NATS connection")

	// ErrCorrupt is returned when the stored value is not an integer.
	ErrCorrupt = errors.New("stored counter is not an integer")
)

// Store is a monotonically increasing persisted counter.
type Store interface {
	// Increment adds one and returns the new value.
	Increment(ctx context.Context) (int64, error)
	Value(ctx context.Context) (int64, error)
}

// Config selects and configures the backend.
type Config struct {
	Backend string `json:"backend"`
	// Path is the JSON file for the file backend.
	Path string `json:"path"`
	// Bucket is the JetStream KV bucket for the kv backend.
	Bucket string `json:"bucket"`
}

func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}

	if c.Backend == BackendFile && c.Path == "" {
		c.Path = "analytics.json"
	}

	if c.Backend == BackendKV && c.Bucket == "" {
		c.Bucket = "patron-handler"
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFile:
		if c.Path == "" {
			return ErrMissingPath
		}
	case BackendKV:
		if c.Bucket == "" {
			return ErrMissingBucket
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}

	return nil
}

// Open builds the Store selected by cfg. nc is only used by the kv backend.
func Open(ctx context.Context, cfg Config, nc *nats.Conn) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == BackendFile {
		return NewFileStore(cfg.Path), nil
	}

	if nc == nil {
		return nil, ErrNoConnection
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return NewKVStore(ctx, js, cfg.Bucket)
}
