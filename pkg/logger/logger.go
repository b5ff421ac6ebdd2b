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

// Package logger provides JSON structured logging using zerolog
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// zeroLogger adapts a zerolog.Logger to Logger. Instances are independent; there is no
// process-wide logger.
type zeroLogger struct {
	z zerolog.Logger
}

// New builds a Logger from config. A nil config uses DefaultConfig.
func New(config *Config) (Logger, error) {
	z, err := newZerolog(config, os.Stdout, os.Stderr)
	if err != nil {
		return nil, err
	}

	return &zeroLogger{z: z}, nil
}

// Setup builds a Logger like New and, when config.OTel is enabled, tees every line to
// an OTLP log exporter. The returned shutdown flushes that exporter and is never nil.
func Setup(ctx context.Context, config *Config) (Logger, func(context.Context) error, error) {
	shutdown := func(context.Context) error { return nil }

	if config == nil {
		config = DefaultConfig()
	}

	var stdout, stderr io.Writer = os.Stdout, os.Stderr

	w, err := NewOTelWriter(ctx, config.OTel)

	switch {
	case errors.Is(err, ErrOTelLoggingDisabled):
	case err != nil:
		return nil, shutdown, err
	default:
		stdout = io.MultiWriter(os.Stdout, w)
		stderr = io.MultiWriter(os.Stderr, w)
		shutdown = w.Shutdown
	}

	z, err := newZerolog(config, stdout, stderr)
	if err != nil {
		_ = shutdown(ctx)
		return nil, func(context.Context) error { return nil }, err
	}

	return &zeroLogger{z: z}, shutdown, nil
}

// Wrap adapts an existing zerolog.Logger.
func Wrap(z zerolog.Logger) Logger {
	return &zeroLogger{z: z}
}

// NewTestLogger creates a no-op logger for testing that discards all output
func NewTestLogger() Logger {
	return &zeroLogger{z: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

func newZerolog(config *Config, stdout, stderr io.Writer) (zerolog.Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	output := stdout
	if config.Output == "stderr" {
		output = stderr
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", config.Level, err)
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339
	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}

func (l *zeroLogger) Trace() *zerolog.Event { return l.z.Trace() }
func (l *zeroLogger) Debug() *zerolog.Event { return l.z.Debug() }
func (l *zeroLogger) Info() *zerolog.Event  { return l.z.Info() }
func (l *zeroLogger) Warn() *zerolog.Event  { return l.z.Warn() }
func (l *zeroLogger) Error() *zerolog.Event { return l.z.Error() }
func (l *zeroLogger) Fatal() *zerolog.Event { return l.z.Fatal() }
func (l *zeroLogger) With() zerolog.Context { return l.z.With() }

func (l *zeroLogger) WithComponent(component string) zerolog.Logger {
	return l.z.With().Str("component", component).Logger()
}

func (l *zeroLogger) WithFields(fields map[string]interface{}) zerolog.Logger {
	return l.z.With().Fields(fields).Logger()
}

func (l *zeroLogger) SetLevel(level zerolog.Level) {
	l.z = l.z.Level(level)
}

func (l *zeroLogger) SetDebug(debug bool) {
	if debug {
		l.SetLevel(zerolog.DebugLevel)
		return
	}

	l.SetLevel(zerolog.InfoLevel)
}
