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

// patron-device runs one simulated patron handler device against a broker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/carverauto/patronhandler/pkg/device"
	"github.com/carverauto/patronhandler/pkg/lifecycle"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/natsutil"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	url := flag.String("nats", "nats://127.0.0.1:4222", "NATS server URL")
	id := flag.String("id", "", "Device id, a single subject token")
	name := flag.String("name", "", "Display name (defaults to the id)")
	behavior := flag.String("behavior", string(device.BehaviorAccept), "Page answer: accept, deny or ignore")
	delay := flag.Duration("delay", 0, "Delay before answering a page")
	creds := flag.String("creds", "", "NATS credentials file")
	flag.Parse()

	b, err := device.ParseBehavior(*behavior)
	if err != nil {
		return err
	}

	ctx := context.Background()

	devLogger, shutdownLogs, err := lifecycle.CreateComponentLogger(ctx, "patron-device", logger.DefaultConfig())
	if err != nil {
		return err
	}

	defer func() { _ = shutdownLogs(context.Background()) }()

	nc, err := natsutil.ConnectWithSecurity(ctx, natsutil.ConnectConfig{
		URL:       *url,
		Name:      fmt.Sprintf("patron-device-%s", *id),
		CredsFile: *creds,
	}, devLogger)
	if err != nil {
		return err
	}
	defer nc.Close()

	d, err := device.New(nc, device.Config{
		ID:          *id,
		Name:        *name,
		Behavior:    b,
		AnswerDelay: *delay,
	}, devLogger)
	if err != nil {
		return err
	}

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: "patron-device",
		Service:     d,
		Logger:      devLogger,
	})
}
