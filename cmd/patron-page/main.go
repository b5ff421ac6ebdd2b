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

// patron-page asks a running patron-handler to page the next available device, the
// same way a call button or a remote front end does.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/natsutil"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	url := flag.String("nats", "nats://127.0.0.1:4222", "NATS server URL")
	subject := flag.String("subject", protocol.DefaultRequestSubject, "Page request subject")
	source := flag.String("source", "patron-page", "Requester name recorded in the coordinator log")
	creds := flag.String("creds", "", "NATS credentials file")
	timeout := flag.Duration("timeout", 5*time.Second, "How long to wait for the broker")
	flag.Parse()

	cliLogger, err := logger.New(&logger.Config{Level: "warn", Output: "stderr"})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	nc, err := natsutil.ConnectWithSecurity(ctx, natsutil.ConnectConfig{
		URL:       *url,
		Name:      "patron-page",
		CredsFile: *creds,
	}, cliLogger)
	if err != nil {
		return err
	}
	defer nc.Close()

	if err := nc.Publish(*subject, []byte(*source)); err != nil {
		return fmt.Errorf("failed to publish page request: %w", err)
	}

	if err := nc.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush page request: %w", err)
	}

	fmt.Printf("page requested on %s\n", *subject)

	return nil
}
