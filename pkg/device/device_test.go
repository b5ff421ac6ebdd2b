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

package device

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/patronhandler/pkg/broker/brokertest"
	"github.com/carverauto/patronhandler/pkg/logger"
	"github.com/carverauto/patronhandler/pkg/protocol"
)

func setup(t *testing.T, behavior Behavior) (*Device, *nats.Conn, protocol.Subjects) {
	t.Helper()

	srv := brokertest.Run(t, false)

	server, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(server.Close)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	d, err := New(nc, Config{ID: "desk-1", Name: "Front Desk", Behavior: behavior}, logger.NewTestLogger())
	require.NoError(t, err)

	return d, server, protocol.DefaultSubjects()
}

func next(t *testing.T, sub *nats.Subscription) protocol.ClientMessage {
	t.Helper()

	m, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	msg, err := protocol.DecodeClientMessage(m.Data)
	require.NoError(t, err)

	return msg
}

func TestDeviceAnnouncesAndAnswers(t *testing.T) {
	d, server, subjects := setup(t, BehaviorAccept)

	register, err := server.SubscribeSync(subjects.Register)
	require.NoError(t, err)
	health, err := server.SubscribeSync(subjects.Health)
	require.NoError(t, err)
	pager, err := server.SubscribeSync(subjects.Pager)
	require.NoError(t, err)
	require.NoError(t, server.Flush())

	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop(context.Background()) })

	msg := next(t, register)
	assert.Equal(t, "desk-1", msg.ID)
	assert.Equal(t, "Front Desk", msg.Name)

	require.NoError(t, server.Publish(subjects.Broadcast, protocol.CommandRegister.Encode()))
	assert.Equal(t, "desk-1", next(t, register).ID)

	require.NoError(t, server.Publish(subjects.Client("desk-1"), protocol.CommandHealth.Encode()))
	assert.Equal(t, protocol.StatusActive, next(t, health).Status)

	require.NoError(t, server.Publish(subjects.Client("desk-1"), protocol.CommandPage.Encode()))
	assert.Equal(t, protocol.ResponseAccept, next(t, pager).Response)

	require.NoError(t, server.Publish(subjects.Client("desk-1"), protocol.CommandCancel.Encode()))
	require.NoError(t, server.Flush())

	require.Eventually(t, func() bool { return d.Cancels() == 1 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, d.Pages())
	assert.Equal(t, 1, d.Probes())
}

func TestDeviceDenyAndMute(t *testing.T) {
	d, server, subjects := setup(t, BehaviorDeny)

	health, err := server.SubscribeSync(subjects.Health)
	require.NoError(t, err)
	pager, err := server.SubscribeSync(subjects.Pager)
	require.NoError(t, err)
	require.NoError(t, server.Flush())

	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop(context.Background()) })

	require.NoError(t, server.Publish(subjects.Client("desk-1"), protocol.CommandPage.Encode()))
	assert.Equal(t, protocol.ResponseDeny, next(t, pager).Response)

	d.SetMute(true)
	require.NoError(t, server.Publish(subjects.Client("desk-1"), protocol.CommandHealth.Encode()))
	require.NoError(t, server.Flush())

	require.Eventually(t, func() bool { return d.Probes() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = health.NextMsg(200 * time.Millisecond)
	require.ErrorIs(t, err, nats.ErrTimeout)
}

func TestDeviceIgnore(t *testing.T) {
	d, server, subjects := setup(t, BehaviorIgnore)

	pager, err := server.SubscribeSync(subjects.Pager)
	require.NoError(t, err)
	require.NoError(t, server.Flush())

	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() { _ = d.Stop(context.Background()) })

	require.NoError(t, server.Publish(subjects.Client("desk-1"), protocol.CommandPage.Encode()))
	require.NoError(t, server.Flush())

	require.Eventually(t, func() bool { return d.Pages() == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = pager.NextMsg(200 * time.Millisecond)
	require.ErrorIs(t, err, nats.ErrTimeout)
}

func TestNewValidates(t *testing.T) {
	_, err := New(nil, Config{ID: "a.b"}, logger.NewTestLogger())
	require.ErrorIs(t, err, protocol.ErrInvalidClientID)

	_, err = New(nil, Config{ID: "global"}, logger.NewTestLogger())
	require.ErrorIs(t, err, protocol.ErrReservedClientID)

	_, err = New(nil, Config{ID: "a", Behavior: "panic"}, logger.NewTestLogger())
	require.ErrorIs(t, err, ErrUnknownBehavior)

	b, err := ParseBehavior("deny")
	require.NoError(t, err)
	assert.Equal(t, BehaviorDeny, b)
}
