// MIT License
//
// Copyright (c) 2022-2026 Arsene Tochemey Gandote
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/log"
	"github.com/tochemey/warden/supervisor"
)

// silentWatcher is a node death watcher that cannot be told about terminations
type silentWatcher struct{}

func (silentWatcher) Subscribe(address.Address, address.Node, func(address.Node)) {}
func (silentWatcher) Unsubscribe(address.Address)                                 {}

func TestActorSystem(t *testing.T) {
	t.Run("With invalid configuration", func(t *testing.T) {
		system, err := NewActorSystem("")
		require.ErrorIs(t, err, errors.ErrNameRequired)
		require.Nil(t, system)

		system, err = NewActorSystem("testSys", WithLogger(log.DiscardLogger), WithShutdownTimeout(0))
		var configErr *errors.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		require.Nil(t, system)

		system, err = NewActorSystem("testSys", WithLogger(log.DiscardLogger), WithNode(address.NodeFrom("", 80, "uid")))
		require.ErrorIs(t, err, errors.ErrInvalidNode)
		require.Nil(t, system)

		invalid := supervisor.NewSupervisor(supervisor.WithRule(supervisor.AnyError(), supervisor.Restart(-1, 0)))
		system, err = NewActorSystem("testSys", WithLogger(log.DiscardLogger), WithDefaultSupervisor(invalid))
		require.ErrorIs(t, err, errors.ErrInvalidSupervisor)
		require.Nil(t, system)
	})
	t.Run("With start and stop", func(t *testing.T) {
		ctx := context.Background()
		node := address.NewNode("127.0.0.1", 9100)
		system, err := NewActorSystem("testSys", WithLogger(log.DiscardLogger), WithNode(node))
		require.NoError(t, err)
		assert.Equal(t, "testSys", system.Name())
		assert.Equal(t, node, system.Node())
		assert.NotNil(t, system.Logger())

		require.ErrorIs(t, system.Stop(ctx), errors.ErrActorSystemNotStarted)
		_, err = system.Spawn(ctx, "worker", newTestActor(newProbe()))
		require.ErrorIs(t, err, errors.ErrActorSystemNotStarted)
		_, err = system.Subscribe()
		require.ErrorIs(t, err, errors.ErrActorSystemNotStarted)

		require.NoError(t, system.Start(ctx))
		require.ErrorIs(t, system.Start(ctx), errors.ErrActorSystemAlreadyStarted)
		assert.True(t, system.Running())

		p := newProbe()
		pid := spawnRunning(t, system, "worker", newTestActor(p))

		require.NoError(t, system.Stop(ctx))
		assert.False(t, system.Running())
		assert.True(t, pid.IsStopped())
		assert.Equal(t, 1, p.PostStops())
		assert.Empty(t, system.Actors())
		assert.Zero(t, system.watchTables.len())
	})
	t.Run("With spawn", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		_, err := system.Spawn(ctx, "", newTestActor(newProbe()))
		require.ErrorIs(t, err, errors.ErrNameRequired)

		_, err = system.Spawn(ctx, "worker", nil)
		require.Error(t, err)

		invalid := supervisor.NewSupervisor(supervisor.WithRule(nil, supervisor.Stop()))
		_, err = system.Spawn(ctx, "worker", newTestActor(newProbe()), WithSupervisor(invalid))
		require.ErrorIs(t, err, errors.ErrInvalidSupervisor)

		pid := spawnRunning(t, system, "worker", newTestActor(newProbe()))
		assert.Equal(t, "worker", pid.Name())
		assert.True(t, pid.IsLocal())
		assert.Equal(t, pid.Address().String(), pid.String())
		assert.Len(t, pid.Supervisor().Rules(), len(supervisor.DefaultSupervisor().Rules()))

		_, err = system.Spawn(ctx, "worker", newTestActor(newProbe()))
		require.ErrorIs(t, err, errors.ErrActorAlreadyExists)

		actual, err := system.ActorOf("worker")
		require.NoError(t, err)
		assert.Same(t, pid, actual)

		// the name is free again once the actor stopped
		require.NoError(t, pid.Shutdown(ctx))
		_, err = system.ActorOf("worker")
		require.ErrorIs(t, err, errors.ErrActorNotFound)

		respawned := spawnRunning(t, system, "worker", newTestActor(newProbe()))
		assert.NotEqual(t, pid.Address(), respawned.Address())
	})
	t.Run("With resolve", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		pid := spawnRunning(t, system, "worker", newTestActor(newProbe()))
		ref, err := system.Resolve(pid.Address())
		require.NoError(t, err)
		assert.Same(t, pid, ref)

		_, err = system.Resolve(address.NoSender)
		require.ErrorIs(t, err, errors.ErrNotResolvable)

		// foreign identity without transport
		_, err = system.Resolve(address.New("remote", address.NewNode("127.0.0.1", 9200)))
		require.ErrorIs(t, err, errors.ErrNotResolvable)

		require.NoError(t, pid.Shutdown(ctx))
		_, err = system.Resolve(pid.Address())
		require.ErrorIs(t, err, errors.ErrNotResolvable)
	})
	t.Run("With messages to a stopped actor", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)
		events := newCollector(t, system)

		pid := spawnRunning(t, system, "worker", newTestActor(newProbe()))
		require.NoError(t, pid.Shutdown(ctx))

		require.ErrorIs(t, system.Tell(ctx, pid, new(ping)), errors.ErrDead)
		require.ErrorIs(t, system.Tell(ctx, newRemoteRef(pid.Address()), new(ping)), errors.ErrActorNotFound)
		require.ErrorIs(t, system.Tell(ctx, nil, new(ping)), errors.ErrNotResolvable)

		require.Eventually(t, func() bool { return len(collected[*Deadletter](events)) == 2 }, waitFor, tick)
		for _, deadletter := range collected[*Deadletter](events) {
			assert.Equal(t, pid.Address(), deadletter.Receiver)
			assert.True(t, deadletter.Sender.IsZero())
			assert.IsType(t, new(ping), deadletter.Message)
			assert.ErrorIs(t, deadletter.Reason, errors.ErrDead)
		}
	})
	t.Run("With queued messages when the actor stops", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)
		events := newCollector(t, system)

		p := newProbe()
		pid := spawnRunning(t, system, "worker", newTestActor(p))

		release := make(chan struct{})
		require.NoError(t, system.Tell(ctx, pid, &block{release: release}))
		require.NoError(t, system.Tell(ctx, pid, new(stopSelf)))
		require.NoError(t, system.Tell(ctx, pid, &seq{n: 1}))
		require.NoError(t, system.Tell(ctx, pid, &seq{n: 2}))
		close(release)

		require.Eventually(t, pid.IsStopped, waitFor, tick)
		require.Eventually(t, func() bool { return len(collected[*Deadletter](events)) == 2 }, waitFor, tick)
		assert.Empty(t, p.Received())
	})
	t.Run("With reply to the sender", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		senderProbe, receiverProbe := newProbe(), newProbe()
		sender := spawnRunning(t, system, "sender", newTestActor(senderProbe))
		receiver := spawnRunning(t, system, "receiver", newTestActor(receiverProbe))

		require.NoError(t, sender.Tell(ctx, receiver, new(ping)))
		require.Eventually(t, func() bool {
			for _, msg := range senderProbe.Received() {
				if _, ok := msg.(*pong); ok {
					return true
				}
			}
			return false
		}, waitFor, tick)
	})
	t.Run("With shutdown timing out", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		pid := spawnRunning(t, system, "worker", newTestActor(newProbe()))
		release := make(chan struct{})
		require.NoError(t, system.Tell(ctx, pid, &block{release: release}))

		shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		require.ErrorIs(t, pid.Shutdown(shutdownCtx), errors.ErrShutdownTimeout)

		close(release)
		require.NoError(t, pid.Shutdown(ctx))
		require.NoError(t, pid.Shutdown(ctx))
		<-pid.Stopped()
	})
	t.Run("With lifecycle events", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)
		events := newCollector(t, system)

		pid := spawnRunning(t, system, "worker", newTestActor(newProbe()), WithSupervisor(restartOnError(1, 0)))
		require.NoError(t, system.Tell(ctx, pid, &failWith{err: assert.AnError}))
		require.Eventually(t, func() bool { return pid.RestartCount() == 1 }, waitFor, tick)
		require.NoError(t, pid.Shutdown(ctx))

		require.Eventually(t, func() bool { return len(collected[*ActorStopped](events)) == 1 }, waitFor, tick)
		started := collected[*ActorStarted](events)
		restarted := collected[*ActorRestarted](events)
		require.Len(t, started, 1)
		require.Len(t, restarted, 1)
		assert.Equal(t, pid.Address(), started[0].Address)
		assert.Equal(t, 1, restarted[0].Restarts)
		assert.ErrorIs(t, restarted[0].Reason, assert.AnError)
		assert.NoError(t, collected[*ActorStopped](events)[0].Reason)

		require.NoError(t, system.Unsubscribe(events.subscriber))
		assert.False(t, events.subscriber.Active())
	})
	t.Run("With a node death watcher that cannot be told", func(t *testing.T) {
		system := newTestSystem(t, WithNodeDeathWatcher(silentWatcher{}))
		assert.NotPanics(t, func() { system.NodeTerminated(address.NewNode("127.0.0.1", 9300)) })
	})
}

func TestLoopbackTransport(t *testing.T) {
	t.Run("With delivery between systems", func(t *testing.T) {
		ctx := context.Background()
		transport := NewLoopbackTransport()

		local := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", 9401)))
		remote := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", 9402)))
		transport.Register(local)
		transport.Register(remote)

		remoteProbe := newProbe()
		target := spawnRunning(t, remote, "target", newTestActor(remoteProbe))

		ref, err := local.Resolve(target.Address())
		require.NoError(t, err)
		assert.False(t, ref.IsLocal())

		require.NoError(t, local.Tell(ctx, ref, &seq{n: 1}))
		require.Eventually(t, func() bool { return len(remoteProbe.Received()) == 1 }, waitFor, tick)

		transport.Deregister(remote)
		require.ErrorIs(t, local.Tell(ctx, ref, &seq{n: 2}), errors.ErrRemoteSendFailure)
	})
	t.Run("With delivery to a system that is not started", func(t *testing.T) {
		system, err := NewActorSystem("testSys", WithLogger(log.DiscardLogger))
		require.NoError(t, err)

		addr := address.New("worker", system.Node())
		require.ErrorIs(t, system.Deliver(context.Background(), addr, address.NoSender, new(ping)), errors.ErrActorSystemNotStarted)
	})
	t.Run("With delivery to a foreign identity", func(t *testing.T) {
		system := newTestSystem(t)
		foreign := address.New("worker", address.NewNode("127.0.0.1", 9403))
		require.ErrorIs(t, system.Deliver(context.Background(), foreign, address.NoSender, new(ping)), errors.ErrNotResolvable)
	})
}
