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
)

func TestDeathWatch(t *testing.T) {
	t.Run("With termination delivered to Receive", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe, watcheeProbe := newProbe(), newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, system, "watchee", newTestActor(watcheeProbe))

		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: watchee}))
		flush(t, system, watcher, watcherProbe)
		flush(t, system, watchee, watcheeProbe)
		requireWatchers(t, system, watchee, 1)
		requireWatching(t, system, watcher, 1)

		require.NoError(t, watchee.Shutdown(ctx))

		require.Eventually(t, func() bool { return len(watcherProbe.Terminated()) == 1 }, waitFor, tick)
		assert.Equal(t, watchee.Address(), watcherProbe.Terminated()[0])
		assert.True(t, watcher.IsRunning())

		// the table of the terminated actor is gone
		_, ok := system.watchTables.get(watchee.Address())
		assert.False(t, ok)
	})
	t.Run("With repeated watch the handler fires exactly once", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe, watcheeProbe := newProbe(), newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, system, "watchee", newTestActor(watcheeProbe))

		for range 3 {
			require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: watchee, withHandler: true}))
		}
		flush(t, system, watcher, watcherProbe)
		flush(t, system, watchee, watcheeProbe)
		requireWatchers(t, system, watchee, 1)

		require.NoError(t, watchee.Shutdown(ctx))

		require.Eventually(t, func() bool { return len(watcherProbe.Handled()) == 1 }, waitFor, tick)
		require.Never(t, func() bool { return len(watcherProbe.Handled()) > 1 }, 300*time.Millisecond, tick)
		assert.Empty(t, watcherProbe.Terminated())
	})
	t.Run("With unwatch the in-flight termination is discarded", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe, watcheeProbe := newProbe(), newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, system, "watchee", newTestActor(watcheeProbe))

		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: watchee, withHandler: true}))
		flush(t, system, watcher, watcherProbe)
		flush(t, system, watchee, watcheeProbe)

		// hold the watcher so that the termination queues up behind the block
		release := make(chan struct{})
		require.NoError(t, system.Tell(ctx, watcher, &block{release: release}))
		require.NoError(t, watchee.Shutdown(ctx))
		require.NoError(t, system.Tell(ctx, watcher, &unwatchRef{ref: watchee}))
		close(release)

		// the second flush runs after the scheduled notice
		flush(t, system, watcher, watcherProbe)
		flush(t, system, watcher, watcherProbe)
		assert.Empty(t, watcherProbe.Handled())

		requireWatches(t, system, watcher, watchCounts{})
	})
	t.Run("With self watch nothing is registered", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		selfProbe := newProbe()
		pid := spawnRunning(t, system, "narcissus", newTestActor(selfProbe))

		require.NoError(t, system.Tell(ctx, pid, &watchRef{ref: pid, withHandler: true}))
		flush(t, system, pid, selfProbe)

		requireWatching(t, system, pid, 0)
		requireWatchers(t, system, pid, 0)
		assert.Empty(t, selfProbe.WatchErrors())

		require.NoError(t, pid.Shutdown(ctx))
		assert.Empty(t, selfProbe.Handled())
		assert.Empty(t, selfProbe.Terminated())
	})
	t.Run("With a dead watchee the termination is still observed", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe := newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, system, "watchee", newTestActor(newProbe()))
		require.NoError(t, watchee.Shutdown(ctx))

		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: watchee, withHandler: true}))

		require.Eventually(t, func() bool { return len(watcherProbe.Handled()) == 1 }, waitFor, tick)
		assert.Equal(t, watchee.Address(), watcherProbe.Handled()[0])
		assert.Empty(t, watcherProbe.WatchErrors())
	})
	t.Run("With a bogus identity the watch fails", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe := newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))

		unknown := newRemoteRef(address.New("ghost", address.NewNode("10.0.0.1", 9000)))
		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: unknown}))
		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: nil}))

		require.Eventually(t, func() bool { return len(watcherProbe.WatchErrors()) == 2 }, waitFor, tick)
		for _, err := range watcherProbe.WatchErrors() {
			assert.ErrorIs(t, err, errors.ErrNotResolvable)
		}
		flush(t, system, watcher, watcherProbe)
		requireWatching(t, system, watcher, 0)
	})
	t.Run("With watch outside of the actor processing", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe := newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, system, "watchee", newTestActor(newProbe()))

		require.NoError(t, system.Tell(ctx, watcher, new(captureContext)))
		require.Eventually(t, func() bool { return watcherProbe.Captured() != nil }, waitFor, tick)

		captured := watcherProbe.Captured()
		require.ErrorIs(t, captured.Watch(watchee), errors.ErrOutsideContext)
		require.ErrorIs(t, captured.WatchWith(watchee, nil), errors.ErrOutsideContext)
		require.ErrorIs(t, captured.Unwatch(watchee), errors.ErrOutsideContext)
		require.False(t, captured.IsWatching(watchee))

		flush(t, system, watcher, watcherProbe)
		requireWatching(t, system, watcher, 0)
	})
	t.Run("With cyclic watches", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		probeA, probeB := newProbe(), newProbe()
		pidA := spawnRunning(t, system, "a", newTestActor(probeA))
		pidB := spawnRunning(t, system, "b", newTestActor(probeB))

		require.NoError(t, system.Tell(ctx, pidA, &watchRef{ref: pidB}))
		require.NoError(t, system.Tell(ctx, pidB, &watchRef{ref: pidA}))
		flush(t, system, pidA, probeA)
		flush(t, system, pidB, probeB)
		requireWatchers(t, system, pidA, 1)
		requireWatchers(t, system, pidB, 1)

		require.NoError(t, pidA.Shutdown(ctx))
		require.Eventually(t, func() bool { return len(probeB.Terminated()) == 1 }, waitFor, tick)

		require.NoError(t, pidB.Shutdown(ctx))
		assert.Empty(t, probeA.Terminated())
		assert.Zero(t, system.watchTables.len())
	})
	t.Run("With watcher termination the watchee forgets it", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe, watcheeProbe := newProbe(), newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, system, "watchee", newTestActor(watcheeProbe))

		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: watchee}))
		flush(t, system, watcher, watcherProbe)
		flush(t, system, watchee, watcheeProbe)
		requireWatchers(t, system, watchee, 1)

		require.NoError(t, watcher.Shutdown(ctx))
		flush(t, system, watchee, watcheeProbe)
		requireWatchers(t, system, watchee, 0)
		assert.Empty(t, watcheeProbe.Terminated())
	})
	t.Run("With restart the outgoing watches are dropped", func(t *testing.T) {
		ctx := context.Background()
		system := newTestSystem(t)

		watcherProbe, watcheeProbe, observerProbe := newProbe(), newProbe(), newProbe()
		watcher := spawnRunning(t, system, "watcher", newTestActor(watcherProbe),
			WithSupervisor(restartOnError(5, 0)))
		watchee := spawnRunning(t, system, "watchee", newTestActor(watcheeProbe))
		observer := spawnRunning(t, system, "observer", newTestActor(observerProbe))

		require.NoError(t, system.Tell(ctx, watcher, &watchRef{ref: watchee, withHandler: true}))
		require.NoError(t, system.Tell(ctx, observer, &watchRef{ref: watcher}))
		flush(t, system, watcher, watcherProbe)
		flush(t, system, observer, observerProbe)
		flush(t, system, watchee, watcheeProbe)
		requireWatchers(t, system, watchee, 1)
		requireWatchers(t, system, watcher, 1)

		require.NoError(t, system.Tell(ctx, watcher, &failWith{err: assert.AnError}))
		require.Eventually(t, func() bool { return watcher.RestartCount() == 1 }, waitFor, tick)

		// the watchee was told to forget the watcher
		flush(t, system, watchee, watcheeProbe)
		requireWatchers(t, system, watchee, 0)

		// the watchers of the restarted actor are kept
		flush(t, system, watcher, watcherProbe)
		requireWatchers(t, system, watcher, 1)
		requireWatching(t, system, watcher, 0)

		require.NoError(t, watchee.Shutdown(ctx))
		require.Never(t, func() bool { return len(watcherProbe.Handled()) > 0 }, 300*time.Millisecond, tick)
		assert.Empty(t, observerProbe.Terminated())
	})
}

func TestNodeDeathWatch(t *testing.T) {
	t.Run("With node termination every watched actor on the node is terminated once", func(t *testing.T) {
		ctx := context.Background()
		transport := NewLoopbackTransport()

		local := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", 7001)))
		remote := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", 7002)))
		transport.Register(local)
		transport.Register(remote)

		watcherProbe := newProbe()
		watcher := spawnRunning(t, local, "watcher", newTestActor(watcherProbe))
		bystander := spawnRunning(t, local, "bystander", newTestActor(newProbe()))

		watchees := make([]*PID, 0, 3)
		watcheeProbes := make([]*probe, 0, 3)
		for _, name := range []string{"w1", "w2", "w3"} {
			p := newProbe()
			watchee := spawnRunning(t, remote, name, newTestActor(p))
			watchees = append(watchees, watchee)
			watcheeProbes = append(watcheeProbes, p)
			require.NoError(t, local.Tell(ctx, watcher, &watchRef{ref: watchee}))
		}
		require.NoError(t, local.Tell(ctx, watcher, &watchRef{ref: bystander}))
		flush(t, local, watcher, watcherProbe)

		for i, watchee := range watchees {
			flush(t, remote, watchee, watcheeProbes[i])
			requireWatchers(t, remote, watchee, 1)
		}

		nodeWatcher := local.nodeWatcher.(interface{ Subscriptions(address.Node) int })
		require.Equal(t, 1, nodeWatcher.Subscriptions(remote.Node()))

		local.NodeTerminated(remote.Node())

		require.Eventually(t, func() bool { return len(watcherProbe.Terminated()) == 3 }, waitFor, tick)
		terminated := watcherProbe.Terminated()
		for _, watchee := range watchees {
			assert.Contains(t, terminated, watchee.Address())
		}
		assert.NotContains(t, terminated, bystander.Address())
		assert.Zero(t, nodeWatcher.Subscriptions(remote.Node()))

		// late terminations of the same actors are ignored
		for _, watchee := range watchees {
			require.NoError(t, watchee.Shutdown(ctx))
		}
		require.Never(t, func() bool { return len(watcherProbe.Terminated()) > 3 }, 300*time.Millisecond, tick)
	})
	t.Run("With remote watchee termination", func(t *testing.T) {
		ctx := context.Background()
		transport := NewLoopbackTransport()

		local := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", 7003)))
		remote := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", 7004)))
		transport.Register(local)
		transport.Register(remote)

		watcherProbe, watcheeProbe := newProbe(), newProbe()
		watcher := spawnRunning(t, local, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, remote, "watchee", newTestActor(watcheeProbe))

		require.NoError(t, local.Tell(ctx, watcher, &watchRef{ref: watchee, withHandler: true}))
		flush(t, local, watcher, watcherProbe)
		flush(t, remote, watchee, watcheeProbe)
		requireWatchers(t, remote, watchee, 1)

		require.NoError(t, watchee.Shutdown(ctx))
		require.Eventually(t, func() bool { return len(watcherProbe.Handled()) == 1 }, waitFor, tick)
		assert.Equal(t, watchee.Address(), watcherProbe.Handled()[0])
	})
	t.Run("With an unreachable node the watch is answered with a termination", func(t *testing.T) {
		ctx := context.Background()
		transport := NewLoopbackTransport()

		local := newTestSystem(t, WithTransport(transport))
		transport.Register(local)

		watcherProbe := newProbe()
		watcher := spawnRunning(t, local, "watcher", newTestActor(watcherProbe))

		gone := newRemoteRef(address.New("gone", address.NewNode("127.0.0.1", 7005)))
		require.NoError(t, local.Tell(ctx, watcher, &watchRef{ref: gone}))

		require.Eventually(t, func() bool { return len(watcherProbe.Terminated()) == 1 }, waitFor, tick)
		assert.Equal(t, gone.Address(), watcherProbe.Terminated()[0])
	})
}
