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
	"github.com/travisjeffery/go-dynaport"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/cluster"
	"github.com/tochemey/warden/log"
)

func TestClusterDeathWatch(t *testing.T) {
	t.Run("With a member leaving the cluster its watched actors are terminated", func(t *testing.T) {
		ctx := context.Background()
		ports := dynaport.Get(2)
		transport := NewLoopbackTransport()

		local := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", ports[0])))
		remote := newTestSystem(t, WithTransport(transport), WithNode(address.NewNode("127.0.0.1", ports[1])))
		transport.Register(local)
		transport.Register(remote)

		localMembership, err := cluster.NewMembership(local.Node(), local,
			cluster.WithLogger(log.DiscardLogger),
			cluster.WithShutdownTimeout(time.Second))
		require.NoError(t, err)
		require.NoError(t, localMembership.Start(ctx))
		t.Cleanup(func() { require.NoError(t, localMembership.Stop(ctx)) })

		remoteMembership, err := cluster.NewMembership(remote.Node(), remote,
			cluster.WithLogger(log.DiscardLogger),
			cluster.WithShutdownTimeout(time.Second),
			cluster.WithPeers(local.Node().HostPort()))
		require.NoError(t, err)
		require.NoError(t, remoteMembership.Start(ctx))
		require.Eventually(t, func() bool { return len(localMembership.Members()) == 1 }, 10*time.Second, tick)

		watcherProbe, watcheeProbe := newProbe(), newProbe()
		watcher := spawnRunning(t, local, "watcher", newTestActor(watcherProbe))
		watchee := spawnRunning(t, remote, "watchee", newTestActor(watcheeProbe))

		require.NoError(t, local.Tell(ctx, watcher, &watchRef{ref: watchee}))
		flush(t, local, watcher, watcherProbe)
		flush(t, remote, watchee, watcheeProbe)
		requireWatchers(t, remote, watchee, 1)

		// the remote node leaves while its actor is still alive
		transport.Deregister(remote)
		require.NoError(t, remoteMembership.Stop(ctx))

		require.Eventually(t, func() bool { return len(watcherProbe.Terminated()) == 1 }, 10*time.Second, tick)
		assert.Equal(t, watchee.Address(), watcherProbe.Terminated()[0])
		requireWatching(t, local, watcher, 0)
	})
}
