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

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/errors"
)

// The methods below implement death watch for the owning actor. They run on
// the actor's processing goroutine only, which is what makes its watch table
// safe without locking.

// watch registers interest in ref. Re-watching replaces the handler without
// sending a second registration.
func (pid *PID) watch(ctx context.Context, ref ActorRef, handler TerminationHandler) error {
	if ref == nil {
		return errors.NewErrNotResolvable("<nil>")
	}

	watchee := ref.Address()
	if watchee == pid.address {
		pid.logger.Warnf("actor %s: %v", pid.address, errors.ErrSelfWatch)
		return nil
	}

	table := pid.system.watchTables.getOrCreate(pid.address)
	if entry, ok := table.watching[watchee]; ok {
		entry.handler = handler
		return nil
	}

	// a PID of this system is used as is so that watching an actor that just
	// died still yields its termination
	var resolved ActorRef = ref
	if local, ok := ref.(*PID); !ok || local.system != pid.system {
		var err error
		if resolved, err = pid.system.Resolve(watchee); err != nil {
			return err
		}
	}

	table.watching[watchee] = &watchEntry{ref: resolved, handler: handler}
	if err := pid.system.send(ctx, resolved, pid.address, new(watch)); err != nil {
		pid.logger.Debugf("watch registration from %s to %s not delivered: %v", pid.address, watchee, err)
	}

	if !watchee.IsLocalTo(pid.system.node) {
		pid.system.nodeWatcher.Subscribe(pid.address, watchee.Node(), func(node address.Node) {
			if err := pid.enqueue(newEnvelope(context.Background(), address.NoSender, &NodeTerminated{node: node})); err != nil {
				pid.logger.Debugf("node termination of %s dropped by %s: %v", node, pid.address, err)
			}
		})
	}
	return nil
}

// unwatch drops interest in watchee, including a termination not dispatched yet
func (pid *PID) unwatch(ctx context.Context, watchee address.Address) {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return
	}

	delete(table.pending, watchee)
	entry, ok := table.watching[watchee]
	if !ok {
		return
	}

	delete(table.watching, watchee)
	if err := pid.system.send(ctx, entry.ref, pid.address, new(unwatch)); err != nil {
		pid.logger.Debugf("unwatch from %s to %s not delivered: %v", pid.address, watchee, err)
	}
}

func (pid *PID) isWatching(watchee address.Address) bool {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return false
	}
	_, ok = table.watching[watchee]
	return ok
}

// becomeWatchedBy records an inbound watch registration
func (pid *PID) becomeWatchedBy(watcher address.Address) {
	if watcher.IsZero() {
		return
	}

	if watcher == pid.address {
		pid.logger.Warnf("actor %s: %v", pid.address, errors.ErrSelfWatch)
		return
	}

	table := pid.system.watchTables.getOrCreate(pid.address)
	table.watchedBy[watcher] = pid.system.refOf(watcher)
}

// removeWatchedBy drops an inbound watch registration
func (pid *PID) removeWatchedBy(watcher address.Address) {
	if table, ok := pid.system.watchTables.get(pid.address); ok {
		delete(table.watchedBy, watcher)
	}
}

// receiveTerminated forgets the terminated actor in both directions. When it
// was watched, exactly one reaction is scheduled through the mailbox so it
// never runs inline.
func (pid *PID) receiveTerminated(ctx context.Context, terminated address.Address) {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return
	}

	delete(table.watchedBy, terminated)
	entry, ok := table.watching[terminated]
	if !ok {
		return
	}

	delete(table.watching, terminated)
	table.pending[terminated] = entry.handler
	if err := pid.enqueue(newEnvelope(ctx, address.NoSender, &terminationNotice{address: terminated})); err != nil {
		delete(table.pending, terminated)
	}
}

// receiveNodeTerminated treats every watched actor hosted on node as
// terminated. Their existence at the time the node died is not confirmed.
func (pid *PID) receiveNodeTerminated(ctx context.Context, node address.Node) {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return
	}

	for watcher := range table.watchedBy {
		if watcher.Node().Equals(node) {
			delete(table.watchedBy, watcher)
		}
	}

	for watchee := range table.watching {
		if watchee.Node().Equals(node) {
			pid.receiveTerminated(ctx, watchee)
		}
	}
}

// dispatchTerminationNotice runs the reaction scheduled for terminated unless
// it was unwatched in the meantime
func (pid *PID) dispatchTerminationNotice(ctx context.Context, terminated address.Address) {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return
	}

	handler, ok := table.pending[terminated]
	if !ok {
		return
	}

	delete(table.pending, terminated)
	pid.system.metric.RecordTerminationNotice(ctx, pid.Name())

	if pid.status() != statusRunning || pid.actor == nil {
		return
	}

	msg := &Terminated{address: terminated}
	if handler == nil {
		pid.handleReceived(newEnvelope(ctx, terminated, msg))
		return
	}

	received := newReceiveContext(ctx, pid, terminated, msg)
	err := pid.runInScope(received.scope, func() error {
		handler(received, terminated)
		return received.err
	})
	if err != nil {
		pid.handleFailure(ctx, err)
	}
}

// notifyDependentsOfOwnTermination tells every watcher that this actor terminated
func (pid *PID) notifyDependentsOfOwnTermination(ctx context.Context) {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return
	}

	for watcher, ref := range table.watchedBy {
		if err := pid.system.send(ctx, ref, pid.address, &Terminated{address: pid.address}); err != nil {
			pid.logger.Debugf("termination of %s not delivered to %s: %v", pid.address, watcher, err)
		}
	}
	clear(table.watchedBy)
}

// unwatchAll drops every outgoing watch and the node subscriptions backing them
func (pid *PID) unwatchAll(ctx context.Context) {
	table, ok := pid.system.watchTables.get(pid.address)
	if !ok {
		return
	}

	for watchee := range table.watching {
		pid.unwatch(ctx, watchee)
	}
	clear(table.pending)
	pid.system.nodeWatcher.Unsubscribe(pid.address)
}

// teardownWatchTable releases the outgoing watches and destroys the table
func (pid *PID) teardownWatchTable(ctx context.Context) {
	pid.unwatchAll(ctx)
	pid.system.watchTables.remove(pid.address)
}
