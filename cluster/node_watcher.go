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

package cluster

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/log"
)

// NodeDeathWatcher tracks interest in remote node incarnations and notifies
// the subscribers once an incarnation is declared terminated
type NodeDeathWatcher interface {
	// Subscribe registers watcher's interest in node. onTerminated is called
	// at most once for the (watcher, node) pair.
	Subscribe(watcher address.Address, node address.Node, onTerminated func(node address.Node))
	// Unsubscribe drops every subscription held by watcher
	Unsubscribe(watcher address.Address)
}

// DefaultTerminatedCapacity is the default number of terminated incarnations
// a NodeWatcher remembers
const DefaultTerminatedCapacity = 1024

// NodeWatcher is the in-memory NodeDeathWatcher. Membership calls
// NodeTerminated when it detects that a node left the cluster.
//
// The most recent terminated incarnations are remembered so that a late
// subscription to one of them is notified right away. Older ones are forgotten
// once the capacity is reached.
type NodeWatcher struct {
	mu            sync.Mutex
	subscriptions map[address.Node]map[address.Address]func(address.Node)
	watchers      map[address.Address]mapset.Set[address.Node]
	terminated    mapset.Set[address.Node]
	// eviction order of terminated
	history  []address.Node
	capacity int
	logger   log.Logger
}

// NodeWatcherOption configures a NodeWatcher
type NodeWatcherOption func(*NodeWatcher)

// WithTerminatedCapacity sets how many terminated incarnations are remembered.
// Values below one are ignored.
func WithTerminatedCapacity(capacity int) NodeWatcherOption {
	return func(w *NodeWatcher) {
		if capacity > 0 {
			w.capacity = capacity
		}
	}
}

// enforce compilation error
var _ NodeDeathWatcher = (*NodeWatcher)(nil)

// NewNodeWatcher creates a NodeWatcher
func NewNodeWatcher(logger log.Logger, opts ...NodeWatcherOption) *NodeWatcher {
	if logger == nil {
		logger = log.DiscardLogger
	}
	watcher := &NodeWatcher{
		subscriptions: make(map[address.Node]map[address.Address]func(address.Node)),
		watchers:      make(map[address.Address]mapset.Set[address.Node]),
		terminated:    mapset.NewThreadUnsafeSet[address.Node](),
		capacity:      DefaultTerminatedCapacity,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(watcher)
	}
	return watcher
}

// Subscribe implements NodeDeathWatcher. Subscribing to an incarnation that is
// already terminated calls onTerminated right away.
func (w *NodeWatcher) Subscribe(watcher address.Address, node address.Node, onTerminated func(node address.Node)) {
	if onTerminated == nil {
		return
	}

	w.mu.Lock()
	if w.terminated.Contains(node) {
		w.mu.Unlock()
		onTerminated(node)
		return
	}

	subscribers, ok := w.subscriptions[node]
	if !ok {
		subscribers = make(map[address.Address]func(address.Node))
		w.subscriptions[node] = subscribers
	}

	if _, ok := subscribers[watcher]; ok {
		w.mu.Unlock()
		return
	}

	subscribers[watcher] = onTerminated
	nodes, ok := w.watchers[watcher]
	if !ok {
		nodes = mapset.NewThreadUnsafeSet[address.Node]()
		w.watchers[watcher] = nodes
	}
	nodes.Add(node)
	w.mu.Unlock()
	w.logger.Debugf("%s subscribed to node %s", watcher, node)
}

// Unsubscribe implements NodeDeathWatcher
func (w *NodeWatcher) Unsubscribe(watcher address.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()

	nodes, ok := w.watchers[watcher]
	if !ok {
		return
	}

	for _, node := range nodes.ToSlice() {
		subscribers := w.subscriptions[node]
		delete(subscribers, watcher)
		if len(subscribers) == 0 {
			delete(w.subscriptions, node)
		}
	}
	delete(w.watchers, watcher)
}

// NodeTerminated declares node terminated and calls every subscription held
// on that exact incarnation. Later incarnations on the same endpoint are not affected.
func (w *NodeWatcher) NodeTerminated(node address.Node) {
	w.mu.Lock()
	if w.terminated.Contains(node) {
		w.mu.Unlock()
		return
	}

	w.remember(node)
	subscribers := w.subscriptions[node]
	delete(w.subscriptions, node)
	for watcher := range subscribers {
		if nodes, ok := w.watchers[watcher]; ok {
			nodes.Remove(node)
			if nodes.Cardinality() == 0 {
				delete(w.watchers, watcher)
			}
		}
	}
	w.mu.Unlock()

	w.logger.Infof("node %s terminated, notifying %d watcher(s)", node, len(subscribers))
	for _, onTerminated := range subscribers {
		onTerminated(node)
	}
}

// remember records node as terminated and forgets the oldest incarnation
// beyond capacity. Callers hold the lock.
func (w *NodeWatcher) remember(node address.Node) {
	if len(w.history) >= w.capacity {
		w.terminated.Remove(w.history[0])
		w.history = w.history[1:]
	}
	w.terminated.Add(node)
	w.history = append(w.history, node)
}

// IsTerminated reports whether node was declared terminated
func (w *NodeWatcher) IsTerminated(node address.Node) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.terminated.Contains(node)
}

// Subscriptions returns the number of watchers subscribed to node
func (w *NodeWatcher) Subscriptions(node address.Node) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subscriptions[node])
}
