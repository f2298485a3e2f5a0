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
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/hashicorp/memberlist"
	"go.uber.org/atomic"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/internal/chain"
	"github.com/tochemey/warden/internal/validation"
	"github.com/tochemey/warden/log"
)

const (
	// DefaultMaxJoinAttempts is the default number of join attempts
	DefaultMaxJoinAttempts = 5
	// DefaultJoinRetryInterval is the default pause between join attempts
	DefaultJoinRetryInterval = time.Second
	// DefaultJoinTimeout is the default time given to join the peers
	DefaultJoinTimeout = 30 * time.Second
	// DefaultShutdownTimeout is the default time given to the leave broadcast
	DefaultShutdownTimeout = 5 * time.Second
)

// NodeTerminator is told when a node incarnation left the cluster. Both
// NodeWatcher and the actor system satisfy it.
type NodeTerminator interface {
	NodeTerminated(node address.Node)
}

// Membership runs the gossip based failure detector of the local node. Every
// member gossips its incarnation as node meta so that a NodeLeave event is
// turned into the NodeTerminated notification of that exact incarnation.
type Membership struct {
	mu sync.Mutex

	node       address.Node
	terminator NodeTerminator
	logger     log.Logger

	peers             []string
	maxJoinAttempts   int
	joinRetryInterval time.Duration
	joinTimeout       time.Duration
	shutdownTimeout   time.Duration

	config     *memberlist.Config
	memberlist *memberlist.Memberlist
	started    *atomic.Bool

	eventsCh           chan memberlist.NodeEvent
	stopEventsListener chan struct{}
	eventsListenerDone chan struct{}

	membersMu sync.RWMutex
	members   map[string]address.Node
}

// NewMembership creates the membership of node. terminator is told about every
// member leaving or declared dead.
func NewMembership(node address.Node, terminator NodeTerminator, opts ...Option) (*Membership, error) {
	membership := &Membership{
		node:              node,
		terminator:        terminator,
		logger:            log.DefaultLogger,
		maxJoinAttempts:   DefaultMaxJoinAttempts,
		joinRetryInterval: DefaultJoinRetryInterval,
		joinTimeout:       DefaultJoinTimeout,
		shutdownTimeout:   DefaultShutdownTimeout,
		started:           atomic.NewBool(false),
		members:           make(map[string]address.Node),
	}

	for _, opt := range opts {
		opt.Apply(membership)
	}

	if err := validation.New(validation.FailFast()).
		AddAssertion(terminator != nil, "node terminator is required").
		AddAssertion(membership.logger != nil, "logger is required").
		AddAssertion(membership.maxJoinAttempts > 0, "max join attempts must be positive").
		AddAssertion(membership.joinTimeout > 0, "join timeout must be positive").
		AddAssertion(membership.shutdownTimeout > 0, "shutdown timeout must be positive").
		Validate(); err != nil {
		return nil, errors.NewConfigurationError(err)
	}

	if err := node.Validate(); err != nil {
		return nil, errors.NewConfigurationError(err)
	}

	bindAddr, err := bindIP(node.Host())
	if err != nil {
		return nil, errors.NewConfigurationError(err)
	}

	meta, err := encodeNode(node)
	if err != nil {
		return nil, errors.NewConfigurationError(err)
	}

	if len(meta) > memberlist.MetaMaxSize {
		return nil, errors.NewConfigurationError(fmt.Errorf("node meta exceeds %d bytes", memberlist.MetaMaxSize))
	}

	config := memberlist.DefaultLANConfig()
	config.BindAddr = bindAddr
	config.BindPort = node.Port()
	config.AdvertisePort = config.BindPort
	config.Name = node.String()
	config.LogOutput = newLogWriter(membership.logger)
	config.Delegate = &metaDelegate{meta: meta}
	membership.config = config
	return membership, nil
}

// Node returns the local node incarnation
func (m *Membership) Node() address.Node {
	return m.node
}

// Start creates the local member and joins the configured peers
func (m *Membership) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started.Load() {
		return errors.ErrMembershipAlreadyStarted
	}

	// create enough buffer to house the cluster events
	m.eventsCh = make(chan memberlist.NodeEvent, 256)
	m.stopEventsListener = make(chan struct{})
	m.eventsListenerDone = make(chan struct{})
	m.config.Events = &memberlist.ChannelEventDelegate{Ch: m.eventsCh}

	mlist, err := memberlist.Create(m.config)
	if err != nil {
		m.logger.Error(fmt.Errorf("failed to create memberlist: %w", err))
		return err
	}
	m.memberlist = mlist

	go m.eventsListener()

	if err := m.join(ctx); err != nil {
		m.shutdown()
		return err
	}

	m.started.Store(true)
	m.logger.Infof("%s membership successfully started", m.node)
	return nil
}

// Stop broadcasts the departure of the local member and shuts it down
func (m *Membership) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// no-op when the node has not started
	if !m.started.Load() {
		return nil
	}

	// no matter the outcome the node is officially off
	m.started.Store(false)
	if err := chain.New(chain.WithRunAll(), chain.WithContext(ctx)).
		AddRunner(func() error { return m.memberlist.Leave(m.shutdownTimeout) }).
		AddRunner(m.shutdown).
		AddContextRunner(func(ctx context.Context) error {
			select {
			case <-m.eventsListenerDone:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}).
		Run(); err != nil {
		m.logger.Error(fmt.Errorf("%s membership failed to stop: %w", m.node, err))
		return err
	}

	m.membersMu.Lock()
	clear(m.members)
	m.membersMu.Unlock()

	m.logger.Infof("%s membership successfully stopped", m.node)
	return nil
}

// Members returns the other nodes currently alive in the cluster
func (m *Membership) Members() []address.Node {
	m.membersMu.RLock()
	defer m.membersMu.RUnlock()
	nodes := make([]address.Node, 0, len(m.members))
	for _, node := range m.members {
		nodes = append(nodes, node)
	}
	return nodes
}

// Join adds the given peers to the cluster of a started membership
func (m *Membership) Join(peers ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started.Load() {
		return errors.ErrMembershipNotStarted
	}

	if _, err := m.memberlist.Join(peers); err != nil {
		return fmt.Errorf("failed to join [%s]: %w", strings.Join(peers, ","), err)
	}
	return nil
}

// join attempts to join an existing cluster if peers are provided
func (m *Membership) join(ctx context.Context) error {
	if len(m.peers) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.joinTimeout)
	defer cancel()

	retrier := retry.NewRetrier(m.maxJoinAttempts, m.joinRetryInterval, m.joinRetryInterval)
	if err := retrier.RunContext(ctx, func(context.Context) error {
		_, err := m.memberlist.Join(m.peers)
		return err
	}); err != nil {
		m.logger.Error(fmt.Errorf("failed to join cluster: %w", err))
		return err
	}

	m.logger.Infof("%s successfully joined cluster: [%s]", m.node, strings.Join(m.peers, ","))
	return nil
}

// shutdown stops the memberlist and the events listener
func (m *Membership) shutdown() error {
	err := m.memberlist.Shutdown()
	close(m.stopEventsListener)
	return err
}

// eventsListener turns the memberlist events into membership changes
func (m *Membership) eventsListener() {
	defer close(m.eventsListenerDone)
	for {
		select {
		case event := <-m.eventsCh:
			m.handle(event)
		case <-m.stopEventsListener:
			return
		}
	}
}

func (m *Membership) handle(event memberlist.NodeEvent) {
	// skip this node
	if event.Node == nil || event.Node.Name == m.config.Name {
		return
	}

	node, err := decodeNode(event.Node.Meta)
	if err != nil {
		m.membersMu.RLock()
		known, ok := m.members[event.Node.Name]
		m.membersMu.RUnlock()
		if !ok {
			m.logger.Errorf("failed to decode node meta of %s: %v", event.Node.Name, err)
			return
		}
		node = known
	}

	switch event.Event {
	case memberlist.NodeJoin, memberlist.NodeUpdate:
		m.membersMu.Lock()
		m.members[event.Node.Name] = node
		m.membersMu.Unlock()
		m.logger.Debugf("%s observed member %s", m.node, node)
	case memberlist.NodeLeave:
		m.membersMu.Lock()
		delete(m.members, event.Node.Name)
		m.membersMu.Unlock()
		m.logger.Infof("%s observed member %s leaving", m.node, node)
		m.terminator.NodeTerminated(node)
	}
}

// metaDelegate gossips the local node incarnation
type metaDelegate struct {
	meta []byte
}

// enforce compilation error
var _ memberlist.Delegate = (*metaDelegate)(nil)

// NodeMeta implements memberlist.Delegate
func (d *metaDelegate) NodeMeta(limit int) []byte {
	if len(d.meta) > limit {
		return nil
	}
	return d.meta
}

// NotifyMsg implements memberlist.Delegate
func (d *metaDelegate) NotifyMsg([]byte) {}

// GetBroadcasts implements memberlist.Delegate
func (d *metaDelegate) GetBroadcasts(int, int) [][]byte {
	return nil
}

// LocalState implements memberlist.Delegate
func (d *metaDelegate) LocalState(bool) []byte {
	return nil
}

// MergeRemoteState implements memberlist.Delegate
func (d *metaDelegate) MergeRemoteState([]byte, bool) {}
