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
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/cluster"
	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/internal/eventstream"
	"github.com/tochemey/warden/internal/metric"
	"github.com/tochemey/warden/internal/validation"
	"github.com/tochemey/warden/internal/xsync"
	"github.com/tochemey/warden/log"
	"github.com/tochemey/warden/supervisor"

	otelmetric "go.opentelemetry.io/otel/metric"
)

const (
	// EventsTopic is the topic of the lifecycle and dead letter events
	EventsTopic = "topic.events"

	// DefaultShutdownTimeout bounds the time Stop waits for the actors
	DefaultShutdownTimeout = 30 * time.Second
)

// ActorSystem hosts actors on one node incarnation. It resolves identities,
// routes messages locally or through the Transport and owns the registry of
// watch tables.
type ActorSystem struct {
	name    string
	node    address.Node
	logger  log.Logger
	started *atomic.Bool

	// spawnMu guards the name registry across spawn and removal
	spawnMu sync.Mutex
	pids    *xsync.Map[address.Address, *PID]
	names   *xsync.Map[string, address.Address]

	watchTables       *watchTableRegistry
	nodeWatcher       cluster.NodeDeathWatcher
	transport         Transport
	defaultSupervisor *supervisor.Supervisor
	shutdownTimeout   time.Duration

	scheduler     *scheduler
	eventStream   eventstream.Stream
	meterProvider otelmetric.MeterProvider
	metric        *metric.ActorMetric
}

// enforce compilation error
var _ cluster.NodeTerminator = (*ActorSystem)(nil)

// NewActorSystem creates an actor system. It must be started before use.
func NewActorSystem(name string, opts ...Option) (*ActorSystem, error) {
	if name == "" {
		return nil, errors.ErrNameRequired
	}

	system := &ActorSystem{
		name:              name,
		node:              address.NewNode("127.0.0.1", 0),
		logger:            log.DefaultLogger,
		started:           atomic.NewBool(false),
		pids:              xsync.NewMap[address.Address, *PID](),
		names:             xsync.NewMap[string, address.Address](),
		watchTables:       newWatchTableRegistry(),
		defaultSupervisor: supervisor.DefaultSupervisor(),
		shutdownTimeout:   DefaultShutdownTimeout,
		eventStream:       eventstream.New(),
	}

	for _, opt := range opts {
		opt.Apply(system)
	}

	if err := validation.New(validation.FailFast()).
		AddValidator(system.node).
		AddAssertion(system.logger != nil, "the [logger] is required").
		AddAssertion(system.shutdownTimeout > 0, "the [shutdown timeout] must be positive").
		AddValidator(system.defaultSupervisor).
		Validate(); err != nil {
		return nil, errors.NewConfigurationError(err)
	}

	if system.nodeWatcher == nil {
		system.nodeWatcher = cluster.NewNodeWatcher(system.logger)
	}

	instruments, err := metric.NewActorMetric(metric.New(metric.WithMeterProvider(system.meterProvider)).Meter())
	if err != nil {
		return nil, err
	}

	system.metric = instruments
	system.scheduler = newScheduler(system.logger, system.shutdownTimeout)
	return system, nil
}

// Name returns the actor system name
func (x *ActorSystem) Name() string {
	return x.name
}

// Node returns the node incarnation hosting the actor system
func (x *ActorSystem) Node() address.Node {
	return x.node
}

// Logger returns the actor system logger
func (x *ActorSystem) Logger() log.Logger {
	return x.logger
}

// Running reports whether the actor system is started
func (x *ActorSystem) Running() bool {
	return x.started.Load()
}

// Start starts the actor system
func (x *ActorSystem) Start(ctx context.Context) error {
	if !x.started.CompareAndSwap(false, true) {
		return errors.ErrActorSystemAlreadyStarted
	}

	x.scheduler.Start(ctx)
	x.logger.Infof("actor system %s started on %s", x.name, x.node)
	return nil
}

// Stop stops every actor and then the actor system. Actors are stopped
// concurrently and Stop waits at most the shutdown timeout.
func (x *ActorSystem) Stop(ctx context.Context) error {
	if !x.started.Load() {
		return errors.ErrActorSystemNotStarted
	}

	ctx, cancel := context.WithTimeout(ctx, x.shutdownTimeout)
	defer cancel()

	var (
		mu   sync.Mutex
		errs error
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, pid := range x.pids.Values() {
		eg.Go(func() error {
			if err := pid.Shutdown(egCtx); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = eg.Wait()

	x.started.Store(false)
	x.scheduler.Stop(ctx)
	x.eventStream.Close()
	x.pids.Reset()
	x.names.Reset()
	x.watchTables.reset()

	x.logger.Infof("actor system %s stopped", x.name)
	return multierr.Append(errs, x.logger.Flush())
}

// Spawn creates an actor and returns its PID. The actor runs its PreStart
// hook as the first item of its own mailbox, so a setup failure goes through
// supervision.
func (x *ActorSystem) Spawn(ctx context.Context, name string, producer Producer, opts ...SpawnOption) (*PID, error) {
	if !x.started.Load() {
		return nil, errors.ErrActorSystemNotStarted
	}

	if name == "" {
		return nil, errors.ErrNameRequired
	}

	config := newSpawnConfig(opts...)
	sup := config.supervisor
	if sup == nil {
		sup = x.defaultSupervisor
	}

	if err := validation.New(validation.FailFast()).
		AddAssertion(producer != nil, "the [producer] is required").
		AddValidator(sup).
		Validate(); err != nil {
		return nil, err
	}

	x.spawnMu.Lock()
	if existing, ok := x.names.Get(name); ok {
		if pid, ok := x.pids.Get(existing); ok && pid.IsAlive() {
			x.spawnMu.Unlock()
			return nil, errors.NewErrActorAlreadyExists(name)
		}
	}

	pid := newPID(address.New(name, x.node), x, producer, sup)
	x.pids.Set(pid.Address(), pid)
	x.names.Set(name, pid.Address())
	x.spawnMu.Unlock()

	if err := pid.enqueue(newEnvelope(ctx, address.NoSender, new(startSignal))); err != nil {
		x.remove(pid)
		return nil, err
	}
	return pid, nil
}

// ActorOf returns the live actor registered under name
func (x *ActorSystem) ActorOf(name string) (*PID, error) {
	addr, ok := x.names.Get(name)
	if !ok {
		return nil, errors.NewErrActorNotFound(name)
	}

	pid, ok := x.pids.Get(addr)
	if !ok || !pid.IsAlive() {
		return nil, errors.NewErrActorNotFound(name)
	}
	return pid, nil
}

// Actors returns the actors hosted by the system
func (x *ActorSystem) Actors() []*PID {
	return x.pids.Values()
}

// Resolve maps an identity to a reference. A local identity must belong to a
// live actor. A remote identity needs a transport.
func (x *ActorSystem) Resolve(addr address.Address) (ActorRef, error) {
	if addr.IsZero() || addr.Validate() != nil {
		return nil, errors.NewErrNotResolvable(addr.String())
	}

	if addr.IsLocalTo(x.node) {
		pid, ok := x.pids.Get(addr)
		if !ok || !pid.IsAlive() {
			return nil, errors.NewErrNotResolvable(addr.String())
		}
		return pid, nil
	}

	if x.transport == nil {
		return nil, errors.NewErrNotResolvable(addr.String())
	}
	return newRemoteRef(addr), nil
}

// Tell sends msg to the given actor without sender
func (x *ActorSystem) Tell(ctx context.Context, to ActorRef, msg any) error {
	return x.send(ctx, to, address.NoSender, msg)
}

// Deliver is the entry point of the messages carried by the Transport. A
// message that cannot be delivered is handled here, so the error only reports
// that this system could not take the message at all.
func (x *ActorSystem) Deliver(ctx context.Context, to, from address.Address, msg any) error {
	if !x.started.Load() {
		return errors.ErrActorSystemNotStarted
	}

	if !to.IsLocalTo(x.node) {
		return errors.NewErrNotResolvable(to.String())
	}

	pid, ok := x.pids.Get(to)
	if !ok {
		x.undelivered(ctx, to, from, msg)
		return nil
	}

	if err := pid.enqueue(newEnvelope(ctx, from, msg)); err != nil {
		x.undelivered(ctx, to, from, msg)
	}
	return nil
}

// NodeTerminated declares a node incarnation terminated. Every actor
// watching an actor hosted on that node is notified.
func (x *ActorSystem) NodeTerminated(node address.Node) {
	terminator, ok := x.nodeWatcher.(cluster.NodeTerminator)
	if !ok {
		x.logger.Warnf("node death watcher cannot be told about %s", node)
		return
	}
	x.logger.Infof("node %s terminated", node)
	terminator.NodeTerminated(node)
}

// Subscribe creates a subscriber to the lifecycle and dead letter events
func (x *ActorSystem) Subscribe() (eventstream.Subscriber, error) {
	if !x.started.Load() {
		return nil, errors.ErrActorSystemNotStarted
	}
	subscriber := x.eventStream.AddSubscriber()
	x.eventStream.Subscribe(subscriber, EventsTopic)
	return subscriber, nil
}

// Unsubscribe removes a subscriber created by Subscribe
func (x *ActorSystem) Unsubscribe(subscriber eventstream.Subscriber) error {
	if !x.started.Load() {
		return errors.ErrActorSystemNotStarted
	}
	x.eventStream.Unsubscribe(subscriber, EventsTopic)
	x.eventStream.RemoveSubscriber(subscriber)
	return nil
}

// send routes msg to a local mailbox or through the transport
func (x *ActorSystem) send(ctx context.Context, to ActorRef, from address.Address, msg any) error {
	if !x.started.Load() {
		return errors.ErrActorSystemNotStarted
	}

	if to == nil {
		return errors.NewErrNotResolvable("<nil>")
	}

	addr := to.Address()
	if addr.IsLocalTo(x.node) {
		pid, ok := to.(*PID)
		if !ok || pid.system != x {
			pid, ok = x.pids.Get(addr)
		}

		if !ok {
			x.undelivered(ctx, addr, from, msg)
			return errors.NewErrActorNotFound(addr.String())
		}

		if err := pid.enqueue(newEnvelope(ctx, from, msg)); err != nil {
			x.undelivered(ctx, addr, from, msg)
			return err
		}
		return nil
	}

	if x.transport == nil {
		x.undelivered(ctx, addr, from, msg)
		return errors.ErrTransportNotSet
	}

	if err := x.transport.Deliver(ctx, addr, from, msg); err != nil {
		x.undelivered(ctx, addr, from, msg)
		return errors.NewErrRemoteSendFailure(err)
	}
	return nil
}

// refOf returns the best reference for addr without validating it
func (x *ActorSystem) refOf(addr address.Address) ActorRef {
	if addr.IsLocalTo(x.node) {
		if pid, ok := x.pids.Get(addr); ok {
			return pid
		}
	}
	return newRemoteRef(addr)
}

// undelivered handles a message whose receiver is gone. A watch registration
// is answered with the termination of the receiver.
func (x *ActorSystem) undelivered(ctx context.Context, to, from address.Address, msg any) {
	switch msg.(type) {
	case *watch:
		if from.IsZero() {
			return
		}
		if err := x.send(ctx, x.refOf(from), to, &Terminated{address: to}); err != nil {
			x.logger.Debugf("termination of %s not delivered to %s: %v", to, from, err)
		}
	default:
		if isSystemMessage(msg) {
			x.logger.Debugf("system message %T to %s dropped", msg, to)
			return
		}
		x.deadletter(ctx, to, from, msg, errors.ErrDead)
	}
}

func (x *ActorSystem) deadletter(_ context.Context, receiver, sender address.Address, msg any, reason error) {
	x.logger.Debugf("dead letter %T from %s to %s: %v", msg, sender, receiver, reason)
	x.publish(&Deadletter{
		Sender:   sender,
		Receiver: receiver,
		Message:  msg,
		Reason:   fmt.Errorf("%w: %s", reason, receiver),
		SentAt:   time.Now().UTC(),
	})
}

func (x *ActorSystem) publish(event any) {
	if x.eventStream != nil {
		x.eventStream.Publish(EventsTopic, event)
	}
}

// remove drops the actor from the registries once it stopped
func (x *ActorSystem) remove(pid *PID) {
	x.spawnMu.Lock()
	defer x.spawnMu.Unlock()

	x.pids.Delete(pid.Address())
	if current, ok := x.names.Get(pid.Name()); ok && current == pid.Address() {
		x.names.Delete(pid.Name())
	}
}
