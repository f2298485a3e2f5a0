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
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/failure"
	"github.com/tochemey/warden/internal/chain"
	"github.com/tochemey/warden/log"
	"github.com/tochemey/warden/supervisor"
)

const (
	idle int32 = iota
	busy
)

type status int32

const (
	statusStarting status = iota
	statusRunning
	statusRestarting
	statusStopping
	statusStopped
)

// String returns the status name
func (s status) String() string {
	switch s {
	case statusStarting:
		return "Starting"
	case statusRunning:
		return "Running"
	case statusRestarting:
		return "Restarting"
	case statusStopping:
		return "Stopping"
	case statusStopped:
		return "Stopped"
	default:
		return ""
	}
}

// PID is the local reference of an actor. It stays the same across
// restarts and is the only handle the rest of the system has on the actor.
type PID struct {
	address  address.Address
	system   *ActorSystem
	producer Producer
	logger   log.Logger

	mailbox    *mailbox
	processing *atomic.Int32
	state      *atomic.Int32
	restarts   *atomic.Int32
	current    atomic.Pointer[scope]

	supervisor *supervisor.Supervisor
	decisions  *supervisor.DecisionTable

	// the fields below are only touched from the processing goroutine
	actor         Actor
	stash         []*envelope
	stopRequested bool
	restartJob    string

	stopOnce sync.Once
	stopped  chan struct{}
}

// enforce compilation error
var _ ActorRef = (*PID)(nil)

func newPID(addr address.Address, system *ActorSystem, producer Producer, sup *supervisor.Supervisor) *PID {
	return &PID{
		address:    addr,
		system:     system,
		producer:   producer,
		logger:     system.logger,
		mailbox:    newMailbox(),
		processing: atomic.NewInt32(idle),
		state:      atomic.NewInt32(int32(statusStarting)),
		restarts:   atomic.NewInt32(0),
		supervisor: sup,
		decisions:  supervisor.NewDecisionTable(sup),
		stash:      make([]*envelope, 0),
		stopped:    make(chan struct{}),
	}
}

// Address returns the actor identity
func (pid *PID) Address() address.Address {
	return pid.address
}

// IsLocal implements ActorRef
func (pid *PID) IsLocal() bool {
	return true
}

// Name returns the actor name
func (pid *PID) Name() string {
	return pid.address.Name()
}

// String returns the actor address
func (pid *PID) String() string {
	return pid.address.String()
}

// IsRunning reports whether the actor is processing messages
func (pid *PID) IsRunning() bool {
	return pid.status() == statusRunning
}

// IsRestarting reports whether the actor waits for a delayed restart
func (pid *PID) IsRestarting() bool {
	return pid.status() == statusRestarting
}

// IsStopped reports whether the actor terminated
func (pid *PID) IsStopped() bool {
	return pid.status() == statusStopped
}

// IsAlive reports whether the actor has not started stopping
func (pid *PID) IsAlive() bool {
	s := pid.status()
	return s != statusStopping && s != statusStopped
}

// RestartCount returns the number of successful restarts
func (pid *PID) RestartCount() int {
	return int(pid.restarts.Load())
}

// Supervisor returns the decision table configured for the actor
func (pid *PID) Supervisor() *supervisor.Supervisor {
	return pid.supervisor
}

// Tell sends msg to the given actor with this actor as sender
func (pid *PID) Tell(ctx context.Context, to ActorRef, msg any) error {
	return pid.system.send(ctx, to, pid.address, msg)
}

// Shutdown stops the actor and waits for its termination
func (pid *PID) Shutdown(ctx context.Context) error {
	if err := pid.enqueue(newEnvelope(ctx, address.NoSender, new(PoisonPill))); err != nil {
		pid.logger.Debugf("actor %s is already stopping", pid.address)
	}

	select {
	case <-pid.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", errors.ErrShutdownTimeout, pid.address, ctx.Err())
	}
}

// Stopped returns a channel closed once the actor terminated
func (pid *PID) Stopped() <-chan struct{} {
	return pid.stopped
}

func (pid *PID) status() status {
	return status(pid.state.Load())
}

func (pid *PID) setStatus(s status) {
	pid.state.Store(int32(s))
}

// enqueue adds an envelope to the mailbox and schedules its processing
func (pid *PID) enqueue(env *envelope) error {
	if err := pid.mailbox.Enqueue(env); err != nil {
		return err
	}
	pid.process()
	return nil
}

// process drains the mailbox on a dedicated goroutine. Only one goroutine
// processes a given actor at any time.
func (pid *PID) process() {
	if !pid.processing.CompareAndSwap(idle, busy) {
		return
	}

	go func() {
		for {
			for env := pid.next(); env != nil; env = pid.next() {
				pid.handle(env)
			}

			pid.processing.Store(idle)

			// new messages may have landed after the last dequeue
			if pid.hasWork() && pid.processing.CompareAndSwap(idle, busy) {
				continue
			}
			return
		}
	}()
}

// next replays stashed messages first once the actor runs again
func (pid *PID) next() *envelope {
	if len(pid.stash) > 0 && pid.status() == statusRunning {
		env := pid.stash[0]
		pid.stash[0] = nil
		pid.stash = pid.stash[1:]
		return env
	}
	return pid.mailbox.Dequeue()
}

func (pid *PID) hasWork() bool {
	return !pid.mailbox.IsEmpty()
}

func (pid *PID) handle(env *envelope) {
	if pid.status() == statusStopped {
		return
	}

	switch msg := env.message.(type) {
	case *startSignal:
		pid.start(env.ctx)
	case *restartSignal:
		if pid.status() == statusRestarting {
			pid.restartJob = ""
			pid.reinit(env.ctx, msg.reason)
		}
	case *PoisonPill:
		pid.stop(env.ctx, nil)
	case *watch:
		pid.becomeWatchedBy(env.sender)
	case *unwatch:
		pid.removeWatchedBy(env.sender)
	case *Terminated:
		pid.receiveTerminated(env.ctx, msg.address)
	case *NodeTerminated:
		pid.receiveNodeTerminated(env.ctx, msg.node)
	case *terminationNotice:
		pid.dispatchTerminationNotice(env.ctx, msg.address)
	default:
		if pid.status() != statusRunning {
			pid.stash = append(pid.stash, env)
			return
		}
		pid.handleReceived(env)
	}

	if pid.stopRequested {
		pid.stop(env.ctx, nil)
	}
}

func (pid *PID) handleReceived(env *envelope) {
	received := newReceiveContext(env.ctx, pid, env.sender, env.message)
	err := pid.runInScope(received.scope, func() error {
		pid.actor.Receive(received)
		return received.err
	})
	if err != nil {
		pid.handleFailure(env.ctx, err)
	}
}

// runInScope runs fn as the current processing slot and turns a panic into a
// PanicError
func (pid *PID) runInScope(s *scope, fn func() error) (err error) {
	pid.current.Store(s)
	defer func() {
		pid.current.Store(nil)
		if r := recover(); r != nil {
			err = toPanicError(r)
		}
	}()
	return fn()
}

// start runs the initial setup on a fresh instance
func (pid *PID) start(ctx context.Context) {
	pid.actor = pid.producer()
	if err := pid.setup(ctx); err != nil {
		pid.handleFailure(ctx, errors.NewErrInitFailure(err))
		return
	}

	pid.markStarted()
}

func (pid *PID) markStarted() {
	pid.setStatus(statusRunning)
	pid.logger.Infof("actor %s started", pid.address)
	pid.system.publish(&ActorStarted{Address: pid.address, StartedAt: time.Now().UTC()})
}

func (pid *PID) setup(ctx context.Context) error {
	if pid.actor == nil {
		return errors.NewFaultError(fmt.Errorf("producer of %s returned no actor", pid.address))
	}
	setupCtx := newContext(ctx, pid)
	return pid.runInScope(setupCtx.scope, func() error {
		return pid.actor.PreStart(setupCtx)
	})
}

// handleFailure consults the decision table and applies its directive.
// Resuming after a failed setup keeps the instance whose PreStart did not
// complete and reports it started or restarted like a successful setup would.
func (pid *PID) handleFailure(ctx context.Context, err error) {
	decision := pid.decisions.Decide(err, time.Now())
	pid.system.metric.RecordFailure(ctx, pid.Name(), decision.Class.String())

	switch decision.Directive {
	case supervisor.ResumeDirective:
		pid.logger.Warnf("actor %s resumed after failure: %v", pid.address, err)
		switch pid.status() {
		case statusStarting:
			pid.markStarted()
		case statusRestarting:
			pid.markRestarted(ctx, err)
		}
	case supervisor.RestartDirective:
		pid.logger.Warnf("actor %s restarting after failure %d: %v", pid.address, decision.Failures, err)
		pid.restart(ctx, err, decision.Delay)
	default:
		switch {
		case decision.Class == failure.ClassCrash:
			pid.logger.Errorf("actor %s crashed: %v", pid.address, err)
		case decision.Exhausted:
			pid.logger.Errorf("actor %s exhausted its restart budget after %d failures: %v", pid.address, decision.Failures, err)
		default:
			pid.logger.Errorf("actor %s stopping after failure: %v", pid.address, err)
		}
		pid.stop(ctx, err)
	}
}

// restart discards the current instance. The pre-restart hook failing is
// fatal. With a delay the actor stashes its user messages until the
// scheduler sends the restart signal.
func (pid *PID) restart(ctx context.Context, reason error, delay time.Duration) {
	if hook, ok := pid.actor.(PreRestarter); ok {
		hookCtx := newContext(ctx, pid)
		if err := pid.runInScope(hookCtx.scope, func() error {
			return hook.PreRestart(hookCtx, reason)
		}); err != nil {
			pid.logger.Errorf("actor %s failed to prepare its restart: %v", pid.address, err)
			pid.stop(ctx, errors.NewErrPreRestartFailure(err))
			return
		}
	}

	// the watches of the discarded instance go away with it
	pid.unwatchAll(ctx)

	if delay <= 0 {
		pid.reinit(ctx, reason)
		return
	}

	pid.setStatus(statusRestarting)
	key := fmt.Sprintf("restart-%s-%d", pid.address.ID(), time.Now().UnixNano())
	err := pid.system.scheduler.ScheduleOnce(key, delay, func(ctx context.Context) {
		if err := pid.enqueue(newEnvelope(ctx, address.NoSender, &restartSignal{reason: reason})); err != nil {
			pid.logger.Debugf("restart of %s dropped: %v", pid.address, err)
		}
	})
	if err != nil {
		pid.logger.Warnf("failed to delay the restart of %s, restarting now: %v", pid.address, err)
		pid.reinit(ctx, reason)
		return
	}
	pid.restartJob = key
	pid.logger.Debugf("actor %s restarts in %s", pid.address, delay)
}

// reinit swaps in a fresh instance and runs its setup. A setup failure goes
// back through supervision and counts against the same budget.
func (pid *PID) reinit(ctx context.Context, reason error) {
	pid.actor = pid.producer()
	if err := pid.setup(ctx); err != nil {
		pid.handleFailure(ctx, errors.NewErrInitFailure(err))
		return
	}

	pid.markRestarted(ctx, reason)
}

func (pid *PID) markRestarted(ctx context.Context, reason error) {
	pid.setStatus(statusRunning)
	restarts := pid.restarts.Inc()
	pid.system.metric.RecordRestart(ctx, pid.Name())
	pid.logger.Infof("actor %s restarted (%d)", pid.address, restarts)
	pid.system.publish(&ActorRestarted{
		Address:     pid.address,
		Reason:      reason,
		Restarts:    int(restarts),
		RestartedAt: time.Now().UTC(),
	})
}

// stop terminates the actor for good
func (pid *PID) stop(ctx context.Context, reason error) {
	if !pid.IsAlive() {
		return
	}

	pid.setStatus(statusStopping)
	pid.stopRequested = false
	if pid.restartJob != "" {
		pid.system.scheduler.Cancel(pid.restartJob)
		pid.restartJob = ""
	}

	err := chain.New(chain.WithRunAll(), chain.WithContext(ctx)).
		AddRunnerIf(pid.actor != nil, func() error { return pid.postStop(ctx) }).
		AddRunner(func() error {
			pid.drain(ctx)
			return nil
		}).
		AddRunner(func() error {
			pid.notifyDependentsOfOwnTermination(ctx)
			pid.teardownWatchTable(ctx)
			return nil
		}).
		Run()
	if err != nil {
		pid.logger.Warnf("actor %s stopped with errors: %v", pid.address, err)
	}

	pid.system.remove(pid)
	pid.actor = nil
	pid.setStatus(statusStopped)
	pid.system.metric.RecordStop(ctx, pid.Name())
	pid.logger.Infof("actor %s stopped", pid.address)
	pid.system.publish(&ActorStopped{Address: pid.address, Reason: reason, StoppedAt: time.Now().UTC()})
	pid.stopOnce.Do(func() { close(pid.stopped) })
}

func (pid *PID) postStop(ctx context.Context) error {
	stopCtx := newContext(ctx, pid)
	if err := pid.runInScope(stopCtx.scope, func() error {
		return pid.actor.PostStop(stopCtx)
	}); err != nil {
		return errors.NewErrPostStopFailure(err)
	}
	return nil
}

// drain closes the mailbox. Watch registrations still queued are honored so
// their senders get told about the termination. User messages become dead letters.
func (pid *PID) drain(ctx context.Context) {
	remaining := append(pid.stash, pid.mailbox.Close()...)
	pid.stash = nil
	for _, env := range remaining {
		switch env.message.(type) {
		case *watch:
			pid.becomeWatchedBy(env.sender)
		case *unwatch:
			pid.removeWatchedBy(env.sender)
		default:
			if !isSystemMessage(env.message) {
				pid.system.deadletter(ctx, pid.address, env.sender, env.message, errors.ErrDead)
			}
		}
	}
}

// toPanicError converts a recovered value into a PanicError carrying the
// location of the panic
func toPanicError(r any) error {
	var cause error
	switch v := r.(type) {
	case *errors.PanicError:
		return v
	case error:
		cause = v
	default:
		cause = fmt.Errorf("%v", v)
	}
	return errors.NewPanicError(cause, panicLocation())
}

// panicLocation returns the first frame outside the runtime package, which is
// where the panic was raised. It must be called through toPanicError from the
// deferred recover of runInScope.
func panicLocation() string {
	pcs := make([]uintptr, 32)
	// skip runtime.Callers, panicLocation, toPanicError and the deferred func
	n := runtime.Callers(4, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d:%s", filepath.Base(frame.File), frame.Line, frame.Function)
		}
		if !more {
			return ""
		}
	}
}
