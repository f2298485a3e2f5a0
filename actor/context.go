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
	"github.com/tochemey/warden/log"
)

// scope marks one slot of an actor's processing. Watch operations are only
// accepted while the scope they were called from is the current one.
type scope struct{}

// Context is handed to the lifecycle hooks of an actor
type Context struct {
	ctx   context.Context
	self  *PID
	scope *scope
}

func newContext(ctx context.Context, self *PID) *Context {
	return &Context{ctx: ctx, self: self, scope: new(scope)}
}

// Context returns the context.Context of the current operation
func (c *Context) Context() context.Context {
	return c.ctx
}

// Self returns the PID of the actor
func (c *Context) Self() *PID {
	return c.self
}

// ActorName returns the name of the actor
func (c *Context) ActorName() string {
	return c.self.Name()
}

// ActorSystem returns the actor system hosting the actor
func (c *Context) ActorSystem() *ActorSystem {
	return c.self.system
}

// Logger returns the actor logger
func (c *Context) Logger() log.Logger {
	return c.self.logger
}

// Tell sends msg to the given actor with the current actor as sender
func (c *Context) Tell(to ActorRef, msg any) error {
	return c.self.system.send(c.ctx, to, c.self.address, msg)
}

// Watch asks to be told when ref terminates. The notification is delivered to
// Receive as a *Terminated message. Watching an actor already watched keeps a
// single relationship and replaces the reaction. Watching oneself is ignored.
func (c *Context) Watch(ref ActorRef) error {
	return c.WatchWith(ref, nil)
}

// WatchWith asks to be told when ref terminates. handler runs inside the
// actor's processing once ref terminated. A nil handler delivers *Terminated
// to Receive instead.
func (c *Context) WatchWith(ref ActorRef, handler TerminationHandler) error {
	if !c.inScope() {
		return errors.ErrOutsideContext
	}
	return c.self.watch(c.ctx, ref, handler)
}

// Unwatch drops interest in ref. A termination of ref not dispatched yet is
// discarded.
func (c *Context) Unwatch(ref ActorRef) error {
	if !c.inScope() {
		return errors.ErrOutsideContext
	}
	if ref == nil {
		return nil
	}
	c.self.unwatch(c.ctx, ref.Address())
	return nil
}

// IsWatching reports whether the actor currently watches ref
func (c *Context) IsWatching(ref ActorRef) bool {
	if ref == nil || !c.inScope() {
		return false
	}
	return c.self.isWatching(ref.Address())
}

// Stop stops the actor once the current operation returns
func (c *Context) Stop() {
	if c.inScope() {
		c.self.stopRequested = true
	}
}

func (c *Context) inScope() bool {
	return c.self.current.Load() == c.scope
}

// ReceiveContext is handed to Receive for every message
type ReceiveContext struct {
	Context
	message any
	sender  address.Address
	err     error
}

func newReceiveContext(ctx context.Context, self *PID, sender address.Address, message any) *ReceiveContext {
	return &ReceiveContext{
		Context: Context{ctx: ctx, self: self, scope: new(scope)},
		message: message,
		sender:  sender,
	}
}

// Message returns the message being handled
func (rc *ReceiveContext) Message() any {
	return rc.message
}

// Sender returns the address of the sender or address.NoSender
func (rc *ReceiveContext) Sender() address.Address {
	return rc.sender
}

// Reply sends msg back to the sender. It is a no-op without sender.
func (rc *ReceiveContext) Reply(msg any) error {
	if rc.sender.IsZero() {
		return nil
	}
	return rc.self.system.send(rc.ctx, rc.self.system.refOf(rc.sender), rc.self.address, msg)
}

// Err reports a failure of the message handling to the supervisor. Only the
// first error is kept.
func (rc *ReceiveContext) Err(err error) {
	if rc.err == nil {
		rc.err = err
	}
}
