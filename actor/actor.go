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

// Actor is the behavior of an actor.
//
// An actor processes one message at a time, so its fields need no
// synchronization as long as they are only touched from its hooks. The
// runtime creates instances through the producer given to Spawn: every
// restart discards the failed instance and starts over with a fresh one while
// the actor keeps its address and PID.
//
// The lifecycle of an instance is:
//  1. PreStart runs inside the actor's own processing, before any message.
//  2. Receive handles the messages.
//  3. PostStop runs once when the actor stops for good.
//
// Failures reported through ReceiveContext.Err, errors returned by PreStart
// and panics are handed to the actor's supervisor.
type Actor interface {
	// PreStart sets up a new instance. A returned error is a failure of the
	// actor and goes through supervision like any other.
	PreStart(ctx *Context) error
	// Receive handles a message.
	Receive(ctx *ReceiveContext)
	// PostStop releases the resources of the instance when the actor stops.
	PostStop(ctx *Context) error
}

// PreRestarter is implemented by actors that want to be told before their
// instance is discarded by a restart. A returned error stops the actor
// without any further restart attempt.
type PreRestarter interface {
	PreRestart(ctx *Context, reason error) error
}

// Producer creates fresh actor instances
type Producer func() Actor
