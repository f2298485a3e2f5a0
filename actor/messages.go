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
	"time"

	"github.com/tochemey/warden/address"
)

// PoisonPill stops the receiving actor once it is processed
type PoisonPill struct{}

// Terminated tells a watcher that a watched actor terminated. Actors watching
// through ReceiveContext.Watch receive it in Receive.
type Terminated struct {
	address address.Address
}

// Address returns the identity of the terminated actor
func (t *Terminated) Address() address.Address {
	return t.address
}

// NodeTerminated tells a watcher that a node incarnation hosting actors it
// watches is gone
type NodeTerminated struct {
	node address.Node
}

// Node returns the terminated node incarnation
func (t *NodeTerminated) Node() address.Node {
	return t.node
}

// watch registers the sender as a watcher of the receiver
type watch struct{}

// unwatch removes the sender from the watchers of the receiver
type unwatch struct{}

// terminationNotice runs the reaction registered for a terminated watchee
type terminationNotice struct {
	address address.Address
}

// startSignal runs the initial setup of the actor
type startSignal struct{}

// restartSignal runs a delayed restart
type restartSignal struct {
	reason error
}

// isSystemMessage reports whether msg is handled by the runtime itself and
// must never be stashed
func isSystemMessage(msg any) bool {
	switch msg.(type) {
	case *PoisonPill,
		*Terminated,
		*NodeTerminated,
		*watch,
		*unwatch,
		*terminationNotice,
		*startSignal,
		*restartSignal:
		return true
	default:
		return false
	}
}

// ActorStarted is published once an actor completed its initial setup
type ActorStarted struct {
	Address   address.Address
	StartedAt time.Time
}

// ActorRestarted is published every time an actor restarted
type ActorRestarted struct {
	Address     address.Address
	Reason      error
	Restarts    int
	RestartedAt time.Time
}

// ActorStopped is published once an actor terminated
type ActorStopped struct {
	Address   address.Address
	Reason    error
	StoppedAt time.Time
}

// Deadletter is published for every message that could not be delivered
type Deadletter struct {
	Sender   address.Address
	Receiver address.Address
	Message  any
	Reason   error
	SentAt   time.Time
}
