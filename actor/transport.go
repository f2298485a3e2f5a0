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

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/internal/xsync"
)

// Transport carries messages to actors hosted on other nodes. It must deliver
// the messages of one sender to one receiver in order.
type Transport interface {
	// Deliver hands msg from the sender to the node hosting to
	Deliver(ctx context.Context, to, from address.Address, msg any) error
}

// LoopbackTransport connects actor systems living in the same process. Each
// registered system plays the part of a node.
type LoopbackTransport struct {
	systems *xsync.Map[address.Node, *ActorSystem]
}

// enforce compilation error
var _ Transport = (*LoopbackTransport)(nil)

// NewLoopbackTransport creates a LoopbackTransport
func NewLoopbackTransport() *LoopbackTransport {
	return &LoopbackTransport{systems: xsync.NewMap[address.Node, *ActorSystem]()}
}

// Register makes system reachable
func (t *LoopbackTransport) Register(system *ActorSystem) {
	t.systems.Set(system.Node(), system)
}

// Deregister makes system unreachable, as if its node went down
func (t *LoopbackTransport) Deregister(system *ActorSystem) {
	t.systems.Delete(system.Node())
}

// Deliver implements Transport
func (t *LoopbackTransport) Deliver(ctx context.Context, to, from address.Address, msg any) error {
	system, ok := t.systems.Get(to.Node())
	if !ok {
		return fmt.Errorf("%w: node %s is unreachable", errors.ErrRemoteSendFailure, to.Node())
	}
	return system.Deliver(ctx, to, from, msg)
}
