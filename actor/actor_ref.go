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
	"github.com/tochemey/warden/address"
)

// ActorRef is a reference to an actor, either a local PID or an actor hosted
// on another node and reached through the Transport
type ActorRef interface {
	// Address returns the identity of the referenced actor
	Address() address.Address
	// IsLocal reports whether the actor lives in the calling actor system
	IsLocal() bool
}

// remoteRef references an actor hosted on another node
type remoteRef struct {
	address address.Address
}

// enforce compilation error
var _ ActorRef = (*remoteRef)(nil)

func newRemoteRef(addr address.Address) *remoteRef {
	return &remoteRef{address: addr}
}

// Address implements ActorRef
func (r *remoteRef) Address() address.Address {
	return r.address
}

// IsLocal implements ActorRef
func (r *remoteRef) IsLocal() bool {
	return false
}

// String returns the address of the actor
func (r *remoteRef) String() string {
	return r.address.String()
}
