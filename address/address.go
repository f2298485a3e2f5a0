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

// Package address defines the identities used across the runtime.
//
// An Address identifies a single actor and is made of the node incarnation
// hosting it, a name unique on that node and a UUID assigned at creation.
// Addresses are comparable values and are safe to use as map keys. An Address
// is never reused once its actor terminates.
//
// The textual representation of an Address is:
//
//	warden://<host>:<port>/<name>#<id>
package address

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tochemey/warden/internal/validation"
)

const scheme = "warden"

// NoSender is the zero address used when a message has no sender
var NoSender = Address{}

// Address is the identity of an actor
type Address struct {
	name string
	id   string
	node Node
}

// New creates a fresh identity for an actor named name hosted on node
func New(name string, node Node) Address {
	return Address{
		name: name,
		id:   uuid.NewString(),
		node: node,
	}
}

// From rebuilds an address from its parts
func From(name, id string, node Node) Address {
	return Address{name: name, id: id, node: node}
}

// Name returns the actor name
func (a Address) Name() string {
	return a.name
}

// ID returns the unique identifier
func (a Address) ID() string {
	return a.id
}

// Node returns the node incarnation hosting the actor
func (a Address) Node() Node {
	return a.node
}

// Equals reports whether both addresses denote the same actor
func (a Address) Equals(other Address) bool {
	return a == other
}

// IsZero reports whether the address is NoSender
func (a Address) IsZero() bool {
	return a == NoSender
}

// IsLocalTo reports whether the actor is hosted on node
func (a Address) IsLocalTo(node Node) bool {
	return a.node.Equals(node)
}

// String returns the canonical representation
func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s://%s/%s#%s", scheme, a.node.HostPort(), a.name, a.id)
}

// Validate checks the address is usable. NoSender is valid.
func (a Address) Validate() error {
	if a.IsZero() {
		return nil
	}
	return validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("name", a.name)).
		AddValidator(validation.NewEmptyStringValidator("id", a.id)).
		AddValidator(a.node).
		Validate()
}
