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

package address

import (
	"fmt"
	"net"
	"strconv"

	"github.com/google/uuid"

	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/internal/validation"
)

// Node identifies one incarnation of a cluster member. Two nodes started on
// the same host and port are different when their UID differs, so events about
// a previous incarnation never affect a later one.
type Node struct {
	host string
	port int
	uid  string
}

// NewNode creates a new incarnation for the given host and port
func NewNode(host string, port int) Node {
	return Node{host: host, port: port, uid: uuid.NewString()}
}

// NodeFrom rebuilds a node from its parts, typically after decoding a
// membership event.
func NodeFrom(host string, port int, uid string) Node {
	return Node{host: host, port: port, uid: uid}
}

// Host returns the node host
func (n Node) Host() string {
	return n.host
}

// Port returns the node port
func (n Node) Port() int {
	return n.port
}

// UID returns the incarnation token
func (n Node) UID() string {
	return n.uid
}

// HostPort returns the host:port pair
func (n Node) HostPort() string {
	return net.JoinHostPort(n.host, strconv.Itoa(n.port))
}

// Equals reports whether both values denote the same incarnation
func (n Node) Equals(other Node) bool {
	return n == other
}

// SameEndpoint reports whether both nodes listen on the same host and port,
// whatever their incarnation
func (n Node) SameEndpoint(other Node) bool {
	return n.host == other.host && n.port == other.port
}

// IsZero reports whether the node is unset
func (n Node) IsZero() bool {
	return n == Node{}
}

// String returns host:port#uid
func (n Node) String() string {
	return fmt.Sprintf("%s#%s", n.HostPort(), n.uid)
}

// Validate checks the node is usable
func (n Node) Validate() error {
	if err := validation.New(validation.FailFast()).
		AddValidator(validation.NewEmptyStringValidator("host", n.host)).
		AddAssertion(n.port >= 0 && n.port <= 65535, "port is out of range").
		AddValidator(validation.NewEmptyStringValidator("uid", n.uid)).
		Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrInvalidNode, err)
	}
	return nil
}
