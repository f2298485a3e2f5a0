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
	"time"

	"github.com/tochemey/warden/log"
)

// Option is the interface that applies a Membership option.
type Option interface {
	// Apply sets the Option value of a Membership.
	Apply(membership *Membership)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(membership *Membership)

// Apply applies the Membership's option
func (f OptionFunc) Apply(membership *Membership) {
	f(membership)
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(membership *Membership) {
		membership.logger = logger
	})
}

// WithPeers sets the host:port addresses of the members to join at start
func WithPeers(peers ...string) Option {
	return OptionFunc(func(membership *Membership) {
		membership.peers = append(membership.peers, peers...)
	})
}

// WithMaxJoinAttempts sets the max join attempts
func WithMaxJoinAttempts(maxJoinAttempts int) Option {
	return OptionFunc(func(membership *Membership) {
		membership.maxJoinAttempts = maxJoinAttempts
	})
}

// WithJoinTimeout sets the join timeout
func WithJoinTimeout(timeout time.Duration) Option {
	return OptionFunc(func(membership *Membership) {
		membership.joinTimeout = timeout
	})
}

// WithJoinRetryInterval sets the join retry interval
func WithJoinRetryInterval(retryInterval time.Duration) Option {
	return OptionFunc(func(membership *Membership) {
		membership.joinRetryInterval = retryInterval
	})
}

// WithShutdownTimeout sets the time given to the leave broadcast
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(membership *Membership) {
		membership.shutdownTimeout = timeout
	})
}
