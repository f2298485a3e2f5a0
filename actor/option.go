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

	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/tochemey/warden/address"
	"github.com/tochemey/warden/cluster"
	"github.com/tochemey/warden/log"
	"github.com/tochemey/warden/supervisor"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(system *ActorSystem)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(system *ActorSystem)

// Apply implements Option
func (f OptionFunc) Apply(system *ActorSystem) {
	f(system)
}

// WithLogger sets the actor system logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.logger = logger
	})
}

// WithNode sets the node incarnation hosting the actor system
func WithNode(node address.Node) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.node = node
	})
}

// WithNodeDeathWatcher sets the component notifying node terminations
func WithNodeDeathWatcher(watcher cluster.NodeDeathWatcher) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.nodeWatcher = watcher
	})
}

// WithTransport sets the transport used to reach remote actors
func WithTransport(transport Transport) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.transport = transport
	})
}

// WithDefaultSupervisor sets the supervisor of actors spawned without WithSupervisor
func WithDefaultSupervisor(s *supervisor.Supervisor) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.defaultSupervisor = s
	})
}

// WithShutdownTimeout sets how long Stop waits for every actor to terminate
func WithShutdownTimeout(timeout time.Duration) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.shutdownTimeout = timeout
	})
}

// WithMeterProvider sets the OpenTelemetry meter provider of the runtime metrics
func WithMeterProvider(provider otelmetric.MeterProvider) Option {
	return OptionFunc(func(system *ActorSystem) {
		system.meterProvider = provider
	})
}
