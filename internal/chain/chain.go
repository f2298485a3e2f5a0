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

package chain

import (
	"context"

	"go.uber.org/multierr"
)

// Chain runs a sequence of steps in insertion order and collects their errors
type Chain struct {
	failFast bool
	ctx      context.Context
	runners  []func(ctx context.Context) error
}

// Option configures a Chain at creation time.
type Option func(*Chain)

// New creates a new Chain
func New(opts ...Option) *Chain {
	chain := &Chain{
		ctx:     context.Background(),
		runners: make([]func(ctx context.Context) error, 0),
	}

	for _, opt := range opts {
		opt(chain)
	}

	return chain
}

// AddRunner appends a step to the chain
func (c *Chain) AddRunner(fn func() error) *Chain {
	return c.AddContextRunner(func(context.Context) error { return fn() })
}

// AddRunners appends the given steps in order
func (c *Chain) AddRunners(fns ...func() error) *Chain {
	for _, fn := range fns {
		c.AddRunner(fn)
	}
	return c
}

// AddContextRunner appends a step that receives the chain context
func (c *Chain) AddContextRunner(fn func(ctx context.Context) error) *Chain {
	c.runners = append(c.runners, fn)
	return c
}

// AddRunnerIf appends the step only when condition holds
func (c *Chain) AddRunnerIf(condition bool, fn func() error) *Chain {
	if condition {
		c.AddRunner(fn)
	}
	return c
}

// Run executes the steps. With WithFailFast the first error aborts the run,
// otherwise every step runs and the errors are combined.
func (c *Chain) Run() error {
	var err error
	for _, run := range c.runners {
		if e := run(c.ctx); e != nil {
			if c.failFast {
				return e
			}
			err = multierr.Append(err, e)
		}
	}
	return err
}

// WithFailFast stops the chain on the first error.
func WithFailFast() Option {
	return func(c *Chain) { c.failFast = true }
}

// WithRunAll runs every step and returns all errors.
func WithRunAll() Option {
	return func(c *Chain) { c.failFast = false }
}

// WithContext sets the context passed to context runners
func WithContext(ctx context.Context) Option {
	return func(c *Chain) { c.ctx = ctx }
}
