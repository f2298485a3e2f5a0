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

package supervisor

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tochemey/warden/internal/validation"
)

const defaultMaxInterval = time.Hour

// Backoff describes the delay schedule applied between consecutive restarts.
// Every decision table builds its own schedule from it so that cursors are
// never shared between actors.
type Backoff struct {
	constant    bool
	initial     time.Duration
	multiplier  float64
	jitter      float64
	maxInterval time.Duration
}

// BackoffOption configures an exponential Backoff
type BackoffOption func(*Backoff)

// WithJitter randomizes every delay by +/- factor of its value
func WithJitter(factor float64) BackoffOption {
	return func(b *Backoff) {
		b.jitter = factor
	}
}

// WithMaxInterval caps the delay
func WithMaxInterval(interval time.Duration) BackoffOption {
	return func(b *Backoff) {
		b.maxInterval = interval
	}
}

// ConstantBackoff waits the same delay before every restart
func ConstantBackoff(delay time.Duration) Backoff {
	return Backoff{constant: true, initial: delay}
}

// ExponentialBackoff waits initial before the first restart and multiplies the
// delay by multiplier on each following one
func ExponentialBackoff(initial time.Duration, multiplier float64, opts ...BackoffOption) Backoff {
	b := Backoff{
		initial:     initial,
		multiplier:  multiplier,
		maxInterval: defaultMaxInterval,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Validate checks the schedule parameters
func (b Backoff) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddAssertion(b.initial > 0, "backoff delay must be positive")
	if b.constant {
		return chain.Validate()
	}
	return chain.
		AddAssertion(b.multiplier >= 1, "backoff multiplier must be greater or equal to 1").
		AddAssertion(b.jitter >= 0 && b.jitter < 1, "backoff jitter must be in [0, 1)").
		AddAssertion(b.maxInterval >= b.initial, "backoff max interval must not be lower than the initial delay").
		Validate()
}

// String returns a readable form of the schedule
func (b Backoff) String() string {
	if b.constant {
		return fmt.Sprintf("constant(%s)", b.initial)
	}
	return fmt.Sprintf("exponential(initial=%s, multiplier=%g, jitter=%g)", b.initial, b.multiplier, b.jitter)
}

// schedule builds a fresh stateful cursor
func (b Backoff) schedule() backoff.BackOff {
	if b.constant {
		return backoff.NewConstantBackOff(b.initial)
	}

	exp := &backoff.ExponentialBackOff{
		InitialInterval:     b.initial,
		RandomizationFactor: b.jitter,
		Multiplier:          b.multiplier,
		MaxInterval:         b.maxInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	exp.Reset()
	return exp
}
