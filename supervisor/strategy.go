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
)

// Strategy is the reaction attached to a rule of the decision table
type Strategy struct {
	directive   Directive
	maxFailures int
	window      time.Duration
	backoff     *Backoff
	// unbounded restarts never exhaust a budget
	unbounded bool
}

// Stop returns a strategy that stops the failing actor
func Stop() Strategy {
	return Strategy{directive: StopDirective}
}

// Resume returns a strategy that keeps the failing actor running with its current state
func Resume() Strategy {
	return Strategy{directive: ResumeDirective}
}

// Restart returns a strategy that restarts the failing actor as long as no more
// than maxFailures failures were attributed to the rule within window. A window
// less than or equal to zero never forgets a failure. The optional backoff
// delays each restart.
func Restart(maxFailures int, window time.Duration, backoff ...Backoff) Strategy {
	strategy := Strategy{
		directive:   RestartDirective,
		maxFailures: maxFailures,
		window:      window,
	}
	if len(backoff) > 0 {
		b := backoff[0]
		strategy.backoff = &b
	}
	return strategy
}

// RestartAlways returns a strategy that restarts the failing actor however
// often it fails. The optional backoff delays each restart.
func RestartAlways(backoff ...Backoff) Strategy {
	strategy := Restart(0, 0, backoff...)
	strategy.unbounded = true
	return strategy
}

// Directive returns the directive applied by the strategy
func (s Strategy) Directive() Directive {
	return s.directive
}

// MaxFailures returns the restart budget
func (s Strategy) MaxFailures() int {
	return s.maxFailures
}

// Unbounded reports whether the restart budget is unlimited
func (s Strategy) Unbounded() bool {
	return s.unbounded
}

// Window returns the sliding window of the restart budget
func (s Strategy) Window() time.Duration {
	return s.window
}

// Backoff returns the backoff of a restart strategy, nil when restarts are immediate
func (s Strategy) Backoff() *Backoff {
	return s.backoff
}

// String returns a readable form of the strategy
func (s Strategy) String() string {
	if s.directive != RestartDirective {
		return s.directive.String()
	}

	if s.unbounded {
		if s.backoff == nil {
			return "Restart(max=unbounded)"
		}
		return fmt.Sprintf("Restart(max=unbounded, backoff=%s)", s.backoff)
	}

	window := "infinite"
	if s.window > 0 {
		window = s.window.String()
	}

	if s.backoff == nil {
		return fmt.Sprintf("Restart(max=%d, window=%s)", s.maxFailures, window)
	}
	return fmt.Sprintf("Restart(max=%d, window=%s, backoff=%s)", s.maxFailures, window, s.backoff)
}
