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

	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/internal/validation"
)

// Rule is an entry of the decision table
type Rule struct {
	matcher  Matcher
	strategy Strategy
	// restarts declared through WithDirective pick their budget from WithRetry
	inheritRetry bool
}

// Matcher returns the rule matcher
func (r Rule) Matcher() Matcher {
	return r.matcher
}

// Strategy returns the rule strategy
func (r Rule) Strategy() Strategy {
	return r.strategy
}

// String returns a readable form of the rule
func (r Rule) String() string {
	if r.matcher == nil {
		return fmt.Sprintf("<nil> => %s", r.strategy)
	}
	return fmt.Sprintf("%s => %s", r.matcher, r.strategy)
}

// Option configures a Supervisor
type Option func(*Supervisor)

// WithRule appends a rule to the decision table. Rules are evaluated in the
// order they were added and the first matching rule decides.
func WithRule(matcher Matcher, strategy Strategy) Option {
	return func(s *Supervisor) {
		s.rules = append(s.rules, Rule{matcher: matcher, strategy: strategy})
	}
}

// WithDirective appends a rule applying directive to failures carrying an
// error of the same type as err. A RestartDirective uses the budget set by
// WithRetry and restarts without limit when no budget was set.
func WithDirective(err error, directive Directive) Option {
	return func(s *Supervisor) {
		s.rules = append(s.rules, Rule{
			matcher:      MatchType(err),
			strategy:     Strategy{directive: directive},
			inheritRetry: directive == RestartDirective,
		})
	}
}

// WithAnyErrorDirective sets the directive applied to any supervised failure
// that no rule matched. A RestartDirective follows the WithDirective budget rules.
func WithAnyErrorDirective(directive Directive) Option {
	return func(s *Supervisor) {
		s.fallback = &Rule{
			matcher:      AnyFailure(),
			strategy:     Strategy{directive: directive},
			inheritRetry: directive == RestartDirective,
		}
	}
}

// WithRetry sets the restart budget of the rules declared with WithDirective
// and WithAnyErrorDirective: at most maxRetries restarts within window. A zero
// maxRetries keeps the restarts unlimited.
func WithRetry(maxRetries int, window time.Duration) Option {
	return func(s *Supervisor) {
		s.maxRetries = maxRetries
		s.window = window
	}
}

// Supervisor is an ordered decision table mapping failures to strategies.
// It is immutable once built and can be shared by many actors. Each actor
// tracks its own failure history through a DecisionTable.
//
// A failure no rule matches stops the actor.
type Supervisor struct {
	rules      []Rule
	fallback   *Rule
	maxRetries int
	window     time.Duration
}

// NewSupervisor builds a Supervisor from the given options
func NewSupervisor(opts ...Option) *Supervisor {
	s := &Supervisor{
		rules:  make([]Rule, 0),
		window: -1,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.fallback != nil {
		s.rules = append(s.rules, *s.fallback)
		s.fallback = nil
	}

	for i := range s.rules {
		if s.rules[i].inheritRetry {
			s.rules[i].strategy.maxFailures = s.maxRetries
			s.rules[i].strategy.window = s.window
			s.rules[i].strategy.unbounded = s.maxRetries == 0
		}
	}

	return s
}

// DefaultSupervisor stops an actor on any fault and resumes it on any ordinary error
func DefaultSupervisor() *Supervisor {
	return NewSupervisor(
		WithRule(AnyFault(), Stop()),
		WithRule(AnyError(), Resume()),
	)
}

// Rules returns a copy of the decision table in evaluation order
func (s *Supervisor) Rules() []Rule {
	rules := make([]Rule, len(s.rules))
	copy(rules, s.rules)
	return rules
}

// Validate checks the decision table is well formed
func (s *Supervisor) Validate() error {
	chain := validation.New(validation.AllErrors())
	for i, rule := range s.rules {
		chain.AddAssertion(rule.matcher != nil, fmt.Sprintf("rule %d has no matcher", i))
		if rule.strategy.directive != RestartDirective {
			continue
		}
		chain.AddAssertion(rule.strategy.maxFailures >= 0, fmt.Sprintf("rule %d has a negative restart budget", i))
		if rule.strategy.backoff != nil {
			if err := rule.strategy.backoff.Validate(); err != nil {
				chain.AddAssertion(false, fmt.Sprintf("rule %d: %v", i, err))
			}
		}
	}

	if err := chain.Validate(); err != nil {
		return errors.NewConfigurationError(fmt.Errorf("%w: %w", errors.ErrInvalidSupervisor, err))
	}
	return nil
}
