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
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tochemey/warden/failure"
)

// NoRule is the rule index of a decision no rule made
const NoRule = -1

// Decision is the outcome of consulting a DecisionTable
type Decision struct {
	// Directive is the action to take
	Directive Directive
	// Rule is the index of the matching rule or NoRule
	Rule int
	// Class is the failure class
	Class failure.Class
	// Failures is the number of failures retained by the matching restart
	// rule. Unbounded restart rules retain none.
	Failures int
	// Exhausted is set when a restart rule ran out of budget
	Exhausted bool
	// Delay is the backoff to wait before restarting
	Delay time.Duration
}

type entry struct {
	rule     Rule
	history  []time.Time
	schedule backoff.BackOff
}

// DecisionTable holds the failure history of one actor against a Supervisor.
// It outlives restarts of the actor so that budgets are consumed across them.
type DecisionTable struct {
	mu      sync.Mutex
	entries []*entry
}

// NewDecisionTable creates the per actor state of supervisor. A nil supervisor
// yields an empty table that stops on every failure.
func NewDecisionTable(supervisor *Supervisor) *DecisionTable {
	table := &DecisionTable{}
	if supervisor == nil {
		return table
	}

	table.entries = make([]*entry, 0, len(supervisor.rules))
	for _, rule := range supervisor.rules {
		e := &entry{rule: rule}
		if b := rule.strategy.backoff; b != nil {
			e.schedule = b.schedule()
		}
		table.entries = append(table.entries, e)
	}
	return table
}

// Decide classifies err raised at the given time and returns what to do with
// the failing actor. Crashes always stop. The first matching rule decides and
// only that rule's history records the failure.
func (t *DecisionTable) Decide(err error, at time.Time) Decision {
	class := failure.Classify(err)
	if !failure.IsSupervised(class) {
		return Decision{Directive: StopDirective, Rule: NoRule, Class: class}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for index, e := range t.entries {
		if e.rule.matcher == nil || !e.rule.matcher.Match(err, class) {
			continue
		}

		decision := Decision{
			Directive: e.rule.strategy.directive,
			Rule:      index,
			Class:     class,
		}

		if decision.Directive == RestartDirective && e.rule.strategy.unbounded {
			decision.Delay = e.nextDelay()
			return decision
		}

		if decision.Directive == RestartDirective {
			e.record(at)
			decision.Failures = len(e.history)
			if decision.Failures > e.rule.strategy.maxFailures {
				decision.Directive = StopDirective
				decision.Exhausted = true
				return decision
			}
			decision.Delay = e.nextDelay()
		}
		return decision
	}

	return Decision{Directive: StopDirective, Rule: NoRule, Class: class}
}

// Failures returns the number of failures currently retained by the rule at index
func (t *DecisionTable) Failures(index int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.entries) {
		return 0
	}
	return len(t.entries[index].history)
}

// record prunes the failures that left the window and appends at. The backoff
// cursor starts over once a whole window elapsed without failure.
func (e *entry) record(at time.Time) {
	if window := e.rule.strategy.window; window > 0 {
		cutoff := at.Add(-window)
		kept := e.history[:0]
		for _, ts := range e.history {
			if !ts.Before(cutoff) {
				kept = append(kept, ts)
			}
		}
		e.history = kept
	}

	if len(e.history) == 0 && e.schedule != nil {
		e.schedule.Reset()
	}
	e.history = append(e.history, at)
}

func (e *entry) nextDelay() time.Duration {
	if e.schedule == nil {
		return 0
	}
	delay := e.schedule.NextBackOff()
	if delay == backoff.Stop || delay < 0 {
		return 0
	}
	return delay
}
