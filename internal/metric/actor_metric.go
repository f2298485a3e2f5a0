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

package metric

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ActorMetric groups the counters recorded by supervision and death watch
type ActorMetric struct {
	failureCount           metric.Int64Counter
	restartCount           metric.Int64Counter
	stopCount              metric.Int64Counter
	terminationNoticeCount metric.Int64Counter
}

// NewActorMetric creates the actor instruments on the given meter
func NewActorMetric(meter metric.Meter) (*ActorMetric, error) {
	actorMetric := new(ActorMetric)
	var err error
	if actorMetric.failureCount, err = meter.Int64Counter(
		"actor_failure_count",
		metric.WithDescription("Total number of failures raised by actors"),
	); err != nil {
		return nil, fmt.Errorf("failed to create failureCount instrument, %w", err)
	}

	if actorMetric.restartCount, err = meter.Int64Counter(
		"actor_restart_count",
		metric.WithDescription("Total number of restarts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create restartCount instrument, %w", err)
	}

	if actorMetric.stopCount, err = meter.Int64Counter(
		"actor_stop_count",
		metric.WithDescription("Total number of actors stopped"),
	); err != nil {
		return nil, fmt.Errorf("failed to create stopCount instrument, %w", err)
	}

	if actorMetric.terminationNoticeCount, err = meter.Int64Counter(
		"actor_termination_notice_count",
		metric.WithDescription("Total number of termination callbacks dispatched to watchers"),
	); err != nil {
		return nil, fmt.Errorf("failed to create terminationNoticeCount instrument, %w", err)
	}

	return actorMetric, nil
}

// RecordFailure counts a failure of the given class
func (x *ActorMetric) RecordFailure(ctx context.Context, actor, class string) {
	x.failureCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("actor", actor),
		attribute.String("class", class)))
}

// RecordRestart counts a restart
func (x *ActorMetric) RecordRestart(ctx context.Context, actor string) {
	x.restartCount.Add(ctx, 1, metric.WithAttributes(attribute.String("actor", actor)))
}

// RecordStop counts an actor reaching the stopped state
func (x *ActorMetric) RecordStop(ctx context.Context, actor string) {
	x.stopCount.Add(ctx, 1, metric.WithAttributes(attribute.String("actor", actor)))
}

// RecordTerminationNotice counts a termination callback dispatched to a watcher
func (x *ActorMetric) RecordTerminationNotice(ctx context.Context, watcher string) {
	x.terminationNoticeCount.Add(ctx, 1, metric.WithAttributes(attribute.String("watcher", watcher)))
}
