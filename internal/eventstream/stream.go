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

package eventstream

import (
	"sync"
)

type subscribers map[string]Subscriber

// Stream is an in-process topic based publish/subscribe broker
type Stream interface {
	// AddSubscriber creates a subscriber
	AddSubscriber() Subscriber
	// RemoveSubscriber unsubscribes the subscriber from all its topics and shuts it down
	RemoveSubscriber(sub Subscriber)
	// SubscribersCount returns the number of subscribers of a topic
	SubscribersCount(topic string) int
	// Subscribe subscribes an active subscriber to a topic
	Subscribe(sub Subscriber, topic string)
	// Unsubscribe removes a subscriber from a topic
	Unsubscribe(sub Subscriber, topic string)
	// Publish sends a message to the subscribers of a topic
	Publish(topic string, msg any)
	// Close shuts down every subscriber
	Close()
}

// EventsStream implements Stream
type EventsStream struct {
	mu     sync.RWMutex
	subs   subscribers
	topics map[string]subscribers
}

var _ Stream = (*EventsStream)(nil)

// New creates an instance of EventsStream
func New() *EventsStream {
	return &EventsStream{
		subs:   subscribers{},
		topics: map[string]subscribers{},
	}
}

// AddSubscriber creates a subscriber
func (b *EventsStream) AddSubscriber() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := newSubscriber()
	b.subs[sub.ID()] = sub
	return sub
}

// RemoveSubscriber unsubscribes the subscriber from all its topics and shuts it down
func (b *EventsStream) RemoveSubscriber(sub Subscriber) {
	for _, topic := range sub.Topics() {
		b.Unsubscribe(sub, topic)
	}
	b.mu.Lock()
	delete(b.subs, sub.ID())
	b.mu.Unlock()
	sub.Shutdown()
}

// SubscribersCount returns the number of subscribers of a topic
func (b *EventsStream) SubscribersCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Subscribe subscribes an active subscriber to a topic
func (b *EventsStream) Subscribe(sub Subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !sub.Active() {
		return
	}

	if b.topics[topic] == nil {
		b.topics[topic] = subscribers{}
	}
	sub.subscribe(topic)
	b.topics[topic][sub.ID()] = sub
}

// Unsubscribe removes a subscriber from a topic
func (b *EventsStream) Unsubscribe(sub Subscriber, topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics[topic], sub.ID())
	sub.unsubscribe(topic)
}

// Publish enqueues the message for every active subscriber of the topic.
// Messages published by one goroutine reach a subscriber in publication order.
func (b *EventsStream) Publish(topic string, msg any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	message := NewMessage(topic, msg)
	for _, sub := range b.topics[topic] {
		if sub.Active() {
			sub.signal(message)
		}
	}
}

// Close shuts down every subscriber
func (b *EventsStream) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		sub.Shutdown()
	}
	b.subs = subscribers{}
	b.topics = map[string]subscribers{}
}
