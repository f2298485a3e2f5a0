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
	"sync"

	"github.com/tochemey/warden/errors"
	"github.com/tochemey/warden/internal/queue"
)

// mailbox is the unbounded FIFO of an actor. Once closed it rejects every
// new envelope, so nothing can be left behind after the actor stopped.
type mailbox struct {
	mu     sync.RWMutex
	closed bool
	queue  *queue.Mpsc[*envelope]
}

func newMailbox() *mailbox {
	return &mailbox{queue: queue.NewMpsc[*envelope]()}
}

// Enqueue adds an envelope. It fails with ErrDead when the mailbox is closed.
func (m *mailbox) Enqueue(env *envelope) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errors.ErrDead
	}
	m.queue.Push(env)
	return nil
}

// Dequeue returns the oldest envelope or nil. Consumer side only.
func (m *mailbox) Dequeue() *envelope {
	env, ok := m.queue.Pop()
	if !ok {
		return nil
	}
	return env
}

// IsEmpty reports whether the mailbox holds no envelope
func (m *mailbox) IsEmpty() bool {
	return m.queue.IsEmpty()
}

// Len returns the number of envelopes waiting
func (m *mailbox) Len() int64 {
	return m.queue.Len()
}

// Close rejects further envelopes and returns the ones left. Consumer side only.
func (m *mailbox) Close() []*envelope {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	remaining := make([]*envelope, 0, m.queue.Len())
	for env := m.Dequeue(); env != nil; env = m.Dequeue() {
		remaining = append(remaining, env)
	}
	return remaining
}
