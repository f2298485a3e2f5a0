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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream(t *testing.T) {
	t.Run("With Subscription", func(t *testing.T) {
		stream := New()
		t.Cleanup(stream.Close)

		sub := stream.AddSubscriber()
		require.NotNil(t, sub)
		require.NotEmpty(t, sub.ID())
		stream.Subscribe(sub, "t1")
		stream.Subscribe(sub, "t2")

		require.Equal(t, 1, stream.SubscribersCount("t1"))
		require.Equal(t, 1, stream.SubscribersCount("t2"))
		require.ElementsMatch(t, []string{"t1", "t2"}, sub.Topics())

		stream.RemoveSubscriber(sub)
		assert.Zero(t, stream.SubscribersCount("t1"))
		assert.Zero(t, stream.SubscribersCount("t2"))
		assert.False(t, sub.Active())

		stream.Subscribe(sub, "t3")
		assert.Zero(t, stream.SubscribersCount("t3"))
	})
	t.Run("With Unsubscription", func(t *testing.T) {
		stream := New()
		t.Cleanup(stream.Close)

		sub := stream.AddSubscriber()
		stream.Subscribe(sub, "t1")
		stream.Subscribe(sub, "t2")
		stream.Unsubscribe(sub, "t1")

		assert.Zero(t, stream.SubscribersCount("t1"))
		require.Equal(t, 1, stream.SubscribersCount("t2"))
		require.Equal(t, []string{"t2"}, sub.Topics())
	})
	t.Run("With Publication in order", func(t *testing.T) {
		stream := New()
		t.Cleanup(stream.Close)

		sub1 := stream.AddSubscriber()
		sub2 := stream.AddSubscriber()
		stream.Subscribe(sub1, "events")
		stream.Subscribe(sub2, "other")

		for i := 0; i < 5; i++ {
			stream.Publish("events", i)
		}

		var received []any
		for msg := range sub1.Iterator() {
			require.Equal(t, "events", msg.Topic())
			received = append(received, msg.Payload())
		}
		require.Equal(t, []any{0, 1, 2, 3, 4}, received)
		require.Empty(t, sub2.Iterator())
		require.Empty(t, sub1.Iterator())
	})
	t.Run("With Close", func(t *testing.T) {
		stream := New()
		sub := stream.AddSubscriber()
		stream.Subscribe(sub, "events")
		stream.Close()

		require.False(t, sub.Active())
		require.Zero(t, stream.SubscribersCount("events"))
		stream.Publish("events", "dropped")
		require.Empty(t, sub.Iterator())
	})
}
