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

package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tochemey/warden/errors"
)

func TestNode(t *testing.T) {
	t.Run("With new incarnation", func(t *testing.T) {
		first := NewNode("127.0.0.1", 3000)
		second := NewNode("127.0.0.1", 3000)

		require.NoError(t, first.Validate())
		require.Equal(t, "127.0.0.1:3000", first.HostPort())
		require.NotEmpty(t, first.UID())
		require.False(t, first.Equals(second))
		require.True(t, first.SameEndpoint(second))
		require.True(t, first.Equals(NodeFrom(first.Host(), first.Port(), first.UID())))
		require.Equal(t, "127.0.0.1:3000#"+first.UID(), first.String())
		require.False(t, first.IsZero())
		require.True(t, Node{}.IsZero())
	})
	t.Run("With invalid node", func(t *testing.T) {
		err := NodeFrom("", 3000, "uid").Validate()
		require.ErrorIs(t, err, errors.ErrInvalidNode)

		err = NodeFrom("127.0.0.1", -1, "uid").Validate()
		require.ErrorIs(t, err, errors.ErrInvalidNode)

		err = NodeFrom("127.0.0.1", 3000, "").Validate()
		require.ErrorIs(t, err, errors.ErrInvalidNode)
	})
}

func TestAddress(t *testing.T) {
	node := NewNode("127.0.0.1", 3000)

	t.Run("With unique identities", func(t *testing.T) {
		first := New("worker", node)
		second := New("worker", node)

		require.NoError(t, first.Validate())
		require.Equal(t, "worker", first.Name())
		require.Equal(t, node, first.Node())
		require.NotEqual(t, first, second)
		require.False(t, first.Equals(second))
		require.True(t, first.Equals(From(first.Name(), first.ID(), node)))
		require.True(t, first.IsLocalTo(node))
		require.False(t, first.IsLocalTo(NewNode("127.0.0.1", 3000)))
		require.Equal(t, "warden://127.0.0.1:3000/worker#"+first.ID(), first.String())
	})
	t.Run("With map key", func(t *testing.T) {
		addr := New("worker", node)
		m := map[Address]int{addr: 1}
		assert.Equal(t, 1, m[From(addr.Name(), addr.ID(), addr.Node())])
	})
	t.Run("With NoSender", func(t *testing.T) {
		require.True(t, NoSender.IsZero())
		require.NoError(t, NoSender.Validate())
		require.Empty(t, NoSender.String())
	})
	t.Run("With invalid address", func(t *testing.T) {
		require.Error(t, From("", "id", node).Validate())
		require.Error(t, From("worker", "", node).Validate())
		require.ErrorIs(t, From("worker", "id", Node{}).Validate(), errors.ErrInvalidNode)
	})
}
