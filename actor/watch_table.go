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
	"github.com/tochemey/warden/address"
)

// TerminationHandler reacts to the termination of a watched actor. It runs
// inside the watcher's own message processing.
type TerminationHandler func(ctx *ReceiveContext, terminated address.Address)

type watchEntry struct {
	ref     ActorRef
	handler TerminationHandler
}

// watchTable holds the watch relationships of one actor. It is only mutated
// from its owner's message processing. The owner is kept as an address so the
// table never keeps a stopped actor reachable.
type watchTable struct {
	owner address.Address
	// watching is what the owner asked to be told about
	watching map[address.Address]*watchEntry
	// watchedBy is who asked to be told when the owner terminates
	watchedBy map[address.Address]ActorRef
	// pending holds the reactions scheduled but not dispatched yet. Unwatching
	// removes them so that an in-flight termination is never observed.
	pending map[address.Address]TerminationHandler
}

func newWatchTable(owner address.Address) *watchTable {
	return &watchTable{
		owner:     owner,
		watching:  make(map[address.Address]*watchEntry),
		watchedBy: make(map[address.Address]ActorRef),
		pending:   make(map[address.Address]TerminationHandler),
	}
}

// isEmpty reports whether the table holds no relationship at all
func (t *watchTable) isEmpty() bool {
	return len(t.watching) == 0 && len(t.watchedBy) == 0 && len(t.pending) == 0
}
