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

	"github.com/zeebo/xxh3"

	"github.com/tochemey/warden/address"
)

const watchTableShards = 64

type watchTableShard struct {
	mu     sync.Mutex
	tables map[address.Address]*watchTable
}

// watchTableRegistry maps every actor to its watch table. Tables are created
// lazily and the get-or-create step runs under the shard lock so two first
// registrations for the same owner always end up on the same table.
type watchTableRegistry struct {
	shards [watchTableShards]*watchTableShard
}

func newWatchTableRegistry() *watchTableRegistry {
	registry := new(watchTableRegistry)
	for i := range registry.shards {
		registry.shards[i] = &watchTableShard{tables: make(map[address.Address]*watchTable)}
	}
	return registry
}

func (r *watchTableRegistry) shard(owner address.Address) *watchTableShard {
	return r.shards[xxh3.HashString(owner.ID())%watchTableShards]
}

// getOrCreate returns the table of owner, creating it on first use
func (r *watchTableRegistry) getOrCreate(owner address.Address) *watchTable {
	shard := r.shard(owner)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	table, ok := shard.tables[owner]
	if !ok {
		table = newWatchTable(owner)
		shard.tables[owner] = table
	}
	return table
}

// get returns the table of owner when it exists
func (r *watchTableRegistry) get(owner address.Address) (*watchTable, bool) {
	shard := r.shard(owner)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	table, ok := shard.tables[owner]
	return table, ok
}

// remove destroys the table of owner
func (r *watchTableRegistry) remove(owner address.Address) {
	shard := r.shard(owner)
	shard.mu.Lock()
	delete(shard.tables, owner)
	shard.mu.Unlock()
}

// len returns the number of tables
func (r *watchTableRegistry) len() int {
	total := 0
	for _, shard := range r.shards {
		shard.mu.Lock()
		total += len(shard.tables)
		shard.mu.Unlock()
	}
	return total
}

// reset drops every table
func (r *watchTableRegistry) reset() {
	for _, shard := range r.shards {
		shard.mu.Lock()
		clear(shard.tables)
		shard.mu.Unlock()
	}
}
