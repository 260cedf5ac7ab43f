// Copyright 2024 by the Authors
// This file is part of the cw-sdk library.
//
// The cw-sdk library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cw-sdk library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cw-sdk library. If not, see <http://www.gnu.org/licenses/>.

package kvstore

import (
	"bytes"

	"github.com/google/btree"
)

type opKind int

const (
	opPut opKind = iota
	opDelete
)

// pendingItem is the btree element type for the overlay's pending-op map.
type pendingItem struct {
	key   []byte
	kind  opKind
	value []byte
}

func (p pendingItem) Less(than btree.Item) bool {
	return bytes.Compare(p.key, than.(pendingItem).key) < 0
}

// Cached is a write-buffered overlay over any KVStore. Reads check the
// pending map first and fall through to the underlying store; writes only
// ever touch the pending map until Flush is called. This is the one piece
// of machinery every message dispatch in the state machine runs inside:
// each message gets a fresh Cached wrapping the committed store, and either
// Flush or Discard is called on it before the next message begins.
type Cached struct {
	under   KVStore
	pending *btree.BTree
}

// NewCached wraps under in a fresh, empty write buffer.
func NewCached(under KVStore) *Cached {
	return &Cached{under: under, pending: btree.New(32)}
}

func (c *Cached) Get(key []byte) ([]byte, bool) {
	if item := c.pending.Get(pendingItem{key: key}); item != nil {
		p := item.(pendingItem)
		if p.kind == opDelete {
			return nil, false
		}
		return p.value, true
	}
	return c.under.Get(key)
}

func (c *Cached) Set(key, value []byte) {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	c.pending.ReplaceOrInsert(pendingItem{key: k, kind: opPut, value: v})
}

func (c *Cached) Delete(key []byte) {
	k := append([]byte(nil), key...)
	c.pending.ReplaceOrInsert(pendingItem{key: k, kind: opDelete})
}

// Range merges the underlying store's range with the pending overlay,
// pending taking precedence on equal keys and a pending Delete suppressing
// the underlying value entirely.
func (c *Cached) Range(start, end []byte, order Order) Iterator {
	underIt := c.under.Range(start, end, Ascending)
	defer underIt.Close()

	pending := c.pendingInRange(start, end)

	merged := mergeAscending(underIt, pending)
	if order == Descending {
		reverse(merged)
	}
	return newSliceIterator(merged)
}

func (c *Cached) pendingInRange(start, end []byte) []pendingItem {
	var out []pendingItem
	collect := func(item btree.Item) bool {
		p := item.(pendingItem)
		if inRange(p.key, start, end) {
			out = append(out, p)
		}
		return true
	}
	switch {
	case start == nil && end == nil:
		c.pending.Ascend(collect)
	case start == nil:
		c.pending.AscendLessThan(pendingItem{key: end}, collect)
	case end == nil:
		c.pending.AscendGreaterOrEqual(pendingItem{key: start}, collect)
	default:
		c.pending.AscendRange(pendingItem{key: start}, pendingItem{key: end}, collect)
	}
	return out
}

// mergeAscending merges an ascending underlying-store iterator with an
// ascending slice of pending ops, letting pending ops win ties and drop
// deleted keys.
func mergeAscending(under Iterator, pending []pendingItem) []kvPair {
	var merged []kvPair
	pi := 0

	for under.Valid() {
		uk := under.Key()

		for pi < len(pending) && bytes.Compare(pending[pi].key, uk) < 0 {
			merged = appendIfLive(merged, pending[pi])
			pi++
		}

		if pi < len(pending) && bytes.Equal(pending[pi].key, uk) {
			merged = appendIfLive(merged, pending[pi])
			pi++
			under.Next()
			continue
		}

		merged = append(merged, kvPair{key: append([]byte(nil), uk...), value: append([]byte(nil), under.Value()...)})
		under.Next()
	}

	for ; pi < len(pending); pi++ {
		merged = appendIfLive(merged, pending[pi])
	}

	return merged
}

func appendIfLive(merged []kvPair, p pendingItem) []kvPair {
	if p.kind == opDelete {
		return merged
	}
	return append(merged, kvPair{key: p.key, value: p.value})
}

// Flush applies every pending op to the underlying store in ascending key
// order and clears the pending map. After Flush, a fresh Get observes
// exactly the post-flush state.
func (c *Cached) Flush() {
	c.pending.Ascend(func(item btree.Item) bool {
		p := item.(pendingItem)
		if p.kind == opDelete {
			c.under.Delete(p.key)
		} else {
			c.under.Set(p.key, p.value)
		}
		return true
	})
	c.pending = btree.New(32)
}

// Discard clears the pending map without applying it. The underlying store
// is left byte-equal to its state before any operation on the overlay.
func (c *Cached) Discard() {
	c.pending = btree.New(32)
}

// Recycle reclaims the underlying store, consuming the overlay. Callers
// must not use c after calling Recycle.
func (c *Cached) Recycle() KVStore {
	under := c.under
	c.under = nil
	c.pending = nil
	return under
}
