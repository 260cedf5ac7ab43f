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

// memItem is the btree element type for Memory: ordered by Key via Less.
type memItem struct {
	key   []byte
	value []byte
}

func (a memItem) Less(than btree.Item) bool {
	return bytes.Compare(a.key, than.(memItem).key) < 0
}

// Memory is an in-memory KVStore backed by a B-tree, giving deterministic
// ascending iteration without re-sorting on every Range call. It is used by
// the tests; Cached keeps its own B-tree of pending ops rather than a Memory.
type Memory struct {
	tree *btree.BTree
}

// NewMemory constructs an empty in-memory KVStore.
func NewMemory() *Memory {
	return &Memory{tree: btree.New(32)}
}

func (m *Memory) Get(key []byte) ([]byte, bool) {
	item := m.tree.Get(memItem{key: key})
	if item == nil {
		return nil, false
	}
	return item.(memItem).value, true
}

func (m *Memory) Set(key, value []byte) {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	m.tree.ReplaceOrInsert(memItem{key: k, value: v})
}

func (m *Memory) Delete(key []byte) {
	m.tree.Delete(memItem{key: key})
}

func (m *Memory) Range(start, end []byte, order Order) Iterator {
	var pairs []kvPair
	collect := func(item btree.Item) bool {
		it := item.(memItem)
		pairs = append(pairs, kvPair{key: it.key, value: it.value})
		return true
	}

	switch {
	case start == nil && end == nil:
		m.tree.Ascend(collect)
	case start == nil:
		m.tree.AscendLessThan(memItem{key: end}, collect)
	case end == nil:
		m.tree.AscendGreaterOrEqual(memItem{key: start}, collect)
	default:
		m.tree.AscendRange(memItem{key: start}, memItem{key: end}, collect)
	}

	if order == Descending {
		reverse(pairs)
	}
	return newSliceIterator(pairs)
}

// Len reports the number of keys currently stored.
func (m *Memory) Len() int {
	return m.tree.Len()
}

func reverse(pairs []kvPair) {
	for i, j := 0, len(pairs)-1; i < j; i, j = i+1, j-1 {
		pairs[i], pairs[j] = pairs[j], pairs[i]
	}
}
