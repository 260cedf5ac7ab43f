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
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is the durable KVStore backend used for the chain's committed
// state. It wraps a single goleveldb database, the same storage library the
// teacher chain node uses for its own committed state.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if absent) a goleveldb database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Close releases the underlying database handle.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) Get(key []byte) ([]byte, bool) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		return nil, false
	}
	return value, true
}

func (l *LevelDB) Set(key, value []byte) {
	// Committed-store writes come from Cached.Flush, the authenticator and
	// chaind's genesis marker; a write failure here indicates a broken disk
	// and is not a condition this layer can recover from.
	if err := l.db.Put(key, value, nil); err != nil {
		panic("kvstore: leveldb put failed: " + err.Error())
	}
}

func (l *LevelDB) Delete(key []byte) {
	if err := l.db.Delete(key, nil); err != nil {
		panic("kvstore: leveldb delete failed: " + err.Error())
	}
}

func (l *LevelDB) Range(start, end []byte, order Order) Iterator {
	rng := &util.Range{Start: start, Limit: end}
	iter := l.db.NewIterator(rng, nil)
	return newLevelDBIterator(iter, order)
}

// newLevelDBIterator adapts goleveldb's iterator.Iterator to our Iterator,
// materializing the walk so Ascending/Descending share one code path with
// Memory and Cached (Ascending steps Next from the start; Descending seeks
// to the last key and steps Prev; either walk is flattened into the same
// sliceIterator the other backends use).
func newLevelDBIterator(it iterator.Iterator, order Order) Iterator {
	var pairs []kvPair
	switch order {
	case Descending:
		for ok := it.Last(); ok; ok = it.Prev() {
			pairs = append(pairs, copyPair(it))
		}
	default:
		for it.Next() {
			pairs = append(pairs, copyPair(it))
		}
	}
	it.Release()
	return newSliceIterator(pairs)
}

func copyPair(it iterator.Iterator) kvPair {
	return kvPair{
		key:   append([]byte(nil), it.Key()...),
		value: append([]byte(nil), it.Value()...),
	}
}
